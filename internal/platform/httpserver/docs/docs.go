// Package docs registers the OpenAPI document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/proposals": {
            "get": {
                "tags": ["proposals"],
                "summary": "List proposals",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["proposals"],
                "summary": "Submit a proposal",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/proposals/{id}": {
            "get": {
                "tags": ["proposals"],
                "summary": "Get a proposal with votes and comments",
                "responses": {"200": {"description": "OK"}}
            },
            "patch": {
                "tags": ["proposals"],
                "summary": "Partially update a proposal",
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["proposals"],
                "summary": "Delete a proposal and its votes and comments",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/proposals/{id}/vote": {
            "post": {
                "tags": ["proposals"],
                "summary": "Cast or change a vote on a proposal",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports": {
            "post": {
                "tags": ["consensus"],
                "summary": "Register a quarterly report",
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/reports/{reportId}": {
            "get": {
                "tags": ["consensus"],
                "summary": "Get a report with rounds, votes and objections",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/{reportId}/consensus-status": {
            "put": {
                "tags": ["consensus"],
                "summary": "Move a report to CONSENSED or REJECTED",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/rounds/{roundId}/votes": {
            "get": {
                "tags": ["consensus"],
                "summary": "List the votes of one voting round",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/votes": {
            "post": {
                "tags": ["consensus"],
                "summary": "Cast a consensus vote on a quarterly report",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/objections/{objectionId}/status": {
            "put": {
                "tags": ["consensus"],
                "summary": "Adjudicate an objection as VALIDA or INVALIDA",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/users/{userId}/role": {
            "put": {
                "tags": ["directory"],
                "summary": "Change a user's global role",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/workgroups/{workGroupId}/members": {
            "get": {
                "tags": ["directory"],
                "summary": "List workgroup members",
                "responses": {"200": {"description": "OK"}}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Agora Governance API",
	Description:      "Community proposal voting and quarterly-report consensus backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
