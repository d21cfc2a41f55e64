package entities

import "time"

type Role string

const (
	RoleUser            Role = "USER"
	RoleAdmin           Role = "ADMIN"
	RoleSuperAdmin      Role = "SUPER_ADMIN"
	RoleCoreContributor Role = "CORE_CONTRIBUTOR"
)

// ParseRole validates a role literal from the wire.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleUser, RoleAdmin, RoleSuperAdmin, RoleCoreContributor:
		return Role(raw), true
	default:
		return "", false
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type User struct {
	UserID    string
	Username  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkGroupMembership scopes a role to a single workgroup. A plain USER can
// still be ADMIN inside one workgroup.
type WorkGroupMembership struct {
	WorkGroupID string
	UserID      string
	Role        Role
}

// AuthContext is the resolved identity of the caller for one request.
type AuthContext struct {
	UserID         string
	Username       string
	Role           Role
	WorkGroupRoles map[string]Role
}

func (a AuthContext) IsGlobalAdmin() bool {
	return a.Role.IsAdmin()
}

func (a AuthContext) IsWorkGroupAdmin(workGroupID string) bool {
	return a.WorkGroupRoles[workGroupID].IsAdmin()
}

// AdminWorkGroups lists the workgroups the caller administers.
func (a AuthContext) AdminWorkGroups() []string {
	ids := make([]string, 0, len(a.WorkGroupRoles))
	for id, role := range a.WorkGroupRoles {
		if role.IsAdmin() {
			ids = append(ids, id)
		}
	}
	return ids
}

// CanManageConsensus is deliberately wider than global admin: an admin of any
// single workgroup may drive report consensus transitions.
func (a AuthContext) CanManageConsensus() bool {
	return a.IsGlobalAdmin() || len(a.AdminWorkGroups()) > 0
}

// CanModerateProposals gates proposal status changes and deletion.
func (a AuthContext) CanModerateProposals() bool {
	return a.IsGlobalAdmin()
}
