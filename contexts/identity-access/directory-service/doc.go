// Package directoryservice implements the user directory inside the
// identity-access context.
//
// The module owns user records, global roles, workgroup memberships, and
// per-request AuthContext resolution. Every inbound request is resolved into
// an explicit AuthContext value carrying the caller's identity and capability
// checks; no session state lives in the process.
package directoryservice
