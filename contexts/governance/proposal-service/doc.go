// Package proposalservice implements the proposal aggregate inside the
// governance context.
//
// The module owns the proposal lifecycle (IN_REVIEW through APPROVED, REJECTED
// or EXPIRED), the up/down/abstain voting sub-engine with denormalized tally
// counters, proposal discussion comments, and role-gated patch and delete
// operations. Counter maintenance runs inside a single transaction so readers
// never observe a torn tally.
package proposalservice
