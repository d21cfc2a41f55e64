package ports

import (
	"context"
	"time"

	"agora/contexts/governance/consensus-engine/domain/entities"
)

// Actor is the resolved caller identity scoped to this module's checks.
// AdminWorkGroups lists the workgroups where the caller holds an admin role.
type Actor struct {
	UserID          string
	GlobalAdmin     bool
	AdminWorkGroups []string
}

// CanManageConsensus encapsulates the widened permission rule: a global admin
// or an admin of at least one workgroup may manage any report's consensus.
func (a Actor) CanManageConsensus() bool {
	return a.GlobalAdmin || len(a.AdminWorkGroups) > 0
}

// CanCreateReport allows global admins everywhere and workgroup admins inside
// their own workgroup.
func (a Actor) CanCreateReport(workGroupID string) bool {
	if a.GlobalAdmin {
		return true
	}
	for _, id := range a.AdminWorkGroups {
		if id == workGroupID {
			return true
		}
	}
	return false
}

// VoteView pairs a vote with its objection, when one exists.
type VoteView struct {
	Vote      entities.ConsensusVote
	Objection *entities.Objection
}

type RoundView struct {
	Round entities.VotingRound
	Votes []VoteView
}

// ReportView is the hydrated read model: rounds newest-first, each with its
// votes and their objections.
type ReportView struct {
	Report entities.QuarterlyReport
	Rounds []RoundView
}

type ReportRepository interface {
	GetReport(ctx context.Context, reportID string) (entities.QuarterlyReport, error)
	GetReportByPeriod(ctx context.Context, workGroupID string, year, quarter int) (entities.QuarterlyReport, bool, error)
	SaveReport(ctx context.Context, report entities.QuarterlyReport) error
	SaveReportStatus(ctx context.Context, reportID string, status entities.ConsensusStatus, updatedAt time.Time) error

	GetActiveRound(ctx context.Context, reportID string) (entities.VotingRound, bool, error)
	MaxRoundNumber(ctx context.Context, reportID string) (int, error)
	// SaveRound surfaces ErrVoteConflict when a concurrent insert took the
	// same (report, round number) slot.
	SaveRound(ctx context.Context, round entities.VotingRound) error
	CloseRound(ctx context.Context, roundID string, closedAt time.Time) error
	ListRoundsByReport(ctx context.Context, reportID string) ([]entities.VotingRound, error)

	// GetVoteByIdentity resolves the unique (round, user) vote.
	GetVoteByIdentity(ctx context.Context, roundID string, userID string) (entities.ConsensusVote, bool, error)
	// SaveVote upserts by vote id. A concurrent insert for the same
	// (round, user) pair surfaces ErrVoteConflict.
	SaveVote(ctx context.Context, vote entities.ConsensusVote) error
	ListVotesByRound(ctx context.Context, roundID string) ([]entities.ConsensusVote, error)

	GetObjection(ctx context.Context, objectionID string) (entities.Objection, error)
	GetObjectionByVote(ctx context.Context, voteID string) (entities.Objection, bool, error)
	SaveObjection(ctx context.Context, objection entities.Objection) error
	// ListObjectionsInActiveRound returns the objections with the given
	// status whose parent vote belongs to an ACTIVA round of the report.
	ListObjectionsInActiveRound(ctx context.Context, reportID string, status entities.ObjectionStatus) ([]entities.Objection, error)
}

type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
