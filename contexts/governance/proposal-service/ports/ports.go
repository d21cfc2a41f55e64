package ports

import (
	"context"
	"time"

	"agora/contexts/governance/proposal-service/domain/entities"
)

// Actor is the resolved caller identity as seen by this module.
type Actor struct {
	UserID      string
	GlobalAdmin bool
}

// ProposalView is the hydrated read shape returned by vote and read paths.
// Votes and Comments are ordered newest-first.
type ProposalView struct {
	Proposal entities.Proposal
	Votes    []entities.Vote
	Comments []entities.Comment
}

type ProposalRepository interface {
	GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error)
	SaveProposal(ctx context.Context, proposal entities.Proposal) error
	SaveProposalStatus(ctx context.Context, proposalID string, status entities.ProposalStatus, updatedAt time.Time) error
	ListProposals(ctx context.Context, status *entities.ProposalStatus) ([]entities.Proposal, error)
	DeleteProposalCascade(ctx context.Context, proposalID string) error

	// AdjustVoteCounters applies the deltas in one statement so a reader never
	// observes a torn tally.
	AdjustVoteCounters(ctx context.Context, proposalID string, positive, negative, abstain int, updatedAt time.Time) error

	GetVoteByIdentity(ctx context.Context, proposalID string, userID string) (entities.Vote, bool, error)
	// SaveVote returns domain ErrVoteConflict when the (user, proposal) unique
	// constraint is violated by a concurrent insert.
	SaveVote(ctx context.Context, vote entities.Vote) error
	ListVotesByProposal(ctx context.Context, proposalID string) ([]entities.Vote, error)

	// UpsertMainComment creates or replaces the single main comment kept per
	// (user, proposal).
	UpsertMainComment(ctx context.Context, comment entities.Comment) error
	ListCommentsByProposal(ctx context.Context, proposalID string) ([]entities.Comment, error)
}

// TxManager scopes a function to one atomic transaction. Repository calls made
// with the context passed to fn join that transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
