package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/proposal-service/application"
	"agora/contexts/governance/proposal-service/domain/entities"
	domainerrors "agora/contexts/governance/proposal-service/domain/errors"
	"agora/contexts/governance/proposal-service/ports"
)

// CastVoteCommand is the write-model input for proposal voting.
type CastVoteCommand struct {
	UserID     string
	ProposalID string
	VoteType   entities.VoteType
	Comment    string
}

// CastVoteResult carries the re-hydrated proposal and the caller's final vote.
type CastVoteResult struct {
	View     ports.ProposalView
	UserVote entities.VoteType
}

// VoteUseCase keeps the denormalized proposal tallies consistent with the vote
// rows. All counter mutations for one cast run inside a single transaction.
type VoteUseCase struct {
	Repo   ports.ProposalRepository
	Tx     ports.TxManager
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CastVote validates the preconditions in order, lazily expires the proposal
// when its expiry day has passed, then creates or updates the caller's vote.
// Re-voting with the same type is a deliberate no-op on the tally. A non-empty
// comment is mirrored into the caller's main comment on the proposal, which
// doubles as their latest vote justification.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID := strings.TrimSpace(cmd.UserID)
	proposalID := strings.TrimSpace(cmd.ProposalID)

	if _, ok := entities.ParseVoteType(string(cmd.VoteType)); !ok {
		logger.Warn("proposal vote rejected on vote type",
			"event", "proposal_vote_invalid_type",
			"module", "governance/proposal-service",
			"layer", "application",
			"user_id", userID,
			"proposal_id", proposalID,
			"vote_type", string(cmd.VoteType),
		)
		return CastVoteResult{}, domainerrors.ErrInvalidVoteType
	}
	if userID == "" || proposalID == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidProposalInput
	}

	proposal, err := uc.Repo.GetProposal(ctx, proposalID)
	if err != nil {
		return CastVoteResult{}, err
	}
	now := uc.now()
	if proposal.Status != entities.ProposalStatusInReview {
		if proposal.Status == entities.ProposalStatusExpired {
			return CastVoteResult{}, domainerrors.ErrProposalExpired
		}
		return CastVoteResult{}, domainerrors.ErrProposalNotInReview
	}
	if proposal.IsExpired(now) {
		// Expiration is detected and persisted at vote time, not only by an
		// external sweep. The vote itself is still rejected.
		if err := uc.Repo.SaveProposalStatus(ctx, proposalID, entities.ProposalStatusExpired, now); err != nil {
			return CastVoteResult{}, err
		}
		logger.Info("proposal lazily expired",
			"event", "proposal_expired_on_vote",
			"module", "governance/proposal-service",
			"layer", "application",
			"proposal_id", proposalID,
		)
		return CastVoteResult{}, domainerrors.ErrProposalExpired
	}

	userVote, err := uc.applyVote(ctx, proposalID, userID, cmd.VoteType, strings.TrimSpace(cmd.Comment), now)
	if errors.Is(err, domainerrors.ErrVoteConflict) {
		// Two concurrent casts by the same user raced on the unique
		// (user, proposal) constraint; the loser retries on the update path.
		logger.Warn("proposal vote retried after unique conflict",
			"event", "proposal_vote_conflict_retry",
			"module", "governance/proposal-service",
			"layer", "application",
			"user_id", userID,
			"proposal_id", proposalID,
		)
		userVote, err = uc.applyVote(ctx, proposalID, userID, cmd.VoteType, strings.TrimSpace(cmd.Comment), now)
	}
	if err != nil {
		return CastVoteResult{}, err
	}

	view, err := uc.hydrate(ctx, proposalID)
	if err != nil {
		return CastVoteResult{}, err
	}
	logger.Info("proposal vote recorded",
		"event", "proposal_vote_recorded",
		"module", "governance/proposal-service",
		"layer", "application",
		"user_id", userID,
		"proposal_id", proposalID,
		"vote_type", string(userVote),
	)
	return CastVoteResult{View: view, UserVote: userVote}, nil
}

// applyVote runs the counter/vote/comment mutation as one transaction.
func (uc VoteUseCase) applyVote(
	ctx context.Context,
	proposalID string,
	userID string,
	voteType entities.VoteType,
	comment string,
	now time.Time,
) (entities.VoteType, error) {
	err := uc.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		existing, found, err := uc.Repo.GetVoteByIdentity(txCtx, proposalID, userID)
		if err != nil {
			return err
		}
		if found {
			// Decrement the old tally and increment the new one even when the
			// type is unchanged; the deltas cancel inside the transaction.
			positive, negative, abstain := counterDeltas(existing.VoteType, -1)
			p2, n2, a2 := counterDeltas(voteType, 1)
			if err := uc.Repo.AdjustVoteCounters(txCtx, proposalID, positive+p2, negative+n2, abstain+a2, now); err != nil {
				return err
			}
			existing.VoteType = voteType
			if comment != "" {
				existing.Comment = comment
			}
			existing.UpdatedAt = now
			if err := uc.Repo.SaveVote(txCtx, existing); err != nil {
				return err
			}
		} else {
			voteID, err := uc.IDGen.NewID(txCtx)
			if err != nil {
				return err
			}
			vote := entities.Vote{
				VoteID:     voteID,
				ProposalID: proposalID,
				UserID:     userID,
				VoteType:   voteType,
				Comment:    comment,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := uc.Repo.SaveVote(txCtx, vote); err != nil {
				return err
			}
			positive, negative, abstain := counterDeltas(voteType, 1)
			if err := uc.Repo.AdjustVoteCounters(txCtx, proposalID, positive, negative, abstain, now); err != nil {
				return err
			}
		}
		if comment != "" {
			commentID, err := uc.IDGen.NewID(txCtx)
			if err != nil {
				return err
			}
			return uc.Repo.UpsertMainComment(txCtx, entities.Comment{
				CommentID:  commentID,
				ProposalID: proposalID,
				UserID:     userID,
				Content:    comment,
				Main:       true,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return voteType, nil
}

func (uc VoteUseCase) hydrate(ctx context.Context, proposalID string) (ports.ProposalView, error) {
	proposal, err := uc.Repo.GetProposal(ctx, proposalID)
	if err != nil {
		return ports.ProposalView{}, err
	}
	votes, err := uc.Repo.ListVotesByProposal(ctx, proposalID)
	if err != nil {
		return ports.ProposalView{}, err
	}
	comments, err := uc.Repo.ListCommentsByProposal(ctx, proposalID)
	if err != nil {
		return ports.ProposalView{}, err
	}
	return ports.ProposalView{Proposal: proposal, Votes: votes, Comments: comments}, nil
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func counterDeltas(voteType entities.VoteType, delta int) (positive, negative, abstain int) {
	switch voteType {
	case entities.VoteTypePositive:
		return delta, 0, 0
	case entities.VoteTypeNegative:
		return 0, delta, 0
	default:
		return 0, 0, delta
	}
}
