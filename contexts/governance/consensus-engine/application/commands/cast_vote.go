package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/consensus-engine/application"
	"agora/contexts/governance/consensus-engine/domain/entities"
	domainerrors "agora/contexts/governance/consensus-engine/domain/errors"
	"agora/contexts/governance/consensus-engine/ports"
)

const minObjectionComment = 10

type CastConsensusVoteCommand struct {
	UserID   string
	ReportID string
	VoteType entities.ConsensusVoteType
	Comment  string
}

// CastConsensusVoteResult is the persisted vote with its objection relation,
// when the vote carries one.
type CastConsensusVoteResult struct {
	Vote      entities.ConsensusVote
	Objection *entities.Objection
}

// CastConsensusVoteUseCase runs the consensus ballot flow: the first vote on
// a report without an ACTIVA round opens the next round and flips the report
// out of PENDING; later votes in the window join the same round.
type CastConsensusVoteUseCase struct {
	Repo   ports.ReportRepository
	Tx     ports.TxManager
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc CastConsensusVoteUseCase) Execute(ctx context.Context, cmd CastConsensusVoteCommand) (CastConsensusVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID := strings.TrimSpace(cmd.UserID)
	reportID := strings.TrimSpace(cmd.ReportID)
	comment := strings.TrimSpace(cmd.Comment)

	if userID == "" || reportID == "" {
		return CastConsensusVoteResult{}, domainerrors.ErrInvalidConsensusVote
	}
	voteType, ok := entities.ParseConsensusVoteType(string(cmd.VoteType))
	if !ok {
		return CastConsensusVoteResult{}, domainerrors.ErrInvalidConsensusVote
	}
	if voteType == entities.ConsensusVoteObject && len([]rune(comment)) < minObjectionComment {
		logger.Warn("objection rejected on short justification",
			"event", "consensus_objection_comment_too_short",
			"module", "governance/consensus-engine",
			"layer", "application",
			"user_id", userID,
			"report_id", reportID,
		)
		return CastConsensusVoteResult{}, domainerrors.ErrObjectionCommentTooShort
	}

	report, err := uc.Repo.GetReport(ctx, reportID)
	if err != nil {
		return CastConsensusVoteResult{}, err
	}
	if report.ConsensusStatus == entities.ConsensusStatusConsensed {
		return CastConsensusVoteResult{}, domainerrors.ErrReportConsensed
	}

	now := uc.now()
	result, err := uc.applyVote(ctx, report, userID, voteType, comment, now)
	if errors.Is(err, domainerrors.ErrVoteConflict) {
		// Concurrent first casts by the same user raced on the unique
		// (round, user) constraint; the loser retries on the update path.
		logger.Warn("consensus vote retried after unique conflict",
			"event", "consensus_vote_conflict_retry",
			"module", "governance/consensus-engine",
			"layer", "application",
			"user_id", userID,
			"report_id", reportID,
		)
		result, err = uc.applyVote(ctx, report, userID, voteType, comment, now)
	}
	if err != nil {
		return CastConsensusVoteResult{}, err
	}
	logger.Info("consensus vote recorded",
		"event", "consensus_vote_recorded",
		"module", "governance/consensus-engine",
		"layer", "application",
		"user_id", userID,
		"report_id", reportID,
		"round_id", result.Vote.RoundID,
		"vote_type", string(voteType),
	)
	return result, nil
}

// applyVote resolves or opens the active round, upserts the ballot and, for
// OBJETAR, its objection, all inside one transaction.
func (uc CastConsensusVoteUseCase) applyVote(
	ctx context.Context,
	report entities.QuarterlyReport,
	userID string,
	voteType entities.ConsensusVoteType,
	comment string,
	now time.Time,
) (CastConsensusVoteResult, error) {
	var result CastConsensusVoteResult
	err := uc.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		round, found, err := uc.Repo.GetActiveRound(txCtx, report.ReportID)
		if err != nil {
			return err
		}
		if !found {
			round, err = uc.openRound(txCtx, report, now)
			if err != nil {
				return err
			}
		}

		vote, voteFound, err := uc.Repo.GetVoteByIdentity(txCtx, round.RoundID, userID)
		if err != nil {
			return err
		}
		if voteFound {
			vote.VoteType = voteType
			vote.Comment = comment
			vote.UpdatedAt = now
		} else {
			voteID, err := uc.IDGen.NewID(txCtx)
			if err != nil {
				return err
			}
			vote = entities.ConsensusVote{
				VoteID:    voteID,
				RoundID:   round.RoundID,
				UserID:    userID,
				VoteType:  voteType,
				Comment:   comment,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}
		if err := uc.Repo.SaveVote(txCtx, vote); err != nil {
			return err
		}
		result.Vote = vote

		if voteType != entities.ConsensusVoteObject {
			result.Objection = nil
			return nil
		}
		objection, objFound, err := uc.Repo.GetObjectionByVote(txCtx, vote.VoteID)
		if err != nil {
			return err
		}
		if objFound {
			// Re-objecting never resets an adjudicated objection.
			objection.UpdatedAt = now
		} else {
			objectionID, err := uc.IDGen.NewID(txCtx)
			if err != nil {
				return err
			}
			objection = entities.Objection{
				ObjectionID: objectionID,
				VoteID:      vote.VoteID,
				Status:      entities.ObjectionStatusPending,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
		}
		if err := uc.Repo.SaveObjection(txCtx, objection); err != nil {
			return err
		}
		result.Objection = &objection
		return nil
	})
	if err != nil {
		return CastConsensusVoteResult{}, err
	}
	return result, nil
}

func (uc CastConsensusVoteUseCase) openRound(ctx context.Context, report entities.QuarterlyReport, now time.Time) (entities.VotingRound, error) {
	maxRound, err := uc.Repo.MaxRoundNumber(ctx, report.ReportID)
	if err != nil {
		return entities.VotingRound{}, err
	}
	roundID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.VotingRound{}, err
	}
	round := entities.VotingRound{
		RoundID:     roundID,
		ReportID:    report.ReportID,
		RoundNumber: maxRound + 1,
		Status:      entities.RoundStatusActive,
		StartedAt:   now,
	}
	if err := uc.Repo.SaveRound(ctx, round); err != nil {
		return entities.VotingRound{}, err
	}
	if report.ConsensusStatus == entities.ConsensusStatusPending {
		if err := uc.Repo.SaveReportStatus(ctx, report.ReportID, entities.ConsensusStatusInConsensus, now); err != nil {
			return entities.VotingRound{}, err
		}
	}
	return round, nil
}

func (uc CastConsensusVoteUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
