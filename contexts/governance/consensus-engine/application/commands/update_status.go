package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/consensus-engine/application"
	"agora/contexts/governance/consensus-engine/domain/entities"
	domainerrors "agora/contexts/governance/consensus-engine/domain/errors"
	"agora/contexts/governance/consensus-engine/ports"
)

// UpdateConsensusStatusUseCase moves a report into a terminal consensus state.
// CONSENSED additionally closes the active round; a VALIDA objection in that
// round blocks the transition entirely.
type UpdateConsensusStatusUseCase struct {
	Repo   ports.ReportRepository
	Tx     ports.TxManager
	Clock  ports.Clock
	Logger *slog.Logger
}

func (uc UpdateConsensusStatusUseCase) Execute(
	ctx context.Context,
	actor ports.Actor,
	reportID string,
	target string,
) (entities.ConsensusStatus, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !actor.CanManageConsensus() {
		return "", domainerrors.ErrForbidden
	}
	status, ok := entities.ParseConsensusStatus(strings.TrimSpace(target))
	if !ok || (status != entities.ConsensusStatusConsensed && status != entities.ConsensusStatusRejected) {
		return "", domainerrors.ErrInvalidConsensusStatus
	}

	reportID = strings.TrimSpace(reportID)
	report, err := uc.Repo.GetReport(ctx, reportID)
	if err != nil {
		return "", err
	}

	if status == entities.ConsensusStatusConsensed {
		blocking, err := uc.Repo.ListObjectionsInActiveRound(ctx, reportID, entities.ObjectionStatusValid)
		if err != nil {
			return "", err
		}
		if len(blocking) > 0 {
			logger.Warn("consensed transition blocked by valid objections",
				"event", "consensus_status_blocked",
				"module", "governance/consensus-engine",
				"layer", "application",
				"report_id", reportID,
				"valid_objections", len(blocking),
			)
			return "", domainerrors.ErrValidObjectionsPresent
		}
	}

	now := uc.now()
	err = uc.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := uc.Repo.SaveReportStatus(txCtx, reportID, status, now); err != nil {
			return err
		}
		if status != entities.ConsensusStatusConsensed {
			return nil
		}
		round, found, err := uc.Repo.GetActiveRound(txCtx, reportID)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
		return uc.Repo.CloseRound(txCtx, round.RoundID, now)
	})
	if err != nil {
		return "", err
	}
	logger.Info("consensus status updated",
		"event", "consensus_status_updated",
		"module", "governance/consensus-engine",
		"layer", "application",
		"report_id", reportID,
		"actor_id", actor.UserID,
		"previous_status", string(report.ConsensusStatus),
		"status", string(status),
	)
	return status, nil
}

func (uc UpdateConsensusStatusUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
