package commands

import (
	"context"
	"log/slog"
	"strings"

	application "agora/contexts/governance/proposal-service/application"
	domainerrors "agora/contexts/governance/proposal-service/domain/errors"
	"agora/contexts/governance/proposal-service/ports"
)

type DeleteProposalUseCase struct {
	Repo   ports.ProposalRepository
	Tx     ports.TxManager
	Logger *slog.Logger
}

// Execute removes a proposal together with its votes, comments and workgroup
// links in one transaction. Admin-only.
func (uc DeleteProposalUseCase) Execute(ctx context.Context, actor ports.Actor, proposalID string) error {
	logger := application.ResolveLogger(uc.Logger)
	if !actor.GlobalAdmin {
		return domainerrors.ErrForbidden
	}
	proposalID = strings.TrimSpace(proposalID)
	if _, err := uc.Repo.GetProposal(ctx, proposalID); err != nil {
		return err
	}
	err := uc.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		return uc.Repo.DeleteProposalCascade(txCtx, proposalID)
	})
	if err != nil {
		return err
	}
	logger.Info("proposal deleted",
		"event", "proposal_deleted",
		"module", "governance/proposal-service",
		"layer", "application",
		"proposal_id", proposalID,
		"actor_id", actor.UserID,
	)
	return nil
}
