package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/proposal-service/application"
	"agora/contexts/governance/proposal-service/domain/entities"
	domainerrors "agora/contexts/governance/proposal-service/domain/errors"
	"agora/contexts/governance/proposal-service/ports"
)

type CreateProposalCommand struct {
	AuthorID     string
	Title        string
	Description  string
	ExpiresAt    time.Time
	WorkGroupIDs []string
	BudgetItems  []entities.BudgetItem
}

type CreateProposalUseCase struct {
	Repo   ports.ProposalRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Execute creates a proposal in IN_REVIEW with zeroed tallies. Budget item
// totals are recomputed server-side so quantity times unit price always holds.
func (uc CreateProposalUseCase) Execute(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	authorID := strings.TrimSpace(cmd.AuthorID)
	title := strings.TrimSpace(cmd.Title)
	description := strings.TrimSpace(cmd.Description)
	if authorID == "" || title == "" || description == "" || cmd.ExpiresAt.IsZero() {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}

	now := uc.now()
	budget := make([]entities.BudgetItem, 0, len(cmd.BudgetItems))
	for _, item := range cmd.BudgetItems {
		if strings.TrimSpace(item.Description) == "" || item.Quantity < 0 || item.UnitPrice < 0 {
			return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
		}
		item.Description = strings.TrimSpace(item.Description)
		item.Total = float64(item.Quantity) * item.UnitPrice
		budget = append(budget, item)
	}

	proposal := entities.Proposal{
		Title:        title,
		Description:  description,
		Status:       entities.ProposalStatusInReview,
		AuthorID:     authorID,
		ExpiresAt:    cmd.ExpiresAt.UTC(),
		WorkGroupIDs: normalizeWorkGroupIDs(cmd.WorkGroupIDs),
		BudgetItems:  budget,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if proposal.IsExpired(now) {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}

	proposalID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Proposal{}, err
	}
	proposal.ProposalID = proposalID
	if err := uc.Repo.SaveProposal(ctx, proposal); err != nil {
		return entities.Proposal{}, err
	}
	logger.Info("proposal created",
		"event", "proposal_created",
		"module", "governance/proposal-service",
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"author_id", authorID,
	)
	return proposal, nil
}

func (uc CreateProposalUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func normalizeWorkGroupIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
