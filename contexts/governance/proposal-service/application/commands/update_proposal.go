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

// ProposalPatch is the tagged partial-update shape. Status belongs to global
// admins; everything else belongs to the author while the proposal is still
// in review. Nil means "leave unchanged".
type ProposalPatch struct {
	Title        *string
	Description  *string
	ExpiresAt    *time.Time
	WorkGroupIDs *[]string
	BudgetItems  *[]entities.BudgetItem
	Status       *entities.ProposalStatus
}

func (p ProposalPatch) hasContentFields() bool {
	return p.Title != nil || p.Description != nil || p.ExpiresAt != nil ||
		p.WorkGroupIDs != nil || p.BudgetItems != nil
}

func (p ProposalPatch) isEmpty() bool {
	return !p.hasContentFields() && p.Status == nil
}

type UpdateProposalUseCase struct {
	Repo   ports.ProposalRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

// Execute applies a role-checked partial update. Each field group is
// authorized independently, so a patch mixing status and content needs both
// the admin role and authorship.
func (uc UpdateProposalUseCase) Execute(
	ctx context.Context,
	actor ports.Actor,
	proposalID string,
	patch ProposalPatch,
) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	if patch.isEmpty() {
		return entities.Proposal{}, domainerrors.ErrEmptyPatch
	}

	proposal, err := uc.Repo.GetProposal(ctx, strings.TrimSpace(proposalID))
	if err != nil {
		return entities.Proposal{}, err
	}

	if patch.Status != nil {
		if !actor.GlobalAdmin {
			return entities.Proposal{}, domainerrors.ErrForbidden
		}
		status, ok := entities.ParseProposalStatus(string(*patch.Status))
		if !ok {
			return entities.Proposal{}, domainerrors.ErrInvalidStatus
		}
		proposal.Status = status
	}

	if patch.hasContentFields() {
		if actor.UserID != proposal.AuthorID {
			return entities.Proposal{}, domainerrors.ErrForbidden
		}
		if proposal.Status != entities.ProposalStatusInReview {
			return entities.Proposal{}, domainerrors.ErrProposalNotInReview
		}
		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
			}
			proposal.Title = title
		}
		if patch.Description != nil {
			description := strings.TrimSpace(*patch.Description)
			if description == "" {
				return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
			}
			proposal.Description = description
		}
		if patch.ExpiresAt != nil {
			if patch.ExpiresAt.IsZero() {
				return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
			}
			proposal.ExpiresAt = patch.ExpiresAt.UTC()
		}
		if patch.WorkGroupIDs != nil {
			proposal.WorkGroupIDs = normalizeWorkGroupIDs(*patch.WorkGroupIDs)
		}
		if patch.BudgetItems != nil {
			budget := make([]entities.BudgetItem, 0, len(*patch.BudgetItems))
			for _, item := range *patch.BudgetItems {
				if strings.TrimSpace(item.Description) == "" || item.Quantity < 0 || item.UnitPrice < 0 {
					return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
				}
				item.Description = strings.TrimSpace(item.Description)
				item.Total = float64(item.Quantity) * item.UnitPrice
				budget = append(budget, item)
			}
			proposal.BudgetItems = budget
		}
	}

	proposal.UpdatedAt = uc.now()
	if err := uc.Repo.SaveProposal(ctx, proposal); err != nil {
		return entities.Proposal{}, err
	}
	logger.Info("proposal updated",
		"event", "proposal_updated",
		"module", "governance/proposal-service",
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"actor_id", actor.UserID,
		"status", string(proposal.Status),
	)
	return proposal, nil
}

func (uc UpdateProposalUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
