package queries

import (
	"context"
	"strings"

	"agora/contexts/governance/proposal-service/domain/entities"
	domainerrors "agora/contexts/governance/proposal-service/domain/errors"
	"agora/contexts/governance/proposal-service/ports"
)

type GetProposalUseCase struct {
	Repo ports.ProposalRepository
}

// Execute returns the proposal with votes and comments ordered newest-first.
func (uc GetProposalUseCase) Execute(ctx context.Context, proposalID string) (ports.ProposalView, error) {
	proposalID = strings.TrimSpace(proposalID)
	if proposalID == "" {
		return ports.ProposalView{}, domainerrors.ErrInvalidProposalInput
	}
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

type ListProposalsUseCase struct {
	Repo ports.ProposalRepository
}

// Execute lists proposals newest-first, optionally filtered by status.
func (uc ListProposalsUseCase) Execute(ctx context.Context, statusFilter string) ([]entities.Proposal, error) {
	var status *entities.ProposalStatus
	if trimmed := strings.TrimSpace(statusFilter); trimmed != "" {
		parsed, ok := entities.ParseProposalStatus(trimmed)
		if !ok {
			return nil, domainerrors.ErrInvalidStatus
		}
		status = &parsed
	}
	return uc.Repo.ListProposals(ctx, status)
}
