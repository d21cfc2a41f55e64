package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/governance/proposal-service/application/commands"
	"agora/contexts/governance/proposal-service/application/queries"
	"agora/contexts/governance/proposal-service/domain/entities"
	"agora/contexts/governance/proposal-service/ports"
	httptransport "agora/contexts/governance/proposal-service/transport/http"
)

type Handler struct {
	Votes          commands.VoteUseCase
	CreateProposal commands.CreateProposalUseCase
	UpdateProposal commands.UpdateProposalUseCase
	DeleteProposal commands.DeleteProposalUseCase
	GetProposal    queries.GetProposalUseCase
	ListProposals  queries.ListProposalsUseCase
	Logger         *slog.Logger
}

// CastVoteHandler godoc
// @Summary Cast or change a vote on a proposal
// @Tags proposals
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param id path string true "Proposal id"
// @Param body body httptransport.CastVoteRequest true "Vote"
// @Success 200 {object} httptransport.CastVoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /proposals/{id}/vote [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	actor ports.Actor,
	proposalID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		UserID:     actor.UserID,
		ProposalID: proposalID,
		VoteType:   entities.VoteType(req.VoteType),
		Comment:    req.Comment,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		Proposal: mapProposalView(result.View),
		UserVote: string(result.UserVote),
	}, nil
}

// CreateProposalHandler godoc
// @Summary Submit a proposal
// @Tags proposals
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param body body httptransport.CreateProposalRequest true "Proposal"
// @Success 201 {object} httptransport.ProposalResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /proposals [post]
func (h Handler) CreateProposalHandler(
	ctx context.Context,
	actor ports.Actor,
	req httptransport.CreateProposalRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.CreateProposal.Execute(ctx, commands.CreateProposalCommand{
		AuthorID:     actor.UserID,
		Title:        req.Title,
		Description:  req.Description,
		ExpiresAt:    req.ExpiresAt,
		WorkGroupIDs: req.WorkGroupIDs,
		BudgetItems:  mapBudgetPayloads(req.BudgetItems),
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

// PatchProposalHandler godoc
// @Summary Partially update a proposal
// @Description Status changes need a global admin; content changes need the author while in review.
// @Tags proposals
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param id path string true "Proposal id"
// @Param body body httptransport.PatchProposalRequest true "Patch"
// @Success 200 {object} httptransport.ProposalResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /proposals/{id} [patch]
func (h Handler) PatchProposalHandler(
	ctx context.Context,
	actor ports.Actor,
	proposalID string,
	req httptransport.PatchProposalRequest,
) (httptransport.ProposalResponse, error) {
	patch := commands.ProposalPatch{
		Title:       req.Title,
		Description: req.Description,
		ExpiresAt:   req.ExpiresAt,
	}
	if req.WorkGroupIDs != nil {
		ids := append([]string(nil), (*req.WorkGroupIDs)...)
		patch.WorkGroupIDs = &ids
	}
	if req.BudgetItems != nil {
		items := mapBudgetPayloads(*req.BudgetItems)
		patch.BudgetItems = &items
	}
	if req.Status != nil {
		status := entities.ProposalStatus(*req.Status)
		patch.Status = &status
	}
	proposal, err := h.UpdateProposal.Execute(ctx, actor, proposalID, patch)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal), nil
}

// DeleteProposalHandler godoc
// @Summary Delete a proposal and its votes and comments
// @Tags proposals
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param id path string true "Proposal id"
// @Success 200 {object} httptransport.DeleteProposalResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /proposals/{id} [delete]
func (h Handler) DeleteProposalHandler(ctx context.Context, actor ports.Actor, proposalID string) (httptransport.DeleteProposalResponse, error) {
	if err := h.DeleteProposal.Execute(ctx, actor, proposalID); err != nil {
		return httptransport.DeleteProposalResponse{}, err
	}
	return httptransport.DeleteProposalResponse{Success: true}, nil
}

// GetProposalHandler godoc
// @Summary Get a proposal with votes and comments
// @Tags proposals
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param id path string true "Proposal id"
// @Success 200 {object} httptransport.ProposalResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /proposals/{id} [get]
func (h Handler) GetProposalHandler(ctx context.Context, proposalID string) (httptransport.ProposalResponse, error) {
	view, err := h.GetProposal.Execute(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposalView(view), nil
}

// ListProposalsHandler godoc
// @Summary List proposals
// @Tags proposals
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param status query string false "Status filter"
// @Success 200 {object} httptransport.ProposalListResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /proposals [get]
func (h Handler) ListProposalsHandler(ctx context.Context, statusFilter string) (httptransport.ProposalListResponse, error) {
	proposals, err := h.ListProposals.Execute(ctx, statusFilter)
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(proposals))
	for _, proposal := range proposals {
		items = append(items, mapProposal(proposal))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

func mapProposal(proposal entities.Proposal) httptransport.ProposalResponse {
	budget := make([]httptransport.BudgetItemPayload, 0, len(proposal.BudgetItems))
	for _, item := range proposal.BudgetItems {
		budget = append(budget, httptransport.BudgetItemPayload{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	workGroupIDs := proposal.WorkGroupIDs
	if workGroupIDs == nil {
		workGroupIDs = []string{}
	}
	return httptransport.ProposalResponse{
		ID:            proposal.ProposalID,
		Title:         proposal.Title,
		Description:   proposal.Description,
		Status:        string(proposal.Status),
		AuthorID:      proposal.AuthorID,
		ExpiresAt:     proposal.ExpiresAt,
		PositiveVotes: proposal.PositiveVotes,
		NegativeVotes: proposal.NegativeVotes,
		AbstainVotes:  proposal.AbstainVotes,
		WorkGroupIDs:  workGroupIDs,
		BudgetItems:   budget,
		CreatedAt:     proposal.CreatedAt,
		UpdatedAt:     proposal.UpdatedAt,
	}
}

func mapProposalView(view ports.ProposalView) httptransport.ProposalResponse {
	resp := mapProposal(view.Proposal)
	resp.Votes = make([]httptransport.VoteResponse, 0, len(view.Votes))
	for _, vote := range view.Votes {
		resp.Votes = append(resp.Votes, httptransport.VoteResponse{
			ID:         vote.VoteID,
			ProposalID: vote.ProposalID,
			UserID:     vote.UserID,
			VoteType:   string(vote.VoteType),
			Comment:    vote.Comment,
			CreatedAt:  vote.CreatedAt,
			UpdatedAt:  vote.UpdatedAt,
		})
	}
	resp.Comments = make([]httptransport.CommentResponse, 0, len(view.Comments))
	for _, comment := range view.Comments {
		resp.Comments = append(resp.Comments, httptransport.CommentResponse{
			ID:         comment.CommentID,
			ProposalID: comment.ProposalID,
			UserID:     comment.UserID,
			Content:    comment.Content,
			CreatedAt:  comment.CreatedAt,
			UpdatedAt:  comment.UpdatedAt,
		})
	}
	return resp
}

func mapBudgetPayloads(payloads []httptransport.BudgetItemPayload) []entities.BudgetItem {
	items := make([]entities.BudgetItem, 0, len(payloads))
	for _, payload := range payloads {
		items = append(items, entities.BudgetItem{
			Description: payload.Description,
			Quantity:    payload.Quantity,
			UnitPrice:   payload.UnitPrice,
			Total:       payload.Total,
		})
	}
	return items
}
