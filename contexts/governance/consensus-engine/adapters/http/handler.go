package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/governance/consensus-engine/application/commands"
	"agora/contexts/governance/consensus-engine/application/queries"
	"agora/contexts/governance/consensus-engine/domain/entities"
	"agora/contexts/governance/consensus-engine/ports"
	httptransport "agora/contexts/governance/consensus-engine/transport/http"
)

type Handler struct {
	CastVote            commands.CastConsensusVoteUseCase
	UpdateStatus        commands.UpdateConsensusStatusUseCase
	AdjudicateObjection commands.AdjudicateObjectionUseCase
	CreateReport        commands.CreateReportUseCase
	GetReport           queries.GetReportUseCase
	ListRoundVotes      queries.ListRoundVotesUseCase
	Logger              *slog.Logger
}

// CastConsensusVoteHandler godoc
// @Summary Cast a consensus vote on a quarterly report
// @Description The first vote without an active round opens the next round and moves the report into IN_CONSENSUS. OBJETAR requires a justification of at least 10 characters.
// @Tags consensus
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param body body httptransport.CastConsensusVoteRequest true "Vote"
// @Success 200 {object} httptransport.ConsensusVoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /votes [post]
func (h Handler) CastConsensusVoteHandler(
	ctx context.Context,
	actor ports.Actor,
	req httptransport.CastConsensusVoteRequest,
) (httptransport.ConsensusVoteResponse, error) {
	result, err := h.CastVote.Execute(ctx, commands.CastConsensusVoteCommand{
		UserID:   actor.UserID,
		ReportID: req.ReportID,
		VoteType: entities.ConsensusVoteType(req.VoteType),
		Comment:  req.Comment,
	})
	if err != nil {
		return httptransport.ConsensusVoteResponse{}, err
	}
	return mapVote(ports.VoteView{Vote: result.Vote, Objection: result.Objection}), nil
}

// UpdateConsensusStatusHandler godoc
// @Summary Move a report to CONSENSED or REJECTED
// @Description CONSENSED closes the active round and is blocked while VALIDA objections remain in it.
// @Tags consensus
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param reportId path string true "Report id"
// @Param body body httptransport.UpdateConsensusStatusRequest true "Target status"
// @Success 200 {object} httptransport.UpdateConsensusStatusResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /reports/{reportId}/consensus-status [put]
func (h Handler) UpdateConsensusStatusHandler(
	ctx context.Context,
	actor ports.Actor,
	reportID string,
	req httptransport.UpdateConsensusStatusRequest,
) (httptransport.UpdateConsensusStatusResponse, error) {
	status, err := h.UpdateStatus.Execute(ctx, actor, reportID, req.ConsensusStatus)
	if err != nil {
		return httptransport.UpdateConsensusStatusResponse{}, err
	}
	return httptransport.UpdateConsensusStatusResponse{
		Success:         true,
		ConsensusStatus: string(status),
	}, nil
}

// AdjudicateObjectionHandler godoc
// @Summary Adjudicate an objection as VALIDA or INVALIDA
// @Tags consensus
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param objectionId path string true "Objection id"
// @Param body body httptransport.AdjudicateObjectionRequest true "Ruling"
// @Success 200 {object} httptransport.ObjectionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /objections/{objectionId}/status [put]
func (h Handler) AdjudicateObjectionHandler(
	ctx context.Context,
	actor ports.Actor,
	objectionID string,
	req httptransport.AdjudicateObjectionRequest,
) (httptransport.ObjectionResponse, error) {
	objection, err := h.AdjudicateObjection.Execute(ctx, actor, objectionID, req.Status)
	if err != nil {
		return httptransport.ObjectionResponse{}, err
	}
	return mapObjection(objection), nil
}

// CreateReportHandler godoc
// @Summary Register a quarterly report
// @Tags consensus
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param body body httptransport.CreateReportRequest true "Report"
// @Success 201 {object} httptransport.ReportResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /reports [post]
func (h Handler) CreateReportHandler(
	ctx context.Context,
	actor ports.Actor,
	req httptransport.CreateReportRequest,
) (httptransport.ReportResponse, error) {
	budget := make([]entities.BudgetItem, 0, len(req.BudgetItems))
	for _, item := range req.BudgetItems {
		budget = append(budget, entities.BudgetItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	report, err := h.CreateReport.Execute(ctx, actor, commands.CreateReportCommand{
		WorkGroupID:  req.WorkGroupID,
		Year:         req.Year,
		Quarter:      req.Quarter,
		Participants: req.Participants,
		BudgetItems:  budget,
	})
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	return mapReport(report), nil
}

// GetReportHandler godoc
// @Summary Get a report with rounds, votes and objections
// @Tags consensus
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param reportId path string true "Report id"
// @Success 200 {object} httptransport.ReportResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /reports/{reportId} [get]
func (h Handler) GetReportHandler(ctx context.Context, reportID string) (httptransport.ReportResponse, error) {
	view, err := h.GetReport.Execute(ctx, reportID)
	if err != nil {
		return httptransport.ReportResponse{}, err
	}
	resp := mapReport(view.Report)
	resp.Rounds = make([]httptransport.VotingRoundResponse, 0, len(view.Rounds))
	for _, round := range view.Rounds {
		roundResp := httptransport.VotingRoundResponse{
			ID:          round.Round.RoundID,
			ReportID:    round.Round.ReportID,
			RoundNumber: round.Round.RoundNumber,
			Status:      string(round.Round.Status),
			StartedAt:   round.Round.StartedAt,
			ClosedAt:    round.Round.ClosedAt,
			Votes:       make([]httptransport.ConsensusVoteResponse, 0, len(round.Votes)),
		}
		for _, vote := range round.Votes {
			roundResp.Votes = append(roundResp.Votes, mapVote(vote))
		}
		resp.Rounds = append(resp.Rounds, roundResp)
	}
	return resp, nil
}

// ListRoundVotesHandler godoc
// @Summary List the votes of one voting round
// @Tags consensus
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param roundId path string true "Round id"
// @Success 200 {object} httptransport.RoundVotesResponse
// @Router /rounds/{roundId}/votes [get]
func (h Handler) ListRoundVotesHandler(ctx context.Context, roundID string) (httptransport.RoundVotesResponse, error) {
	votes, err := h.ListRoundVotes.Execute(ctx, roundID)
	if err != nil {
		return httptransport.RoundVotesResponse{}, err
	}
	resp := httptransport.RoundVotesResponse{Items: make([]httptransport.ConsensusVoteResponse, 0, len(votes))}
	for _, vote := range votes {
		resp.Items = append(resp.Items, mapVote(vote))
	}
	return resp, nil
}

func mapReport(report entities.QuarterlyReport) httptransport.ReportResponse {
	budget := make([]httptransport.BudgetItemPayload, 0, len(report.BudgetItems))
	for _, item := range report.BudgetItems {
		budget = append(budget, httptransport.BudgetItemPayload{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	participants := report.Participants
	if participants == nil {
		participants = []string{}
	}
	return httptransport.ReportResponse{
		ID:              report.ReportID,
		WorkGroupID:     report.WorkGroupID,
		Year:            report.Year,
		Quarter:         report.Quarter,
		ConsensusStatus: string(report.ConsensusStatus),
		Participants:    participants,
		BudgetItems:     budget,
		CreatedAt:       report.CreatedAt,
		UpdatedAt:       report.UpdatedAt,
	}
}

func mapVote(view ports.VoteView) httptransport.ConsensusVoteResponse {
	resp := httptransport.ConsensusVoteResponse{
		ID:        view.Vote.VoteID,
		RoundID:   view.Vote.RoundID,
		UserID:    view.Vote.UserID,
		VoteType:  string(view.Vote.VoteType),
		Comment:   view.Vote.Comment,
		CreatedAt: view.Vote.CreatedAt,
		UpdatedAt: view.Vote.UpdatedAt,
	}
	if view.Objection != nil {
		objection := mapObjection(*view.Objection)
		resp.Objection = &objection
	}
	return resp
}

func mapObjection(objection entities.Objection) httptransport.ObjectionResponse {
	return httptransport.ObjectionResponse{
		ID:        objection.ObjectionID,
		VoteID:    objection.VoteID,
		Status:    string(objection.Status),
		CreatedAt: objection.CreatedAt,
		UpdatedAt: objection.UpdatedAt,
	}
}
