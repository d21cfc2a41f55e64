package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	consensuserrors "agora/contexts/governance/consensus-engine/domain/errors"
	consensushttp "agora/contexts/governance/consensus-engine/transport/http"
)

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	auth, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req consensushttp.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.consensus.Handler.CreateReportHandler(r.Context(), consensusActor(auth), req)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.consensus.Handler.GetReportHandler(r.Context(), r.PathValue("report_id"))
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRoundVotes(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.consensus.Handler.ListRoundVotesHandler(r.Context(), r.PathValue("round_id"))
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastConsensusVote(w http.ResponseWriter, r *http.Request) {
	auth, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req consensushttp.CastConsensusVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.consensus.Handler.CastConsensusVoteHandler(r.Context(), consensusActor(auth), req)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	// The cast is always the caller's own vote, so the already resolved
	// identity doubles as the vote's user relation.
	resp.User = &consensushttp.VoterResponse{
		ID:       auth.UserID,
		Username: auth.Username,
		Role:     string(auth.Role),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateConsensusStatus(w http.ResponseWriter, r *http.Request) {
	auth, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req consensushttp.UpdateConsensusStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.consensus.Handler.UpdateConsensusStatusHandler(r.Context(), consensusActor(auth), r.PathValue("report_id"), req)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdjudicateObjection(w http.ResponseWriter, r *http.Request) {
	auth, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req consensushttp.AdjudicateObjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.consensus.Handler.AdjudicateObjectionHandler(r.Context(), consensusActor(auth), r.PathValue("objection_id"), req)
	if err != nil {
		writeConsensusDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeConsensusDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, consensuserrors.ErrReportNotFound),
		errors.Is(err, consensuserrors.ErrObjectionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, consensuserrors.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, consensuserrors.ErrInvalidReportInput),
		errors.Is(err, consensuserrors.ErrReportExists),
		errors.Is(err, consensuserrors.ErrInvalidConsensusVote),
		errors.Is(err, consensuserrors.ErrObjectionCommentTooShort),
		errors.Is(err, consensuserrors.ErrInvalidConsensusStatus),
		errors.Is(err, consensuserrors.ErrInvalidObjectionStatus),
		errors.Is(err, consensuserrors.ErrReportConsensed),
		errors.Is(err, consensuserrors.ErrValidObjectionsPresent),
		errors.Is(err, consensuserrors.ErrVoteConflict):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
