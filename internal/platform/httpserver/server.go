package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	consensusengine "agora/contexts/governance/consensus-engine"
	consensusports "agora/contexts/governance/consensus-engine/ports"
	proposalservice "agora/contexts/governance/proposal-service"
	proposalports "agora/contexts/governance/proposal-service/ports"
	directoryservice "agora/contexts/identity-access/directory-service"
	directoryentities "agora/contexts/identity-access/directory-service/domain/entities"
	directoryerrors "agora/contexts/identity-access/directory-service/domain/errors"
	directoryhttp "agora/contexts/identity-access/directory-service/transport/http"

	_ "agora/internal/platform/httpserver/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	directory directoryservice.Module
	proposals proposalservice.Module
	consensus consensusengine.Module
}

func New(
	directory directoryservice.Module,
	proposals proposalservice.Module,
	consensus consensusengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		directory: directory,
		proposals: proposals,
		consensus: consensus,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /proposals", s.handleCreateProposal)
	s.mux.HandleFunc("GET /proposals", s.handleListProposals)
	s.mux.HandleFunc("GET /proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("POST /proposals/{proposal_id}/vote", s.handleCastVote)
	s.mux.HandleFunc("PATCH /proposals/{proposal_id}", s.handlePatchProposal)
	s.mux.HandleFunc("DELETE /proposals/{proposal_id}", s.handleDeleteProposal)

	s.mux.HandleFunc("POST /reports", s.handleCreateReport)
	s.mux.HandleFunc("GET /reports/{report_id}", s.handleGetReport)
	s.mux.HandleFunc("GET /rounds/{round_id}/votes", s.handleListRoundVotes)
	s.mux.HandleFunc("POST /votes", s.handleCastConsensusVote)
	s.mux.HandleFunc("PUT /reports/{report_id}/consensus-status", s.handleUpdateConsensusStatus)
	s.mux.HandleFunc("PUT /objections/{objection_id}/status", s.handleAdjudicateObjection)

	s.mux.HandleFunc("PUT /users/{user_id}/role", s.handleChangeRole)
	s.mux.HandleFunc("GET /workgroups/{work_group_id}/members", s.handleWorkGroupMembers)
}

// authenticate resolves the X-User-Id header into an AuthContext and writes
// the 401 itself when the identity is absent or unknown.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (directoryentities.AuthContext, bool) {
	auth, err := s.directory.Handler.ResolveAuthContext(r.Context(), r.Header.Get("X-User-Id"))
	if err != nil {
		if errors.Is(err, directoryerrors.ErrUnknownUser) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return directoryentities.AuthContext{}, false
		}
		s.logger.Error("auth resolution failed",
			"event", "http_auth_resolution_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return directoryentities.AuthContext{}, false
	}
	return auth, true
}

func proposalActor(auth directoryentities.AuthContext) proposalports.Actor {
	return proposalports.Actor{
		UserID:      auth.UserID,
		GlobalAdmin: auth.CanModerateProposals(),
	}
}

func consensusActor(auth directoryentities.AuthContext) consensusports.Actor {
	return consensusports.Actor{
		UserID:          auth.UserID,
		GlobalAdmin:     auth.IsGlobalAdmin(),
		AdminWorkGroups: auth.AdminWorkGroups(),
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, directoryhttp.ErrorResponse{Error: message})
}
