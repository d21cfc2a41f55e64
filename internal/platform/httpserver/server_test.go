package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	consensusengine "agora/contexts/governance/consensus-engine"
	consensushttp "agora/contexts/governance/consensus-engine/transport/http"
	proposalservice "agora/contexts/governance/proposal-service"
	proposalhttp "agora/contexts/governance/proposal-service/transport/http"
	directoryservice "agora/contexts/identity-access/directory-service"
	directoryentities "agora/contexts/identity-access/directory-service/domain/entities"
)

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := directoryservice.NewInMemoryModule([]directoryentities.User{
		{UserID: "user-a", Username: "ana", Role: directoryentities.RoleUser},
		{UserID: "user-b", Username: "bruno", Role: directoryentities.RoleUser},
		{UserID: "user-c", Username: "carla", Role: directoryentities.RoleUser},
		{UserID: "admin-1", Username: "diego", Role: directoryentities.RoleAdmin},
		{UserID: "root-1", Username: "eva", Role: directoryentities.RoleSuperAdmin},
		{UserID: "wg-admin", Username: "fabian", Role: directoryentities.RoleUser},
	}, logger)
	directory.Store.SetMembership(directoryentities.WorkGroupMembership{
		WorkGroupID: "wg-1",
		UserID:      "wg-admin",
		Role:        directoryentities.RoleAdmin,
	})
	proposals := proposalservice.NewInMemoryModule(nil, logger)
	consensus := consensusengine.NewInMemoryModule(nil, logger)
	return New(directory, proposals, consensus, logger, ":0")
}

func doJSON(t *testing.T, server *Server, method, path, userID string, body any) (*httptest.ResponseRecorder, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr, rr.Body.Bytes()
}

func TestRoutesRequireKnownIdentity(t *testing.T) {
	server := newTestServer()

	rr, _ := doJSON(t, server, http.MethodGet, "/proposals", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rr.Code)
	}
	rr, _ = doJSON(t, server, http.MethodGet, "/proposals", "ghost", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown identity, got %d", rr.Code)
	}
}

func TestProposalVotingEndToEnd(t *testing.T) {
	server := newTestServer()
	expiry := time.Now().UTC().AddDate(0, 0, 7)

	rr, body := doJSON(t, server, http.MethodPost, "/proposals", "user-a", proposalhttp.CreateProposalRequest{
		Title:       "Community node budget",
		Description: "Fund a validator node for two quarters",
		ExpiresAt:   expiry,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expected 201, got %d body=%s", rr.Code, body)
	}
	var created proposalhttp.ProposalResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode create response failed: %v", err)
	}
	votePath := fmt.Sprintf("/proposals/%s/vote", created.ID)

	rr, body = doJSON(t, server, http.MethodPost, votePath, "user-a", proposalhttp.CastVoteRequest{VoteType: "POSITIVE"})
	if rr.Code != http.StatusOK {
		t.Fatalf("vote expected 200, got %d body=%s", rr.Code, body)
	}
	var voteResp proposalhttp.CastVoteResponse
	if err := json.Unmarshal(body, &voteResp); err != nil {
		t.Fatalf("decode vote response failed: %v", err)
	}
	if voteResp.UserVote != "POSITIVE" || voteResp.Proposal.PositiveVotes != 1 {
		t.Fatalf("expected POSITIVE with tally 1, got %+v", voteResp)
	}

	rr, body = doJSON(t, server, http.MethodPost, votePath, "user-a", proposalhttp.CastVoteRequest{VoteType: "NEGATIVE"})
	if rr.Code != http.StatusOK {
		t.Fatalf("re-vote expected 200, got %d body=%s", rr.Code, body)
	}
	if err := json.Unmarshal(body, &voteResp); err != nil {
		t.Fatalf("decode re-vote response failed: %v", err)
	}
	if voteResp.Proposal.PositiveVotes != 0 || voteResp.Proposal.NegativeVotes != 1 {
		t.Fatalf("expected tallies 0/1 after change, got %+v", voteResp.Proposal)
	}

	rr, body = doJSON(t, server, http.MethodPost, votePath, "user-b", proposalhttp.CastVoteRequest{VoteType: "POSITIVE"})
	if rr.Code != http.StatusOK {
		t.Fatalf("second voter expected 200, got %d body=%s", rr.Code, body)
	}
	if err := json.Unmarshal(body, &voteResp); err != nil {
		t.Fatalf("decode second-voter response failed: %v", err)
	}
	if voteResp.Proposal.PositiveVotes != 1 || voteResp.Proposal.NegativeVotes != 1 {
		t.Fatalf("expected tallies 1/1, got %+v", voteResp.Proposal)
	}

	rejected := "REJECTED"
	rr, body = doJSON(t, server, http.MethodPatch, "/proposals/"+created.ID, "admin-1", proposalhttp.PatchProposalRequest{Status: &rejected})
	if rr.Code != http.StatusOK {
		t.Fatalf("admin status patch expected 200, got %d body=%s", rr.Code, body)
	}

	rr, _ = doJSON(t, server, http.MethodPost, votePath, "user-c", proposalhttp.CastVoteRequest{VoteType: "POSITIVE"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("vote on rejected proposal expected 400, got %d", rr.Code)
	}

	rr, body = doJSON(t, server, http.MethodGet, "/proposals/"+created.ID, "user-a", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get expected 200, got %d", rr.Code)
	}
	var fetched proposalhttp.ProposalResponse
	if err := json.Unmarshal(body, &fetched); err != nil {
		t.Fatalf("decode get response failed: %v", err)
	}
	if fetched.PositiveVotes != 1 || fetched.NegativeVotes != 1 || fetched.AbstainVotes != 0 {
		t.Fatalf("rejected vote must not change tallies, got %+v", fetched)
	}
}

func TestProposalPatchAndDeletePermissions(t *testing.T) {
	server := newTestServer()
	expiry := time.Now().UTC().AddDate(0, 0, 7)

	_, body := doJSON(t, server, http.MethodPost, "/proposals", "user-a", proposalhttp.CreateProposalRequest{
		Title:       "Signage refresh",
		Description: "Replace the venue signage",
		ExpiresAt:   expiry,
	})
	var created proposalhttp.ProposalResponse
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode create response failed: %v", err)
	}

	approved := "APPROVED"
	rr, _ := doJSON(t, server, http.MethodPatch, "/proposals/"+created.ID, "user-a", proposalhttp.PatchProposalRequest{Status: &approved})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("author status patch expected 403, got %d", rr.Code)
	}

	title := "Signage refresh v2"
	rr, _ = doJSON(t, server, http.MethodPatch, "/proposals/"+created.ID, "user-b", proposalhttp.PatchProposalRequest{Title: &title})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-author content patch expected 403, got %d", rr.Code)
	}

	rr, _ = doJSON(t, server, http.MethodDelete, "/proposals/"+created.ID, "user-a", nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-admin delete expected 403, got %d", rr.Code)
	}
	rr, body = doJSON(t, server, http.MethodDelete, "/proposals/"+created.ID, "admin-1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin delete expected 200, got %d body=%s", rr.Code, body)
	}
	rr, _ = doJSON(t, server, http.MethodGet, "/proposals/"+created.ID, "user-a", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("deleted proposal expected 404, got %d", rr.Code)
	}
}

func TestReportConsensusEndToEnd(t *testing.T) {
	server := newTestServer()

	rr, body := doJSON(t, server, http.MethodPost, "/reports", "wg-admin", consensushttp.CreateReportRequest{
		WorkGroupID: "wg-1",
		Year:        2026,
		Quarter:     1,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create report expected 201, got %d body=%s", rr.Code, body)
	}
	var report consensushttp.ReportResponse
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("decode report failed: %v", err)
	}
	if report.ConsensusStatus != "PENDING" {
		t.Fatalf("expected PENDING report, got %s", report.ConsensusStatus)
	}

	rr, _ = doJSON(t, server, http.MethodPost, "/votes", "user-a", consensushttp.CastConsensusVoteRequest{
		ReportID: report.ID,
		VoteType: "OBJETAR",
		Comment:  "too vague",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("short objection expected 400, got %d", rr.Code)
	}

	rr, body = doJSON(t, server, http.MethodPost, "/votes", "user-a", consensushttp.CastConsensusVoteRequest{
		ReportID: report.ID,
		VoteType: "OBJETAR",
		Comment:  "too vague, needs detail",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("objection expected 200, got %d body=%s", rr.Code, body)
	}
	var vote consensushttp.ConsensusVoteResponse
	if err := json.Unmarshal(body, &vote); err != nil {
		t.Fatalf("decode vote failed: %v", err)
	}
	if vote.Objection == nil || vote.Objection.Status != "PENDIENTE" {
		t.Fatalf("expected PENDIENTE objection, got %+v", vote.Objection)
	}
	if vote.User == nil || vote.User.ID != "user-a" || vote.User.Username != "ana" || vote.User.Role != "USER" {
		t.Fatalf("expected embedded voter relation, got %+v", vote.User)
	}

	rr, body = doJSON(t, server, http.MethodGet, "/reports/"+report.ID, "user-a", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get report expected 200, got %d", rr.Code)
	}
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("decode hydrated report failed: %v", err)
	}
	if report.ConsensusStatus != "IN_CONSENSUS" {
		t.Fatalf("expected IN_CONSENSUS after first vote, got %s", report.ConsensusStatus)
	}
	if len(report.Rounds) != 1 || report.Rounds[0].RoundNumber != 1 || report.Rounds[0].Status != "ACTIVA" {
		t.Fatalf("expected round #1 ACTIVA, got %+v", report.Rounds)
	}

	objectionPath := fmt.Sprintf("/objections/%s/status", vote.Objection.ID)
	rr, _ = doJSON(t, server, http.MethodPut, objectionPath, "user-b", consensushttp.AdjudicateObjectionRequest{Status: "VALIDA"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("plain user adjudication expected 403, got %d", rr.Code)
	}
	rr, _ = doJSON(t, server, http.MethodPut, objectionPath, "wg-admin", consensushttp.AdjudicateObjectionRequest{Status: "VALIDA"})
	if rr.Code != http.StatusOK {
		t.Fatalf("adjudication expected 200, got %d", rr.Code)
	}

	statusPath := fmt.Sprintf("/reports/%s/consensus-status", report.ID)
	rr, _ = doJSON(t, server, http.MethodPut, statusPath, "wg-admin", consensushttp.UpdateConsensusStatusRequest{ConsensusStatus: "CONSENSED"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("consensed with valid objection expected 400, got %d", rr.Code)
	}

	rr, _ = doJSON(t, server, http.MethodPut, objectionPath, "wg-admin", consensushttp.AdjudicateObjectionRequest{Status: "INVALIDA"})
	if rr.Code != http.StatusOK {
		t.Fatalf("re-adjudication expected 200, got %d", rr.Code)
	}
	rr, body = doJSON(t, server, http.MethodPut, statusPath, "wg-admin", consensushttp.UpdateConsensusStatusRequest{ConsensusStatus: "CONSENSED"})
	if rr.Code != http.StatusOK {
		t.Fatalf("consensed expected 200, got %d body=%s", rr.Code, body)
	}
	var statusResp consensushttp.UpdateConsensusStatusResponse
	if err := json.Unmarshal(body, &statusResp); err != nil {
		t.Fatalf("decode status response failed: %v", err)
	}
	if !statusResp.Success || statusResp.ConsensusStatus != "CONSENSED" {
		t.Fatalf("unexpected status response %+v", statusResp)
	}

	rr, _ = doJSON(t, server, http.MethodPost, "/votes", "user-b", consensushttp.CastConsensusVoteRequest{
		ReportID: report.ID,
		VoteType: "CONSENTIR",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("vote on consensed report expected 400, got %d", rr.Code)
	}

	rr, body = doJSON(t, server, http.MethodGet, "/reports/"+report.ID, "user-a", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("final get expected 200, got %d", rr.Code)
	}
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("decode final report failed: %v", err)
	}
	if report.Rounds[0].Status != "CERRADA" {
		t.Fatalf("expected round CERRADA after consensed, got %+v", report.Rounds[0])
	}
}

func TestChangeRoleRestrictedToSuperAdmin(t *testing.T) {
	server := newTestServer()

	rr, _ := doJSON(t, server, http.MethodPut, "/users/user-a/role", "admin-1", map[string]string{"role": "CORE_CONTRIBUTOR"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("ADMIN role change expected 403, got %d", rr.Code)
	}
	rr, body := doJSON(t, server, http.MethodPut, "/users/user-a/role", "root-1", map[string]string{"role": "CORE_CONTRIBUTOR"})
	if rr.Code != http.StatusOK {
		t.Fatalf("SUPER_ADMIN role change expected 200, got %d body=%s", rr.Code, body)
	}

	rr, body = doJSON(t, server, http.MethodGet, "/workgroups/wg-1/members", "user-a", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("members expected 200, got %d body=%s", rr.Code, body)
	}
}
