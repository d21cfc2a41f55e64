package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	directoryerrors "agora/contexts/identity-access/directory-service/domain/errors"
	directoryhttp "agora/contexts/identity-access/directory-service/transport/http"
)

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	auth, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req directoryhttp.ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	resp, err := s.directory.Handler.ChangeRoleHandler(r.Context(), auth, r.PathValue("user_id"), req)
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWorkGroupMembers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authenticate(w, r); !ok {
		return
	}
	resp, err := s.directory.Handler.WorkGroupMembersHandler(r.Context(), r.PathValue("work_group_id"))
	if err != nil {
		writeDirectoryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDirectoryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directoryerrors.ErrUnknownUser):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, directoryerrors.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, directoryerrors.ErrUserNotFound),
		errors.Is(err, directoryerrors.ErrNotFoundGroup):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, directoryerrors.ErrInvalidRole),
		errors.Is(err, directoryerrors.ErrInvalidInput),
		errors.Is(err, directoryerrors.ErrMemberExists):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
