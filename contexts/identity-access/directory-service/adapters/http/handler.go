package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/identity-access/directory-service/application"
	"agora/contexts/identity-access/directory-service/domain/entities"
	domainerrors "agora/contexts/identity-access/directory-service/domain/errors"
	httptransport "agora/contexts/identity-access/directory-service/transport/http"
)

type Handler struct {
	Directory application.Service
	Logger    *slog.Logger
}

// ResolveAuthContext resolves a trusted upstream identity into an AuthContext.
func (h Handler) ResolveAuthContext(ctx context.Context, userID string) (entities.AuthContext, error) {
	return h.Directory.Resolve(ctx, userID)
}

// ChangeRoleHandler godoc
// @Summary Change a user's global role
// @Tags directory
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param user_id path string true "Target user id"
// @Param body body httptransport.ChangeRoleRequest true "New role"
// @Success 200 {object} httptransport.UserResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /users/{user_id}/role [put]
func (h Handler) ChangeRoleHandler(
	ctx context.Context,
	actor entities.AuthContext,
	targetUserID string,
	req httptransport.ChangeRoleRequest,
) (httptransport.UserResponse, error) {
	role, ok := entities.ParseRole(req.Role)
	if !ok {
		return httptransport.UserResponse{}, domainerrors.ErrInvalidRole
	}
	user, err := h.Directory.ChangeRole(ctx, actor, targetUserID, role)
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return httptransport.UserResponse{
		ID:       user.UserID,
		Username: user.Username,
		Role:     string(user.Role),
	}, nil
}

// WorkGroupMembersHandler godoc
// @Summary List workgroup members
// @Tags directory
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param work_group_id path string true "Workgroup id"
// @Success 200 {object} httptransport.WorkGroupMembersResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Router /workgroups/{work_group_id}/members [get]
func (h Handler) WorkGroupMembersHandler(ctx context.Context, workGroupID string) (httptransport.WorkGroupMembersResponse, error) {
	memberships, err := h.Directory.ListWorkGroupMembers(ctx, workGroupID)
	if err != nil {
		return httptransport.WorkGroupMembersResponse{}, err
	}
	members := make([]httptransport.WorkGroupMemberResponse, 0, len(memberships))
	for _, membership := range memberships {
		members = append(members, httptransport.WorkGroupMemberResponse{
			WorkGroupID: membership.WorkGroupID,
			UserID:      membership.UserID,
			Role:        string(membership.Role),
		})
	}
	return httptransport.WorkGroupMembersResponse{Members: members}, nil
}
