package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/identity-access/directory-service/domain/entities"
	domainerrors "agora/contexts/identity-access/directory-service/domain/errors"
	"agora/contexts/identity-access/directory-service/ports"
)

type Service struct {
	Users  ports.UserRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

// Resolve loads the caller's user record and workgroup memberships into an
// AuthContext. Callers treat ErrUnknownUser as an unauthenticated request.
func (s Service) Resolve(ctx context.Context, userID string) (entities.AuthContext, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.AuthContext{}, domainerrors.ErrUnknownUser
	}
	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return entities.AuthContext{}, domainerrors.ErrUnknownUser
		}
		return entities.AuthContext{}, err
	}
	memberships, err := s.Users.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return entities.AuthContext{}, err
	}
	roles := make(map[string]entities.Role, len(memberships))
	for _, membership := range memberships {
		roles[membership.WorkGroupID] = membership.Role
	}
	return entities.AuthContext{
		UserID:         user.UserID,
		Username:       user.Username,
		Role:           user.Role,
		WorkGroupRoles: roles,
	}, nil
}

// ChangeRole reassigns a user's global role. Restricted to SUPER_ADMIN.
func (s Service) ChangeRole(
	ctx context.Context,
	actor entities.AuthContext,
	targetUserID string,
	role entities.Role,
) (entities.User, error) {
	logger := s.logger()
	if actor.Role != entities.RoleSuperAdmin {
		logger.Warn("role change denied",
			"event", "directory_role_change_denied",
			"module", "identity-access/directory-service",
			"layer", "application",
			"actor_id", actor.UserID,
			"target_id", strings.TrimSpace(targetUserID),
		)
		return entities.User{}, domainerrors.ErrForbidden
	}
	if _, ok := entities.ParseRole(string(role)); !ok {
		return entities.User{}, domainerrors.ErrInvalidRole
	}
	user, err := s.Users.GetUser(ctx, strings.TrimSpace(targetUserID))
	if err != nil {
		return entities.User{}, err
	}
	user.Role = role
	user.UpdatedAt = s.now()
	if err := s.Users.SaveUser(ctx, user); err != nil {
		return entities.User{}, err
	}
	logger.Info("role changed",
		"event", "directory_role_changed",
		"module", "identity-access/directory-service",
		"layer", "application",
		"actor_id", actor.UserID,
		"target_id", user.UserID,
		"role", string(role),
	)
	return user, nil
}

// ListWorkGroupMembers returns the memberships of one workgroup.
func (s Service) ListWorkGroupMembers(ctx context.Context, workGroupID string) ([]entities.WorkGroupMembership, error) {
	if strings.TrimSpace(workGroupID) == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	return s.Users.ListMembershipsByWorkGroup(ctx, strings.TrimSpace(workGroupID))
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
