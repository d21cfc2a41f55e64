package ports

import (
	"context"
	"time"

	"agora/contexts/identity-access/directory-service/domain/entities"
)

type UserRepository interface {
	GetUser(ctx context.Context, userID string) (entities.User, error)
	SaveUser(ctx context.Context, user entities.User) error
	ListMembershipsByUser(ctx context.Context, userID string) ([]entities.WorkGroupMembership, error)
	ListMembershipsByWorkGroup(ctx context.Context, workGroupID string) ([]entities.WorkGroupMembership, error)
}

type Clock interface {
	Now() time.Time
}
