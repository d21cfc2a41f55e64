package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/identity-access/directory-service/domain/entities"
	domainerrors "agora/contexts/identity-access/directory-service/domain/errors"
	"agora/contexts/identity-access/directory-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("directory_repo_get_user_failed", err, "user_id", strings.TrimSpace(userID))
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveUser(ctx context.Context, user entities.User) error {
	row := userModelFromEntity(user)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"username":   row.Username,
			"role":       row.Role,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("directory_repo_save_user_failed", create.Error, "user_id", row.ID)
	}
	return nil
}

func (r *Repository) ListMembershipsByUser(ctx context.Context, userID string) ([]entities.WorkGroupMembership, error) {
	var rows []membershipModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("work_group_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("directory_repo_list_memberships_by_user_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return toMembershipEntities(rows), nil
}

func (r *Repository) ListMembershipsByWorkGroup(ctx context.Context, workGroupID string) ([]entities.WorkGroupMembership, error) {
	var rows []membershipModel
	if err := r.db.WithContext(ctx).
		Where("work_group_id = ?", strings.TrimSpace(workGroupID)).
		Order("user_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("directory_repo_list_memberships_by_workgroup_failed", err,
			"work_group_id", strings.TrimSpace(workGroupID),
		)
	}
	return toMembershipEntities(rows), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+6)
	fields = append(fields,
		"event", event,
		"module", "identity-access/directory-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("directory repository operation failed", fields...)
	return err
}

type userModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Username  string    `gorm:"column:username"`
	Role      string    `gorm:"column:role"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user entities.User) userModel {
	row := userModel{
		ID:        strings.TrimSpace(user.UserID),
		Username:  strings.TrimSpace(user.Username),
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:    m.ID,
		Username:  m.Username,
		Role:      entities.Role(m.Role),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type membershipModel struct {
	WorkGroupID string `gorm:"column:work_group_id;primaryKey"`
	UserID      string `gorm:"column:user_id;primaryKey"`
	Role        string `gorm:"column:role"`
}

func (membershipModel) TableName() string {
	return "work_group_members"
}

func toMembershipEntities(rows []membershipModel) []entities.WorkGroupMembership {
	items := make([]entities.WorkGroupMembership, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.WorkGroupMembership{
			WorkGroupID: row.WorkGroupID,
			UserID:      row.UserID,
			Role:        entities.Role(row.Role),
		})
	}
	return items
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.UserRepository = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
