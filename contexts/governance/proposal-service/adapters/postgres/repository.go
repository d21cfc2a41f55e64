package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/governance/proposal-service/domain/entities"
	domainerrors "agora/contexts/governance/proposal-service/domain/errors"
	"agora/contexts/governance/proposal-service/ports"
	platformdb "agora/internal/platform/db"

	"github.com/jackc/pgx/v5/pgconn"
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

func (r *Repository) conn(ctx context.Context) *gorm.DB {
	return platformdb.Conn(ctx, r.db)
}

func (r *Repository) GetProposal(ctx context.Context, proposalID string) (entities.Proposal, error) {
	proposalID = strings.TrimSpace(proposalID)
	var row proposalModel
	err := r.conn(ctx).
		Where("id = ?", proposalID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("proposal_repo_get_failed", err, "proposal_id", proposalID)
	}

	var links []workGroupLinkModel
	if err := r.conn(ctx).
		Where("proposal_id = ?", proposalID).
		Order("work_group_id ASC").
		Find(&links).Error; err != nil {
		return entities.Proposal{}, r.logError("proposal_repo_get_links_failed", err, "proposal_id", proposalID)
	}
	var budget []budgetItemModel
	if err := r.conn(ctx).
		Where("proposal_id = ?", proposalID).
		Order("position ASC").
		Find(&budget).Error; err != nil {
		return entities.Proposal{}, r.logError("proposal_repo_get_budget_failed", err, "proposal_id", proposalID)
	}
	return row.toEntity(links, budget), nil
}

// SaveProposal upserts the proposal row and replaces its workgroup links and
// budget items. Callers wrap it in a transaction when atomicity matters.
func (r *Repository) SaveProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":          row.Title,
			"description":    row.Description,
			"status":         row.Status,
			"expires_at":     row.ExpiresAt,
			"positive_votes": row.PositiveVotes,
			"negative_votes": row.NegativeVotes,
			"abstain_votes":  row.AbstainVotes,
			"updated_at":     row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("proposal_repo_save_failed", create.Error, "proposal_id", row.ID)
	}

	if err := r.conn(ctx).
		Where("proposal_id = ?", row.ID).
		Delete(&workGroupLinkModel{}).Error; err != nil {
		return r.logError("proposal_repo_replace_links_failed", err, "proposal_id", row.ID)
	}
	for _, workGroupID := range proposal.WorkGroupIDs {
		link := workGroupLinkModel{ProposalID: row.ID, WorkGroupID: strings.TrimSpace(workGroupID)}
		if err := r.conn(ctx).Create(&link).Error; err != nil {
			return r.logError("proposal_repo_save_link_failed", err,
				"proposal_id", row.ID,
				"work_group_id", link.WorkGroupID,
			)
		}
	}

	if err := r.conn(ctx).
		Where("proposal_id = ?", row.ID).
		Delete(&budgetItemModel{}).Error; err != nil {
		return r.logError("proposal_repo_replace_budget_failed", err, "proposal_id", row.ID)
	}
	for position, item := range proposal.BudgetItems {
		budgetRow := budgetItemModel{
			ProposalID:  row.ID,
			Position:    position,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		}
		if err := r.conn(ctx).Create(&budgetRow).Error; err != nil {
			return r.logError("proposal_repo_save_budget_failed", err, "proposal_id", row.ID)
		}
	}
	return nil
}

func (r *Repository) SaveProposalStatus(
	ctx context.Context,
	proposalID string,
	status entities.ProposalStatus,
	updatedAt time.Time,
) error {
	result := r.conn(ctx).
		Model(&proposalModel{}).
		Where("id = ?", strings.TrimSpace(proposalID)).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("proposal_repo_save_status_failed", result.Error,
			"proposal_id", strings.TrimSpace(proposalID),
			"status", string(status),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return nil
}

func (r *Repository) ListProposals(ctx context.Context, status *entities.ProposalStatus) ([]entities.Proposal, error) {
	tx := r.conn(ctx).Model(&proposalModel{})
	if status != nil {
		tx = tx.Where("status = ?", string(*status))
	}
	var rows []proposalModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, r.logError("proposal_repo_list_failed", err)
	}
	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity(nil, nil))
	}
	return items, nil
}

func (r *Repository) DeleteProposalCascade(ctx context.Context, proposalID string) error {
	proposalID = strings.TrimSpace(proposalID)
	for _, target := range []any{&voteModel{}, &commentModel{}, &workGroupLinkModel{}, &budgetItemModel{}} {
		if err := r.conn(ctx).
			Where("proposal_id = ?", proposalID).
			Delete(target).Error; err != nil {
			return r.logError("proposal_repo_cascade_delete_failed", err, "proposal_id", proposalID)
		}
	}
	result := r.conn(ctx).
		Where("id = ?", proposalID).
		Delete(&proposalModel{})
	if result.Error != nil {
		return r.logError("proposal_repo_delete_failed", result.Error, "proposal_id", proposalID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return nil
}

func (r *Repository) AdjustVoteCounters(
	ctx context.Context,
	proposalID string,
	positive, negative, abstain int,
	updatedAt time.Time,
) error {
	result := r.conn(ctx).
		Model(&proposalModel{}).
		Where("id = ?", strings.TrimSpace(proposalID)).
		Updates(map[string]any{
			"positive_votes": gorm.Expr("positive_votes + ?", positive),
			"negative_votes": gorm.Expr("negative_votes + ?", negative),
			"abstain_votes":  gorm.Expr("abstain_votes + ?", abstain),
			"updated_at":     updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("proposal_repo_adjust_counters_failed", result.Error,
			"proposal_id", strings.TrimSpace(proposalID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrProposalNotFound
	}
	return nil
}

func (r *Repository) GetVoteByIdentity(ctx context.Context, proposalID string, userID string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.conn(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("proposal_repo_get_vote_by_identity_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"vote_type":  row.VoteType,
			"comment":    row.Comment,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrVoteConflict
		}
		return r.logError("proposal_repo_save_vote_failed", create.Error,
			"vote_id", row.ID,
			"proposal_id", row.ProposalID,
			"user_id", row.UserID,
		)
	}
	return nil
}

func (r *Repository) ListVotesByProposal(ctx context.Context, proposalID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.conn(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("proposal_repo_list_votes_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) UpsertMainComment(ctx context.Context, comment entities.Comment) error {
	var existing commentModel
	err := r.conn(ctx).
		Where("proposal_id = ?", strings.TrimSpace(comment.ProposalID)).
		Where("user_id = ?", strings.TrimSpace(comment.UserID)).
		Where("main = ?", true).
		First(&existing).
		Error
	switch {
	case err == nil:
		result := r.conn(ctx).
			Model(&commentModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"content":    strings.TrimSpace(comment.Content),
				"updated_at": comment.UpdatedAt.UTC(),
			})
		if result.Error != nil {
			return r.logError("proposal_repo_update_main_comment_failed", result.Error, "comment_id", existing.ID)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := commentModelFromEntity(comment)
		if err := r.conn(ctx).Create(&row).Error; err != nil {
			return r.logError("proposal_repo_create_main_comment_failed", err, "comment_id", row.ID)
		}
		return nil
	default:
		return r.logError("proposal_repo_get_main_comment_failed", err,
			"proposal_id", strings.TrimSpace(comment.ProposalID),
			"user_id", strings.TrimSpace(comment.UserID),
		)
	}
}

func (r *Repository) ListCommentsByProposal(ctx context.Context, proposalID string) ([]entities.Comment, error) {
	var rows []commentModel
	if err := r.conn(ctx).
		Where("proposal_id = ?", strings.TrimSpace(proposalID)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("proposal_repo_list_comments_failed", err,
			"proposal_id", strings.TrimSpace(proposalID),
		)
	}
	items := make([]entities.Comment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+6)
	fields = append(fields,
		"event", event,
		"module", "governance/proposal-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("proposal repository operation failed", fields...)
	return err
}

type proposalModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Title         string    `gorm:"column:title"`
	Description   string    `gorm:"column:description"`
	Status        string    `gorm:"column:status"`
	AuthorID      string    `gorm:"column:author_id"`
	ExpiresAt     time.Time `gorm:"column:expires_at"`
	PositiveVotes int       `gorm:"column:positive_votes"`
	NegativeVotes int       `gorm:"column:negative_votes"`
	AbstainVotes  int       `gorm:"column:abstain_votes"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string {
	return "proposals"
}

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	row := proposalModel{
		ID:            strings.TrimSpace(proposal.ProposalID),
		Title:         strings.TrimSpace(proposal.Title),
		Description:   proposal.Description,
		Status:        string(proposal.Status),
		AuthorID:      strings.TrimSpace(proposal.AuthorID),
		ExpiresAt:     proposal.ExpiresAt.UTC(),
		PositiveVotes: proposal.PositiveVotes,
		NegativeVotes: proposal.NegativeVotes,
		AbstainVotes:  proposal.AbstainVotes,
		CreatedAt:     proposal.CreatedAt.UTC(),
		UpdatedAt:     proposal.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m proposalModel) toEntity(links []workGroupLinkModel, budget []budgetItemModel) entities.Proposal {
	workGroupIDs := make([]string, 0, len(links))
	for _, link := range links {
		workGroupIDs = append(workGroupIDs, link.WorkGroupID)
	}
	budgetItems := make([]entities.BudgetItem, 0, len(budget))
	for _, item := range budget {
		budgetItems = append(budgetItems, entities.BudgetItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	return entities.Proposal{
		ProposalID:    m.ID,
		Title:         m.Title,
		Description:   m.Description,
		Status:        entities.ProposalStatus(m.Status),
		AuthorID:      m.AuthorID,
		ExpiresAt:     m.ExpiresAt.UTC(),
		PositiveVotes: m.PositiveVotes,
		NegativeVotes: m.NegativeVotes,
		AbstainVotes:  m.AbstainVotes,
		WorkGroupIDs:  workGroupIDs,
		BudgetItems:   budgetItems,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type workGroupLinkModel struct {
	ProposalID  string `gorm:"column:proposal_id;primaryKey"`
	WorkGroupID string `gorm:"column:work_group_id;primaryKey"`
}

func (workGroupLinkModel) TableName() string {
	return "proposal_work_groups"
}

type budgetItemModel struct {
	ProposalID  string  `gorm:"column:proposal_id;primaryKey"`
	Position    int     `gorm:"column:position;primaryKey"`
	Description string  `gorm:"column:description"`
	Quantity    int     `gorm:"column:quantity"`
	UnitPrice   float64 `gorm:"column:unit_price"`
	Total       float64 `gorm:"column:total"`
}

func (budgetItemModel) TableName() string {
	return "proposal_budget_items"
}

type voteModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ProposalID string    `gorm:"column:proposal_id"`
	UserID     string    `gorm:"column:user_id"`
	VoteType   string    `gorm:"column:vote_type"`
	Comment    string    `gorm:"column:comment"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "proposal_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:         strings.TrimSpace(vote.VoteID),
		ProposalID: strings.TrimSpace(vote.ProposalID),
		UserID:     strings.TrimSpace(vote.UserID),
		VoteType:   string(vote.VoteType),
		Comment:    vote.Comment,
		CreatedAt:  vote.CreatedAt.UTC(),
		UpdatedAt:  vote.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:     m.ID,
		ProposalID: m.ProposalID,
		UserID:     m.UserID,
		VoteType:   entities.VoteType(m.VoteType),
		Comment:    m.Comment,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

type commentModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ProposalID string    `gorm:"column:proposal_id"`
	UserID     string    `gorm:"column:user_id"`
	Content    string    `gorm:"column:content"`
	Main       bool      `gorm:"column:main"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (commentModel) TableName() string {
	return "proposal_comments"
}

func commentModelFromEntity(comment entities.Comment) commentModel {
	row := commentModel{
		ID:         strings.TrimSpace(comment.CommentID),
		ProposalID: strings.TrimSpace(comment.ProposalID),
		UserID:     strings.TrimSpace(comment.UserID),
		Content:    strings.TrimSpace(comment.Content),
		Main:       comment.Main,
		CreatedAt:  comment.CreatedAt.UTC(),
		UpdatedAt:  comment.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m commentModel) toEntity() entities.Comment {
	return entities.Comment{
		CommentID:  m.ID,
		ProposalID: m.ProposalID,
		UserID:     m.UserID,
		Content:    m.Content,
		Main:       m.Main,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ProposalRepository = (*Repository)(nil)
