package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/governance/consensus-engine/domain/entities"
	domainerrors "agora/contexts/governance/consensus-engine/domain/errors"
	"agora/contexts/governance/consensus-engine/ports"
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

func (r *Repository) GetReport(ctx context.Context, reportID string) (entities.QuarterlyReport, error) {
	reportID = strings.TrimSpace(reportID)
	var row reportModel
	err := r.conn(ctx).
		Where("id = ?", reportID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.QuarterlyReport{}, domainerrors.ErrReportNotFound
		}
		return entities.QuarterlyReport{}, r.logError("report_repo_get_failed", err, "report_id", reportID)
	}
	return r.hydrateReport(ctx, row)
}

func (r *Repository) GetReportByPeriod(
	ctx context.Context,
	workGroupID string,
	year, quarter int,
) (entities.QuarterlyReport, bool, error) {
	var row reportModel
	err := r.conn(ctx).
		Where("work_group_id = ?", strings.TrimSpace(workGroupID)).
		Where("year = ?", year).
		Where("quarter = ?", quarter).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.QuarterlyReport{}, false, nil
		}
		return entities.QuarterlyReport{}, false, r.logError("report_repo_get_by_period_failed", err,
			"work_group_id", strings.TrimSpace(workGroupID),
			"year", year,
			"quarter", quarter,
		)
	}
	report, err := r.hydrateReport(ctx, row)
	if err != nil {
		return entities.QuarterlyReport{}, false, err
	}
	return report, true, nil
}

func (r *Repository) hydrateReport(ctx context.Context, row reportModel) (entities.QuarterlyReport, error) {
	var participants []participantModel
	if err := r.conn(ctx).
		Where("report_id = ?", row.ID).
		Order("user_id ASC").
		Find(&participants).Error; err != nil {
		return entities.QuarterlyReport{}, r.logError("report_repo_get_participants_failed", err, "report_id", row.ID)
	}
	var budget []reportBudgetItemModel
	if err := r.conn(ctx).
		Where("report_id = ?", row.ID).
		Order("position ASC").
		Find(&budget).Error; err != nil {
		return entities.QuarterlyReport{}, r.logError("report_repo_get_budget_failed", err, "report_id", row.ID)
	}
	return row.toEntity(participants, budget), nil
}

// SaveReport upserts the report row and replaces its participants and budget
// items. Callers wrap it in a transaction when atomicity matters.
func (r *Repository) SaveReport(ctx context.Context, report entities.QuarterlyReport) error {
	row := reportModelFromEntity(report)
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"consensus_status": row.ConsensusStatus,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("report_repo_save_failed", create.Error, "report_id", row.ID)
	}

	if err := r.conn(ctx).
		Where("report_id = ?", row.ID).
		Delete(&participantModel{}).Error; err != nil {
		return r.logError("report_repo_replace_participants_failed", err, "report_id", row.ID)
	}
	for _, userID := range report.Participants {
		participant := participantModel{ReportID: row.ID, UserID: strings.TrimSpace(userID)}
		if err := r.conn(ctx).Create(&participant).Error; err != nil {
			return r.logError("report_repo_save_participant_failed", err,
				"report_id", row.ID,
				"user_id", participant.UserID,
			)
		}
	}

	if err := r.conn(ctx).
		Where("report_id = ?", row.ID).
		Delete(&reportBudgetItemModel{}).Error; err != nil {
		return r.logError("report_repo_replace_budget_failed", err, "report_id", row.ID)
	}
	for position, item := range report.BudgetItems {
		budgetRow := reportBudgetItemModel{
			ReportID:    row.ID,
			Position:    position,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		}
		if err := r.conn(ctx).Create(&budgetRow).Error; err != nil {
			return r.logError("report_repo_save_budget_failed", err, "report_id", row.ID)
		}
	}
	return nil
}

func (r *Repository) SaveReportStatus(
	ctx context.Context,
	reportID string,
	status entities.ConsensusStatus,
	updatedAt time.Time,
) error {
	result := r.conn(ctx).
		Model(&reportModel{}).
		Where("id = ?", strings.TrimSpace(reportID)).
		Updates(map[string]any{
			"consensus_status": string(status),
			"updated_at":       updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("report_repo_save_status_failed", result.Error,
			"report_id", strings.TrimSpace(reportID),
			"consensus_status", string(status),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrReportNotFound
	}
	return nil
}

func (r *Repository) GetActiveRound(ctx context.Context, reportID string) (entities.VotingRound, bool, error) {
	var row roundModel
	err := r.conn(ctx).
		Where("report_id = ?", strings.TrimSpace(reportID)).
		Where("status = ?", string(entities.RoundStatusActive)).
		Order("round_number DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VotingRound{}, false, nil
		}
		return entities.VotingRound{}, false, r.logError("report_repo_get_active_round_failed", err,
			"report_id", strings.TrimSpace(reportID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) MaxRoundNumber(ctx context.Context, reportID string) (int, error) {
	var max *int
	err := r.conn(ctx).
		Model(&roundModel{}).
		Where("report_id = ?", strings.TrimSpace(reportID)).
		Select("MAX(round_number)").
		Scan(&max).
		Error
	if err != nil {
		return 0, r.logError("report_repo_max_round_failed", err, "report_id", strings.TrimSpace(reportID))
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *Repository) SaveRound(ctx context.Context, round entities.VotingRound) error {
	row := roundModelFromEntity(round)
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":    row.Status,
			"closed_at": row.ClosedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			// Two first votes raced on the (report, round_number) index; the
			// loser joins the winner's round on retry.
			return domainerrors.ErrVoteConflict
		}
		return r.logError("report_repo_save_round_failed", create.Error,
			"round_id", row.ID,
			"report_id", row.ReportID,
		)
	}
	return nil
}

func (r *Repository) CloseRound(ctx context.Context, roundID string, closedAt time.Time) error {
	result := r.conn(ctx).
		Model(&roundModel{}).
		Where("id = ?", strings.TrimSpace(roundID)).
		Updates(map[string]any{
			"status":    string(entities.RoundStatusClosed),
			"closed_at": closedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("report_repo_close_round_failed", result.Error, "round_id", strings.TrimSpace(roundID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrReportNotFound
	}
	return nil
}

func (r *Repository) ListRoundsByReport(ctx context.Context, reportID string) ([]entities.VotingRound, error) {
	var rows []roundModel
	if err := r.conn(ctx).
		Where("report_id = ?", strings.TrimSpace(reportID)).
		Order("round_number DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("report_repo_list_rounds_failed", err, "report_id", strings.TrimSpace(reportID))
	}
	items := make([]entities.VotingRound, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetVoteByIdentity(ctx context.Context, roundID string, userID string) (entities.ConsensusVote, bool, error) {
	var row consensusVoteModel
	err := r.conn(ctx).
		Where("round_id = ?", strings.TrimSpace(roundID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ConsensusVote{}, false, nil
		}
		return entities.ConsensusVote{}, false, r.logError("report_repo_get_vote_by_identity_failed", err,
			"round_id", strings.TrimSpace(roundID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveVote(ctx context.Context, vote entities.ConsensusVote) error {
	row := consensusVoteModelFromEntity(vote)
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
		return r.logError("report_repo_save_vote_failed", create.Error,
			"vote_id", row.ID,
			"round_id", row.RoundID,
			"user_id", row.UserID,
		)
	}
	return nil
}

func (r *Repository) ListVotesByRound(ctx context.Context, roundID string) ([]entities.ConsensusVote, error) {
	var rows []consensusVoteModel
	if err := r.conn(ctx).
		Where("round_id = ?", strings.TrimSpace(roundID)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("report_repo_list_votes_failed", err, "round_id", strings.TrimSpace(roundID))
	}
	items := make([]entities.ConsensusVote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetObjection(ctx context.Context, objectionID string) (entities.Objection, error) {
	var row objectionModel
	err := r.conn(ctx).
		Where("id = ?", strings.TrimSpace(objectionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Objection{}, domainerrors.ErrObjectionNotFound
		}
		return entities.Objection{}, r.logError("report_repo_get_objection_failed", err,
			"objection_id", strings.TrimSpace(objectionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetObjectionByVote(ctx context.Context, voteID string) (entities.Objection, bool, error) {
	var row objectionModel
	err := r.conn(ctx).
		Where("vote_id = ?", strings.TrimSpace(voteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Objection{}, false, nil
		}
		return entities.Objection{}, false, r.logError("report_repo_get_objection_by_vote_failed", err,
			"vote_id", strings.TrimSpace(voteID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveObjection(ctx context.Context, objection entities.Objection) error {
	row := objectionModelFromEntity(objection)
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":     row.Status,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("report_repo_save_objection_failed", create.Error,
			"objection_id", row.ID,
			"vote_id", row.VoteID,
		)
	}
	return nil
}

func (r *Repository) ListObjectionsInActiveRound(
	ctx context.Context,
	reportID string,
	status entities.ObjectionStatus,
) ([]entities.Objection, error) {
	var rows []objectionModel
	err := r.conn(ctx).
		Model(&objectionModel{}).
		Joins("JOIN consensus_votes ON consensus_votes.id = objections.vote_id").
		Joins("JOIN voting_rounds ON voting_rounds.id = consensus_votes.round_id").
		Where("voting_rounds.report_id = ?", strings.TrimSpace(reportID)).
		Where("voting_rounds.status = ?", string(entities.RoundStatusActive)).
		Where("objections.status = ?", string(status)).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("report_repo_list_blocking_objections_failed", err,
			"report_id", strings.TrimSpace(reportID),
			"status", string(status),
		)
	}
	items := make([]entities.Objection, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/consensus-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("report repository operation failed", fields...)
	return err
}

type reportModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	WorkGroupID     string    `gorm:"column:work_group_id"`
	Year            int       `gorm:"column:year"`
	Quarter         int       `gorm:"column:quarter"`
	ConsensusStatus string    `gorm:"column:consensus_status"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (reportModel) TableName() string {
	return "quarterly_reports"
}

func reportModelFromEntity(report entities.QuarterlyReport) reportModel {
	row := reportModel{
		ID:              strings.TrimSpace(report.ReportID),
		WorkGroupID:     strings.TrimSpace(report.WorkGroupID),
		Year:            report.Year,
		Quarter:         report.Quarter,
		ConsensusStatus: string(report.ConsensusStatus),
		CreatedAt:       report.CreatedAt.UTC(),
		UpdatedAt:       report.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m reportModel) toEntity(participants []participantModel, budget []reportBudgetItemModel) entities.QuarterlyReport {
	userIDs := make([]string, 0, len(participants))
	for _, participant := range participants {
		userIDs = append(userIDs, participant.UserID)
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
	return entities.QuarterlyReport{
		ReportID:        m.ID,
		WorkGroupID:     m.WorkGroupID,
		Year:            m.Year,
		Quarter:         m.Quarter,
		ConsensusStatus: entities.ConsensusStatus(m.ConsensusStatus),
		Participants:    userIDs,
		BudgetItems:     budgetItems,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type participantModel struct {
	ReportID string `gorm:"column:report_id;primaryKey"`
	UserID   string `gorm:"column:user_id;primaryKey"`
}

func (participantModel) TableName() string {
	return "report_participants"
}

type reportBudgetItemModel struct {
	ReportID    string  `gorm:"column:report_id;primaryKey"`
	Position    int     `gorm:"column:position;primaryKey"`
	Description string  `gorm:"column:description"`
	Quantity    int     `gorm:"column:quantity"`
	UnitPrice   float64 `gorm:"column:unit_price"`
	Total       float64 `gorm:"column:total"`
}

func (reportBudgetItemModel) TableName() string {
	return "report_budget_items"
}

type roundModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	ReportID    string     `gorm:"column:report_id;uniqueIndex:idx_voting_rounds_report_round"`
	RoundNumber int        `gorm:"column:round_number;uniqueIndex:idx_voting_rounds_report_round"`
	Status      string     `gorm:"column:status"`
	StartedAt   time.Time  `gorm:"column:started_at"`
	ClosedAt    *time.Time `gorm:"column:closed_at"`
}

func (roundModel) TableName() string {
	return "voting_rounds"
}

func roundModelFromEntity(round entities.VotingRound) roundModel {
	row := roundModel{
		ID:          strings.TrimSpace(round.RoundID),
		ReportID:    strings.TrimSpace(round.ReportID),
		RoundNumber: round.RoundNumber,
		Status:      string(round.Status),
		StartedAt:   round.StartedAt.UTC(),
	}
	if round.ClosedAt != nil {
		closed := round.ClosedAt.UTC()
		row.ClosedAt = &closed
	}
	return row
}

func (m roundModel) toEntity() entities.VotingRound {
	round := entities.VotingRound{
		RoundID:     m.ID,
		ReportID:    m.ReportID,
		RoundNumber: m.RoundNumber,
		Status:      entities.RoundStatus(m.Status),
		StartedAt:   m.StartedAt.UTC(),
	}
	if m.ClosedAt != nil {
		closed := m.ClosedAt.UTC()
		round.ClosedAt = &closed
	}
	return round
}

type consensusVoteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	RoundID   string    `gorm:"column:round_id"`
	UserID    string    `gorm:"column:user_id"`
	VoteType  string    `gorm:"column:vote_type"`
	Comment   string    `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (consensusVoteModel) TableName() string {
	return "consensus_votes"
}

func consensusVoteModelFromEntity(vote entities.ConsensusVote) consensusVoteModel {
	row := consensusVoteModel{
		ID:        strings.TrimSpace(vote.VoteID),
		RoundID:   strings.TrimSpace(vote.RoundID),
		UserID:    strings.TrimSpace(vote.UserID),
		VoteType:  string(vote.VoteType),
		Comment:   vote.Comment,
		CreatedAt: vote.CreatedAt.UTC(),
		UpdatedAt: vote.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m consensusVoteModel) toEntity() entities.ConsensusVote {
	return entities.ConsensusVote{
		VoteID:    m.ID,
		RoundID:   m.RoundID,
		UserID:    m.UserID,
		VoteType:  entities.ConsensusVoteType(m.VoteType),
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type objectionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	VoteID    string    `gorm:"column:vote_id"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (objectionModel) TableName() string {
	return "objections"
}

func objectionModelFromEntity(objection entities.Objection) objectionModel {
	row := objectionModel{
		ID:        strings.TrimSpace(objection.ObjectionID),
		VoteID:    strings.TrimSpace(objection.VoteID),
		Status:    string(objection.Status),
		CreatedAt: objection.CreatedAt.UTC(),
		UpdatedAt: objection.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m objectionModel) toEntity() entities.Objection {
	return entities.Objection{
		ObjectionID: m.ID,
		VoteID:      m.VoteID,
		Status:      entities.ObjectionStatus(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ReportRepository = (*Repository)(nil)
