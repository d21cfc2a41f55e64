package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/consensus-engine/application"
	"agora/contexts/governance/consensus-engine/domain/entities"
	domainerrors "agora/contexts/governance/consensus-engine/domain/errors"
	"agora/contexts/governance/consensus-engine/ports"
)

type CreateReportCommand struct {
	WorkGroupID  string
	Year         int
	Quarter      int
	Participants []string
	BudgetItems  []entities.BudgetItem
}

// CreateReportUseCase registers a quarterly report in PENDING with no rounds.
// One report per (workgroup, year, quarter).
type CreateReportUseCase struct {
	Repo   ports.ReportRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc CreateReportUseCase) Execute(ctx context.Context, actor ports.Actor, cmd CreateReportCommand) (entities.QuarterlyReport, error) {
	logger := application.ResolveLogger(uc.Logger)
	workGroupID := strings.TrimSpace(cmd.WorkGroupID)
	if workGroupID == "" || cmd.Year < 2000 || cmd.Year > 2100 || cmd.Quarter < 1 || cmd.Quarter > 4 {
		return entities.QuarterlyReport{}, domainerrors.ErrInvalidReportInput
	}
	if !actor.CanCreateReport(workGroupID) {
		return entities.QuarterlyReport{}, domainerrors.ErrForbidden
	}

	budget := make([]entities.BudgetItem, 0, len(cmd.BudgetItems))
	for _, item := range cmd.BudgetItems {
		if strings.TrimSpace(item.Description) == "" || item.Quantity < 0 || item.UnitPrice < 0 {
			return entities.QuarterlyReport{}, domainerrors.ErrInvalidReportInput
		}
		item.Description = strings.TrimSpace(item.Description)
		item.Total = float64(item.Quantity) * item.UnitPrice
		budget = append(budget, item)
	}

	if _, exists, err := uc.Repo.GetReportByPeriod(ctx, workGroupID, cmd.Year, cmd.Quarter); err != nil {
		return entities.QuarterlyReport{}, err
	} else if exists {
		return entities.QuarterlyReport{}, domainerrors.ErrReportExists
	}

	now := uc.now()
	reportID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.QuarterlyReport{}, err
	}
	report := entities.QuarterlyReport{
		ReportID:        reportID,
		WorkGroupID:     workGroupID,
		Year:            cmd.Year,
		Quarter:         cmd.Quarter,
		ConsensusStatus: entities.ConsensusStatusPending,
		Participants:    normalizeParticipants(cmd.Participants),
		BudgetItems:     budget,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.Repo.SaveReport(ctx, report); err != nil {
		return entities.QuarterlyReport{}, err
	}
	logger.Info("quarterly report created",
		"event", "report_created",
		"module", "governance/consensus-engine",
		"layer", "application",
		"report_id", report.ReportID,
		"work_group_id", workGroupID,
		"year", cmd.Year,
		"quarter", cmd.Quarter,
	)
	return report, nil
}

func (uc CreateReportUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func normalizeParticipants(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
