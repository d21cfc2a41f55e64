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

// AdjudicateObjectionUseCase settles an objection as VALIDA or INVALIDA.
// Re-adjudication is allowed; the ruling can be revised until the report is
// closed out.
type AdjudicateObjectionUseCase struct {
	Repo   ports.ReportRepository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (uc AdjudicateObjectionUseCase) Execute(
	ctx context.Context,
	actor ports.Actor,
	objectionID string,
	target string,
) (entities.Objection, error) {
	logger := application.ResolveLogger(uc.Logger)
	if !actor.CanManageConsensus() {
		return entities.Objection{}, domainerrors.ErrForbidden
	}
	status, ok := entities.ParseObjectionStatus(strings.TrimSpace(target))
	if !ok || status == entities.ObjectionStatusPending {
		return entities.Objection{}, domainerrors.ErrInvalidObjectionStatus
	}

	objection, err := uc.Repo.GetObjection(ctx, strings.TrimSpace(objectionID))
	if err != nil {
		return entities.Objection{}, err
	}
	objection.Status = status
	objection.UpdatedAt = uc.now()
	if err := uc.Repo.SaveObjection(ctx, objection); err != nil {
		return entities.Objection{}, err
	}
	logger.Info("objection adjudicated",
		"event", "objection_adjudicated",
		"module", "governance/consensus-engine",
		"layer", "application",
		"objection_id", objection.ObjectionID,
		"actor_id", actor.UserID,
		"status", string(status),
	)
	return objection, nil
}

func (uc AdjudicateObjectionUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
