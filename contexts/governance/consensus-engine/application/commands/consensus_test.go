package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/governance/consensus-engine/adapters/memory"
	"agora/contexts/governance/consensus-engine/domain/entities"
	domainerrors "agora/contexts/governance/consensus-engine/domain/errors"
	"agora/contexts/governance/consensus-engine/ports"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

func consensusFixture(now time.Time) (*memory.Store, CastConsensusVoteUseCase) {
	store := memory.NewStore([]entities.QuarterlyReport{{
		ReportID:        "report-1",
		WorkGroupID:     "wg-1",
		Year:            2026,
		Quarter:         1,
		ConsensusStatus: entities.ConsensusStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}})
	return store, CastConsensusVoteUseCase{
		Repo:  store,
		Tx:    store,
		Clock: fixedClock{now: now},
		IDGen: store,
	}
}

func TestCastConsensusVoteOpensFirstRound(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, uc := consensusFixture(now)

	ctx := context.Background()
	result, err := uc.Execute(ctx, CastConsensusVoteCommand{
		UserID:   "user-x",
		ReportID: "report-1",
		VoteType: entities.ConsensusVoteConsent,
	})
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	round, found, err := store.GetActiveRound(ctx, "report-1")
	if err != nil || !found {
		t.Fatalf("expected an active round, found=%v err=%v", found, err)
	}
	if round.RoundNumber != 1 {
		t.Fatalf("expected round #1, got %d", round.RoundNumber)
	}
	if result.Vote.RoundID != round.RoundID {
		t.Fatalf("vote not attached to the opened round")
	}
	report, err := store.GetReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("get report failed: %v", err)
	}
	if report.ConsensusStatus != entities.ConsensusStatusInConsensus {
		t.Fatalf("expected IN_CONSENSUS after first vote, got %s", report.ConsensusStatus)
	}
}

func TestCastConsensusVoteSecondVoterReusesRound(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, uc := consensusFixture(now)

	ctx := context.Background()
	first, err := uc.Execute(ctx, CastConsensusVoteCommand{UserID: "user-x", ReportID: "report-1", VoteType: entities.ConsensusVoteConsent})
	if err != nil {
		t.Fatalf("first cast failed: %v", err)
	}
	second, err := uc.Execute(ctx, CastConsensusVoteCommand{UserID: "user-y", ReportID: "report-1", VoteType: entities.ConsensusVoteAbstain})
	if err != nil {
		t.Fatalf("second cast failed: %v", err)
	}
	if first.Vote.RoundID != second.Vote.RoundID {
		t.Fatalf("expected both votes in the same round, got %s vs %s", first.Vote.RoundID, second.Vote.RoundID)
	}
	rounds, err := store.ListRoundsByReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("list rounds failed: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("expected a single round, got %d", len(rounds))
	}
}

func TestCastConsensusVoteUpsertsPerRoundAndUser(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, uc := consensusFixture(now)

	ctx := context.Background()
	first, err := uc.Execute(ctx, CastConsensusVoteCommand{UserID: "user-x", ReportID: "report-1", VoteType: entities.ConsensusVoteConsent})
	if err != nil {
		t.Fatalf("first cast failed: %v", err)
	}
	changed, err := uc.Execute(ctx, CastConsensusVoteCommand{UserID: "user-x", ReportID: "report-1", VoteType: entities.ConsensusVoteAbstain})
	if err != nil {
		t.Fatalf("re-cast failed: %v", err)
	}
	if changed.Vote.VoteID != first.Vote.VoteID {
		t.Fatalf("expected the vote updated in place, got new id %s", changed.Vote.VoteID)
	}
	votes, err := store.ListVotesByRound(ctx, first.Vote.RoundID)
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected one vote row per (round, user), got %d", len(votes))
	}
	if votes[0].VoteType != entities.ConsensusVoteAbstain {
		t.Fatalf("expected vote type updated to ABSTENERSE, got %s", votes[0].VoteType)
	}
}

func TestCastConsensusVoteObjectionRules(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	_, uc := consensusFixture(now)

	ctx := context.Background()
	_, err := uc.Execute(ctx, CastConsensusVoteCommand{
		UserID:   "user-x",
		ReportID: "report-1",
		VoteType: entities.ConsensusVoteObject,
		Comment:  "too vague",
	})
	if !errors.Is(err, domainerrors.ErrObjectionCommentTooShort) {
		t.Fatalf("expected short-comment rejection, got %v", err)
	}

	result, err := uc.Execute(ctx, CastConsensusVoteCommand{
		UserID:   "user-x",
		ReportID: "report-1",
		VoteType: entities.ConsensusVoteObject,
		Comment:  "too vague, needs detail",
	})
	if err != nil {
		t.Fatalf("objection cast failed: %v", err)
	}
	if result.Objection == nil {
		t.Fatal("expected an objection attached to the vote")
	}
	if result.Objection.Status != entities.ObjectionStatusPending {
		t.Fatalf("expected PENDIENTE objection, got %s", result.Objection.Status)
	}
}

func TestCastConsensusVoteReObjectionKeepsAdjudicatedStatus(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, uc := consensusFixture(now)

	ctx := context.Background()
	result, err := uc.Execute(ctx, CastConsensusVoteCommand{
		UserID:   "user-x",
		ReportID: "report-1",
		VoteType: entities.ConsensusVoteObject,
		Comment:  "budget table does not add up",
	})
	if err != nil {
		t.Fatalf("objection cast failed: %v", err)
	}

	adjudicate := AdjudicateObjectionUseCase{Repo: store, Clock: fixedClock{now: now}}
	manager := ports.Actor{UserID: "admin-1", GlobalAdmin: true}
	if _, err := adjudicate.Execute(ctx, manager, result.Objection.ObjectionID, string(entities.ObjectionStatusValid)); err != nil {
		t.Fatalf("adjudication failed: %v", err)
	}

	again, err := uc.Execute(ctx, CastConsensusVoteCommand{
		UserID:   "user-x",
		ReportID: "report-1",
		VoteType: entities.ConsensusVoteObject,
		Comment:  "still does not add up at all",
	})
	if err != nil {
		t.Fatalf("re-objection failed: %v", err)
	}
	if again.Objection.Status != entities.ObjectionStatusValid {
		t.Fatalf("re-objecting must not reset adjudication, got %s", again.Objection.Status)
	}
}

func TestCastConsensusVoteRejectsConsensedReport(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, uc := consensusFixture(now)

	store.SetReport(entities.QuarterlyReport{
		ReportID:        "report-done",
		ConsensusStatus: entities.ConsensusStatusConsensed,
	})
	_, err := uc.Execute(context.Background(), CastConsensusVoteCommand{
		UserID:   "user-x",
		ReportID: "report-done",
		VoteType: entities.ConsensusVoteConsent,
	})
	if !errors.Is(err, domainerrors.ErrReportConsensed) {
		t.Fatalf("expected ErrReportConsensed, got %v", err)
	}
}

func TestCastConsensusVoteRejectsUnknownReportAndBadType(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	_, uc := consensusFixture(now)

	ctx := context.Background()
	_, err := uc.Execute(ctx, CastConsensusVoteCommand{UserID: "user-x", ReportID: "missing", VoteType: entities.ConsensusVoteConsent})
	if !errors.Is(err, domainerrors.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
	_, err = uc.Execute(ctx, CastConsensusVoteCommand{UserID: "user-x", ReportID: "report-1", VoteType: "APOYAR"})
	if !errors.Is(err, domainerrors.ErrInvalidConsensusVote) {
		t.Fatalf("expected ErrInvalidConsensusVote, got %v", err)
	}
}

func TestUpdateConsensusStatusBlockedByValidObjection(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, castUC := consensusFixture(now)
	updateUC := UpdateConsensusStatusUseCase{Repo: store, Tx: store, Clock: fixedClock{now: now}}
	adjudicateUC := AdjudicateObjectionUseCase{Repo: store, Clock: fixedClock{now: now}}
	manager := ports.Actor{UserID: "admin-1", AdminWorkGroups: []string{"wg-1"}}

	ctx := context.Background()
	result, err := castUC.Execute(ctx, CastConsensusVoteCommand{
		UserID:   "user-x",
		ReportID: "report-1",
		VoteType: entities.ConsensusVoteObject,
		Comment:  "missing the treasury breakdown",
	})
	if err != nil {
		t.Fatalf("objection cast failed: %v", err)
	}

	// A PENDIENTE objection does not block; only VALIDA does.
	if _, err := adjudicateUC.Execute(ctx, manager, result.Objection.ObjectionID, string(entities.ObjectionStatusValid)); err != nil {
		t.Fatalf("adjudication failed: %v", err)
	}
	_, err = updateUC.Execute(ctx, manager, "report-1", string(entities.ConsensusStatusConsensed))
	if !errors.Is(err, domainerrors.ErrValidObjectionsPresent) {
		t.Fatalf("expected ErrValidObjectionsPresent, got %v", err)
	}
	report, err := store.GetReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("get report failed: %v", err)
	}
	if report.ConsensusStatus != entities.ConsensusStatusInConsensus {
		t.Fatalf("blocked transition must not mutate status, got %s", report.ConsensusStatus)
	}
	round, found, err := store.GetActiveRound(ctx, "report-1")
	if err != nil || !found {
		t.Fatalf("expected round left ACTIVA, found=%v err=%v", found, err)
	}
	if !round.IsActive() {
		t.Fatalf("blocked transition must not close the round")
	}

	// Ruling the objection INVALIDA clears the block.
	if _, err := adjudicateUC.Execute(ctx, manager, result.Objection.ObjectionID, string(entities.ObjectionStatusInvalid)); err != nil {
		t.Fatalf("re-adjudication failed: %v", err)
	}
	status, err := updateUC.Execute(ctx, manager, "report-1", string(entities.ConsensusStatusConsensed))
	if err != nil {
		t.Fatalf("consensed transition failed: %v", err)
	}
	if status != entities.ConsensusStatusConsensed {
		t.Fatalf("expected CONSENSED, got %s", status)
	}
}

func TestUpdateConsensusStatusConsensedClosesRound(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, castUC := consensusFixture(now)
	updateUC := UpdateConsensusStatusUseCase{Repo: store, Tx: store, Clock: fixedClock{now: now}}

	ctx := context.Background()
	result, err := castUC.Execute(ctx, CastConsensusVoteCommand{UserID: "user-x", ReportID: "report-1", VoteType: entities.ConsensusVoteConsent})
	if err != nil {
		t.Fatalf("cast failed: %v", err)
	}
	manager := ports.Actor{UserID: "admin-1", GlobalAdmin: true}
	if _, err := updateUC.Execute(ctx, manager, "report-1", string(entities.ConsensusStatusConsensed)); err != nil {
		t.Fatalf("consensed transition failed: %v", err)
	}
	rounds, err := store.ListRoundsByReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("list rounds failed: %v", err)
	}
	if len(rounds) != 1 || rounds[0].Status != entities.RoundStatusClosed {
		t.Fatalf("expected the round CERRADA after consensed, got %+v", rounds)
	}
	if rounds[0].ClosedAt == nil {
		t.Fatal("expected closed round to carry a closedAt timestamp")
	}
	if rounds[0].RoundID != result.Vote.RoundID {
		t.Fatalf("closed round does not match the voting round")
	}
}

func TestUpdateConsensusStatusPermissionAndTargetChecks(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, _ := consensusFixture(now)
	updateUC := UpdateConsensusStatusUseCase{Repo: store, Tx: store, Clock: fixedClock{now: now}}

	ctx := context.Background()
	_, err := updateUC.Execute(ctx, ports.Actor{UserID: "user-x"}, "report-1", string(entities.ConsensusStatusRejected))
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for plain user, got %v", err)
	}

	manager := ports.Actor{UserID: "admin-1", AdminWorkGroups: []string{"wg-other"}}
	// Admin of any workgroup may manage consensus on any report.
	status, err := updateUC.Execute(ctx, manager, "report-1", string(entities.ConsensusStatusRejected))
	if err != nil {
		t.Fatalf("workgroup admin transition failed: %v", err)
	}
	if status != entities.ConsensusStatusRejected {
		t.Fatalf("expected REJECTED, got %s", status)
	}

	_, err = updateUC.Execute(ctx, manager, "report-1", string(entities.ConsensusStatusPending))
	if !errors.Is(err, domainerrors.ErrInvalidConsensusStatus) {
		t.Fatalf("expected ErrInvalidConsensusStatus for PENDING target, got %v", err)
	}
}

func TestNewRoundAfterConsensedRejectionPath(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, castUC := consensusFixture(now)
	updateUC := UpdateConsensusStatusUseCase{Repo: store, Tx: store, Clock: fixedClock{now: now}}
	manager := ports.Actor{UserID: "admin-1", GlobalAdmin: true}

	ctx := context.Background()
	if _, err := castUC.Execute(ctx, CastConsensusVoteCommand{UserID: "user-x", ReportID: "report-1", VoteType: entities.ConsensusVoteConsent}); err != nil {
		t.Fatalf("first round cast failed: %v", err)
	}
	if _, err := updateUC.Execute(ctx, manager, "report-1", string(entities.ConsensusStatusConsensed)); err != nil {
		t.Fatalf("consensed transition failed: %v", err)
	}
	// Reopening via REJECTED leaves no active round; the next vote opens #2.
	if _, err := updateUC.Execute(ctx, manager, "report-1", string(entities.ConsensusStatusRejected)); err != nil {
		t.Fatalf("rejected transition failed: %v", err)
	}
	result, err := castUC.Execute(ctx, CastConsensusVoteCommand{UserID: "user-y", ReportID: "report-1", VoteType: entities.ConsensusVoteConsent})
	if err != nil {
		t.Fatalf("second window cast failed: %v", err)
	}
	rounds, err := store.ListRoundsByReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("list rounds failed: %v", err)
	}
	if len(rounds) != 2 || rounds[0].RoundNumber != 2 {
		t.Fatalf("expected round #2 newest-first, got %+v", rounds)
	}
	if result.Vote.RoundID != rounds[0].RoundID {
		t.Fatalf("new vote must land in round #2")
	}
}

func TestCreateReportValidationAndDuplicate(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil)
	uc := CreateReportUseCase{Repo: store, Clock: fixedClock{now: now}, IDGen: store}
	admin := ports.Actor{UserID: "admin-1", AdminWorkGroups: []string{"wg-1"}}

	ctx := context.Background()
	report, err := uc.Execute(ctx, admin, CreateReportCommand{
		WorkGroupID:  "wg-1",
		Year:         2026,
		Quarter:      1,
		Participants: []string{"user-x", "user-x", "user-y"},
		BudgetItems:  []entities.BudgetItem{{Description: "Audit", Quantity: 2, UnitPrice: 300}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if report.ConsensusStatus != entities.ConsensusStatusPending {
		t.Fatalf("expected PENDING, got %s", report.ConsensusStatus)
	}
	if len(report.Participants) != 2 {
		t.Fatalf("expected deduped participants, got %v", report.Participants)
	}
	if report.BudgetItems[0].Total != 600 {
		t.Fatalf("expected recomputed total 600, got %v", report.BudgetItems[0].Total)
	}

	_, err = uc.Execute(ctx, admin, CreateReportCommand{WorkGroupID: "wg-1", Year: 2026, Quarter: 1})
	if !errors.Is(err, domainerrors.ErrReportExists) {
		t.Fatalf("expected ErrReportExists, got %v", err)
	}
	_, err = uc.Execute(ctx, admin, CreateReportCommand{WorkGroupID: "wg-1", Year: 2026, Quarter: 5})
	if !errors.Is(err, domainerrors.ErrInvalidReportInput) {
		t.Fatalf("expected ErrInvalidReportInput for quarter 5, got %v", err)
	}
	_, err = uc.Execute(ctx, ports.Actor{UserID: "user-x", AdminWorkGroups: []string{"wg-other"}}, CreateReportCommand{
		WorkGroupID: "wg-1", Year: 2026, Quarter: 2,
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign workgroup admin, got %v", err)
	}
}

func TestAdjudicateObjectionChecks(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, castUC := consensusFixture(now)
	uc := AdjudicateObjectionUseCase{Repo: store, Clock: fixedClock{now: now}}

	ctx := context.Background()
	result, err := castUC.Execute(ctx, CastConsensusVoteCommand{
		UserID:   "user-x",
		ReportID: "report-1",
		VoteType: entities.ConsensusVoteObject,
		Comment:  "numbers in section two disagree",
	})
	if err != nil {
		t.Fatalf("objection cast failed: %v", err)
	}

	if _, err := uc.Execute(ctx, ports.Actor{UserID: "user-x"}, result.Objection.ObjectionID, string(entities.ObjectionStatusValid)); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for plain user, got %v", err)
	}
	manager := ports.Actor{UserID: "admin-1", GlobalAdmin: true}
	if _, err := uc.Execute(ctx, manager, result.Objection.ObjectionID, string(entities.ObjectionStatusPending)); !errors.Is(err, domainerrors.ErrInvalidObjectionStatus) {
		t.Fatalf("expected ErrInvalidObjectionStatus for PENDIENTE target, got %v", err)
	}
	if _, err := uc.Execute(ctx, manager, "missing", string(entities.ObjectionStatusValid)); !errors.Is(err, domainerrors.ErrObjectionNotFound) {
		t.Fatalf("expected ErrObjectionNotFound, got %v", err)
	}
	objection, err := uc.Execute(ctx, manager, result.Objection.ObjectionID, string(entities.ObjectionStatusInvalid))
	if err != nil {
		t.Fatalf("adjudication failed: %v", err)
	}
	if objection.Status != entities.ObjectionStatusInvalid {
		t.Fatalf("expected INVALIDA, got %s", objection.Status)
	}
}

// racingBallotRepo simulates a same-user double cast inside one round: the
// first insert loses to a competing row and surfaces the unique conflict.
type racingBallotRepo struct {
	ports.ReportRepository
	raced bool
}

func (r *racingBallotRepo) SaveVote(ctx context.Context, vote entities.ConsensusVote) error {
	if !r.raced {
		r.raced = true
		winner := vote
		winner.VoteID = "vote-winner"
		winner.VoteType = entities.ConsensusVoteConsent
		if err := r.ReportRepository.SaveVote(ctx, winner); err != nil {
			return err
		}
		return domainerrors.ErrVoteConflict
	}
	return r.ReportRepository.SaveVote(ctx, vote)
}

func TestCastConsensusVoteRetriesOnConcurrentConflict(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, uc := consensusFixture(now)
	repo := &racingBallotRepo{ReportRepository: store}
	uc.Repo = repo

	ctx := context.Background()
	result, err := uc.Execute(ctx, CastConsensusVoteCommand{
		UserID:   "user-1",
		ReportID: "report-1",
		VoteType: entities.ConsensusVoteAbstain,
	})
	if err != nil {
		t.Fatalf("cast failed despite retry: %v", err)
	}
	if !repo.raced {
		t.Fatal("conflict branch never exercised")
	}
	if result.Vote.VoteID != "vote-winner" {
		t.Fatalf("expected the retry to join the surviving row, got %+v", result.Vote)
	}
	if result.Vote.VoteType != entities.ConsensusVoteAbstain {
		t.Fatalf("expected ABSTENERSE after retry, got %s", result.Vote.VoteType)
	}
	rounds, err := store.ListRoundsByReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("list rounds failed: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("expected a single round, got %d", len(rounds))
	}
	votes, err := store.ListVotesByRound(ctx, rounds[0].RoundID)
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("expected a single vote row, got %d", len(votes))
	}
}

// racingRoundRepo simulates two first votes racing to open the round: a
// competing ACTIVA round lands first and the caller's insert loses on the
// (report, round number) slot.
type racingRoundRepo struct {
	ports.ReportRepository
	raced bool
}

func (r *racingRoundRepo) SaveRound(ctx context.Context, round entities.VotingRound) error {
	if !r.raced {
		r.raced = true
		competing := round
		competing.RoundID = "round-winner"
		if err := r.ReportRepository.SaveRound(ctx, competing); err != nil {
			return err
		}
		if err := r.ReportRepository.SaveReportStatus(ctx, round.ReportID, entities.ConsensusStatusInConsensus, round.StartedAt); err != nil {
			return err
		}
	}
	return r.ReportRepository.SaveRound(ctx, round)
}

func TestCastConsensusVoteJoinsRoundAfterOpenRace(t *testing.T) {
	now := time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)
	store, uc := consensusFixture(now)
	repo := &racingRoundRepo{ReportRepository: store}
	uc.Repo = repo

	ctx := context.Background()
	result, err := uc.Execute(ctx, CastConsensusVoteCommand{
		UserID:   "user-1",
		ReportID: "report-1",
		VoteType: entities.ConsensusVoteConsent,
	})
	if err != nil {
		t.Fatalf("cast failed despite round race: %v", err)
	}
	if result.Vote.RoundID != "round-winner" {
		t.Fatalf("expected the vote to join the surviving round, got %+v", result.Vote)
	}
	rounds, err := store.ListRoundsByReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("list rounds failed: %v", err)
	}
	if len(rounds) != 1 || rounds[0].RoundID != "round-winner" {
		t.Fatalf("expected only the surviving round, got %+v", rounds)
	}
	report, err := store.GetReport(ctx, "report-1")
	if err != nil {
		t.Fatalf("get report failed: %v", err)
	}
	if report.ConsensusStatus != entities.ConsensusStatusInConsensus {
		t.Fatalf("expected IN_CONSENSUS, got %s", report.ConsensusStatus)
	}
}
