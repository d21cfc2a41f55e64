package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/governance/consensus-engine/domain/entities"
	domainerrors "agora/contexts/governance/consensus-engine/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory ReportRepository used by tests and local wiring.
// Transactions degrade to serialized execution; there is no rollback.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	reports    map[string]entities.QuarterlyReport
	rounds     map[string]entities.VotingRound
	votes      map[string]entities.ConsensusVote
	objections map[string]entities.Objection
}

func NewStore(seed []entities.QuarterlyReport) *Store {
	reports := make(map[string]entities.QuarterlyReport, len(seed))
	for _, report := range seed {
		reports[report.ReportID] = report
	}
	return &Store{
		reports:    reports,
		rounds:     make(map[string]entities.VotingRound),
		votes:      make(map[string]entities.ConsensusVote),
		objections: make(map[string]entities.Objection),
	}
}

func (s *Store) SetReport(report entities.QuarterlyReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[strings.TrimSpace(report.ReportID)] = report
}

func (s *Store) GetReport(_ context.Context, reportID string) (entities.QuarterlyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[strings.TrimSpace(reportID)]
	if !ok {
		return entities.QuarterlyReport{}, domainerrors.ErrReportNotFound
	}
	return report, nil
}

func (s *Store) GetReportByPeriod(_ context.Context, workGroupID string, year, quarter int) (entities.QuarterlyReport, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, report := range s.reports {
		if report.WorkGroupID == workGroupID && report.Year == year && report.Quarter == quarter {
			return report, true, nil
		}
	}
	return entities.QuarterlyReport{}, false, nil
}

func (s *Store) SaveReport(_ context.Context, report entities.QuarterlyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[strings.TrimSpace(report.ReportID)] = report
	return nil
}

func (s *Store) SaveReportStatus(
	_ context.Context,
	reportID string,
	status entities.ConsensusStatus,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[strings.TrimSpace(reportID)]
	if !ok {
		return domainerrors.ErrReportNotFound
	}
	report.ConsensusStatus = status
	report.UpdatedAt = updatedAt.UTC()
	s.reports[strings.TrimSpace(reportID)] = report
	return nil
}

func (s *Store) GetActiveRound(_ context.Context, reportID string) (entities.VotingRound, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best entities.VotingRound
	found := false
	for _, round := range s.rounds {
		if round.ReportID != strings.TrimSpace(reportID) || !round.IsActive() {
			continue
		}
		if !found || round.RoundNumber > best.RoundNumber {
			best = round
			found = true
		}
	}
	return best, found, nil
}

func (s *Store) MaxRoundNumber(_ context.Context, reportID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := 0
	for _, round := range s.rounds {
		if round.ReportID == strings.TrimSpace(reportID) && round.RoundNumber > max {
			max = round.RoundNumber
		}
	}
	return max, nil
}

func (s *Store) SaveRound(_ context.Context, round entities.VotingRound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.rounds {
		if existing.ReportID == round.ReportID && existing.RoundNumber == round.RoundNumber && id != round.RoundID {
			return domainerrors.ErrVoteConflict
		}
	}
	s.rounds[strings.TrimSpace(round.RoundID)] = round
	return nil
}

func (s *Store) CloseRound(_ context.Context, roundID string, closedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	round, ok := s.rounds[strings.TrimSpace(roundID)]
	if !ok {
		return domainerrors.ErrReportNotFound
	}
	closed := closedAt.UTC()
	round.Status = entities.RoundStatusClosed
	round.ClosedAt = &closed
	s.rounds[strings.TrimSpace(roundID)] = round
	return nil
}

func (s *Store) ListRoundsByReport(_ context.Context, reportID string) ([]entities.VotingRound, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.VotingRound, 0)
	for _, round := range s.rounds {
		if round.ReportID == strings.TrimSpace(reportID) {
			items = append(items, round)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].RoundNumber > items[j].RoundNumber
	})
	return items, nil
}

func (s *Store) GetVoteByIdentity(_ context.Context, roundID string, userID string) (entities.ConsensusVote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, vote := range s.votes {
		if vote.RoundID == strings.TrimSpace(roundID) && vote.UserID == strings.TrimSpace(userID) {
			return vote, true, nil
		}
	}
	return entities.ConsensusVote{}, false, nil
}

func (s *Store) SaveVote(_ context.Context, vote entities.ConsensusVote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.votes {
		if existing.RoundID == vote.RoundID && existing.UserID == vote.UserID && id != vote.VoteID {
			return domainerrors.ErrVoteConflict
		}
	}
	s.votes[strings.TrimSpace(vote.VoteID)] = vote
	return nil
}

func (s *Store) ListVotesByRound(_ context.Context, roundID string) ([]entities.ConsensusVote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.ConsensusVote, 0)
	for _, vote := range s.votes {
		if vote.RoundID == strings.TrimSpace(roundID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetObjection(_ context.Context, objectionID string) (entities.Objection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objection, ok := s.objections[strings.TrimSpace(objectionID)]
	if !ok {
		return entities.Objection{}, domainerrors.ErrObjectionNotFound
	}
	return objection, nil
}

func (s *Store) GetObjectionByVote(_ context.Context, voteID string) (entities.Objection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, objection := range s.objections {
		if objection.VoteID == strings.TrimSpace(voteID) {
			return objection, true, nil
		}
	}
	return entities.Objection{}, false, nil
}

func (s *Store) SaveObjection(_ context.Context, objection entities.Objection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objections[strings.TrimSpace(objection.ObjectionID)] = objection
	return nil
}

func (s *Store) ListObjectionsInActiveRound(
	_ context.Context,
	reportID string,
	status entities.ObjectionStatus,
) ([]entities.Objection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	activeRounds := make(map[string]struct{})
	for _, round := range s.rounds {
		if round.ReportID == strings.TrimSpace(reportID) && round.IsActive() {
			activeRounds[round.RoundID] = struct{}{}
		}
	}
	items := make([]entities.Objection, 0)
	for _, objection := range s.objections {
		if objection.Status != status {
			continue
		}
		vote, ok := s.votes[objection.VoteID]
		if !ok {
			continue
		}
		if _, active := activeRounds[vote.RoundID]; active {
			items = append(items, objection)
		}
	}
	return items, nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
