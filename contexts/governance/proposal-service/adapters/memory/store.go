package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/governance/proposal-service/domain/entities"
	domainerrors "agora/contexts/governance/proposal-service/domain/errors"

	"github.com/google/uuid"
)

// Store is the in-memory ProposalRepository used by tests and local wiring.
// Transactions degrade to serialized execution; there is no rollback.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	proposals map[string]entities.Proposal
	votes     map[string]entities.Vote
	comments  map[string]entities.Comment
}

func NewStore(seed []entities.Proposal) *Store {
	proposals := make(map[string]entities.Proposal, len(seed))
	for _, proposal := range seed {
		proposals[proposal.ProposalID] = proposal
	}
	return &Store{
		proposals: proposals,
		votes:     make(map[string]entities.Vote),
		comments:  make(map[string]entities.Comment),
	}
}

func (s *Store) SetProposal(proposal entities.Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[strings.TrimSpace(proposal.ProposalID)] = proposal
}

func (s *Store) GetProposal(_ context.Context, proposalID string) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[strings.TrimSpace(proposalID)]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) SaveProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[strings.TrimSpace(proposal.ProposalID)] = proposal
	return nil
}

func (s *Store) SaveProposalStatus(
	_ context.Context,
	proposalID string,
	status entities.ProposalStatus,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[strings.TrimSpace(proposalID)]
	if !ok {
		return domainerrors.ErrProposalNotFound
	}
	proposal.Status = status
	proposal.UpdatedAt = updatedAt.UTC()
	s.proposals[strings.TrimSpace(proposalID)] = proposal
	return nil
}

func (s *Store) ListProposals(_ context.Context, status *entities.ProposalStatus) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		if status != nil && proposal.Status != *status {
			continue
		}
		items = append(items, proposal)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteProposalCascade(_ context.Context, proposalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposalID = strings.TrimSpace(proposalID)
	if _, ok := s.proposals[proposalID]; !ok {
		return domainerrors.ErrProposalNotFound
	}
	for id, vote := range s.votes {
		if vote.ProposalID == proposalID {
			delete(s.votes, id)
		}
	}
	for id, comment := range s.comments {
		if comment.ProposalID == proposalID {
			delete(s.comments, id)
		}
	}
	delete(s.proposals, proposalID)
	return nil
}

func (s *Store) AdjustVoteCounters(
	_ context.Context,
	proposalID string,
	positive, negative, abstain int,
	updatedAt time.Time,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[strings.TrimSpace(proposalID)]
	if !ok {
		return domainerrors.ErrProposalNotFound
	}
	proposal.PositiveVotes += positive
	proposal.NegativeVotes += negative
	proposal.AbstainVotes += abstain
	proposal.UpdatedAt = updatedAt.UTC()
	s.proposals[strings.TrimSpace(proposalID)] = proposal
	return nil
}

func (s *Store) GetVoteByIdentity(_ context.Context, proposalID string, userID string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, vote := range s.votes {
		if vote.ProposalID == strings.TrimSpace(proposalID) && vote.UserID == strings.TrimSpace(userID) {
			return vote, true, nil
		}
	}
	return entities.Vote{}, false, nil
}

func (s *Store) SaveVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.votes {
		if existing.ProposalID == vote.ProposalID && existing.UserID == vote.UserID && id != vote.VoteID {
			return domainerrors.ErrVoteConflict
		}
	}
	s.votes[strings.TrimSpace(vote.VoteID)] = vote
	return nil
}

func (s *Store) ListVotesByProposal(_ context.Context, proposalID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.ProposalID == strings.TrimSpace(proposalID) {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) UpsertMainComment(_ context.Context, comment entities.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.comments {
		if existing.ProposalID == comment.ProposalID && existing.UserID == comment.UserID && existing.Main {
			existing.Content = comment.Content
			existing.UpdatedAt = comment.UpdatedAt
			s.comments[id] = existing
			return nil
		}
	}
	s.comments[strings.TrimSpace(comment.CommentID)] = comment
	return nil
}

func (s *Store) ListCommentsByProposal(_ context.Context, proposalID string) ([]entities.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Comment, 0)
	for _, comment := range s.comments {
		if comment.ProposalID == strings.TrimSpace(proposalID) {
			items = append(items, comment)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
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
