package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/identity-access/directory-service/domain/entities"
	domainerrors "agora/contexts/identity-access/directory-service/domain/errors"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]entities.User
	memberships []entities.WorkGroupMembership
}

func NewStore(seed []entities.User) *Store {
	users := make(map[string]entities.User, len(seed))
	for _, user := range seed {
		users[user.UserID] = user
	}
	return &Store{users: users}
}

func (s *Store) SetUser(user entities.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimSpace(user.UserID)] = user
}

func (s *Store) SetMembership(membership entities.WorkGroupMembership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.memberships {
		if existing.WorkGroupID == membership.WorkGroupID && existing.UserID == membership.UserID {
			s.memberships[i] = membership
			return
		}
	}
	s.memberships = append(s.memberships, membership)
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) SaveUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimSpace(user.UserID)] = user
	return nil
}

func (s *Store) ListMembershipsByUser(_ context.Context, userID string) ([]entities.WorkGroupMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.WorkGroupMembership, 0)
	for _, membership := range s.memberships {
		if membership.UserID == strings.TrimSpace(userID) {
			items = append(items, membership)
		}
	}
	sortMemberships(items)
	return items, nil
}

func (s *Store) ListMembershipsByWorkGroup(_ context.Context, workGroupID string) ([]entities.WorkGroupMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.WorkGroupMembership, 0)
	for _, membership := range s.memberships {
		if membership.WorkGroupID == strings.TrimSpace(workGroupID) {
			items = append(items, membership)
		}
	}
	sortMemberships(items)
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func sortMemberships(items []entities.WorkGroupMembership) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].WorkGroupID != items[j].WorkGroupID {
			return items[i].WorkGroupID < items[j].WorkGroupID
		}
		return items[i].UserID < items[j].UserID
	})
}
