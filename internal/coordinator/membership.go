package coordinator

import (
	"context"
	"sync"
)

// StaticMembership is an in-memory membership gate for dev mode and tests.
// Production deployments swap in the platform's real group service.
type StaticMembership struct {
	mu      sync.RWMutex
	matches map[string]map[string]bool
}

func NewStaticMembership() *StaticMembership {
	return &StaticMembership{matches: make(map[string]map[string]bool)}
}

func (s *StaticMembership) AddMember(matchID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.matches[matchID] == nil {
		s.matches[matchID] = make(map[string]bool)
	}
	s.matches[matchID][userID] = true
}

func (s *StaticMembership) IsMember(ctx context.Context, matchID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matches[matchID][userID], nil
}

// AllowAll admits anyone to any match; dev mode only.
type AllowAll struct{}

func (AllowAll) IsMember(ctx context.Context, matchID, userID string) (bool, error) {
	return true, nil
}
