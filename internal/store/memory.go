package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore keeps all three tables in process memory. It backs tests and dev
// mode; rows are copied on the way in and out so callers never share storage.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	players  map[string]Player // keyed sessionID+"/"+userID
	scores   map[string]Score  // keyed matchID+"/"+userID
}

func NewMemStore() *MemStore {
	return &MemStore{
		sessions: make(map[string]Session),
		players:  make(map[string]Player),
		scores:   make(map[string]Score),
	}
}

func playerKey(sessionID, userID string) string { return sessionID + "/" + userID }
func scoreKey(matchID, userID string) string    { return matchID + "/" + userID }

func copySession(s Session) Session {
	s.GameData = slices.Clone(s.GameData)
	return s
}

func copyPlayer(p Player) Player {
	p.PlayerData = slices.Clone(p.PlayerData)
	return p
}

func (m *MemStore) CreateSession(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = copySession(*s)
	return nil
}

func (m *MemStore) GetSession(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copySession(s)
	return &out, nil
}

func (m *MemStore) ActiveSessionForMatch(ctx context.Context, matchID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.MatchID == matchID && s.Active() {
			out := copySession(s)
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MemStore) UpdateSession(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return ErrNotFound
	}
	m.sessions[s.ID] = copySession(*s)
	return nil
}

func (m *MemStore) CreatePlayer(ctx context.Context, p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[playerKey(p.SessionID, p.UserID)] = copyPlayer(*p)
	return nil
}

func (m *MemStore) GetPlayer(ctx context.Context, sessionID, userID string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[playerKey(sessionID, userID)]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyPlayer(p)
	return &out, nil
}

func (m *MemStore) PlayersForSession(ctx context.Context, sessionID string) ([]Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var players []Player
	for _, p := range m.players {
		if p.SessionID == sessionID {
			players = append(players, copyPlayer(p))
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players, nil
}

func (m *MemStore) UpdatePlayer(ctx context.Context, p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := playerKey(p.SessionID, p.UserID)
	if _, ok := m.players[key]; !ok {
		return ErrNotFound
	}
	m.players[key] = copyPlayer(*p)
	return nil
}

func (m *MemStore) DeletePlayer(ctx context.Context, sessionID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.players, playerKey(sessionID, userID))
	return nil
}

func (m *MemStore) AddPoints(ctx context.Context, matchID, userID string, points int) (*Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scoreKey(matchID, userID)
	row, ok := m.scores[key]
	if !ok {
		row = Score{ID: uuid.NewString(), MatchID: matchID, UserID: userID}
	}
	row.Points += points
	row.UpdatedAt = time.Now().UTC()
	m.scores[key] = row
	return &row, nil
}

func (m *MemStore) ScoresForMatch(ctx context.Context, matchID string) ([]Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var scores []Score
	for _, s := range m.scores {
		if s.MatchID == matchID {
			scores = append(scores, s)
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Points > scores[j].Points })
	return scores, nil
}
