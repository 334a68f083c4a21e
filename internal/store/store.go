package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by point lookups when the row does not exist.
var ErrNotFound = errors.New("row not found")

// Store is the row-store boundary: point lookups, filtered selects, and
// single-row writes on the three logical tables. Every write is a complete,
// self-contained upsert so callers may retry or abandon freely.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	// ActiveSessionForMatch returns the match's waiting-or-playing session,
	// or (nil, nil) when the match has none.
	ActiveSessionForMatch(ctx context.Context, matchID string) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error

	CreatePlayer(ctx context.Context, p *Player) error
	GetPlayer(ctx context.Context, sessionID, userID string) (*Player, error)
	PlayersForSession(ctx context.Context, sessionID string) ([]Player, error)
	UpdatePlayer(ctx context.Context, p *Player) error
	DeletePlayer(ctx context.Context, sessionID, userID string) error

	// AddPoints upserts the (matchID, userID) score row, incrementing its
	// points atomically at the storage layer, and returns the updated row.
	AddPoints(ctx context.Context, matchID, userID string, points int) (*Score, error)
	ScoresForMatch(ctx context.Context, matchID string) ([]Score, error)
}
