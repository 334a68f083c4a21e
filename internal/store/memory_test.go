package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newSession(id, matchID string, status SessionStatus) *Session {
	return &Session{
		ID:        id,
		MatchID:   matchID,
		GameType:  "questions",
		Status:    status,
		GameData:  datatypes.JSON("{}"),
		CreatedAt: time.Now().UTC(),
	}
}

func TestMemStore_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	require.NoError(t, m.CreateSession(ctx, newSession("s1", "m1", StatusWaiting)))

	got, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.MatchID)

	_, err = m.GetSession(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	active, err := m.ActiveSessionForMatch(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "s1", active.ID)

	got.Status = StatusFinished
	require.NoError(t, m.UpdateSession(ctx, got))

	active, err = m.ActiveSessionForMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestMemStore_RowsAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	s := newSession("s1", "m1", StatusWaiting)
	require.NoError(t, m.CreateSession(ctx, s))

	// mutating the caller's row must not leak into storage
	s.Status = StatusFinished
	got, err := m.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, got.Status)
}

func TestMemStore_Players(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	now := time.Now().UTC()
	require.NoError(t, m.CreatePlayer(ctx, &Player{
		ID: "p1", SessionID: "s1", UserID: "u1", IsReady: true,
		PlayerData: datatypes.JSON("{}"), JoinedAt: now,
	}))
	require.NoError(t, m.CreatePlayer(ctx, &Player{
		ID: "p2", SessionID: "s1", UserID: "u2",
		PlayerData: datatypes.JSON("{}"), JoinedAt: now.Add(time.Second),
	}))

	players, err := m.PlayersForSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "u1", players[0].UserID, "roster ordered by join time")

	require.NoError(t, m.DeletePlayer(ctx, "s1", "u1"))
	_, err = m.GetPlayer(ctx, "s1", "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting a missing row is not an error
	require.NoError(t, m.DeletePlayer(ctx, "s1", "u1"))
}

func TestMemStore_AddPointsAccumulates(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	first, err := m.AddPoints(ctx, "m1", "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, first.Points)

	second, err := m.AddPoints(ctx, "m1", "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 10, second.Points)
	assert.Equal(t, first.ID, second.ID, "same row, not a new one")

	_, err = m.AddPoints(ctx, "m1", "u2", 3)
	require.NoError(t, err)

	scores, err := m.ScoresForMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "u1", scores[0].UserID, "highest points first")
}
