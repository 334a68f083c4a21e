package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/tabletalk/icebreaker-backend/internal/feed"
	"github.com/tabletalk/icebreaker-backend/internal/game"
	"github.com/tabletalk/icebreaker-backend/internal/store"
)

var ErrNotAMember = errors.New("not a member of this match")
var ErrNotFound = errors.New("session not found")
var ErrPlayerNotFound = errors.New("player not found")
var ErrActiveSessionExists = errors.New("match already has an active session")
var ErrNotHost = errors.New("only the host may change phase or round")
var ErrSessionFinished = errors.New("session is finished")
var ErrRoundNotMonotonic = errors.New("currentRound may only increase")
var ErrNegativePoints = errors.New("points must not be negative")

// MembershipChecker confirms match membership. The verified identity itself
// comes from the auth gate upstream; the coordinator trusts it.
type MembershipChecker interface {
	IsMember(ctx context.Context, matchID, userID string) (bool, error)
}

// ScoreMirror receives every point increment, e.g. a redis leaderboard.
// A nil mirror is valid.
type ScoreMirror interface {
	Add(ctx context.Context, matchID, userID string, points int) error
}

// Coordinator is the authoritative mutation surface for sessions, players,
// and scores. Every write is validated here, applied as a self-contained
// upsert, and fanned out through the change feed. Feed events, not call
// results, are the clients' source of truth.
type Coordinator struct {
	st      store.Store
	hub     *feed.Hub
	members MembershipChecker
	mirror  ScoreMirror
	log     *zap.Logger
}

func New(st store.Store, hub *feed.Hub, members MembershipChecker, mirror ScoreMirror, log *zap.Logger) *Coordinator {
	return &Coordinator{st: st, hub: hub, members: members, mirror: mirror, log: log}
}

func (c *Coordinator) requireMember(ctx context.Context, matchID, userID string) error {
	ok, err := c.members.IsMember(ctx, matchID, userID)
	if err != nil {
		return fmt.Errorf("membership check: %w", err)
	}
	if !ok {
		return ErrNotAMember
	}
	return nil
}

// Create starts a session for the match with the caller as host. The host
// is auto-joined and ready.
func (c *Coordinator) Create(ctx context.Context, matchID, userID string, gameType game.Type) (*store.Session, error) {
	if err := c.requireMember(ctx, matchID, userID); err != nil {
		return nil, err
	}
	variant, err := game.Lookup(gameType)
	if err != nil {
		return nil, err
	}
	active, err := c.st.ActiveSessionForMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveSessionExists
	}

	now := time.Now().UTC()
	session := &store.Session{
		ID:           uuid.NewString(),
		MatchID:      matchID,
		GameType:     string(gameType),
		Status:       store.StatusWaiting,
		CurrentRound: 0,
		HostUserID:   userID,
		GameData:     variant.InitialGameData(),
		CreatedAt:    now,
	}
	if err := c.st.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	host := &store.Player{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		UserID:     userID,
		IsReady:    true,
		PlayerData: datatypes.JSON("{}"),
		JoinedAt:   now,
	}
	if err := c.st.CreatePlayer(ctx, host); err != nil {
		return nil, err
	}

	topic := feed.SessionTopic(session.ID)
	c.hub.Publish(topic, feed.Event{Table: feed.TableSessions, Op: feed.OpInsert, Row: session})
	c.hub.Publish(topic, feed.Event{Table: feed.TablePlayers, Op: feed.OpInsert, Row: host})
	c.log.Info("session created",
		zap.String("session", session.ID),
		zap.String("match", matchID),
		zap.String("host", userID),
		zap.String("gameType", string(gameType)))
	return session, nil
}

// Join adds the caller to the roster. Joining twice is a no-op, not an error.
func (c *Coordinator) Join(ctx context.Context, sessionID, userID string) error {
	session, err := c.getSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := c.requireMember(ctx, session.MatchID, userID); err != nil {
		return err
	}
	if session.Status == store.StatusFinished {
		return ErrSessionFinished
	}

	if _, err := c.st.GetPlayer(ctx, sessionID, userID); err == nil {
		return nil // already joined
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	player := &store.Player{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		UserID:     userID,
		IsReady:    false,
		PlayerData: datatypes.JSON("{}"),
		JoinedAt:   time.Now().UTC(),
	}
	if err := c.st.CreatePlayer(ctx, player); err != nil {
		return err
	}
	c.hub.Publish(feed.SessionTopic(sessionID), feed.Event{Table: feed.TablePlayers, Op: feed.OpInsert, Row: player})
	return nil
}

// Leave deletes the caller's roster row only. Session status is untouched
// even when the host leaves; host identity is fixed for the session's life.
func (c *Coordinator) Leave(ctx context.Context, sessionID, userID string) error {
	if _, err := c.getSession(ctx, sessionID); err != nil {
		return err
	}
	player, err := c.st.GetPlayer(ctx, sessionID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil // never joined, nothing to do
	}
	if err != nil {
		return err
	}
	if err := c.st.DeletePlayer(ctx, sessionID, userID); err != nil {
		return err
	}
	c.hub.Publish(feed.SessionTopic(sessionID), feed.Event{Table: feed.TablePlayers, Op: feed.OpDelete, Row: player})
	return nil
}

// End marks the session finished. Rows are retained for scoring history;
// calling End on a finished session is a no-op.
func (c *Coordinator) End(ctx context.Context, sessionID, userID string) error {
	session, err := c.getSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := c.requireMember(ctx, session.MatchID, userID); err != nil {
		return err
	}
	if session.Status == store.StatusFinished {
		return nil
	}
	session.Status = store.StatusFinished
	if err := c.st.UpdateSession(ctx, session); err != nil {
		return err
	}
	c.hub.Publish(feed.SessionTopic(sessionID), feed.Event{Table: feed.TableSessions, Op: feed.OpUpdate, Row: session})
	c.log.Info("session ended", zap.String("session", sessionID), zap.String("by", userID))
	return nil
}

func (c *Coordinator) getSession(ctx context.Context, sessionID string) (*store.Session, error) {
	session, err := c.st.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}
