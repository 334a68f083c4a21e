package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tabletalk/icebreaker-backend/internal/auth"
	"github.com/tabletalk/icebreaker-backend/internal/coordinator"
	"github.com/tabletalk/icebreaker-backend/internal/feed"
	"github.com/tabletalk/icebreaker-backend/internal/store"
)

// Handler upgrades feed subscriptions. A subscriber gets the point-in-time
// snapshot first, then row events in order, until it disconnects or falls
// too far behind; reconnecting resnapshots.
type Handler struct {
	hub     *feed.Hub
	st      store.Store
	members coordinator.MembershipChecker
	log     *zap.Logger
}

func NewHandler(hub *feed.Hub, st store.Store, members coordinator.MembershipChecker, log *zap.Logger) *Handler {
	return &Handler{hub: hub, st: st, members: members, log: log}
}

// SessionFeed serves /ws/sessions/{sessionID}.
func (h *Handler) SessionFeed(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.st.GetSession(r.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}
	h.serve(w, r, session.MatchID, feed.SessionTopic(sessionID))
}

// MatchFeed serves /ws/matches/{matchID}, the score feed.
func (h *Handler) MatchFeed(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	h.serve(w, r, matchID, feed.MatchTopic(matchID))
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, matchID string, topic feed.Topic) {
	userID := auth.UserID(r.Context())
	ok, err := h.members.IsMember(r.Context(), matchID, userID)
	if err != nil {
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not a member", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	ch := h.hub.Ensure(topic)
	out := make(chan feed.Frame, 16)
	clientID := randID(6)

	ch.Inbox() <- feed.Subscribe{ClientID: clientID, Outbox: out}
	defer func() { ch.Inbox() <- feed.Unsubscribe{ClientID: clientID} }()

	h.log.Debug("feed subscribed",
		zap.String("topic", topic.String()),
		zap.String("client", clientID),
		zap.String("user", userID))

	// Writer goroutine
	writeCtx, writeCancel := context.WithCancel(r.Context())
	defer writeCancel()
	go func() {
		for frame := range out {
			payload, err := json.Marshal(frame)
			if err != nil {
				continue
			}
			ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
			_ = conn.Write(ctx, websocket.MessageText, payload)
			cancel()
		}
		// Outbox closed: dropped as a slow subscriber or the channel shut
		// down. The client reconnects for a fresh snapshot either way.
		_ = conn.Close(websocket.StatusTryAgainLater, "resubscribe")
	}()

	// Reader loop. The feed is one-way (mutations go over HTTP), so reads
	// exist only to notice the close.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			return
		}
	}
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
