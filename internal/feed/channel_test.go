package feed

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/tabletalk/icebreaker-backend/internal/store"
)

// helper: receive one frame with a timeout so tests never hang
func recvFrame(t *testing.T, ch <-chan Frame, within time.Duration) Frame {
	t.Helper()
	select {
	case f, ok := <-ch:
		if !ok {
			t.Fatalf("outbox closed unexpectedly")
		}
		return f
	case <-time.After(within):
		t.Fatalf("timed out waiting for frame")
		return Frame{} // unreachable
	}
}

func recvClosed(t *testing.T, ch <-chan Frame, within time.Duration) {
	t.Helper()
	select {
	case f, ok := <-ch:
		if ok {
			t.Fatalf("expected closed outbox, got frame: %+v", f)
		}
	case <-time.After(within):
		t.Fatalf("timed out waiting for outbox close")
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func seededStore(t *testing.T) *store.MemStore {
	t.Helper()
	m := store.NewMemStore()
	ctx := context.Background()
	if err := m.CreateSession(ctx, &store.Session{
		ID: "s1", MatchID: "m1", GameType: "questions",
		Status: store.StatusWaiting, GameData: datatypes.JSON("{}"),
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}
	if err := m.CreatePlayer(ctx, &store.Player{
		ID: "p1", SessionID: "s1", UserID: "u1", IsReady: true,
		PlayerData: datatypes.JSON("{}"), JoinedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestChannel_SubscribeSnapshotThenEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := seededStore(t)
	c := NewChannel(ctx, SessionTopic("s1"), StoreProvider{St: m}, zap.NewNop())

	out := make(chan Frame, 4)
	c.Inbox() <- Subscribe{ClientID: "c1", Outbox: out}

	// snapshot frame arrives first and carries the full roster
	first := recvFrame(t, out, 100*time.Millisecond)
	if first.Snapshot == nil {
		t.Fatalf("want snapshot frame first, got %+v", first)
	}
	if first.Snapshot.Session == nil || first.Snapshot.Session.ID != "s1" {
		t.Fatalf("snapshot session wrong: %+v", first.Snapshot.Session)
	}
	if len(first.Snapshot.Players) != 1 {
		t.Fatalf("want 1 player in snapshot, got %d", len(first.Snapshot.Players))
	}

	c.Inbox() <- Publish{Event: Event{Table: TablePlayers, Op: OpInsert, Row: "row"}}
	next := recvFrame(t, out, 100*time.Millisecond)
	if next.Event == nil || next.Event.Op != OpInsert {
		t.Fatalf("want insert event frame, got %+v", next)
	}

	c.Inbox() <- Shutdown{}
	recvClosed(t, out, 100*time.Millisecond)
}

func TestChannel_EventsArriveInPublishOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewChannel(ctx, SessionTopic("s1"), StoreProvider{St: seededStore(t)}, zap.NewNop())

	out := make(chan Frame, 16)
	c.Inbox() <- Subscribe{ClientID: "c1", Outbox: out}
	_ = recvFrame(t, out, 100*time.Millisecond) // snapshot

	for i := 0; i < 5; i++ {
		c.Inbox() <- Publish{Event: Event{Table: TableSessions, Op: OpUpdate, Row: i}}
	}
	for i := 0; i < 5; i++ {
		f := recvFrame(t, out, 100*time.Millisecond)
		if f.Event == nil || f.Event.Row != i {
			t.Fatalf("event %d out of order: %+v", i, f)
		}
	}
}

func TestChannel_DropSlowSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewChannel(ctx, SessionTopic("s1"), StoreProvider{St: seededStore(t)}, zap.NewNop())

	out := make(chan Frame, 1) // snapshot fills the buffer
	c.Inbox() <- Subscribe{ClientID: "c1", Outbox: out}

	c.Inbox() <- Publish{Event: Event{Table: TableSessions, Op: OpUpdate}}

	reply := make(chan View, 1)
	c.Inbox() <- GetState{Reply: reply}
	view := recvView(t, reply, 100*time.Millisecond)
	if view.NumSubscribers != 0 {
		t.Fatalf("expected slow subscriber to be dropped; NumSubscribers=%d", view.NumSubscribers)
	}
}

func TestChannel_SnapshotFailureDropsSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// empty store: the session topic has no row, so the snapshot read fails
	c := NewChannel(ctx, SessionTopic("missing"), StoreProvider{St: store.NewMemStore()}, zap.NewNop())

	out := make(chan Frame, 4)
	c.Inbox() <- Subscribe{ClientID: "c1", Outbox: out}
	recvClosed(t, out, 100*time.Millisecond)
}

func TestHub_EnsureSameChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx, StoreProvider{St: seededStore(t)}, zap.NewNop())

	c1 := h.Ensure(SessionTopic("s1"))
	c2 := h.Ensure(SessionTopic("s1"))
	if c1 == nil || c1 != c2 {
		t.Fatalf("expected the same channel pointer")
	}
	if h.Ensure(MatchTopic("s1")) == c1 {
		t.Fatalf("match and session topics must not share a channel")
	}
}

func TestHub_PublishReachesSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub(ctx, StoreProvider{St: seededStore(t)}, zap.NewNop())

	out := make(chan Frame, 4)
	h.Ensure(MatchTopic("m1")).Inbox() <- Subscribe{ClientID: "c1", Outbox: out}
	_ = recvFrame(t, out, 100*time.Millisecond) // snapshot (empty score set)

	h.Publish(MatchTopic("m1"), Event{Table: TableScores, Op: OpUpdate, Row: "row"})
	f := recvFrame(t, out, 100*time.Millisecond)
	if f.Event == nil || f.Event.Table != TableScores {
		t.Fatalf("want scores event, got %+v", f)
	}
}
