package feed

import (
	"context"
	"fmt"

	"github.com/tabletalk/icebreaker-backend/internal/store"
)

type Table string

const (
	TableSessions Table = "sessions"
	TablePlayers  Table = "players"
	TableScores   Table = "scores"
)

type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is one row-level change. Rows are authoritative: clients overwrite
// their local copy wholesale on every event.
type Event struct {
	Table Table       `json:"table"`
	Op    Op          `json:"operation"`
	Row   interface{} `json:"row"`
}

// TopicKind scopes a feed: one session's rows, or one match's scores.
type TopicKind string

const (
	KindSession TopicKind = "session"
	KindMatch   TopicKind = "match"
)

type Topic struct {
	Kind TopicKind
	ID   string
}

func SessionTopic(sessionID string) Topic { return Topic{Kind: KindSession, ID: sessionID} }
func MatchTopic(matchID string) Topic     { return Topic{Kind: KindMatch, ID: matchID} }

func (t Topic) String() string { return string(t.Kind) + ":" + t.ID }

// Snapshot is the point-in-time read delivered to a subscriber before its
// event stream begins. Session topics fill Session+Players; match topics
// fill Scores.
type Snapshot struct {
	Session *store.Session `json:"session,omitempty"`
	Players []store.Player `json:"players,omitempty"`
	Scores  []store.Score  `json:"scores,omitempty"`
}

// Frame is what a subscriber receives on its outbox: exactly one snapshot
// frame first, then event frames.
type Frame struct {
	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Event    *Event    `json:"event,omitempty"`
}

// SnapshotProvider produces the connect-time snapshot for a topic.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, t Topic) (*Snapshot, error)
}

// StoreProvider snapshots straight from the row store.
type StoreProvider struct {
	St store.Store
}

func (p StoreProvider) Snapshot(ctx context.Context, t Topic) (*Snapshot, error) {
	switch t.Kind {
	case KindSession:
		s, err := p.St.GetSession(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		players, err := p.St.PlayersForSession(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		return &Snapshot{Session: s, Players: players}, nil
	case KindMatch:
		scores, err := p.St.ScoresForMatch(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		return &Snapshot{Scores: scores}, nil
	default:
		return nil, fmt.Errorf("unknown topic kind %q", t.Kind)
	}
}
