package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"github.com/tabletalk/icebreaker-backend/internal/store"
)

var ErrUnknownType = errors.New("unknown game type")
var ErrNotEnoughPlayers = errors.New("not enough players")
var ErrPlayersNotReady = errors.New("players not ready")

// Type tags which game a session is running. All dispatch on game behavior
// goes through Lookup so adding a variant is a compile-visible change.
type Type string

const (
	TypeQuestions Type = "questions"
	TypeWordPairs Type = "wordpairs"
)

func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeQuestions, TypeWordPairs:
		return Type(s), true
	default:
		return "", false
	}
}

// Phase is the rendered position of a session within the generic
// waiting -> playing -> finished lifecycle, including the variant's
// sub-phase while playing.
type Phase string

const (
	PhaseLobby Phase = "lobby"
	PhaseDone  Phase = "done"
)

// Variant is the contract every game type satisfies on top of the shared
// session/player model. Variants own the schema of the session's gameData and
// each player's playerData; they hold no storage of their own. Phase must be
// a pure function of its inputs.
type Variant interface {
	Type() Type
	MinPlayers() int

	// InitialGameData is the session's gameData at creation.
	InitialGameData() datatypes.JSON

	// ResetRound returns the gameData for a fresh round, clearing the
	// fields tied to the previous round and nothing else.
	ResetRound(data datatypes.JSON) (datatypes.JSON, error)

	// TransientPlayerKeys lists the playerData fields tied to a single
	// round; the coordinator strips them from every roster row on a
	// round advance.
	TransientPlayerKeys() []string

	Phase(status store.SessionStatus, data datatypes.JSON, players []store.Player) Phase
}

func Lookup(t Type) (Variant, error) {
	switch t {
	case TypeQuestions:
		return Questions{}, nil
	case TypeWordPairs:
		return WordPairs{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

// CanStart is the waiting -> playing guard shared by every variant: enough
// players, and all of them ready. Host identity is checked by the caller.
func CanStart(v Variant, players []store.Player) error {
	if len(players) < v.MinPlayers() {
		return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPlayers, len(players), v.MinPlayers())
	}
	for _, p := range players {
		if !p.IsReady {
			return ErrPlayersNotReady
		}
	}
	return nil
}

// AllHaveKey reports whether every player's playerData carries the given
// field. Sub-phase progress is evaluated by field presence, never by event
// order, so concurrent submissions commute.
func AllHaveKey(players []store.Player, key string) bool {
	for _, p := range players {
		fields := map[string]json.RawMessage{}
		if len(p.PlayerData) > 0 {
			if err := json.Unmarshal(p.PlayerData, &fields); err != nil {
				return false
			}
		}
		if _, ok := fields[key]; !ok {
			return false
		}
	}
	return len(players) > 0
}

// StripKeys removes the named fields from a playerData blob, leaving every
// other field untouched. An empty or absent blob stays empty.
func StripKeys(data datatypes.JSON, keys []string) (datatypes.JSON, error) {
	if len(data) == 0 {
		return data, nil
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode player data: %w", err)
	}
	for _, k := range keys {
		delete(fields, k)
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode player data: %w", err)
	}
	return out, nil
}

func mustJSON(v interface{}) datatypes.JSON {
	out, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return out
}
