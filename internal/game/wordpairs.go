package game

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/tabletalk/icebreaker-backend/internal/store"
)

// WordPairs sub-phases while playing.
const (
	PhaseAssign  Phase = "assign"
	PhaseDiscuss Phase = "discuss"
	PhaseVote    Phase = "vote"
)

// WordPairsData is the gameData schema for the word-pair imposter game: all
// players but one receive the same word, the imposter receives its close
// sibling, and the table votes on who had the odd word out.
type WordPairsData struct {
	Stage Phase `json:"stage"`
	// PairID points into the word-pair bank for the current round.
	PairID string `json:"pairId,omitempty"`
	// ImposterUserID is set by the host when dealing words for a round.
	ImposterUserID string `json:"imposterUserId,omitempty"`
}

// Per-player fields: "word" (the dealt word) and "vote" (the accused user).
// Both are round-transient.
const (
	wordPairsKeyWord = "word"
	wordPairsKeyVote = "vote"
)

type WordPairs struct{}

func (WordPairs) Type() Type      { return TypeWordPairs }
func (WordPairs) MinPlayers() int { return 3 }

func (WordPairs) InitialGameData() datatypes.JSON {
	return mustJSON(WordPairsData{Stage: PhaseAssign})
}

func (WordPairs) ResetRound(data datatypes.JSON) (datatypes.JSON, error) {
	var d WordPairsData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode wordpairs data: %w", err)
		}
	}
	d.Stage = PhaseAssign
	d.PairID = ""
	d.ImposterUserID = ""
	return mustJSON(d), nil
}

func (WordPairs) TransientPlayerKeys() []string {
	return []string{wordPairsKeyWord, wordPairsKeyVote}
}

func (WordPairs) Phase(status store.SessionStatus, data datatypes.JSON, players []store.Player) Phase {
	switch status {
	case store.StatusWaiting:
		return PhaseLobby
	case store.StatusFinished:
		return PhaseDone
	}

	var d WordPairsData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d); err != nil {
			return PhaseAssign
		}
	}
	switch d.Stage {
	case PhaseDiscuss, PhaseReveal:
		return d.Stage
	case PhaseVote:
		if AllHaveKey(players, wordPairsKeyVote) {
			return PhaseReveal
		}
		return PhaseVote
	default:
		if AllHaveKey(players, wordPairsKeyWord) {
			return PhaseDiscuss
		}
		return PhaseAssign
	}
}
