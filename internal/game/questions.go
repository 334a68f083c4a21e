package game

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/tabletalk/icebreaker-backend/internal/store"
)

// Questions sub-phases while playing.
const (
	PhaseSubmit Phase = "submit"
	PhaseGuess  Phase = "guess"
	PhaseReveal Phase = "reveal"
)

// QuestionsData is the gameData schema for the questions game. Each round,
// every player answers the round's question anonymously, then players guess
// who wrote which answer; the revealer scores correct guesses.
type QuestionsData struct {
	// Stage is the sub-phase within playing: submit, guess, or reveal.
	Stage Phase `json:"stage"`
	// QuestionID points into the question bank for the current round.
	QuestionID string `json:"questionId,omitempty"`
}

// Per-player fields: "answer" (this round's submission) and "guesses"
// (this round's authorship guesses). Both are round-transient.
const (
	questionsKeyAnswer  = "answer"
	questionsKeyGuesses = "guesses"
)

type Questions struct{}

func (Questions) Type() Type      { return TypeQuestions }
func (Questions) MinPlayers() int { return 2 }

func (Questions) InitialGameData() datatypes.JSON {
	return mustJSON(QuestionsData{Stage: PhaseSubmit})
}

func (Questions) ResetRound(data datatypes.JSON) (datatypes.JSON, error) {
	var d QuestionsData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode questions data: %w", err)
		}
	}
	d.Stage = PhaseSubmit
	d.QuestionID = ""
	return mustJSON(d), nil
}

func (Questions) TransientPlayerKeys() []string {
	return []string{questionsKeyAnswer, questionsKeyGuesses}
}

func (Questions) Phase(status store.SessionStatus, data datatypes.JSON, players []store.Player) Phase {
	switch status {
	case store.StatusWaiting:
		return PhaseLobby
	case store.StatusFinished:
		return PhaseDone
	}

	var d QuestionsData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &d); err != nil {
			return PhaseSubmit
		}
	}
	switch d.Stage {
	case PhaseGuess, PhaseReveal:
		return d.Stage
	default:
		// Everyone answered but the host has not flipped the stage yet;
		// render guess so all clients converge without an extra write.
		if AllHaveKey(players, questionsKeyAnswer) {
			return PhaseGuess
		}
		return PhaseSubmit
	}
}
