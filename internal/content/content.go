// Package content serves the read-only prompt banks. Lookups are stateless
// and independent of session state; clients fetch prompts by round and the
// host writes the chosen id into gameData.
package content

import "errors"

var ErrNotInBank = errors.New("prompt not in bank")

type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type WordPair struct {
	ID    string `json:"id"`
	Word  string `json:"word"`
	Decoy string `json:"decoy"`
}

// Library is the lookup contract the engine consumes. The static in-memory
// implementation below ships with the server; deployments with editorial
// tooling can swap in a remote one.
type Library interface {
	QuestionForRound(round int) Question
	QuestionByID(id string) (Question, error)
	WordPairForRound(round int) WordPair
	WordPairByID(id string) (WordPair, error)
}

type StaticLibrary struct {
	questions []Question
	pairs     []WordPair
}

func NewStaticLibrary() *StaticLibrary {
	return &StaticLibrary{questions: defaultQuestions, pairs: defaultWordPairs}
}

// QuestionForRound is deterministic so every client that asks for a round's
// prompt gets the same one without coordination.
func (l *StaticLibrary) QuestionForRound(round int) Question {
	if round < 0 {
		round = 0
	}
	return l.questions[round%len(l.questions)]
}

func (l *StaticLibrary) QuestionByID(id string) (Question, error) {
	for _, q := range l.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return Question{}, ErrNotInBank
}

func (l *StaticLibrary) WordPairForRound(round int) WordPair {
	if round < 0 {
		round = 0
	}
	return l.pairs[round%len(l.pairs)]
}

func (l *StaticLibrary) WordPairByID(id string) (WordPair, error) {
	for _, p := range l.pairs {
		if p.ID == id {
			return p, nil
		}
	}
	return WordPair{}, ErrNotInBank
}
