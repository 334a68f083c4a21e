package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionForRound_DeterministicAndTotal(t *testing.T) {
	l := NewStaticLibrary()

	q0 := l.QuestionForRound(0)
	assert.Equal(t, q0, l.QuestionForRound(0), "same round, same prompt")
	assert.NotEqual(t, q0, l.QuestionForRound(1))

	// wraps instead of running out, and tolerates junk input
	assert.Equal(t, q0, l.QuestionForRound(len(defaultQuestions)))
	assert.Equal(t, q0, l.QuestionForRound(-3))
}

func TestLookupByID(t *testing.T) {
	l := NewStaticLibrary()

	q := l.QuestionForRound(4)
	got, err := l.QuestionByID(q.ID)
	require.NoError(t, err)
	assert.Equal(t, q, got)

	_, err = l.QuestionByID("qX")
	assert.ErrorIs(t, err, ErrNotInBank)

	p := l.WordPairForRound(2)
	gotPair, err := l.WordPairByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, gotPair)

	_, err = l.WordPairByID("wpX")
	assert.ErrorIs(t, err, ErrNotInBank)
}
