package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/tabletalk/icebreaker-backend/internal/store"
)

func player(userID string, ready bool, data string) store.Player {
	return store.Player{
		UserID:     userID,
		IsReady:    ready,
		PlayerData: datatypes.JSON(data),
	}
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"questions", "wordpairs"} {
		typ, ok := ParseType(s)
		assert.True(t, ok, s)
		assert.Equal(t, Type(s), typ)
	}
	_, ok := ParseType("charades")
	assert.False(t, ok)
}

func TestLookup_EveryTypeHasAVariant(t *testing.T) {
	for _, typ := range []Type{TypeQuestions, TypeWordPairs} {
		v, err := Lookup(typ)
		require.NoError(t, err)
		assert.Equal(t, typ, v.Type())
		assert.Greater(t, v.MinPlayers(), 1)
		assert.NotEmpty(t, v.InitialGameData())
		assert.NotEmpty(t, v.TransientPlayerKeys())
	}
	_, err := Lookup(Type("charades"))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestCanStart(t *testing.T) {
	v, err := Lookup(TypeQuestions)
	require.NoError(t, err)

	tests := []struct {
		name    string
		players []store.Player
		wantErr error
	}{
		{
			name:    "no players",
			players: nil,
			wantErr: ErrNotEnoughPlayers,
		},
		{
			name:    "below minimum",
			players: []store.Player{player("u1", true, "{}")},
			wantErr: ErrNotEnoughPlayers,
		},
		{
			name: "second player not ready",
			players: []store.Player{
				player("u1", true, "{}"),
				player("u2", false, "{}"),
			},
			wantErr: ErrPlayersNotReady,
		},
		{
			name: "all ready",
			players: []store.Player{
				player("u1", true, "{}"),
				player("u2", true, "{}"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanStart(v, tt.players)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAllHaveKey(t *testing.T) {
	players := []store.Player{
		player("u1", true, `{"answer":"pizza"}`),
		player("u2", true, `{"answer":"sushi","extra":1}`),
	}
	assert.True(t, AllHaveKey(players, "answer"))
	assert.False(t, AllHaveKey(players, "guesses"))
	assert.False(t, AllHaveKey(nil, "answer"))

	players[1].PlayerData = datatypes.JSON(`{}`)
	assert.False(t, AllHaveKey(players, "answer"))
}

func TestStripKeys(t *testing.T) {
	data := datatypes.JSON(`{"answer":"pizza","displayName":"Ana","guesses":{"u2":"u3"}}`)
	out, err := StripKeys(data, []string{"answer", "guesses"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"displayName":"Ana"}`, string(out))

	// stripping again changes nothing
	again, err := StripKeys(out, []string{"answer", "guesses"})
	require.NoError(t, err)
	assert.JSONEq(t, string(out), string(again))

	empty, err := StripKeys(nil, []string{"answer"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestQuestions_ResetRoundIsIdempotent(t *testing.T) {
	v := Questions{}
	data := datatypes.JSON(`{"stage":"reveal","questionId":"q4"}`)

	once, err := v.ResetRound(data)
	require.NoError(t, err)
	twice, err := v.ResetRound(once)
	require.NoError(t, err)

	assert.JSONEq(t, string(once), string(twice))
	assert.JSONEq(t, `{"stage":"submit"}`, string(once))
}

func TestQuestions_Phase(t *testing.T) {
	v := Questions{}
	players := []store.Player{
		player("u1", true, `{"answer":"pizza"}`),
		player("u2", true, `{}`),
	}

	assert.Equal(t, PhaseLobby, v.Phase(store.StatusWaiting, v.InitialGameData(), players))
	assert.Equal(t, PhaseDone, v.Phase(store.StatusFinished, v.InitialGameData(), players))
	assert.Equal(t, PhaseSubmit, v.Phase(store.StatusPlaying, v.InitialGameData(), players))

	// all answers in: renders guess even before the host flips the stage
	players[1].PlayerData = datatypes.JSON(`{"answer":"sushi"}`)
	assert.Equal(t, PhaseGuess, v.Phase(store.StatusPlaying, v.InitialGameData(), players))

	revealed := datatypes.JSON(`{"stage":"reveal","questionId":"q1"}`)
	assert.Equal(t, PhaseReveal, v.Phase(store.StatusPlaying, revealed, players))
}

func TestWordPairs_Phase(t *testing.T) {
	v := WordPairs{}
	players := []store.Player{
		player("u1", true, `{"word":"espresso"}`),
		player("u2", true, `{"word":"espresso"}`),
		player("u3", true, `{"word":"ristretto"}`),
	}

	assert.Equal(t, PhaseDiscuss, v.Phase(store.StatusPlaying, v.InitialGameData(), players))

	voting := datatypes.JSON(`{"stage":"vote","pairId":"wp1","imposterUserId":"u3"}`)
	assert.Equal(t, PhaseVote, v.Phase(store.StatusPlaying, voting, players))

	for i := range players {
		players[i].PlayerData = datatypes.JSON(`{"word":"x","vote":"u3"}`)
	}
	assert.Equal(t, PhaseReveal, v.Phase(store.StatusPlaying, voting, players))
}

func TestWordPairs_ResetRoundClearsRoundFields(t *testing.T) {
	v := WordPairs{}
	data := datatypes.JSON(`{"stage":"reveal","pairId":"wp3","imposterUserId":"u2"}`)
	out, err := v.ResetRound(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"assign"}`, string(out))
}
