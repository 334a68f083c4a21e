package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/tabletalk/icebreaker-backend/internal/feed"
	"github.com/tabletalk/icebreaker-backend/internal/game"
	"github.com/tabletalk/icebreaker-backend/internal/store"
)

// SessionPatch is a partial update; nil fields are left alone. GameData, when
// set, replaces the session blob wholesale (the shallow-merge rule applies to
// playerData only).
type SessionPatch struct {
	Status       *store.SessionStatus
	CurrentRound *int
	GameData     datatypes.JSON
}

// PlayerPatch is a partial update to the caller's own roster row. PlayerData
// is shallow-merged key-by-key into the existing blob.
type PlayerPatch struct {
	IsReady    *bool
	PlayerData datatypes.JSON
}

// PatchSession applies a partial session update. Status and round changes are
// host-only; waiting -> playing additionally requires the start guard. A
// round increment runs the variant's reset reducer: the round-scoped gameData
// fields go back to their initial values and every player's round-transient
// keys are stripped, each change published on the feed.
func (c *Coordinator) PatchSession(ctx context.Context, sessionID, userID string, patch SessionPatch) (*store.Session, error) {
	session, err := c.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := c.requireMember(ctx, session.MatchID, userID); err != nil {
		return nil, err
	}
	if session.Status == store.StatusFinished {
		return nil, ErrSessionFinished
	}
	variant, err := game.Lookup(game.Type(session.GameType))
	if err != nil {
		return nil, err
	}

	if patch.Status != nil || patch.CurrentRound != nil {
		if session.HostUserID != userID {
			return nil, ErrNotHost
		}
	}

	if patch.Status != nil && *patch.Status != session.Status {
		if session.Status == store.StatusWaiting && *patch.Status == store.StatusPlaying {
			players, err := c.st.PlayersForSession(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			if err := game.CanStart(variant, players); err != nil {
				return nil, err
			}
		}
		session.Status = *patch.Status
	}

	if patch.GameData != nil {
		session.GameData = patch.GameData
	}

	roundAdvanced := false
	if patch.CurrentRound != nil && *patch.CurrentRound != session.CurrentRound {
		if *patch.CurrentRound < session.CurrentRound {
			return nil, ErrRoundNotMonotonic
		}
		session.CurrentRound = *patch.CurrentRound
		roundAdvanced = true
		reset, err := variant.ResetRound(session.GameData)
		if err != nil {
			return nil, err
		}
		session.GameData = reset
	}

	if err := c.st.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	topic := feed.SessionTopic(sessionID)
	c.hub.Publish(topic, feed.Event{Table: feed.TableSessions, Op: feed.OpUpdate, Row: session})

	if roundAdvanced {
		if err := c.clearTransientPlayerData(ctx, session, variant); err != nil {
			return nil, err
		}
		c.log.Info("round advanced",
			zap.String("session", sessionID),
			zap.Int("round", session.CurrentRound))
	}
	return session, nil
}

// clearTransientPlayerData strips each variant-declared round key from every
// roster row. Stripping twice is harmless, so a duplicated round advance has
// no visible effect beyond the counter.
func (c *Coordinator) clearTransientPlayerData(ctx context.Context, session *store.Session, variant game.Variant) error {
	keys := variant.TransientPlayerKeys()
	players, err := c.st.PlayersForSession(ctx, session.ID)
	if err != nil {
		return err
	}
	topic := feed.SessionTopic(session.ID)
	for i := range players {
		p := players[i]
		stripped, err := game.StripKeys(p.PlayerData, keys)
		if err != nil {
			return err
		}
		if string(stripped) == string(p.PlayerData) {
			continue
		}
		p.PlayerData = stripped
		if err := c.st.UpdatePlayer(ctx, &p); err != nil {
			return err
		}
		c.hub.Publish(topic, feed.Event{Table: feed.TablePlayers, Op: feed.OpUpdate, Row: &p})
	}
	return nil
}

// PatchPlayer updates the caller's own roster row. PlayerData keys are merged
// shallowly so two patches touching different keys both survive; overlapping
// keys are last-write-wins.
func (c *Coordinator) PatchPlayer(ctx context.Context, sessionID, userID string, patch PlayerPatch) (*store.Player, error) {
	session, err := c.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == store.StatusFinished {
		return nil, ErrSessionFinished
	}
	player, err := c.st.GetPlayer(ctx, sessionID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}

	if patch.IsReady != nil {
		player.IsReady = *patch.IsReady
	}
	if patch.PlayerData != nil {
		merged, err := mergeShallow(player.PlayerData, patch.PlayerData)
		if err != nil {
			return nil, err
		}
		player.PlayerData = merged
	}

	if err := c.st.UpdatePlayer(ctx, player); err != nil {
		return nil, err
	}
	c.hub.Publish(feed.SessionTopic(sessionID), feed.Event{Table: feed.TablePlayers, Op: feed.OpUpdate, Row: player})
	return player, nil
}

// mergeShallow overlays patch's top-level keys onto base. Nested values are
// replaced, not merged.
func mergeShallow(base, patch datatypes.JSON) (datatypes.JSON, error) {
	merged := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &merged); err != nil {
			return nil, fmt.Errorf("decode player data: %w", err)
		}
	}
	incoming := map[string]json.RawMessage{}
	if err := json.Unmarshal(patch, &incoming); err != nil {
		return nil, fmt.Errorf("decode player data patch: %w", err)
	}
	for k, v := range incoming {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode player data: %w", err)
	}
	return out, nil
}
