package coordinator

import (
	"context"

	"go.uber.org/zap"

	"github.com/tabletalk/icebreaker-backend/internal/feed"
	"github.com/tabletalk/icebreaker-backend/internal/store"
)

// Award is one user's points from a single scoring event.
type Award struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

// AwardPoints adds each award to the match-scoped score rows and returns the
// match's full score set. Each increment is one atomic upsert; callers are
// responsible for issuing a given logical award at most once.
func (c *Coordinator) AwardPoints(ctx context.Context, matchID, userID string, awards []Award) ([]store.Score, error) {
	if err := c.requireMember(ctx, matchID, userID); err != nil {
		return nil, err
	}
	for _, a := range awards {
		if a.Points < 0 {
			return nil, ErrNegativePoints
		}
	}

	topic := feed.MatchTopic(matchID)
	for _, a := range awards {
		row, err := c.st.AddPoints(ctx, matchID, a.UserID, a.Points)
		if err != nil {
			return nil, err
		}
		if c.mirror != nil {
			if err := c.mirror.Add(ctx, matchID, a.UserID, a.Points); err != nil {
				// The row store already holds the truth; a stale mirror
				// heals on the next award.
				c.log.Warn("score mirror update failed",
					zap.String("match", matchID),
					zap.String("user", a.UserID),
					zap.Error(err))
			}
		}
		c.hub.Publish(topic, feed.Event{Table: feed.TableScores, Op: feed.OpUpdate, Row: row})
	}
	return c.st.ScoresForMatch(ctx, matchID)
}

// Scores reads the match's current score set from the row store.
func (c *Coordinator) Scores(ctx context.Context, matchID string) ([]store.Score, error) {
	return c.st.ScoresForMatch(ctx, matchID)
}
