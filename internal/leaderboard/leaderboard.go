package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Mirror keeps a redis sorted set per match in step with the score table so
// leaderboard reads never touch the row store. The row store stays the source
// of truth; the mirror is rebuilt lazily as awards come in.
type Mirror struct {
	rdb *redis.Client
}

func New(addr string) (*Mirror, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Mirror{rdb: rdb}, nil
}

func matchKey(matchID string) string { return "leaderboard:match:" + matchID }

func (m *Mirror) Add(ctx context.Context, matchID, userID string, points int) error {
	if err := m.rdb.ZIncrBy(ctx, matchKey(matchID), float64(points), userID).Err(); err != nil {
		return fmt.Errorf("zincrby: %w", err)
	}
	return nil
}

// Entry is one leaderboard row, best first.
type Entry struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
	Rank   int64  `json:"rank"`
}

// Top returns the match's top n users by points.
func (m *Mirror) Top(ctx context.Context, matchID string, n int64) ([]Entry, error) {
	zs, err := m.rdb.ZRevRangeWithScores(ctx, matchKey(matchID), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange: %w", err)
	}
	entries := make([]Entry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, Entry{
			UserID: member,
			Points: int(z.Score),
			Rank:   int64(i) + 1,
		})
	}
	return entries, nil
}

func (m *Mirror) Close() error { return m.rdb.Close() }
