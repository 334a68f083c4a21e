package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore backs the row store with postgres via gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Session{}, &Player{}, &Score{})
}

func (g *GormStore) CreateSession(ctx context.Context, s *Session) error {
	if err := g.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (g *GormStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := g.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (g *GormStore) ActiveSessionForMatch(ctx context.Context, matchID string) (*Session, error) {
	var s Session
	err := g.db.WithContext(ctx).
		Where("match_id = ? AND status IN ?", matchID, []SessionStatus{StatusWaiting, StatusPlaying}).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active session for match: %w", err)
	}
	return &s, nil
}

func (g *GormStore) UpdateSession(ctx context.Context, s *Session) error {
	if err := g.db.WithContext(ctx).Save(s).Error; err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (g *GormStore) CreatePlayer(ctx context.Context, p *Player) error {
	if err := g.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

func (g *GormStore) GetPlayer(ctx context.Context, sessionID, userID string) (*Player, error) {
	var p Player
	err := g.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return &p, nil
}

func (g *GormStore) PlayersForSession(ctx context.Context, sessionID string) ([]Player, error) {
	var players []Player
	err := g.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("joined_at ASC").
		Find(&players).Error
	if err != nil {
		return nil, fmt.Errorf("players for session: %w", err)
	}
	return players, nil
}

func (g *GormStore) UpdatePlayer(ctx context.Context, p *Player) error {
	if err := g.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	return nil
}

func (g *GormStore) DeletePlayer(ctx context.Context, sessionID, userID string) error {
	err := g.db.WithContext(ctx).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Delete(&Player{}).Error
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}

// AddPoints is a single upsert with an in-database increment, so concurrent
// awards to the same user never lose an update.
func (g *GormStore) AddPoints(ctx context.Context, matchID, userID string, points int) (*Score, error) {
	now := time.Now().UTC()
	row := Score{
		ID:        uuid.NewString(),
		MatchID:   matchID,
		UserID:    userID,
		Points:    points,
		UpdatedAt: now,
	}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "match_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":     gorm.Expr("scores.points + ?", points),
			"updated_at": now,
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("add points: %w", err)
	}

	var updated Score
	err = g.db.WithContext(ctx).
		Where("match_id = ? AND user_id = ?", matchID, userID).
		First(&updated).Error
	if err != nil {
		return nil, fmt.Errorf("add points readback: %w", err)
	}
	return &updated, nil
}

func (g *GormStore) ScoresForMatch(ctx context.Context, matchID string) ([]Score, error) {
	var scores []Score
	err := g.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("points DESC").
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("scores for match: %w", err)
	}
	return scores, nil
}
