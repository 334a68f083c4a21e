package store

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	StatusWaiting  SessionStatus = "waiting"
	StatusPlaying  SessionStatus = "playing"
	StatusFinished SessionStatus = "finished"
)

// Session is one instance of a game being played by a match's members.
// GameData is opaque here; its schema belongs to the game variant.
type Session struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	MatchID      string         `gorm:"size:36;index;not null" json:"matchId"`
	GameType     string         `gorm:"size:32;not null" json:"gameType"`
	Status       SessionStatus  `gorm:"size:16;not null;index" json:"status"`
	CurrentRound int            `gorm:"not null" json:"currentRound"`
	HostUserID   string         `gorm:"size:36;not null" json:"hostUserId"`
	GameData     datatypes.JSON `gorm:"type:jsonb;not null" json:"gameData"`
	CreatedAt    time.Time      `gorm:"not null" json:"createdAt"`
}

// Active reports whether the session still occupies its match's single
// active slot.
func (s *Session) Active() bool {
	return s.Status == StatusWaiting || s.Status == StatusPlaying
}

type Player struct {
	ID         string         `gorm:"primaryKey;size:36" json:"id"`
	SessionID  string         `gorm:"size:36;not null;uniqueIndex:idx_players_session_user" json:"sessionId"`
	UserID     string         `gorm:"size:36;not null;uniqueIndex:idx_players_session_user" json:"userId"`
	IsReady    bool           `gorm:"not null" json:"isReady"`
	PlayerData datatypes.JSON `gorm:"type:jsonb;not null" json:"playerData"`
	JoinedAt   time.Time      `gorm:"not null" json:"joinedAt"`
}

// Score is match-scoped: it accumulates across every session the match plays.
type Score struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	MatchID   string    `gorm:"size:36;not null;uniqueIndex:idx_scores_match_user" json:"matchId"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_scores_match_user" json:"userId"`
	Points    int       `gorm:"not null" json:"points"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
