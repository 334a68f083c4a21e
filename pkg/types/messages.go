// Package types holds the wire shapes shared with clients. Feed frames are
// defined next to the feed itself; these are the request/response bodies of
// the coordinator's HTTP surface.
package types

import "encoding/json"

// Client -> Server

type CreateSessionRequest struct {
	MatchID  string `json:"matchId"`
	GameType string `json:"gameType"`
}

type PatchSessionRequest struct {
	Status       *string         `json:"status,omitempty"`
	CurrentRound *int            `json:"currentRound,omitempty"`
	GameData     json.RawMessage `json:"gameData,omitempty"`
}

type PatchPlayerRequest struct {
	IsReady    *bool           `json:"isReady,omitempty"`
	PlayerData json.RawMessage `json:"playerData,omitempty"`
}

type AwardPointsRequest struct {
	Awards []PointsAward `json:"awards"`
}

type PointsAward struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

// Server -> Client

type ErrorResponse struct {
	Error string `json:"error"`
}
