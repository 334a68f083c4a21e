package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/tabletalk/icebreaker-backend/internal/auth"
	"github.com/tabletalk/icebreaker-backend/internal/content"
	"github.com/tabletalk/icebreaker-backend/internal/coordinator"
	"github.com/tabletalk/icebreaker-backend/internal/game"
	"github.com/tabletalk/icebreaker-backend/internal/leaderboard"
	"github.com/tabletalk/icebreaker-backend/internal/store"
	"github.com/tabletalk/icebreaker-backend/pkg/types"
)

type API struct {
	coord   *coordinator.Coordinator
	library content.Library
	mirror  *leaderboard.Mirror // nil when redis is not configured
	log     *zap.Logger
}

func NewAPI(coord *coordinator.Coordinator, library content.Library, mirror *leaderboard.Mirror, log *zap.Logger) *API {
	return &API{coord: coord, library: library, mirror: mirror, log: log}
}

func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	gameType, ok := game.ParseType(req.GameType)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown game type")
		return
	}
	session, err := a.coord.Create(r.Context(), req.MatchID, auth.UserID(r.Context()), gameType)
	if err != nil {
		a.writeCoordError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (a *API) joinSession(w http.ResponseWriter, r *http.Request) {
	err := a.coord.Join(r.Context(), chi.URLParam(r, "sessionID"), auth.UserID(r.Context()))
	if err != nil {
		a.writeCoordError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) leaveSession(w http.ResponseWriter, r *http.Request) {
	err := a.coord.Leave(r.Context(), chi.URLParam(r, "sessionID"), auth.UserID(r.Context()))
	if err != nil {
		a.writeCoordError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) patchSession(w http.ResponseWriter, r *http.Request) {
	var req types.PatchSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	patch := coordinator.SessionPatch{CurrentRound: req.CurrentRound}
	if req.Status != nil {
		status := store.SessionStatus(*req.Status)
		switch status {
		case store.StatusWaiting, store.StatusPlaying, store.StatusFinished:
			patch.Status = &status
		default:
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
	}
	if req.GameData != nil {
		patch.GameData = datatypes.JSON(req.GameData)
	}
	session, err := a.coord.PatchSession(r.Context(), chi.URLParam(r, "sessionID"), auth.UserID(r.Context()), patch)
	if err != nil {
		a.writeCoordError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (a *API) patchPlayer(w http.ResponseWriter, r *http.Request) {
	var req types.PatchPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	patch := coordinator.PlayerPatch{IsReady: req.IsReady}
	if req.PlayerData != nil {
		patch.PlayerData = datatypes.JSON(req.PlayerData)
	}
	player, err := a.coord.PatchPlayer(r.Context(), chi.URLParam(r, "sessionID"), auth.UserID(r.Context()), patch)
	if err != nil {
		a.writeCoordError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (a *API) endSession(w http.ResponseWriter, r *http.Request) {
	err := a.coord.End(r.Context(), chi.URLParam(r, "sessionID"), auth.UserID(r.Context()))
	if err != nil {
		a.writeCoordError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) awardPoints(w http.ResponseWriter, r *http.Request) {
	var req types.AwardPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	awards := make([]coordinator.Award, 0, len(req.Awards))
	for _, aw := range req.Awards {
		awards = append(awards, coordinator.Award{UserID: aw.UserID, Points: aw.Points})
	}
	scores, err := a.coord.AwardPoints(r.Context(), chi.URLParam(r, "matchID"), auth.UserID(r.Context()), awards)
	if err != nil {
		a.writeCoordError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (a *API) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	if a.mirror != nil {
		entries, err := a.mirror.Top(r.Context(), matchID, 50)
		if err == nil {
			writeJSON(w, http.StatusOK, entries)
			return
		}
		a.log.Warn("leaderboard mirror read failed, falling back to store", zap.Error(err))
	}
	scores, err := a.coord.Scores(r.Context(), matchID)
	if err != nil {
		a.writeCoordError(w, err)
		return
	}
	entries := make([]leaderboard.Entry, 0, len(scores))
	for i, s := range scores {
		entries = append(entries, leaderboard.Entry{UserID: s.UserID, Points: s.Points, Rank: int64(i) + 1})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) getQuestion(w http.ResponseWriter, r *http.Request) {
	round, _ := strconv.Atoi(r.URL.Query().Get("round"))
	writeJSON(w, http.StatusOK, a.library.QuestionForRound(round))
}

func (a *API) getWordPair(w http.ResponseWriter, r *http.Request) {
	round, _ := strconv.Atoi(r.URL.Query().Get("round"))
	writeJSON(w, http.StatusOK, a.library.WordPairForRound(round))
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (a *API) writeCoordError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coordinator.ErrNotAMember):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, coordinator.ErrNotHost):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, coordinator.ErrNotFound), errors.Is(err, coordinator.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, coordinator.ErrActiveSessionExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, coordinator.ErrSessionFinished),
		errors.Is(err, coordinator.ErrRoundNotMonotonic),
		errors.Is(err, coordinator.ErrNegativePoints),
		errors.Is(err, game.ErrNotEnoughPlayers),
		errors.Is(err, game.ErrPlayersNotReady),
		errors.Is(err, game.ErrUnknownType):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		a.log.Error("coordinator call failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "storage failure")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}
