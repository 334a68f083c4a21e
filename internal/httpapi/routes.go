package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tabletalk/icebreaker-backend/internal/auth"
	"github.com/tabletalk/icebreaker-backend/internal/ws"
)

func SetupRoutes(api *API, wsHandler *ws.Handler, verifier *auth.Verifier) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", healthz)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))

		r.Post("/sessions", api.createSession)
		r.Post("/sessions/{sessionID}/join", api.joinSession)
		r.Post("/sessions/{sessionID}/leave", api.leaveSession)
		r.Patch("/sessions/{sessionID}", api.patchSession)
		r.Patch("/sessions/{sessionID}/players/me", api.patchPlayer)
		r.Post("/sessions/{sessionID}/end", api.endSession)

		r.Post("/matches/{matchID}/points", api.awardPoints)
		r.Get("/matches/{matchID}/leaderboard", api.getLeaderboard)

		r.Get("/content/questions", api.getQuestion)
		r.Get("/content/wordpairs", api.getWordPair)

		r.Get("/ws/sessions/{sessionID}", wsHandler.SessionFeed)
		r.Get("/ws/matches/{matchID}", wsHandler.MatchFeed)
	})

	return r
}
