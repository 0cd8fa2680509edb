package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP surface. Everything except the health check sits
// behind the bearer-token middleware.
func NewRouter(h *Handlers, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Route("/challenges", func(r chi.Router) {
			r.Post("/", h.CreateChallenge)
			r.Get("/", h.ListChallenges)
			r.Get("/{challengeID}", h.GetChallenge)
			r.Post("/{challengeID}/respond", h.Respond)
			r.Post("/{challengeID}/go-live", h.GoLive)
			r.Post("/{challengeID}/finalize", h.Finalize)
		})

		r.Route("/scoreboard", func(r chi.Router) {
			r.Post("/{challengeID}", h.PublishScore)
			r.Get("/{challengeID}", h.GetScore)
		})

		r.Get("/leaderboard", h.Leaderboard)
		r.Post("/profiles/claim", h.ClaimProfile)
		r.Post("/push-tokens", h.RegisterPushToken)
		r.Get("/activity", h.ListActivity)
	})

	return r
}
