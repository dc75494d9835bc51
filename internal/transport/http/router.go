package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"songquiz-service/internal/app"
)

// NewRouter mounts the REST API and the websocket endpoints.
func NewRouter(quizzes *app.QuizService, challenges *app.ChallengeService, rankings *app.RankingService) http.Handler {
	api := NewAPIHandler(quizzes, challenges, rankings)
	ws := NewWSHandler(challenges, rankings)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", api.Catalog)
		r.Get("/quiz", api.Quiz)

		r.Route("/challenges", func(r chi.Router) {
			r.Post("/", api.StartChallenge)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.ChallengeState)
				r.Post("/answer", api.Answer)
				r.Post("/reveal", api.Reveal)
				r.Post("/next", api.Next)
				r.Post("/finish", api.Finish)
				r.Get("/result", api.Result)
				r.Post("/ranking", api.Register)
			})
		})

		r.Get("/rankings", api.ListRankings)
		r.Post("/rankings", api.SubmitRanking)
	})

	r.Get("/ws/challenge", ws.ServeChallenge)
	r.Get("/ws/rankings", ws.ServeRankings)
	return r
}
