package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/snapclash/arena/api/handlers"
	"github.com/snapclash/arena/app/shared/attr"
	challengeservice "github.com/snapclash/arena/app/modules/challenge/application"
	leaderboardservice "github.com/snapclash/arena/app/modules/leaderboard/application"
	leaderboardbroadcast "github.com/snapclash/arena/app/modules/leaderboard/infrastructure/broadcast"
	submissionservice "github.com/snapclash/arena/app/modules/submission/application"
	submissiondb "github.com/snapclash/arena/app/modules/submission/infrastructure/repositories"
)

// NewRouter assembles the HTTP surface for the challenge engine.
func NewRouter(
	challengeService challengeservice.Service,
	submissionService submissionservice.Service,
	rankingService leaderboardservice.Service,
	broadcaster *leaderboardbroadcast.Broadcaster,
	submissions submissiondb.SubmissionRepository,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlationID)
	r.Use(middleware.Recoverer)

	challengeHandlers := handlers.NewChallengeHandlers(challengeService, submissions)
	submissionHandlers := handlers.NewSubmissionHandlers(submissionService)
	leaderboardHandlers := handlers.NewLeaderboardHandlers(rankingService, broadcaster)

	r.Route("/api", func(r chi.Router) {
		r.Route("/challenges", func(r chi.Router) {
			r.Get("/", challengeHandlers.ListForDisplay)
			r.Post("/", challengeHandlers.CreateChallenge)
			r.Get("/current", challengeHandlers.ListCurrent)
			r.Get("/all", challengeHandlers.ListAll)
			r.Get("/{challengeID}", challengeHandlers.GetChallenge)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Post("/", submissionHandlers.Submit)
			r.Get("/check/{challengeID}", submissionHandlers.Check)
		})

		r.Route("/leaderboard/{scope}", func(r chi.Router) {
			r.Get("/", leaderboardHandlers.GetLeaderboard)
			r.Get("/position/{participantID}", leaderboardHandlers.GetPosition)
			r.Get("/stream", leaderboardHandlers.StreamLeaderboard)
			r.Get("/export", leaderboardHandlers.ExportLeaderboard)
			r.Get("/chart", leaderboardHandlers.ChartLeaderboard)
		})
	})

	return r
}

// correlationID copies the chi request id onto the context so service-layer
// log lines carry it.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := attr.WithCorrelationID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
