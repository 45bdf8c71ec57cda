package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riftops/clash-coordinator/handlers"
	"github.com/riftops/clash-coordinator/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	rosterHandler *handlers.RosterHandler,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret []byte,
	allowedOrigins []string,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Get("/tournaments", tournamentHandler.ListOpen)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", rosterHandler.ListTeams)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Post("/join", rosterHandler.JoinTeam)
			r.Post("/leave", rosterHandler.LeaveTeam)
		})
	})

	router.Route("/tentative", func(r chi.Router) {
		r.Get("/", rosterHandler.GetTentative)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Post("/join", rosterHandler.JoinTentative)
			r.Post("/leave", rosterHandler.LeaveTentative)
		})
	})

	router.Get("/ws/servers/{serverName}", webSocketHandler.ServeWs)
}
