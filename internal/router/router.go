package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/openboard-dev/openboard/internal/middleware"
	"github.com/openboard-dev/openboard/internal/middleware/metrics"
	"github.com/openboard-dev/openboard/internal/setup"
)

// New creates and configures the chi router with all routes.
func New(deps *setup.Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Board-Grant"},
		AllowCredentials: true,
	}))

	// public pages embed board content; the API surface stays locked down
	apiCSP := "default-src 'none'; frame-ancestors 'none'"
	pageCSP := "default-src 'self'; img-src *; media-src *; frame-src *; style-src 'unsafe-inline' 'self'"

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.SecurityHeadersWithCSP(deps.Config.Public.SecureCookies, apiCSP))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Route("/boards", func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Post("/", h.CreateBoard)
			r.Get("/", h.GetBoards)
			r.Get("/{board}", h.GetBoard)
			r.Patch("/{board}", h.UpdateBoard)
			r.Delete("/{board}", h.DeleteBoard)
			r.Get("/{board}/analytics", h.GetBoardAnalytics)
		})

		r.Route("/editor", func(r chi.Router) {
			r.Use(authMw.NeedAuth())
			r.Get("/", h.EditorState)
			r.Post("/{board}/open", h.OpenBoard)
			r.Post("/close", h.CloseBoard)
			r.Post("/save", h.SaveBoard)
			r.Post("/undo", h.Undo)
			r.Post("/redo", h.Redo)

			r.Post("/blocks", h.AddBlock)
			r.Patch("/blocks", h.UpdateMultipleBlocks)
			r.Post("/blocks/reorder", h.ReorderBlocks)
			r.Post("/blocks/move", h.MoveBlock)
			r.Post("/blocks/batch_delete", h.DeleteMultipleBlocks)
			r.Patch("/blocks/{block}", h.UpdateBlock)
			r.Delete("/blocks/{block}", h.DeleteBlock)
			r.Post("/blocks/{block}/duplicate", h.DuplicateBlock)
			r.Post("/blocks/{block}/toggle", h.ToggleBlockVisibility)
		})

		r.Route("/public", func(r chi.Router) {
			r.Use(authMw.OptionalAuth())
			r.Get("/{username}/{slug}", h.GetPublicBoard)
			r.Post("/{username}/{slug}/unlock", h.UnlockBoard)
			r.Post("/{username}/{slug}/click", h.TrackClick)
		})
	})

	// server-rendered public pages at the root
	r.Group(func(r chi.Router) {
		r.Use(mw.SecurityHeadersWithCSP(deps.Config.Public.SecureCookies, pageCSP))
		r.Use(authMw.OptionalAuth())
		r.Get("/{username}/{slug}", h.GetPublicBoardPage)
	})

	r.MethodFunc(http.MethodOptions, "/*", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
