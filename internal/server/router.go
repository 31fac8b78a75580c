package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vaughan-dsouza/notes/internal/handlers"
	"github.com/vaughan-dsouza/notes/internal/middleware"
	"github.com/vaughan-dsouza/notes/internal/store"
	"github.com/vaughan-dsouza/notes/internal/utils"
)

// RouterConfig holds what the route table needs beyond the handlers.
type RouterConfig struct {
	Tokens     middleware.TokenValidator
	Store      store.Store
	CORSOrigin string
	Logger     *slog.Logger
}

// NewRouter wires global middleware, public routes and the bearer-protected group.
func NewRouter(h *handlers.Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(chimiddleware.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// Public
	r.Get("/healthz", h.Health.Healthz)
	r.Post("/auth/register", h.Auth.Register)
	r.Post("/auth/login", h.Auth.Login)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Tokens, cfg.Store, cfg.Logger))

		r.Get("/auth/me", h.Auth.Me)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", h.Notes.ListNotes)
			r.Post("/", h.Notes.CreateNote)
			r.Get("/{id}", h.Notes.GetNote)
			r.Put("/{id}", h.Notes.UpdateNote)
			r.Delete("/{id}", h.Notes.DeleteNote)
		})
	})

	return r
}
