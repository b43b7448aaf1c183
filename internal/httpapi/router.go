package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robotomize/swapkit"
	"go.uber.org/zap"
)

// NewRouter wires routes and middlewares.
func NewRouter(s swapkit.Swapper, logger *zap.SugaredLogger) http.Handler {
	h := &handler{swapper: s}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/quotes", h.quotes)
		api.Get("/convert", h.convert)
	})

	return r
}
