package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lukemcneil/shields-up-engineering-client/internal/hub"
	"github.com/lukemcneil/shields-up-engineering-client/internal/logger"
)

// SetupRoutes builds the bridge router. j may be nil when no journal is kept.
func SetupRoutes(h *hub.Hub, j JournalReader, log *zap.Logger) http.Handler {
	log = logger.OrNop(log)
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)

	r.Get("/sessions", ListSessions(h))
	r.Post("/sessions", CreateSession(h))
	r.Get("/sessions/{id}/view", GetView(h))
	r.Post("/sessions/{id}/gestures", PostGesture(h))
	r.Get("/sessions/{id}/ws", Stream(h, log))
	r.Delete("/sessions/{id}", DeleteSession(h))

	if j != nil {
		r.Get("/games/{game}/journal", RecentJournal(j))
	}
	return r
}
