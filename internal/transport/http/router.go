package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"corpcheck/internal/platform/metrics"
	"corpcheck/internal/platform/middleware"
	"corpcheck/pkg/platform/httputil"
)

// NewRouter mounts the handler behind the shared middleware chain plus the
// operational endpoints.
func NewRouter(handler *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestMeta)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	handler.Register(r)
	return r
}
