// Package httptransport wires the validation, completion, and badge
// endpoints to the lifecycle service. Handlers are thin JSON glue; scoring
// and state-machine logic stay in the services.
package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"corpcheck/internal/badge"
	evalmodels "corpcheck/internal/evaluation/models"
	"corpcheck/internal/lifecycle/models"
	"corpcheck/internal/lifecycle/ports"
	dErrors "corpcheck/pkg/domain-errors"
	"corpcheck/pkg/platform/httputil"
	"corpcheck/pkg/requestcontext"
)

// Service defines the lifecycle operations the transport depends on.
type Service interface {
	ResolvePackage(ctx context.Context, identity models.PackageIdentity, force bool) (*models.PackageRecord, error)
	FindPackage(ctx context.Context, identity models.PackageIdentity) (*models.PackageRecord, error)
	GetPackage(ctx context.Context, cid uuid.UUID) (*models.PackageRecord, error)
	ResolveEvaluation(ctx context.Context, pkg *models.PackageRecord, rawRuleSet []byte) (*models.EvaluationRecord, error)
	ListEvaluations(ctx context.Context, packageID uuid.UUID) ([]*models.EvaluationRecord, error)
	Complete(ctx context.Context, cid uuid.UUID, data *models.PackageData, workerErr string) error
}

// Handler wires qualification endpoints to the lifecycle service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs the transport handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts all endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/validation", h.HandleValidate)
	r.Get("/validation/{cid}", h.HandleGetValidation)
	r.Post("/complete", h.HandleComplete)
	r.Get("/badge/{name}/{version}", h.HandleBadge)
}

// HandleValidate handles POST /validation: content-addressed get-or-create of
// the package record plus the (package, rule-set) evaluation record.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, err := httputil.Decode[ValidationRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	pkg, err := h.service.ResolvePackage(ctx, req.Identity(), req.Force)
	if err != nil {
		h.writeServiceError(ctx, w, "resolve package failed", err)
		return
	}
	evaluation, err := h.service.ResolveEvaluation(ctx, pkg, req.RuleSet)
	if err != nil {
		h.writeServiceError(ctx, w, "resolve evaluation failed", err)
		return
	}

	h.logger.InfoContext(ctx, "validation resolved",
		"request_id", requestcontext.RequestID(ctx),
		"cid", pkg.ID,
		"package", pkg.PackageName,
		"state", pkg.State.Type,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, NewValidationResponse(pkg, evaluation))
}

// HandleGetValidation handles GET /validation/{cid}.
func (h *Handler) HandleGetValidation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cid, err := uuid.Parse(chi.URLParam(r, "cid"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid cid"))
		return
	}
	pkg, err := h.service.GetPackage(ctx, cid)
	if err != nil {
		h.writeServiceError(ctx, w, "get package failed", err)
		return
	}
	evaluations, err := h.service.ListEvaluations(ctx, pkg.ID)
	if err != nil {
		h.writeServiceError(ctx, w, "list evaluations failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewPackageResponse(pkg, evaluations))
}

// HandleComplete handles POST /complete, the tree builder's callback.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := httputil.Decode[CompletionRequest](r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.CID == uuid.Nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cid is required"))
		return
	}
	if err := h.service.Complete(ctx, req.CID, req.Data, req.WorkerError()); err != nil {
		h.writeServiceError(ctx, w, "completion failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleBadge handles GET /badge/{name}/{version}. Lookups never create
// records or enqueue work; an unvalidated package shows as failed.
func (h *Handler) HandleBadge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := models.PackageIdentity{
		PackageName: chi.URLParam(r, "name"),
		Version:     chi.URLParam(r, "version"),
	}
	pkg, err := h.service.FindPackage(ctx, identity)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		h.writeServiceError(ctx, w, "badge lookup failed", err)
		return
	}

	var result *evalmodels.FinalEvaluation
	if pkg != nil {
		evaluations, err := h.service.ListEvaluations(ctx, pkg.ID)
		if err != nil {
			h.writeServiceError(ctx, w, "badge lookup failed", err)
			return
		}
		result = defaultResult(evaluations)
	}
	httputil.WriteJSON(w, http.StatusOK, BadgeResponse{Badge: badge.Project(pkg, result)})
}

// defaultResult picks the record scored under the default policy when
// present, otherwise any scored record.
func defaultResult(evaluations []*models.EvaluationRecord) *evalmodels.FinalEvaluation {
	var fallback *evalmodels.FinalEvaluation
	for _, rec := range evaluations {
		if rec.Result == nil {
			continue
		}
		if rec.RuleSetHash == "" {
			return rec.Result
		}
		if fallback == nil {
			fallback = rec.Result
		}
	}
	return fallback
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	if errors.Is(err, ports.ErrNotFound) {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "record not found"))
		return
	}
	// Keep transport detail out of the response body.
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "backend unavailable"))
}
