package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/httputil"
	"github.com/jmassie/standard-forestry-operations-api/pkg/requestcontext"
)

// Service defines the application lifecycle operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context) (*models.Application, error)
	Get(ctx context.Context, id models.ApplicationID) (*models.Application, error)
	List(ctx context.Context) ([]*models.Application, error)
	Update(ctx context.Context, id models.ApplicationID, req *models.UpdateRequest) (*models.Application, error)
	Patch(ctx context.Context, id models.ApplicationID, p models.Patch) (*models.Patch, error)
	Revoke(ctx context.Context, id models.ApplicationID, req models.RevocationRequest) bool
}

// Handler serves the v1 and v2 application routes.
type Handler struct {
	logger       *slog.Logger
	applications Service
}

// New creates a new application Handler.
func New(applications Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:       logger,
		applications: applications,
	}
}

// Register registers the application routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/applications", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
	})
	r.Route("/v2/applications", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handlePatch)
		r.Delete("/{id}", h.handleRevoke)
	})
}

// NotFound answers any unrouted path.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteMessage(w, http.StatusNotFound, "Not found.")
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.applications.Create(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to create application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, app)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	app, err := h.applications.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to get application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	apps, err := h.applications.List(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list applications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, apps)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[models.UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	app, err := h.applications.Update(ctx, id, req)
	if err != nil {
		h.fail(ctx, w, "failed to update application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

func (h *Handler) handlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	p, ok := httputil.DecodeJSON[models.Patch](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	clean, err := h.applications.Patch(ctx, id, *p)
	if err != nil {
		h.fail(ctx, w, "failed to patch application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, clean)
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.applicationID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[models.RevocationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.fail(ctx, w, "invalid revocation request", err)
		return
	}
	// A false outcome covers both a missing application and a rolled back
	// transaction; the service has already logged which.
	if !h.applications.Revoke(ctx, id, *req) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "application could not be revoked"))
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Application revoked.")
}

func (h *Handler) applicationID(w http.ResponseWriter, r *http.Request) (models.ApplicationID, bool) {
	id, err := models.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return id, true
}

// fail writes err and logs it at a level that matches its code. Client
// mistakes and missing records are not faults.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeNotFound:
		h.logger.InfoContext(ctx, msg, attrs...)
	case dErrors.CodeDependencyFailed, dErrors.CodeUnavailable:
		h.logger.WarnContext(ctx, msg, attrs...)
	default:
		h.logger.ErrorContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
