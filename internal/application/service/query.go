package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/sanitize"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/sentinel"
	"github.com/jmassie/standard-forestry-operations-api/pkg/requestcontext"
)

// Get returns the application with its setts.
func (s *Service) Get(ctx context.Context, id models.ApplicationID) (*models.Application, error) {
	app, err := s.applications.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, notFound()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	if err := s.attachSetts(ctx, []*models.Application{app}); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns every live application with its setts, ordered by identity.
func (s *Service) List(ctx context.Context) ([]*models.Application, error) {
	apps, err := s.applications.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	if err := s.attachSetts(ctx, apps); err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []*models.Application{}
	}
	return apps, nil
}

func (s *Service) attachSetts(ctx context.Context, apps []*models.Application) error {
	if len(apps) == 0 {
		return nil
	}
	ids := make([]models.ApplicationID, len(apps))
	for i, app := range apps {
		ids[i] = app.ID
	}
	groups, err := s.setts.ListByApplications(ctx, ids)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load setts")
	}
	for _, app := range apps {
		app.Setts = groups[app.ID]
		if app.Setts == nil {
			app.Setts = []*models.Sett{}
		}
	}
	return nil
}

// Patch applies a partial update to the scalar fields and returns the cleaned
// patch. Setts are never touched.
func (s *Service) Patch(ctx context.Context, id models.ApplicationID, p models.Patch) (*models.Patch, error) {
	ctx, span := s.tracer.Start(ctx, "application.Patch")
	defer span.End()
	span.SetAttributes(attribute.Int("application.id", int(id)))

	clean, err := sanitize.Patch(p)
	if err != nil {
		return nil, err
	}

	if err := s.applications.Patch(ctx, id, clean, requestcontext.Now(ctx)); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, notFound()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to patch application")
	}

	s.logger.InfoContext(ctx, "application patched", "application_id", id)
	return &clean, nil
}
