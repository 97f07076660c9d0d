package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/sentinel"
	"github.com/jmassie/standard-forestry-operations-api/pkg/requestcontext"
)

// Create allocates a fresh identity and persists an empty application under it.
//
// The store's insert-if-absent is the only uniqueness check: a conflict means
// another application holds the drawn identity, so a new one is drawn. Any
// other store failure is returned at once. After maxAllocationAttempts
// conflicts the call fails with ErrAllocationExhausted.
func (s *Service) Create(ctx context.Context) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.Create")
	defer span.End()
	start := time.Now()
	defer s.observeCreate(start)

	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		app := models.NewApplication(s.nextID(), requestcontext.Now(ctx))

		err := s.applications.CreateIfIDAvailable(ctx, app)
		if err == nil {
			span.SetAttributes(
				attribute.Int("application.id", int(app.ID)),
				attribute.Int("allocation.attempts", attempt),
			)
			s.incrementCreated()
			s.logger.InfoContext(ctx, "application created",
				"application_id", app.ID,
				"attempts", attempt,
			)
			return app, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "create failed")
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
		}
		s.incrementCollision()
		s.logger.DebugContext(ctx, "application identity collision",
			"application_id", app.ID,
			"attempt", attempt,
		)
	}

	s.incrementExhausted()
	s.logger.ErrorContext(ctx, "application identity allocation exhausted",
		"attempts", maxAllocationAttempts,
	)
	span.SetStatus(codes.Error, "allocation exhausted")
	return nil, dErrors.Wrap(ErrAllocationExhausted, dErrors.CodeUnavailable,
		"no free application number found, try again")
}
