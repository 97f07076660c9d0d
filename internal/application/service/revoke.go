package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/sentinel"
	"github.com/jmassie/standard-forestry-operations-api/pkg/requestcontext"
)

// Revoke soft-deletes an application and records why, in one transaction:
// the application must exist, the revocation record is written, then the
// application is removed. Any failure rolls back both writes and Revoke
// reports false. The cause is logged, not returned.
func (s *Service) Revoke(ctx context.Context, id models.ApplicationID, req models.RevocationRequest) bool {
	ctx, span := s.tracer.Start(ctx, "application.Revoke")
	defer span.End()
	span.SetAttributes(attribute.Int("application.id", int(id)))
	start := time.Now()
	defer s.observeRevoke(start)

	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.applications.FindForUpdate(txCtx, id); err != nil {
			return fmt.Errorf("find application: %w", err)
		}
		if err := s.revocations.Create(txCtx, models.NewRevocation(id, req, now)); err != nil {
			return fmt.Errorf("record revocation: %w", err)
		}
		if err := s.applications.Delete(txCtx, id, now); err != nil {
			return fmt.Errorf("delete application: %w", err)
		}
		return nil
	})

	s.incrementRevocation(err == nil)
	if err != nil {
		msg := "revocation rolled back"
		if errors.Is(err, sentinel.ErrNotFound) {
			msg = "revocation of unknown application"
		}
		s.logger.WarnContext(ctx, msg,
			"application_id", id,
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "revocation failed")
		return false
	}

	s.logger.InfoContext(ctx, "application revoked",
		"application_id", id,
		"revoked_by", req.RevokedBy,
	)
	return true
}

// Revocations returns the audit records written for an application.
func (s *Service) Revocations(ctx context.Context, id models.ApplicationID) ([]*models.Revocation, error) {
	list, err := s.revocations.ListByApplication(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load revocations")
	}
	return list, nil
}
