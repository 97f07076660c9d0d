package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/notify"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/sentinel"
	"github.com/jmassie/standard-forestry-operations-api/pkg/requestcontext"
)

// Update replaces an application's scalar fields and its setts, sends the
// confirmation email, and returns the refreshed aggregate.
//
// The field update and sett replacement commit together: previous setts are
// deleted and the new ones created concurrently inside one transaction, and
// any failure rolls the whole change back. The email is sent after commit. If
// it fails the update stays committed and the error wraps *NotificationError.
func (s *Service) Update(ctx context.Context, id models.ApplicationID, req *models.UpdateRequest) (*models.Application, error) {
	ctx, span := s.tracer.Start(ctx, "application.Update")
	defer span.End()
	span.SetAttributes(attribute.Int("application.id", int(id)))
	start := time.Now()
	defer s.observeUpdate(start)

	now := requestcontext.Now(ctx)
	var updated *models.Application
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		app, err := s.applications.FindForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return notFound()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
		}
		req.Normalize()
		if err := req.Validate(); err != nil {
			return err
		}

		app.ApplyFields(req.ApplicationFields, now)
		if err := s.applications.Update(txCtx, app); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update application")
		}
		if err := s.replaceSetts(txCtx, id, req.Setts, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to replace setts")
		}
		updated = app
		return nil
	})
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "update failed")
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("application.setts", len(req.Setts)))

	email := confirmationEmail(updated, now, s.notification)
	if err := s.notifier.SendEmail(ctx, email); err != nil {
		s.incrementNotificationFailure()
		s.logger.ErrorContext(ctx, "confirmation email failed after update",
			"application_id", id,
			"reference", email.Reference,
			"error", err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "notification failed")
		return nil, dErrors.Wrap(&NotificationError{ApplicationID: id, Err: err},
			dErrors.CodeDependencyFailed, "application updated but the confirmation email could not be sent")
	}

	s.logger.InfoContext(ctx, "application updated",
		"application_id", id,
		"setts", len(req.Setts),
	)
	return s.Get(ctx, id)
}

// replaceSetts deletes the application's setts and creates the new ones
// concurrently, waiting for every insert.
func (s *Service) replaceSetts(ctx context.Context, id models.ApplicationID, entries []models.SettEntry, now time.Time) error {
	if err := s.setts.DeleteByApplication(ctx, id); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		sett := models.NewSett(id, entry, now)
		g.Go(func() error {
			return s.setts.Create(gctx, sett)
		})
	}
	return g.Wait()
}

// confirmationEmail builds the email telling the applicant their licence
// has been issued.
func confirmationEmail(app *models.Application, now time.Time, cfg NotificationConfig) notify.Email {
	licenceNo := app.ID.LicenceNumber()
	return notify.Email{
		EmailAddress: app.EmailAddress,
		TemplateID:   cfg.TemplateID,
		ReplyToID:    cfg.ReplyToID,
		Reference:    licenceNo,
		Personalisation: map[string]any{
			"licenceNo":     licenceNo,
			"convictions":   notify.YesNo(app.Convictions),
			"noConvictions": notify.YesNo(!app.Convictions),
			"comply":        notify.YesNo(app.ComplyWithTerms),
			"noComply":      notify.YesNo(!app.ComplyWithTerms),
			"expiryDate":    models.ExpiryDate(now),
		},
	}
}
