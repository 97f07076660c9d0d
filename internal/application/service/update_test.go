package service

import (
	"context"
	"errors"

	"go.uber.org/mock/gomock"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/notify"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestUpdateMissingApplication() {
	withoutSetts := &models.UpdateRequest{ApplicationFields: models.ApplicationFields{FullName: "x"}}
	negativeEntrances := sampleUpdate()
	negativeEntrances.Setts[0].Entrances = -4

	payloads := map[string]*models.UpdateRequest{
		"well formed":        sampleUpdate(),
		"no setts":           withoutSetts,
		"negative entrances": negativeEntrances,
		"nil request":        nil,
	}
	for name, req := range payloads {
		s.Run(name, func() {
			s.mockApps.EXPECT().FindForUpdate(gomock.Any(), models.ApplicationID(999999)).
				Return(nil, sentinel.ErrNotFound)
			// No writes and no email: any other call fails the test.
			svc := New(s.mockApps, s.mockSetts, s.mockRevocations,
				WithLogger(s.logger), WithNotification(s.mockNotifier, DefaultNotificationConfig))

			app, err := svc.Update(s.ctx, 999999, req)
			s.Require().Error(err)
			s.Nil(app)
			s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "got %v", err)
		})
	}
}

func (s *ServiceSuite) TestUpdateMissingApplicationInMemory() {
	mem := newMemoryStores()
	svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger),
		WithNotification(s.mockNotifier, DefaultNotificationConfig))

	_, err := svc.Update(s.ctx, 999999, &models.UpdateRequest{ApplicationFields: models.ApplicationFields{FullName: "x"}})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "got %v", err)
}

func (s *ServiceSuite) TestUpdateReplacesSettsAndNotifiesOnce() {
	mem := newMemoryStores()
	s.seed(mem.apps, 42, 43)
	s.Require().NoError(mem.setts.Create(s.ctx, models.NewSett(42, models.SettEntry{ID: "stale"}, s.now)))
	s.Require().NoError(mem.setts.Create(s.ctx, models.NewSett(43, models.SettEntry{ID: "other"}, s.now)))
	sent := s.mustNotify()

	svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger),
		WithNotification(s.mockNotifier, DefaultNotificationConfig))

	app, err := svc.Update(s.ctx, 42, sampleUpdate())
	s.Require().NoError(err)

	s.Equal(models.ApplicationID(42), app.ID)
	s.Equal("Brock Badger", app.FullName)
	s.Equal("Inverness", app.AddressTown)
	s.True(app.ComplyWithTerms)
	s.Equal(s.now, app.UpdatedAt)
	s.Require().Len(app.Setts, 2)
	labels := []string{app.Setts[0].Sett, app.Setts[1].Sett}
	s.ElementsMatch([]string{"S1", "S2"}, labels)
	for _, sett := range app.Setts {
		s.Equal(models.ApplicationID(42), sett.ApplicationID)
		s.NotZero(sett.ID)
	}

	other, err := svc.Get(s.ctx, 43)
	s.Require().NoError(err)
	s.Require().Len(other.Setts, 1, "setts of other applications are untouched")

	s.Equal("NS-SFO-42", sent.Reference)
	s.Equal("brock@example.org", sent.EmailAddress)
	s.Equal(DefaultNotificationConfig.TemplateID, sent.TemplateID)
	s.Equal(DefaultNotificationConfig.ReplyToID, sent.ReplyToID)
}

func (s *ServiceSuite) TestUpdateRollsBackWhenASettFails() {
	mem := newMemoryStores()
	s.seed(mem.apps, 42)
	s.Require().NoError(mem.setts.Create(s.ctx, models.NewSett(42, models.SettEntry{ID: "kept"}, s.now)))

	failing := &failingSettStore{InMemorySetts: mem.setts, failOn: "S2"}
	svc := New(mem.apps, failing, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger),
		WithNotification(s.mockNotifier, DefaultNotificationConfig))

	_, err := svc.Update(s.ctx, 42, sampleUpdate())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	app, err := svc.Get(s.ctx, 42)
	s.Require().NoError(err)
	s.Empty(app.FullName, "scalar fields rolled back")
	s.Require().Len(app.Setts, 1)
	s.Equal("kept", app.Setts[0].Sett, "previous setts restored")
}

func (s *ServiceSuite) TestUpdateNotificationFailureKeepsCommittedChanges() {
	mem := newMemoryStores()
	s.seed(mem.apps, 42)
	sendErr := &notify.APIError{StatusCode: 500}
	s.mockNotifier.EXPECT().SendEmail(gomock.Any(), gomock.Any()).Return(sendErr).Times(1)

	svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger),
		WithNotification(s.mockNotifier, DefaultNotificationConfig))

	app, err := svc.Update(s.ctx, 42, sampleUpdate())
	s.Require().Error(err)
	s.Nil(app)
	s.True(dErrors.HasCode(err, dErrors.CodeDependencyFailed))

	var notifyErr *NotificationError
	s.Require().True(errors.As(err, &notifyErr))
	s.Equal(models.ApplicationID(42), notifyErr.ApplicationID)
	s.ErrorIs(err, sendErr)

	stored, err := svc.Get(s.ctx, 42)
	s.Require().NoError(err)
	s.Equal("Brock Badger", stored.FullName)
	s.Len(stored.Setts, 2)
}

func (s *ServiceSuite) TestUpdateValidatesRequest() {
	s.mockApps.EXPECT().FindForUpdate(gomock.Any(), models.ApplicationID(42)).
		Return(models.NewApplication(42, s.now), nil).Times(2)
	// Rejected before any write and without an email.
	svc := New(s.mockApps, s.mockSetts, s.mockRevocations,
		WithLogger(s.logger), WithNotification(s.mockNotifier, DefaultNotificationConfig))

	req := sampleUpdate()
	req.Setts[0].Entrances = -1
	_, err := svc.Update(s.ctx, 42, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = svc.Update(s.ctx, 42, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestConfirmationEmail() {
	app := models.NewApplication(42, s.now)
	app.EmailAddress = "brock@example.org"
	app.Convictions = true
	app.ComplyWithTerms = false

	email := confirmationEmail(app, s.now, NotificationConfig{TemplateID: "tmpl", ReplyToID: "reply"})

	s.Equal("tmpl", email.TemplateID)
	s.Equal("reply", email.ReplyToID)
	s.Equal("NS-SFO-42", email.Reference)
	s.Equal(map[string]any{
		"licenceNo":     "NS-SFO-42",
		"convictions":   "yes",
		"noConvictions": "no",
		"comply":        "no",
		"noComply":      "yes",
		"expiryDate":    "30/11/2026",
	}, email.Personalisation)
}

// failingSettStore fails Create for one sett label.
type failingSettStore struct {
	InMemorySetts SettStore
	failOn        string
}

func (f *failingSettStore) Create(ctx context.Context, sett *models.Sett) error {
	if sett.Sett == f.failOn {
		return errors.New("insert sett: connection reset")
	}
	return f.InMemorySetts.Create(ctx, sett)
}

func (f *failingSettStore) DeleteByApplication(ctx context.Context, id models.ApplicationID) error {
	return f.InMemorySetts.DeleteByApplication(ctx, id)
}

func (f *failingSettStore) ListByApplications(ctx context.Context, ids []models.ApplicationID) (map[models.ApplicationID][]*models.Sett, error) {
	return f.InMemorySetts.ListByApplications(ctx, ids)
}
