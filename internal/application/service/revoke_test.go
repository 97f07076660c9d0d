package service

import (
	"errors"

	"go.uber.org/mock/gomock"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
)

var breach = models.RevocationRequest{Reason: "Licence conditions breached", RevokedBy: "licensing officer"}

func (s *ServiceSuite) TestRevokeSuccess() {
	mem := newMemoryStores()
	s.seed(mem.apps, 7)
	svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger))

	s.True(svc.Revoke(s.ctx, 7, breach))

	_, err := svc.Get(s.ctx, 7)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	records, err := svc.Revocations(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(models.ApplicationID(7), records[0].ApplicationID)
	s.Equal(breach.Reason, records[0].Reason)
	s.Equal(s.now, records[0].CreatedAt)

	s.False(svc.Revoke(s.ctx, 7, breach), "already revoked")
}

func (s *ServiceSuite) TestRevokeRollsBackWhenRecordingFails() {
	mem := newMemoryStores()
	s.seed(mem.apps, 7)
	s.mockRevocations.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(errors.New("insert revocation: disk full"))
	svc := New(mem.apps, mem.setts, s.mockRevocations, WithStoreTx(mem.tx), WithLogger(s.logger))

	s.False(svc.Revoke(s.ctx, 7, breach))

	app, err := svc.Get(s.ctx, 7)
	s.Require().NoError(err, "application 7 must survive")
	s.Equal(models.ApplicationID(7), app.ID)
}

func (s *ServiceSuite) TestRevokeRollsBackWhenDeleteFails() {
	mem := newMemoryStores()
	s.mockApps.EXPECT().FindForUpdate(gomock.Any(), models.ApplicationID(7)).
		Return(models.NewApplication(7, s.now), nil)
	s.mockApps.EXPECT().Delete(gomock.Any(), models.ApplicationID(7), s.now).
		Return(errors.New("delete application: deadlock detected"))
	svc := New(s.mockApps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger))

	s.False(svc.Revoke(s.ctx, 7, breach))

	records, err := svc.Revocations(s.ctx, 7)
	s.Require().NoError(err)
	s.Empty(records, "revocation record rolled back with the failed delete")
}

func (s *ServiceSuite) TestRevokeUnknownApplication() {
	mem := newMemoryStores()
	svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger))

	s.False(svc.Revoke(s.ctx, 404, breach))

	records, err := svc.Revocations(s.ctx, 404)
	s.Require().NoError(err)
	s.Empty(records)
}
