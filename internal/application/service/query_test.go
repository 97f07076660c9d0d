package service

import (
	"errors"

	"go.uber.org/mock/gomock"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/sentinel"
)

func ptr[T any](v T) *T { return &v }

func (s *ServiceSuite) TestGetAndList() {
	mem := newMemoryStores()
	s.seed(mem.apps, 9, 3, 5)
	s.Require().NoError(mem.setts.Create(s.ctx, models.NewSett(5, models.SettEntry{ID: "S1"}, s.now)))
	svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger))

	s.Run("get includes setts", func() {
		app, err := svc.Get(s.ctx, 5)
		s.Require().NoError(err)
		s.Require().Len(app.Setts, 1)
		s.Equal("S1", app.Setts[0].Sett)
	})

	s.Run("get of unknown id is not found", func() {
		_, err := svc.Get(s.ctx, 999999)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("list is ordered and hides revoked applications", func() {
		s.Require().True(svc.Revoke(s.ctx, 9, breach))

		apps, err := svc.List(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(apps, 2)
		s.Equal(models.ApplicationID(3), apps[0].ID)
		s.Empty(apps[0].Setts)
		s.NotNil(apps[0].Setts)
		s.Equal(models.ApplicationID(5), apps[1].ID)
		s.Len(apps[1].Setts, 1)
	})
}

func (s *ServiceSuite) TestListEmpty() {
	mem := newMemoryStores()
	svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger))

	apps, err := svc.List(s.ctx)
	s.Require().NoError(err)
	s.NotNil(apps)
	s.Empty(apps)
}

func (s *ServiceSuite) TestPatch() {
	s.Run("applies the cleaned fields only", func() {
		mem := newMemoryStores()
		s.seed(mem.apps, 12)
		s.Require().NoError(mem.setts.Create(s.ctx, models.NewSett(12, models.SettEntry{ID: "S1"}, s.now)))
		svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger))

		clean, err := svc.Patch(s.ctx, 12, models.Patch{
			FullName:        ptr("  Brock "),
			AddressPostcode: ptr("iv3 8nw"),
			Convictions:     ptr(false),
		})
		s.Require().NoError(err)
		s.Equal(models.Patch{FullName: ptr("Brock"), AddressPostcode: ptr("IV3 8NW"), Convictions: ptr(false)}, *clean)

		app, err := svc.Get(s.ctx, 12)
		s.Require().NoError(err)
		s.Equal("Brock", app.FullName)
		s.Equal("IV3 8NW", app.AddressPostcode)
		s.Len(app.Setts, 1, "patch never touches setts")
	})

	s.Run("invalid postcode never reaches the store", func() {
		svc := New(s.mockApps, s.mockSetts, s.mockRevocations, WithLogger(s.logger))
		_, err := svc.Patch(s.ctx, 12, models.Patch{AddressPostcode: ptr("ZZ9 9ZZ")})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing application", func() {
		s.mockApps.EXPECT().Patch(gomock.Any(), models.ApplicationID(404), gomock.Any(), s.now).
			Return(sentinel.ErrNotFound)
		svc := New(s.mockApps, s.mockSetts, s.mockRevocations, WithLogger(s.logger))

		_, err := svc.Patch(s.ctx, 404, models.Patch{FullName: ptr("x")})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure is internal", func() {
		s.mockApps.EXPECT().Patch(gomock.Any(), models.ApplicationID(12), gomock.Any(), gomock.Any()).
			Return(errors.New("connection refused"))
		svc := New(s.mockApps, s.mockSetts, s.mockRevocations, WithLogger(s.logger))

		_, err := svc.Patch(s.ctx, 12, models.Patch{FullName: ptr("x")})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
