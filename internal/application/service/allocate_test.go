package service

import (
	"errors"
	"sync"

	"go.uber.org/mock/gomock"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/models"
	dErrors "github.com/jmassie/standard-forestry-operations-api/pkg/domain-errors"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/sentinel"
)

func (s *ServiceSuite) TestRandomIDStaysInIdentitySpace() {
	for range 10000 {
		id := randomID()
		s.Require().GreaterOrEqual(int(id), 1)
		s.Require().LessOrEqual(int(id), models.MaxApplicationID)
	}
}

func (s *ServiceSuite) TestCreate() {
	s.Run("skips an identity that is already taken", func() {
		mem := newMemoryStores()
		s.seed(mem.apps, 500)
		svc := New(mem.apps, mem.setts, mem.revocations,
			WithStoreTx(mem.tx), WithLogger(s.logger), WithIDGenerator(sequence(500, 500, 501)))

		app, err := svc.Create(s.ctx)
		s.Require().NoError(err)
		s.Equal(models.ApplicationID(501), app.ID)
		s.Equal(s.now, app.CreatedAt)
		s.Empty(app.FullName)
	})

	s.Run("gives up after ten collisions", func() {
		s.mockApps.EXPECT().CreateIfIDAvailable(gomock.Any(), gomock.Any()).
			Return(sentinel.ErrAlreadyUsed).Times(10)
		svc := New(s.mockApps, s.mockSetts, s.mockRevocations,
			WithLogger(s.logger), WithIDGenerator(sequence(1)))

		app, err := svc.Create(s.ctx)
		s.Require().Error(err)
		s.Nil(app)
		s.ErrorIs(err, ErrAllocationExhausted)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("other store failures are not retried", func() {
		s.mockApps.EXPECT().CreateIfIDAvailable(gomock.Any(), gomock.Any()).
			Return(errors.New("connection refused")).Times(1)
		svc := New(s.mockApps, s.mockSetts, s.mockRevocations,
			WithLogger(s.logger), WithIDGenerator(sequence(1, 2)))

		_, err := svc.Create(s.ctx)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.NotErrorIs(err, ErrAllocationExhausted)
	})

	s.Run("draws identities in range by default", func() {
		for i := 0; i < 1000; i++ {
			id := randomID()
			s.GreaterOrEqual(int(id), 1)
			s.LessOrEqual(int(id), models.MaxApplicationID)
		}
	})
}

// TestConcurrentCreateNeverDuplicates runs many allocations at once against a
// store that enforces uniqueness atomically.
func (s *ServiceSuite) TestConcurrentCreateNeverDuplicates() {
	mem := newMemoryStores()
	svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger))

	const goroutines = 100
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[models.ApplicationID]int)
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app, err := svc.Create(s.ctx)
			if err != nil {
				return
			}
			mu.Lock()
			seen[app.ID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Len(seen, goroutines)
	for id, n := range seen {
		s.Equal(1, n, "identity %d handed out twice", id)
	}
	apps, err := mem.apps.List(s.ctx)
	s.Require().NoError(err)
	s.Len(apps, goroutines)
}

// TestConcurrentCreateInSmallSpace forces heavy contention: every success is
// still unique and failures are only exhaustion.
func (s *ServiceSuite) TestConcurrentCreateInSmallSpace() {
	mem := newMemoryStores()
	var mu sync.Mutex
	next := 0
	gen := func() models.ApplicationID {
		mu.Lock()
		defer mu.Unlock()
		next++
		return models.ApplicationID(next%20 + 1)
	}
	svc := New(mem.apps, mem.setts, mem.revocations, WithStoreTx(mem.tx), WithLogger(s.logger), WithIDGenerator(gen))

	var (
		wg        sync.WaitGroup
		successes sync.Map
		failures  int32
		fmu       sync.Mutex
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app, err := svc.Create(s.ctx)
			if err != nil {
				s.ErrorIs(err, ErrAllocationExhausted)
				fmu.Lock()
				failures++
				fmu.Unlock()
				return
			}
			_, dup := successes.LoadOrStore(app.ID, true)
			s.False(dup, "identity %d handed out twice", app.ID)
		}()
	}
	wg.Wait()

	apps, err := mem.apps.List(s.ctx)
	s.Require().NoError(err)
	s.Len(apps, 20)
	s.Equal(int32(20), failures)
}
