package service

import "time"

func (s *Service) incrementCreated() {
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
}

func (s *Service) incrementCollision() {
	if s.metrics != nil {
		s.metrics.IncrementCollision()
	}
}

func (s *Service) incrementExhausted() {
	if s.metrics != nil {
		s.metrics.IncrementExhausted()
	}
}

func (s *Service) incrementNotificationFailure() {
	if s.metrics != nil {
		s.metrics.IncrementNotificationFailure()
	}
}

func (s *Service) incrementRevocation(ok bool) {
	if s.metrics != nil {
		s.metrics.IncrementRevocation(ok)
	}
}

func (s *Service) observeCreate(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCreate(start)
	}
}

func (s *Service) observeUpdate(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveUpdate(start)
	}
}

func (s *Service) observeRevoke(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveRevoke(start)
	}
}
