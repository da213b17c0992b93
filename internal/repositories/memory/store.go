package memory

import (
	"context"
	"fmt"
	"sync"

	"monalert/internal/model"
	"monalert/internal/repositories"
)

// Store keeps monitor state in process memory.
type Store struct {
	mu           sync.Mutex
	caseStatuses []model.CaseStatus
	appointment  *model.Appointment
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) LatestCaseStatus(_ context.Context, receiptNum string) (model.CaseStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		latest model.CaseStatus
		found  bool
	)
	for _, status := range s.caseStatuses {
		if status.ReceiptNum != receiptNum {
			continue
		}
		// Later appends win ties, like the id tiebreak in SQL.
		if !found || !status.ObservedAt.Before(latest.ObservedAt) {
			latest = status
			found = true
		}
	}
	if !found {
		return model.CaseStatus{}, repositories.ErrNotFound
	}
	return latest, nil
}

func (s *Store) AppendCaseStatus(_ context.Context, status model.CaseStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.caseStatuses = append(s.caseStatuses, status)
	return nil
}

// CaseStatuses returns a copy of every appended record.
func (s *Store) CaseStatuses() []model.CaseStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.CaseStatus(nil), s.caseStatuses...)
}

func (s *Store) CurrentAppointment(_ context.Context) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appointment == nil {
		return model.Appointment{}, repositories.ErrNotFound
	}
	return *s.appointment, nil
}

func (s *Store) ReplaceAppointment(_ context.Context, previous *model.Appointment, next model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if previous != nil {
		if s.appointment == nil || !s.appointment.Date.Equal(previous.Date) {
			return fmt.Errorf("replace appointment %s: %w", previous.DateText(), repositories.ErrNotFound)
		}
	}
	s.appointment = &next
	return nil
}

func (s *Store) Close() error {
	return nil
}

var _ repositories.Store = (*Store)(nil)
