package repositories

import (
	"context"
	"errors"

	"monalert/internal/model"
)

var ErrNotFound = errors.New("record not found")

// CaseStatusRepository keeps an append-only history of case observations.
type CaseStatusRepository interface {
	// LatestCaseStatus returns the newest observation by ObservedAt or ErrNotFound.
	LatestCaseStatus(ctx context.Context, receiptNum string) (model.CaseStatus, error)
	AppendCaseStatus(ctx context.Context, status model.CaseStatus) error
}

// AppointmentRepository keeps a single best appointment date.
type AppointmentRepository interface {
	// CurrentAppointment returns the stored date or ErrNotFound.
	CurrentAppointment(ctx context.Context) (model.Appointment, error)
	// ReplaceAppointment inserts next when previous is nil, otherwise replaces
	// the record holding previous. ErrNotFound if that record is gone.
	ReplaceAppointment(ctx context.Context, previous *model.Appointment, next model.Appointment) error
}

type Store interface {
	CaseStatusRepository
	AppointmentRepository
	Close() error
}
