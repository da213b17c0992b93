package monitoring

import (
	"context"
	"errors"
	"fmt"

	"monalert/internal/logger"
	"monalert/internal/model"
	"monalert/internal/repositories"
)

const appointmentTitle = "New DMV Available Dates"

// AppointmentMonitor keeps the earliest DMV date seen so far and alerts when
// a strictly earlier one shows up.
type AppointmentMonitor struct {
	source AvailabilitySource
	repo   repositories.AppointmentRepository
}

func NewAppointmentMonitor(source AvailabilitySource, repo repositories.AppointmentRepository) *AppointmentMonitor {
	return &AppointmentMonitor{source: source, repo: repo}
}

func (m *AppointmentMonitor) Name() string {
	return "dmv-ny"
}

func (m *AppointmentMonitor) Previous(ctx context.Context) (*model.Appointment, error) {
	logger.Info(ctx, "Retrieving the best candidate...")
	current, err := m.repo.CurrentAppointment(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &current, nil
}

func (m *AppointmentMonitor) Observe(ctx context.Context) (*model.Appointment, error) {
	logger.Info(ctx, "Checking available dates...")
	dates, err := m.source.FetchDates(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		logger.Info(ctx, "=> No available dates")
		return nil, nil
	}

	best := dates[0]
	for _, date := range dates[1:] {
		if date.Before(best) {
			best = date
		}
	}
	return &model.Appointment{Date: best}, nil
}

// Save only writes when current beats the stored date.
func (m *AppointmentMonitor) Save(ctx context.Context, previous *model.Appointment, current model.Appointment) error {
	if !m.ShouldAlert(previous, current) {
		return nil
	}
	logger.Infof(ctx, "Setting %s to be the best candidate...", current.DateText())
	return m.repo.ReplaceAppointment(ctx, previous, current)
}

func (m *AppointmentMonitor) ShouldAlert(previous *model.Appointment, current model.Appointment) bool {
	return previous == nil || current.Date.Before(previous.Date)
}

func (m *AppointmentMonitor) Notification(_ *model.Appointment, current model.Appointment) model.Notification {
	return model.Notification{
		Title:   appointmentTitle,
		Message: fmt.Sprintf("Hurry! Available appointments on %s!", current.DateText()),
	}
}

var _ Monitor[model.Appointment] = (*AppointmentMonitor)(nil)
