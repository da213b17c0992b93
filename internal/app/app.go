package app

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"monalert/internal/config"
	"monalert/internal/model"
	"monalert/internal/repositories"
	"monalert/internal/services/monitoring"
)

type App struct {
	Config             *config.Config
	Pool               *pgxpool.Pool
	Store              repositories.Store
	Notifier           monitoring.Notifier
	CaseSource         monitoring.CaseStatusSource
	AvailabilitySource monitoring.AvailabilitySource

	ownsPool bool
}

// CaseStatusJobs returns one job per receipt number, in order.
func (a *App) CaseStatusJobs(receiptNums []string) []monitoring.Job {
	jobs := make([]monitoring.Job, 0, len(receiptNums))
	for _, receiptNum := range receiptNums {
		m := monitoring.NewCaseStatusMonitor(receiptNum, a.CaseSource, a.Store)
		jobs = append(jobs, monitoring.NewJob[model.CaseStatus](m, a.Notifier))
	}
	return jobs
}

func (a *App) AppointmentJobs() []monitoring.Job {
	m := monitoring.NewAppointmentMonitor(a.AvailabilitySource, a.Store)
	return []monitoring.Job{monitoring.NewJob[model.Appointment](m, a.Notifier)}
}

func (a *App) Close() error {
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.ownsPool && a.Pool != nil {
		a.Pool.Close()
	}
	return err
}
