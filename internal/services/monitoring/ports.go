package monitoring

import (
	"context"
	"time"

	"monalert/internal/model"
)

type Notifier interface {
	Send(ctx context.Context, notification model.Notification) error
}

type CaseStatusSource interface {
	FetchStatus(ctx context.Context, receiptNum string) (model.CaseStatus, error)
}

type AvailabilitySource interface {
	FetchDates(ctx context.Context) ([]time.Time, error)
}
