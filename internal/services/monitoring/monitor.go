package monitoring

import (
	"context"
	"fmt"

	"monalert/internal/logger"
	"monalert/internal/model"
)

// Monitor is one kind of watched resource with state type S. A nil *S from
// Previous means nothing was stored yet; from Observe it means the source had
// nothing to report.
type Monitor[S any] interface {
	Name() string
	Previous(ctx context.Context) (*S, error)
	Observe(ctx context.Context) (*S, error)
	Save(ctx context.Context, previous *S, current S) error
	ShouldAlert(previous *S, current S) bool
	Notification(previous *S, current S) model.Notification
}

type Result struct {
	Name     string
	Observed bool
	Alerted  bool
}

// Run performs one check: read stored state, observe, persist, then notify
// if the monitor says so. The write is never rolled back when the
// notification fails.
func Run[S any](ctx context.Context, m Monitor[S], notifier Notifier) (Result, error) {
	result := Result{Name: m.Name()}

	previous, err := m.Previous(ctx)
	if err != nil {
		return result, fmt.Errorf("load previous state: %w", err)
	}

	current, err := m.Observe(ctx)
	if err != nil {
		return result, err
	}
	if current == nil {
		logger.Info(ctx, "=> Done! Nothing observed")
		return result, nil
	}
	result.Observed = true

	if err := m.Save(ctx, previous, *current); err != nil {
		return result, fmt.Errorf("save state: %w", err)
	}

	if !m.ShouldAlert(previous, *current) {
		logger.Info(ctx, "=> Done! Nothing to notify!")
		return result, nil
	}

	logger.Info(ctx, "=> Populating notification...")
	if err := notifier.Send(ctx, m.Notification(previous, *current)); err != nil {
		return result, err
	}
	result.Alerted = true
	logger.Info(ctx, "=> Done! Notification sent!")

	return result, nil
}
