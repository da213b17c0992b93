package monitoring

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"monalert/internal/logger"
)

// Job is a Monitor bound to its notifier with the state type erased.
type Job interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

type job[S any] struct {
	monitor  Monitor[S]
	notifier Notifier
}

func NewJob[S any](monitor Monitor[S], notifier Notifier) Job {
	return &job[S]{monitor: monitor, notifier: notifier}
}

func (j *job[S]) Name() string {
	return j.monitor.Name()
}

func (j *job[S]) Run(ctx context.Context) (Result, error) {
	return Run(ctx, j.monitor, j.notifier)
}

// RunAll runs jobs one after another. A failed job is logged and does not
// stop the rest; the returned error combines every failure.
func RunAll(ctx context.Context, jobs []Job) ([]Result, error) {
	var (
		results = make([]Result, 0, len(jobs))
		errs    error
	)

	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return results, multierr.Append(errs, err)
		}

		jobCtx := logger.WithName(ctx, j.Name())
		result, err := j.Run(jobCtx)
		results = append(results, result)
		if err != nil {
			logger.ErrorKV(jobCtx, "monitor run failed", "error", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", j.Name(), err))
		}
	}

	summarize(ctx, results, errs)
	return results, errs
}

func summarize(ctx context.Context, results []Result, errs error) {
	var observed, alerted int
	for _, r := range results {
		if r.Observed {
			observed++
		}
		if r.Alerted {
			alerted++
		}
	}
	logger.InfoKV(ctx, "summary",
		"runs", len(results),
		"observed", observed,
		"alerted", alerted,
		"failed", len(multierr.Errors(errs)),
	)
}
