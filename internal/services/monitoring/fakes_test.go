package monitoring

import (
	"context"
	"time"

	"monalert/internal/model"
)

type fakeCaseSource struct {
	statuses map[string]model.CaseStatus
	err      error
	calls    int
}

func (f *fakeCaseSource) FetchStatus(_ context.Context, receiptNum string) (model.CaseStatus, error) {
	f.calls++
	if f.err != nil {
		return model.CaseStatus{}, f.err
	}
	return f.statuses[receiptNum], nil
}

type fakeDateSource struct {
	dates []time.Time
	err   error
}

func (f *fakeDateSource) FetchDates(context.Context) ([]time.Time, error) {
	return f.dates, f.err
}

type fakeNotifier struct {
	sent []model.Notification
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, n model.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func date(value string) time.Time {
	parsed, err := model.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return parsed
}
