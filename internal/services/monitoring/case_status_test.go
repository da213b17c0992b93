package monitoring

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monalert/internal/model"
	"monalert/internal/repositories/memory"
)

// TestCaseStatusShouldAlert alerts on first observation and label changes only.
func TestCaseStatusShouldAlert(t *testing.T) {
	t.Parallel()

	m := NewCaseStatusMonitor("123456789", nil, nil)
	received := model.CaseStatus{Status: "Case Was Received", Description: "We received your case"}

	require.True(t, m.ShouldAlert(nil, received))
	require.True(t, m.ShouldAlert(&received, model.CaseStatus{Status: "Case Was Approved", Description: "We received your case"}))
	require.False(t, m.ShouldAlert(&received, model.CaseStatus{Status: "Case Was Received", Description: "Something else entirely"}))
	require.True(t, m.ShouldAlert(&received, model.CaseStatus{Status: "case was received"}))
}

// TestCaseStatusNotificationMasksIdentity never leaks the receipt number.
func TestCaseStatusNotificationMasksIdentity(t *testing.T) {
	t.Parallel()

	m := NewCaseStatusMonitor("123456789", nil, nil)
	previous := model.CaseStatus{Status: "Case Was Received"}
	current := model.CaseStatus{
		Status:      "Case Was Approved",
		Description: "Your case 123456789 was approved. Keep 123456789 for reference.",
	}

	n := m.Notification(&previous, current)
	require.Equal(t, "USCIS *****6789: Case Was Approved", n.Title)
	require.Equal(t, "Your case *****6789 was approved. Keep *****6789 for reference.", n.Message)
	require.NotContains(t, n.Message, "123456789")
	require.NotContains(t, n.Title, "123456789")
}

// TestCaseStatusRun walks a receipt through first sighting, no change and a change.
func TestCaseStatusRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	notifier := &fakeNotifier{}
	source := &fakeCaseSource{statuses: map[string]model.CaseStatus{}}
	m := NewCaseStatusMonitor("IOE0123456789", source, store)

	observe := func(at time.Time, status, description string) {
		source.statuses["IOE0123456789"] = model.CaseStatus{
			ObservedAt: at, ReceiptNum: "IOE0123456789", Status: status, Description: description,
		}
	}
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	observe(base, "Case Was Received", "received IOE0123456789")
	result, err := Run[model.CaseStatus](ctx, m, notifier)
	require.NoError(t, err)
	require.True(t, result.Observed)
	require.True(t, result.Alerted)
	require.Equal(t, "uscis *********6789", result.Name)

	observe(base.Add(time.Hour), "Case Was Received", "description reworded")
	result, err = Run[model.CaseStatus](ctx, m, notifier)
	require.NoError(t, err)
	require.False(t, result.Alerted)

	observe(base.Add(2*time.Hour), "Case Was Approved", "approved IOE0123456789")
	result, err = Run[model.CaseStatus](ctx, m, notifier)
	require.NoError(t, err)
	require.True(t, result.Alerted)

	require.Len(t, store.CaseStatuses(), 3)
	require.Len(t, notifier.sent, 2)
	require.Equal(t, "approved *********6789", notifier.sent[1].Message)
}

// TestCaseStatusRunSourceFailure saves nothing and sends nothing.
func TestCaseStatusRunSourceFailure(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []error{model.ErrSourceUnavailable, model.ErrSourceFormat} {
		store := memory.NewStore()
		notifier := &fakeNotifier{}
		source := &fakeCaseSource{err: fmt.Errorf("%w: boom", sentinel)}

		_, err := Run[model.CaseStatus](context.Background(), NewCaseStatusMonitor("IOE0123456789", source, store), notifier)
		require.ErrorIs(t, err, sentinel)
		require.Empty(t, store.CaseStatuses())
		require.Empty(t, notifier.sent)
	}
}
