// Package repotest holds the behaviour every repositories.Store must share.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monalert/internal/model"
	"monalert/internal/repositories"
)

// Run exercises store with case status and appointment scenarios. newStore
// must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) repositories.Store) {
	t.Helper()

	t.Run("case status latest wins", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		_, err := store.LatestCaseStatus(ctx, "IOE0123456789")
		require.ErrorIs(t, err, repositories.ErrNotFound)

		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		records := []model.CaseStatus{
			{ObservedAt: base.Add(2 * time.Hour), ReceiptNum: "IOE0123456789", Status: "Case Was Approved", Description: "approved"},
			{ObservedAt: base, ReceiptNum: "IOE0123456789", Status: "Case Was Received", Description: "received"},
			{ObservedAt: base.Add(3 * time.Hour), ReceiptNum: "IOE0000000001", Status: "Case Was Denied", Description: "other case"},
		}
		for _, record := range records {
			require.NoError(t, store.AppendCaseStatus(ctx, record))
		}

		latest, err := store.LatestCaseStatus(ctx, "IOE0123456789")
		require.NoError(t, err)
		require.Equal(t, "Case Was Approved", latest.Status)
		require.Equal(t, "approved", latest.Description)
		require.True(t, latest.ObservedAt.Equal(base.Add(2*time.Hour)))
	})

	t.Run("appointment insert then replace", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		_, err := store.CurrentAppointment(ctx)
		require.ErrorIs(t, err, repositories.ErrNotFound)

		first := model.Appointment{Date: mustDate(t, "2024-03-10")}
		require.NoError(t, store.ReplaceAppointment(ctx, nil, first))

		current, err := store.CurrentAppointment(ctx)
		require.NoError(t, err)
		require.Equal(t, "2024-03-10", current.DateText())

		better := model.Appointment{Date: mustDate(t, "2024-02-01")}
		require.NoError(t, store.ReplaceAppointment(ctx, &current, better))

		current, err = store.CurrentAppointment(ctx)
		require.NoError(t, err)
		require.Equal(t, "2024-02-01", current.DateText())

		stale := model.Appointment{Date: mustDate(t, "2023-12-31")}
		err = store.ReplaceAppointment(ctx, &stale, model.Appointment{Date: mustDate(t, "2024-01-15")})
		require.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()

	parsed, err := model.ParseDate(value)
	require.NoError(t, err)
	return parsed
}
