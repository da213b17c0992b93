package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monalert/internal/config"
	"monalert/internal/providers/dmvny"
	"monalert/internal/providers/uscis"
	"monalert/internal/pushover"
	"monalert/internal/repositories/memory"
	"monalert/internal/repositories/sqlite"
	"monalert/internal/services/monitoring"
	"monalert/internal/telegram"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StoreDriver:    config.StoreDriverMemory,
		Notifier:       config.NotifierPushover,
		PushoverToken:  "t",
		PushoverUser:   "u",
		PushoverDevice: "d",
	}
}

// TestBuildDefaults wires the configured store, notifier and scrapers.
func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	application, err := NewBuilder(memoryConfig()).Build(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	require.IsType(t, &memory.Store{}, application.Store)
	require.IsType(t, &pushover.Sender{}, application.Notifier)
	require.IsType(t, &uscis.Scraper{}, application.CaseSource)
	require.IsType(t, &dmvny.Scraper{}, application.AvailabilitySource)

	jobs := application.CaseStatusJobs([]string{"IOE0000000001", "IOE0000000002"})
	require.Len(t, jobs, 2)
	require.Equal(t, "uscis *********0001", jobs[0].Name())
	require.Equal(t, "dmv-ny", application.AppointmentJobs()[0].Name())
}

// TestBuildSQLiteTelegram picks the alternative drivers.
func TestBuildSQLiteTelegram(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		StoreDriver:   config.StoreDriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "state.db"),
		Notifier:      config.NotifierTelegram,
		TelegramToken: "bot",
		TelegramChat:  "1",
	}

	application, err := NewBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	require.IsType(t, &sqlite.Store{}, application.Store)
	require.IsType(t, &telegram.Sender{}, application.Notifier)
}

// TestBuildRejectsUnknownDrivers surfaces configuration errors.
func TestBuildRejectsUnknownDrivers(t *testing.T) {
	t.Parallel()

	_, err := NewBuilder(nil).Build(context.Background())
	require.Error(t, err)

	cfg := memoryConfig()
	cfg.Notifier = "carrier-pigeon"
	_, err = NewBuilder(cfg).Build(context.Background())
	require.ErrorIs(t, err, config.ErrConfiguration)
}

// TestCaseStatusEndToEnd runs the scraper, store and Pushover sender against fake servers.
func TestCaseStatusEndToEnd(t *testing.T) {
	t.Parallel()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		_, _ = w.Write([]byte(`<div class="rows text-center"><h1>Case Was Approved</h1><p>Receipt ` + r.PostForm.Get("appReceiptNum") + ` approved.</p></div>`))
	}))
	t.Cleanup(site.Close)

	var messages []string
	push := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		messages = append(messages, r.PostForm.Get("message"))
		_, _ = w.Write([]byte(`{"status":1}`))
	}))
	t.Cleanup(push.Close)

	store := memory.NewStore()
	application, err := NewBuilder(memoryConfig(),
		WithStore(store),
		WithCaseStatusSource(uscis.NewScraper(site.Client(), uscis.WithURL(site.URL))),
		WithNotifier(pushover.NewSender(push.Client(), "t", "u", "d").WithURL(push.URL)),
	).Build(context.Background())
	require.NoError(t, err)

	results, err := monitoring.RunAll(context.Background(), application.CaseStatusJobs([]string{"123456789"}))
	require.NoError(t, err)
	require.True(t, results[0].Alerted)
	require.Equal(t, []string{"Receipt *****6789 approved."}, messages)

	latest, err := store.LatestCaseStatus(context.Background(), "123456789")
	require.NoError(t, err)
	require.Equal(t, "Case Was Approved", latest.Status)

	// A second identical check stores again but stays quiet.
	_, err = monitoring.RunAll(context.Background(), application.CaseStatusJobs([]string{"123456789"}))
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, store.CaseStatuses(), 2)
}

var (
	_ monitoring.Notifier           = (*pushover.Sender)(nil)
	_ monitoring.Notifier           = (*telegram.Sender)(nil)
	_ monitoring.CaseStatusSource   = (*uscis.Scraper)(nil)
	_ monitoring.AvailabilitySource = (*dmvny.Scraper)(nil)
)
