package cli

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monalert/internal/app"
	"monalert/internal/config"
	"monalert/internal/model"
	"monalert/internal/repositories/memory"
)

type stubCaseSource struct {
	failing map[string]bool
	seen    []string
}

func (s *stubCaseSource) FetchStatus(_ context.Context, receiptNum string) (model.CaseStatus, error) {
	s.seen = append(s.seen, receiptNum)
	if s.failing[receiptNum] {
		return model.CaseStatus{}, fmt.Errorf("%w: no status block", model.ErrSourceFormat)
	}
	return model.CaseStatus{ReceiptNum: receiptNum, Status: "Case Was Received", ObservedAt: time.Now().UTC()}, nil
}

type stubDates struct{}

func (stubDates) FetchDates(context.Context) ([]time.Time, error) {
	d, err := model.ParseDate("2024-03-10")
	return []time.Time{d}, err
}

type stubNotifier struct {
	sent []model.Notification
}

func (s *stubNotifier) Send(_ context.Context, n model.Notification) error {
	s.sent = append(s.sent, n)
	return nil
}

func setEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("NOTIFIER", "pushover")
	t.Setenv("PUSHOVER_TOKEN", "t")
	t.Setenv("PUSHOVER_USER", "u")
	t.Setenv("PUSHOVER_DEVICE", "d")
	t.Setenv("LOG_LEVEL", "")
}

func execute(t *testing.T, args []string, options ...app.BuilderOption) error {
	t.Helper()

	cmd := NewRootCommand(options...)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	return cmd.ExecuteContext(context.Background())
}

// TestUSCISRunsEveryReceipt isolates a failing receipt from the others.
func TestUSCISRunsEveryReceipt(t *testing.T) {
	setEnv(t)

	source := &stubCaseSource{failing: map[string]bool{"IOE0000000002": true}}
	notifier := &stubNotifier{}
	store := memory.NewStore()

	err := execute(t, []string{"uscis", "IOE0000000001", "IOE0000000002", " IOE0000000003 "},
		app.WithStore(store), app.WithCaseStatusSource(source), app.WithNotifier(notifier))
	require.ErrorIs(t, err, model.ErrSourceFormat)
	require.Equal(t, []string{"IOE0000000001", "IOE0000000002", "IOE0000000003"}, source.seen)
	require.Len(t, notifier.sent, 2)
	require.Len(t, store.CaseStatuses(), 2)
}

// TestUSCISRequiresReceipt rejects a bare invocation before touching anything.
func TestUSCISRequiresReceipt(t *testing.T) {
	setEnv(t)

	require.Error(t, execute(t, []string{"uscis"}))
	require.Error(t, execute(t, []string{"uscis", "  "}))
}

// TestDMVRejectsArguments accepts no positional arguments.
func TestDMVRejectsArguments(t *testing.T) {
	setEnv(t)

	require.Error(t, execute(t, []string{"dmv", "brooklyn"}))
}

// TestDMVAlertsOnFirstDate stores the date and notifies once.
func TestDMVAlertsOnFirstDate(t *testing.T) {
	setEnv(t)

	notifier := &stubNotifier{}
	store := memory.NewStore()

	err := execute(t, []string{"dmv", "--log-level", "warn"},
		app.WithStore(store), app.WithAvailabilitySource(stubDates{}), app.WithNotifier(notifier))
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	require.Equal(t, "Hurry! Available appointments on 2024-03-10!", notifier.sent[0].Message)

	stored, err := store.CurrentAppointment(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2024-03-10", stored.DateText())
}

// TestMissingConfigurationFailsFast never reaches a source.
func TestMissingConfigurationFailsFast(t *testing.T) {
	setEnv(t)
	t.Setenv("PUSHOVER_TOKEN", "")

	source := &stubCaseSource{}
	err := execute(t, []string{"uscis", "IOE0000000001"}, app.WithCaseStatusSource(source))
	require.ErrorIs(t, err, config.ErrConfiguration)
	require.Empty(t, source.seen)
}

// TestUnknownLogLevel is a configuration error.
func TestUnknownLogLevel(t *testing.T) {
	setEnv(t)

	err := execute(t, []string{"dmv", "--log-level", "loud"}, app.WithAvailabilitySource(stubDates{}), app.WithNotifier(&stubNotifier{}))
	require.ErrorIs(t, err, config.ErrConfiguration)
}

// TestVersionCommand prints the build version without reading configuration.
func TestVersionCommand(t *testing.T) {
	t.Setenv("PUSHOVER_TOKEN", "")

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", "", "version"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Equal(t, "monalert "+Version+"\n", out.String())

	require.Error(t, execute(t, []string{"version", "extra"}))
}
