package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"monalert/internal/app"
	"monalert/internal/config"
	"monalert/internal/logger"
	"monalert/internal/services/monitoring"
)

// Version is set at build time with -ldflags "-X monalert/internal/cli.Version=...".
var Version = "dev" //nolint:gochecknoglobals // Overwritten by the linker.

type options struct {
	envFile  string
	logLevel string
	builder  []app.BuilderOption
}

// NewRootCommand builds the monalert command tree. Builder options replace
// the components built from the environment.
func NewRootCommand(builderOptions ...app.BuilderOption) *cobra.Command {
	opts := &options{builder: builderOptions}

	root := &cobra.Command{
		Use:   "monalert",
		Short: "Check a status page once and push a notification when it changed.",
		Long: `monalert polls an external status page once per invocation, stores what it saw
and sends a push notification when the observation warrants an alert.

Credentials and storage settings come from the environment (or a .env file).
Schedule it with cron or a systemd timer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to seed the environment from (ignored when missing)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default LOG_LEVEL or info)")

	root.AddCommand(newUSCISCommand(opts), newDMVCommand(opts), newVersionCommand())

	return root
}

func newUSCISCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "uscis RECEIPT_NUM...",
		Short: "Check USCIS case status and notify upon case status change",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return err
			}
			for _, arg := range args {
				if strings.TrimSpace(arg) == "" {
					return errors.New("receipt number must not be empty")
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			receipts := make([]string, 0, len(args))
			for _, arg := range args {
				receipts = append(receipts, strings.TrimSpace(arg))
			}
			return opts.run(cmd.Context(), func(a *app.App) []monitoring.Job {
				return a.CaseStatusJobs(receipts)
			})
		},
	}
}

func newDMVCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dmv",
		Short: "Check NY DMV appointment availability and notify upon an earlier date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd.Context(), func(a *app.App) []monitoring.Job {
				return a.AppointmentJobs()
			})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the monalert version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "monalert %s\n", Version)
			return err
		},
	}
}

func (o *options) run(ctx context.Context, jobs func(*app.App) []monitoring.Job) error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return fmt.Errorf("%w: unknown log level %q", config.ErrConfiguration, level)
	}
	logger.SetLevel(parsed)

	application, err := app.NewBuilder(&cfg, o.builder...).Build(ctx)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warnf(ctx, "close store: %v", err)
		}
	}()

	_, err = monitoring.RunAll(ctx, jobs(application))
	return err
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	defer logger.Sync()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		logger.Errorf(ctx, "monalert: %v", err)
		return 1
	}
	return 0
}
