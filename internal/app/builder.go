package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"monalert/internal/config"
	"monalert/internal/db"
	"monalert/internal/providers/dmvny"
	"monalert/internal/providers/uscis"
	"monalert/internal/pushover"
	"monalert/internal/repositories"
	"monalert/internal/repositories/memory"
	"monalert/internal/repositories/postgres"
	"monalert/internal/repositories/sqlite"
	"monalert/internal/services/monitoring"
	"monalert/internal/telegram"
)

type Builder struct {
	cfg          *config.Config
	ensureSchema bool

	pool        *pgxpool.Pool
	store       repositories.Store
	notifier    monitoring.Notifier
	client      *http.Client
	caseSource  monitoring.CaseStatusSource
	availSource monitoring.AvailabilitySource
}

type BuilderOption func(*Builder)

func NewBuilder(cfg *config.Config, options ...BuilderOption) *Builder {
	builder := &Builder{
		cfg:          cfg,
		ensureSchema: true,
	}
	for _, option := range options {
		option(builder)
	}
	return builder
}

func WithEnsureSchema(enabled bool) BuilderOption {
	return func(b *Builder) {
		b.ensureSchema = enabled
	}
}

func WithDBPool(pool *pgxpool.Pool) BuilderOption {
	return func(b *Builder) {
		b.pool = pool
	}
}

func WithStore(store repositories.Store) BuilderOption {
	return func(b *Builder) {
		b.store = store
	}
}

func WithNotifier(notifier monitoring.Notifier) BuilderOption {
	return func(b *Builder) {
		b.notifier = notifier
	}
}

func WithHTTPClient(client *http.Client) BuilderOption {
	return func(b *Builder) {
		b.client = client
	}
}

func WithCaseStatusSource(source monitoring.CaseStatusSource) BuilderOption {
	return func(b *Builder) {
		b.caseSource = source
	}
}

func WithAvailabilitySource(source monitoring.AvailabilitySource) BuilderOption {
	return func(b *Builder) {
		b.availSource = source
	}
}

func (b *Builder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, errors.New("config is required")
	}

	app := &App{Config: b.cfg}

	if b.store == nil {
		store, err := b.openStore(ctx, app)
		if err != nil {
			return nil, err
		}
		b.store = store
	}
	app.Store = b.store

	if b.client == nil {
		b.client = &http.Client{Timeout: b.cfg.HTTPTimeout}
	}

	if b.notifier == nil {
		notifier, err := b.newNotifier()
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		b.notifier = notifier
	}
	app.Notifier = b.notifier

	if b.caseSource == nil {
		b.caseSource = uscis.NewScraper(b.client)
	}
	app.CaseSource = b.caseSource

	if b.availSource == nil {
		b.availSource = dmvny.NewScraper(b.client, "", b.cfg.DMVBranch, b.cfg.DMVService)
	}
	app.AvailabilitySource = b.availSource

	return app, nil
}

func (b *Builder) openStore(ctx context.Context, app *App) (repositories.Store, error) {
	switch b.cfg.StoreDriver {
	case config.StoreDriverPostgres:
		if b.pool == nil {
			pool, err := db.NewPool(ctx, b.cfg.PostgresDSN())
			if err != nil {
				return nil, fmt.Errorf("connect postgres: %w", err)
			}
			b.pool = pool
			app.ownsPool = true
		}
		app.Pool = b.pool

		if b.ensureSchema {
			if err := db.EnsureSchema(ctx, b.pool); err != nil {
				_ = app.Close()
				return nil, err
			}
		}
		return postgres.NewStore(b.pool), nil
	case config.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, b.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, nil
	case config.StoreDriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown STORE_DRIVER %q", config.ErrConfiguration, b.cfg.StoreDriver)
	}
}

func (b *Builder) newNotifier() (monitoring.Notifier, error) {
	switch b.cfg.Notifier {
	case config.NotifierPushover:
		return pushover.NewSender(b.client, b.cfg.PushoverToken, b.cfg.PushoverUser, b.cfg.PushoverDevice), nil
	case config.NotifierTelegram:
		return telegram.NewSender(b.client, b.cfg.TelegramToken, b.cfg.TelegramChat, b.cfg.TelegramThreadID), nil
	default:
		return nil, fmt.Errorf("%w: unknown NOTIFIER %q", config.ErrConfiguration, b.cfg.Notifier)
	}
}
