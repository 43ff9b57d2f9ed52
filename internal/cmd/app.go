package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/hospital-is/hisctl/internal/config"
	"github.com/hospital-is/hisctl/internal/errors"
	"github.com/hospital-is/hisctl/internal/gateway"
	"github.com/hospital-is/hisctl/internal/log"
	"github.com/hospital-is/hisctl/internal/metrics"
	"github.com/hospital-is/hisctl/internal/navigation"
	"github.com/hospital-is/hisctl/internal/session"
	"github.com/hospital-is/hisctl/internal/version"
)

// app is the wired client: one session store shared by the gateway and the
// navigation controller.
type app struct {
	cfg        *config.Config
	logger     *log.Logger
	metrics    *metrics.Metrics
	storage    session.Storage
	gateway    *gateway.Client
	store      *session.Store
	port       *navigation.MemoryPort
	controller *navigation.Controller

	cleanups []func()
}

type appOptions struct {
	// logToFile sends logs to logging.file; the terminal UI owns stderr.
	logToFile bool
	// start is the initial location.
	start string
}

// newApp loads configuration and wires storage, gateway, store and
// navigation. The caller must call close.
func newApp(cmd *cobra.Command, opts appOptions) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, logCleanup, err := setupLogging(cfg, opts.logToFile)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	a.cleanups = append(a.cleanups, logCleanup)

	m, metricsCleanup := setupMetrics(cfg, logger)
	a.metrics = m
	a.cleanups = append(a.cleanups, metricsCleanup)
	a.cleanups = append(a.cleanups, setupTelemetry(ctx, cfg))

	storage, storageCleanup, err := newStorage(cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.storage = storage
	a.cleanups = append(a.cleanups, storageCleanup)

	clock := clockwork.NewRealClock()
	a.gateway = gateway.New(gateway.Config{
		BaseURL:          cfg.API.BaseURL,
		Timeout:          cfg.API.Timeout,
		LoginPath:        cfg.API.LoginPath,
		SignupPath:       cfg.API.SignupPath,
		RedirectDelay:    cfg.Redirect.Delay,
		RedirectCooldown: cfg.Redirect.Cooldown,
		Clock:            clock,
		Logger:           logger,
		Metrics:          m,
		UserAgent:        version.GetInfo().UserAgent(),
	})
	a.cleanups = append(a.cleanups, a.gateway.Close)

	storeOpts := []session.Option{session.WithLogger(logger), session.WithMetrics(m)}
	if cfg.Session.CheckTokenExpiry {
		storeOpts = append(storeOpts, session.WithTokenExpiryCheck(clock))
	}
	a.store = session.NewStore(storage, a.gateway, storeOpts...)
	a.gateway.UseSession(a.store)

	start := opts.start
	if start == "" {
		start = navigation.DashboardPath
	}
	a.port = navigation.NewMemoryPort(navigation.ParseLocation(start))
	a.gateway.UseNavigator(a.port)
	a.controller = navigation.NewController(a.port, a.store,
		navigation.WithControllerLogger(logger),
		navigation.WithControllerMetrics(m),
	)
	a.cleanups = append(a.cleanups, a.controller.Stop)

	return a, nil
}

// initialize restores the persisted session, if any.
func (a *app) initialize(ctx context.Context) error {
	if err := a.store.Initialize(ctx); err != nil {
		return errors.NewStorageError(a.storage.Name(), err)
	}
	return nil
}

// requireSession initializes and fails when nobody is signed in.
func (a *app) requireSession(ctx context.Context) (session.Snapshot, error) {
	if err := a.initialize(ctx); err != nil {
		return session.Snapshot{}, err
	}
	snap := a.store.Snapshot()
	if !snap.Authenticated() {
		return snap, errors.NewNotLoggedInError(session.ErrNoSession)
	}
	return snap, nil
}

func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}

// loadConfig reads the configuration and applies the global flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newStorage builds the configured session backend for this terminal's scope.
func newStorage(cfg *config.Config) (session.Storage, func(), error) {
	scope := cfg.Session.Scope
	if scope == "" {
		scope = session.DefaultScope()
	}

	switch cfg.Session.Backend {
	case config.BackendMemory:
		return session.NewMemoryStorage(), func() {}, nil
	case config.BackendFile:
		return session.NewFileStorage(cfg.Session.Dir, scope), func() {}, nil
	case config.BackendRedis:
		rc := session.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
			Prefix:   cfg.Redis.Prefix,
		}
		client := session.NewRedisClient(rc)
		return session.NewRedisStorage(client, rc, scope), func() { _ = client.Close() }, nil
	}
	return nil, nil, errors.NewConfigInvalidError(fmt.Sprintf("unknown session backend %q", cfg.Session.Backend))
}

// withTimeout bounds one-shot CLI calls to the configured API timeout plus
// a margin for storage.
func withTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, cfg.API.Timeout+5*time.Second)
}
