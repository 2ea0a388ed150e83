package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/bus"
	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/kv"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/toast"
)

// session holds the components one command invocation works with.
type session struct {
	cfg      config.Config
	logger   *slog.Logger
	adapter  *kv.Adapter
	bus      *bus.Bus
	toasts   *toast.Scheduler
	out      *OutputFormatter
	rejected []store.Rejection
	closers  []func() error
}

// resolveConfig loads the config file and applies flag overrides.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.DBPath != "" {
		cfg.Storage.Driver = config.DriverSQLite
		cfg.Storage.Path = opts.DBPath
	}
	if opts.RedisAddr != "" {
		cfg.Storage.Driver = config.DriverRedis
		cfg.Storage.RedisAddr = opts.RedisAddr
	}
	if opts.Namespace != "" {
		cfg.Storage.Namespace = opts.Namespace
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// newLogger builds the process logger on w.
func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// openBackend connects the configured storage driver.
func openBackend(ctx context.Context, cfg config.Storage) (kv.Backend, func() error, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		b, err := kv.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return kv.NewRedisBackend(client), client.Close, nil
	case config.DriverMemory:
		return kv.NewMemoryBackend(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// openSession resolves config, opens storage and builds the shared bus and
// toast scheduler. Callers must call close.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)

	backend, closeBackend, err := openBackend(cmd.Context(), cfg.Storage)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to open storage", err)
	}

	s := &session{
		cfg:     cfg,
		logger:  logger,
		adapter: kv.New(backend, kv.WithNamespace(cfg.Storage.Namespace), kv.WithLogger(logger)),
		bus:     bus.New(bus.WithLogger(logger)),
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		closers: []func() error{closeBackend},
	}
	s.toasts = toast.New(
		toast.WithLogger(logger),
		toast.WithDefaultTTL(cfg.Toast.TTL),
		toast.WithLimit(cfg.Toast.Limit),
	)
	logger.Debug("session opened",
		"driver", cfg.Storage.Driver,
		"namespace", cfg.Storage.Namespace,
	)
	return s, nil
}

func (s *session) storeOptions() []store.Option {
	return []store.Option{
		store.WithBus(s.bus),
		store.WithLogger(s.logger),
		store.WithRejectHook(func(r store.Rejection) { s.rejected = append(s.rejected, r) }),
	}
}

// rejection converts a refused mutation into a command error.
func (s *session) rejection() error {
	if len(s.rejected) == 0 {
		return nil
	}
	r := s.rejected[0]
	s.out.Error(CodeInvalidInput, r.String(), nil)
	return WrapExitError(ExitCommandError, "invalid input", r.Err)
}

// liveToasts returns the messages currently shown.
func (s *session) liveToasts() []string {
	var msgs []string
	for _, t := range s.toasts.All() {
		msgs = append(msgs, fmt.Sprintf("[%s] %s", t.Level, t.Message))
	}
	return msgs
}

func (s *session) close() {
	s.toasts.Close()
	s.bus.Close()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("close failed", "error", err)
		}
	}
}
