package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/veladahq/velada"
	"github.com/veladahq/velada/internal/adapters/file"
	"github.com/veladahq/velada/internal/adapters/postgres"
	redisstore "github.com/veladahq/velada/internal/adapters/redis"
	"github.com/veladahq/velada/internal/config"
	"github.com/veladahq/velada/internal/logging"
	"github.com/veladahq/velada/pkg/adapters/backendapi"
	"github.com/veladahq/velada/pkg/adapters/memory"
	redislock "github.com/veladahq/velada/pkg/adapters/redis"
	"github.com/veladahq/velada/pkg/persistence/middleware"
	"github.com/veladahq/velada/pkg/ports"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewWizard builds a fully wired wizard from the service configuration.
// The returned closer releases store connections and must be called on
// shutdown.
func NewWizard(cfg config.Config, logger *slog.Logger) (*velada.Wizard, func(), error) {
	store, locker, closeStore, err := newStore(cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}
	store, err = wrapStore(store, cfg.Store)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	backend := backendapi.New(cfg.Backend.BaseURL,
		backendapi.WithToken(cfg.Backend.Token),
		backendapi.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout.Std()}),
		backendapi.WithLogger(logger),
	)

	opts := []velada.Option{
		velada.WithDraftStore(store),
		velada.WithLogger(logger),
	}
	if locker != nil {
		opts = append(opts, velada.WithLocker(locker))
	}

	wizard, err := velada.New(backend, opts...)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return wizard, closeStore, nil
}

// newStore builds the configured draft store. Redis optionally carries a
// distributed locker on the same connection.
func newStore(cfg config.StoreConfig, logger *slog.Logger) (ports.DraftStore, ports.DistributedLocker, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.StoreMemory:
		return memory.NewStore(), nil, noop, nil

	case config.StoreFile:
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("creating store dir: %w", err)
		}
		return file.New(cfg.Dir), nil, noop, nil

	case config.StoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		store := redisstore.NewFromClient(client, redisstore.WithTTL(cfg.TTL.Std()))
		var locker ports.DistributedLocker
		if cfg.Lock {
			locker = redislock.NewLocker(client, "velada:lock:")
		}
		return store, locker, func() {
			if err := client.Close(); err != nil {
				logger.Warn("closing redis client", "err", err)
			}
		}, nil

	case config.StorePostgres:
		pool, err := pgxpool.New(context.Background(), cfg.DSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return postgres.New(pool), nil, pool.Close, nil
	}

	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

// wrapStore applies the configured persistence middleware. Masking runs
// closest to the engine so encrypted envelopes never reach it.
func wrapStore(store ports.DraftStore, cfg config.StoreConfig) (ports.DraftStore, error) {
	if cfg.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("decoding store.encryption_key: %w", err)
		}
		fallbacks := make([][]byte, 0, len(cfg.FallbackKeys))
		for _, raw := range cfg.FallbackKeys {
			fb, err := base64.StdEncoding.DecodeString(raw)
			if err != nil {
				return nil, fmt.Errorf("decoding store.fallback_keys entry: %w", err)
			}
			fallbacks = append(fallbacks, fb)
		}
		store = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    key,
			FallbackKeys: fallbacks,
		})(store)
	}
	if len(cfg.MaskKeys) > 0 {
		store = middleware.NewPIIMiddleware(cfg.MaskKeys)(store)
	}
	return store, nil
}

// NewLogger configures the process logger from the configuration, with
// debug forcing verbose output.
func NewLogger(cfg config.LogConfig, debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(logging.ParseLevel(cfg.Level))
}
