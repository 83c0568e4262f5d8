package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"map-catalog-service/internal/config"
	"map-catalog-service/internal/core/domain"
)

// ConnState is the bootstrap state of a Connector.
type ConnState int

const (
	StateUninitialized ConnState = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s ConnState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// DialFunc opens a pool. It is replaced in tests.
type DialFunc func(ctx context.Context) (*pgxpool.Pool, error)

// Connector owns the store connection and bootstraps it lazily:
// Uninitialized -> Initializing -> Ready | Failed. Callers arriving while an
// attempt is in flight wait for it; a Failed connector retries on the next
// call.
type Connector struct {
	dial DialFunc

	mu      sync.Mutex
	state   ConnState
	pool    *pgxpool.Pool
	lastErr error
	done    chan struct{}
}

func NewConnector(dial DialFunc) *Connector {
	return &Connector{dial: dial}
}

// NewPoolDialer returns a DialFunc that opens a pool from cfg, pings it and,
// when enabled, applies migrations.
func NewPoolDialer(cfg config.DatabaseConfig) DialFunc {
	return func(ctx context.Context) (*pgxpool.Pool, error) {
		poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("parse database dsn: %w", err)
		}
		poolConfig.MaxConns = cfg.MaxConns
		poolConfig.MinConns = cfg.MinConns
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, classify("create pool", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, classify("ping database", err)
		}
		if cfg.AutoMigrate {
			if err := Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return pool, nil
	}
}

func (c *Connector) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pool returns the ready pool, bootstrapping it if needed. Bootstrap
// failures are reported as ErrStoreUnavailable unless already classified.
func (c *Connector) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	c.mu.Lock()
	switch c.state {
	case StateReady:
		pool := c.pool
		c.mu.Unlock()
		return pool, nil
	case StateInitializing:
		done := c.done
		c.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for connection: %w", domain.ErrStoreUnavailable, ctx.Err())
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state == StateReady {
			return c.pool, nil
		}
		return nil, c.lastErr
	}

	// Uninitialized or Failed: this caller runs the attempt.
	c.state = StateInitializing
	c.done = make(chan struct{})
	c.mu.Unlock()

	pool, err := c.dial(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	close(c.done)
	if err != nil {
		if domain.ReasonOf(err) == domain.ReasonInternal {
			err = fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		c.state = StateFailed
		c.lastErr = err
		log.WithError(err).Error("database bootstrap failed")
		return nil, err
	}
	c.state = StateReady
	c.pool = pool
	c.lastErr = nil
	log.Info("database connection ready")
	return pool, nil
}

// Ping checks that the store answers.
func (c *Connector) Ping(ctx context.Context) error {
	pool, err := c.Pool(ctx)
	if err != nil {
		return err
	}
	return classify("ping database", pool.Ping(ctx))
}

func (c *Connector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
	c.state = StateUninitialized
}
