package db

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Pool sizing mirrors the production deployment: 10 steady connections plus
// 20 of overflow, recycled every 30 minutes. TCP keepalive is handled by the
// pgx dialer.
const (
	defaultPoolSize       = 10
	defaultPoolOverflow   = 20
	defaultPoolRecycle    = 30 * time.Minute
	defaultConnectTimeout = 10 * time.Second
)

// PoolConfig controls how per-tenant handles are built. BaseURL is the
// connection URL template; per-tenant URLs are derived by swapping its path
// for the tenant's database name.
type PoolConfig struct {
	BaseURL        string
	MaxOpen        int // steady pool size plus overflow
	MaxIdle        int
	Recycle        time.Duration
	ConnectTimeout time.Duration
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.MaxOpen <= 0 {
		c.MaxOpen = defaultPoolSize + defaultPoolOverflow
	}
	if c.MaxIdle <= 0 {
		c.MaxIdle = defaultPoolSize
	}
	if c.Recycle <= 0 {
		c.Recycle = defaultPoolRecycle
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	return c
}

// PoolCache owns every tenant connection handle in the process. At most one
// handle exists per database name; callers share handles and must never close
// them. Only Invalidate retires one.
type PoolCache struct {
	cfg PoolConfig

	mu      sync.RWMutex
	handles map[string]*sqlx.DB
}

func NewPoolCache(cfg PoolConfig) *PoolCache {
	return &PoolCache{
		cfg:     cfg.withDefaults(),
		handles: make(map[string]*sqlx.DB),
	}
}

// GetOrCreate returns the cached handle for databaseID, building and caching
// one if absent. Creation is serialized under the registry lock; sqlx.Open
// does not dial, so holding the lock across it is cheap and guarantees a
// single pool per database even when callers race.
func (c *PoolCache) GetOrCreate(databaseID string) (*sqlx.DB, error) {
	if databaseID == "" {
		return nil, fmt.Errorf("pool: empty database name")
	}

	c.mu.RLock()
	handle, ok := c.handles[databaseID]
	c.mu.RUnlock()
	if ok {
		return handle, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if handle, ok := c.handles[databaseID]; ok {
		return handle, nil
	}

	dsn, err := c.dsn(databaseID)
	if err != nil {
		return nil, err
	}
	handle, err = sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("pool: open %s: %w", databaseID, err)
	}
	handle.SetMaxOpenConns(c.cfg.MaxOpen)
	handle.SetMaxIdleConns(c.cfg.MaxIdle)
	handle.SetConnMaxLifetime(c.cfg.Recycle)

	c.handles[databaseID] = handle
	log.Info().Str("database", databaseID).Msg("created connection pool")
	return handle, nil
}

// Invalidate removes the handle for databaseID so the next GetOrCreate builds
// a fresh pool. The retired handle is closed in the background once in-flight
// queries release their connections; the caller is never blocked on it.
func (c *PoolCache) Invalidate(databaseID string) {
	c.mu.Lock()
	handle, ok := c.handles[databaseID]
	if ok {
		delete(c.handles, databaseID)
	}
	c.mu.Unlock()

	if !ok {
		return
	}
	log.Warn().Str("database", databaseID).Msg("invalidated connection pool")
	go func() {
		if err := handle.Close(); err != nil {
			log.Warn().Err(err).Str("database", databaseID).Msg("closing retired pool")
		}
	}()
}

// Verify opens (or reuses) the handle for databaseID and runs a liveness
// probe. It never returns an error: any failure reports false.
func (c *PoolCache) Verify(ctx context.Context, databaseID string) bool {
	handle, err := c.GetOrCreate(databaseID)
	if err != nil {
		log.Warn().Err(err).Str("database", databaseID).Msg("connection verification failed")
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()
	var one int
	if err := handle.GetContext(ctx, &one, "SELECT 1"); err != nil {
		log.Warn().Err(err).Str("database", databaseID).Msg("connection verification failed")
		return false
	}
	return true
}

// Close shuts down every cached handle. Intended for process teardown only.
func (c *PoolCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for databaseID, handle := range c.handles {
		if err := handle.Close(); err != nil {
			log.Warn().Err(err).Str("database", databaseID).Msg("closing pool")
		}
		delete(c.handles, databaseID)
	}
}

// dsn derives the connection URL for databaseID from the base template and
// pins a connect timeout unless the template already sets one.
func (c *PoolCache) dsn(databaseID string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("pool: parse base url: %w", err)
	}
	u.Path = "/" + databaseID

	q := u.Query()
	if q.Get("connect_timeout") == "" {
		q.Set("connect_timeout", strconv.Itoa(int(c.cfg.ConnectTimeout/time.Second)))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
