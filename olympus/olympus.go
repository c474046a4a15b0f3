// Package olympus wires the SDK together into one explicit client object.
// Everything reachable from a Client is constructed here once; nothing in
// the SDK relies on package-level singletons, so independent Clients (and
// tests) cannot leak state into each other.
package olympus

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/olympus-platform/client-go/api"
	"github.com/olympus-platform/client-go/config"
	"github.com/olympus-platform/client-go/localstore"
	"github.com/olympus-platform/client-go/metrics"
	"github.com/olympus-platform/client-go/orders"
	"github.com/olympus-platform/client-go/pkg/logger"
	"github.com/olympus-platform/client-go/resource"
	"github.com/olympus-platform/client-go/session"
)

// Client is the SDK entry point: the session lifecycle manager, the order
// collection coordinator, and the plumbing underneath them.
type Client struct {
	Session *session.Manager
	Orders  *orders.Coordinator

	api       *api.Client
	store     localstore.Store
	refresher *session.Refresher
	log       *logger.Logger
	closers   []func() error
}

// New builds a fully wired client from cfg.
func New(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Component: "olympus",
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
	})

	apiClient, err := api.NewClient(api.Config{
		BaseURL:           cfg.APIBaseURL,
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.RequestBurst,
		Logger:            log.WithField("component", "api"),
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	c := &Client{api: apiClient, log: log}

	store, err := c.buildStore(cfg)
	if err != nil {
		return nil, err
	}
	c.store = store

	c.Session = session.NewManager(apiClient, store, log.WithField("component", "session"))
	apiClient.SetTokenSource(c.Session.AccessToken)

	var remote api.Remote = apiClient
	if cfg.RetryUnauthorized {
		remote = session.NewAuthRetry(apiClient, c.Session)
	}
	c.Orders = orders.NewCoordinator(remote, log.WithField("component", "orders"))

	if cfg.BackgroundRefresh {
		c.refresher = session.NewRefresher(c.Session, log.WithField("component", "session-refresher")).
			WithLeeway(cfg.RefreshLeeway)
	}

	c.observeTransitions()
	return c, nil
}

// Start bootstraps the session from the local store and launches the
// background refresher if configured.
func (c *Client) Start(ctx context.Context) error {
	if err := c.Session.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap session: %w", err)
	}
	if c.refresher != nil {
		if err := c.refresher.Start(ctx); err != nil {
			return fmt.Errorf("start refresher: %w", err)
		}
	}
	return nil
}

// Close stops background work and releases held resources.
func (c *Client) Close(ctx context.Context) error {
	var firstErr error
	if c.refresher != nil {
		if err := c.refresher.Stop(ctx); err != nil {
			firstErr = err
		}
	}
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Client) buildStore(cfg *config.Config) (localstore.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return localstore.NewMemory(), nil

	case config.StorageSQLite:
		store, err := localstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		c.closers = append(c.closers, store.Close)
		return store, nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		c.closers = append(c.closers, rdb.Close)
		return localstore.NewRedis(rdb, "olympus"), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// observeTransitions feeds container transitions into the metrics
// registry.
func (c *Client) observeTransitions() {
	c.Session.Subscribe(func(s resource.State[session.Session]) {
		metrics.ObserveTransition("session", s.Phase().String())
	})
	c.Orders.Subscribe(func(s resource.State[[]orders.Order]) {
		metrics.ObserveTransition("orders", s.Phase().String())
	})
}
