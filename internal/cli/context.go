package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/grove/internal/cache"
	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/config"
	"github.com/julianstephens/grove/internal/constants"
	"github.com/julianstephens/grove/internal/journal"
	"github.com/julianstephens/grove/internal/keyring"
	"github.com/julianstephens/grove/internal/lock"
	"github.com/julianstephens/grove/internal/logger"
	"github.com/julianstephens/grove/internal/metrics"
	"github.com/julianstephens/grove/internal/storage"
)

// Context is handed to every kong command's Run method.
type Context struct {
	Ctx    context.Context
	Config *config.Config
	Store  storage.Provider
	// Location is where Store points: a SQLite path or a connection string.
	Location string
	Service  *journal.Service
	Metrics  *metrics.Metrics
	// Actor is the user commands act as (--as).
	Actor string
	Out   io.Writer

	closers []func() error
}

// Options carries the composition root's choices. Zero values get defaults.
type Options struct {
	Location string
	Clock    clock.Clock
	Locker   lock.Locker
	Actor    string
	Out      io.Writer
}

// NewContext wires the journal service around an already selected store.
func NewContext(ctx context.Context, cfg *config.Config, store storage.Provider, opts Options) (*Context, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	c := &Context{
		Ctx:      ctx,
		Config:   cfg,
		Store:    store,
		Location: opts.Location,
		Metrics:  metrics.New(),
		Actor:    opts.Actor,
		Out:      opts.Out,
	}
	c.closers = append(c.closers, store.Close)

	locker := opts.Locker
	if locker == nil {
		locker, err = c.newLocker(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
	}

	c.Service = journal.NewService(store, journal.Options{
		Clock:          opts.Clock,
		Policy:         policy,
		Locker:         locker,
		Cache:          cache.NewReadModels(cfg.CacheTTL, opts.Clock),
		Metrics:        c.Metrics,
		StreakLookback: cfg.StreakLookbackDays,
	})
	return c, nil
}

// newLocker uses Redis when a URL is configured or stored in the keyring,
// else an in-process lock.
func (c *Context) newLocker(ctx context.Context) (lock.Locker, error) {
	url, err := keyring.Resolve(keyring.RedisAccount, c.Config.RedisURL)
	if err != nil {
		logger.Warn("Keyring unavailable, skipping Redis lookup", "error", err)
		url = c.Config.RedisURL
	}
	if url == "" {
		return lock.NewLocal(), nil
	}
	client, err := lock.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, client.Close)
	logger.Debug("Using Redis lock", "addr", client.Options().Addr)
	return lock.NewRedis(client, constants.WaterLockTTL, constants.WaterLockRetryWait), nil
}

// RequireActor returns the acting user or explains how to set one.
func (c *Context) RequireActor() (string, error) {
	if c.Actor == "" {
		return "", errors.New("no acting user: pass --as <user> or set GROVE_USER")
	}
	return c.Actor, nil
}

// Close releases the store and any lock backend.
func (c *Context) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Printf writes to the command's output.
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}
