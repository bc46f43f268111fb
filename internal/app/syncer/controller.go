/*
Package syncer keeps the entity store in step with the server-held snapshot.

The Controller pulls the whole document, replaces the in-memory collections
wholesale and pushes the whole in-memory document back after every mutation.
There is no operation log and no per-field versioning: whichever client
pushes last wins, even when its state was stale. When the server cannot be
reached the Controller flips to offline mode and serves the local mirror.

The Controller is also the single logical thread of a client: every store
access goes through its mutex, which is what lets the store run without
locks of its own.
*/
package syncer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"messenger/internal/app/model"
	"messenger/internal/app/store"
	"messenger/internal/pkg/logx"
	"messenger/internal/pkg/metrics"
)

const (
	// DefaultFetchTimeout bounds a snapshot pull.
	DefaultFetchTimeout = 2 * time.Second

	// DefaultPushTimeout bounds a snapshot push.
	DefaultPushTimeout = 10 * time.Second

	// DefaultPollInterval is the period of Run.
	DefaultPollInterval = 2 * time.Second
)

// Transport reads and writes the server-held document.
type Transport interface {
	Fetch(ctx context.Context) (model.Snapshot, error)
	Push(ctx context.Context, snap model.Snapshot) error
}

// Mirror is the client-local copy of the document.
type Mirror interface {
	Load() (model.Snapshot, bool, error)
	Store(snap model.Snapshot) error
}

// Controller drives synchronization of one client's store.
type Controller struct {
	// mu serializes every store access.
	mu sync.Mutex

	store     *store.Store
	transport Transport
	mirror    Mirror

	online atomic.Bool

	fetchTimeout  time.Duration
	pushTimeout   time.Duration
	adminPassword string

	logger zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) { c.fetchTimeout = d }
}

// WithPushTimeout overrides DefaultPushTimeout.
func WithPushTimeout(d time.Duration) Option {
	return func(c *Controller) { c.pushTimeout = d }
}

// WithAdminPassword sets the password of the admin account created when a
// document is seeded or repaired.
func WithAdminPassword(secret string) Option {
	return func(c *Controller) { c.adminPassword = secret }
}

// New returns a Controller over s. It starts in online mode so that the
// first save after a successful pull reaches the server.
func New(s *store.Store, t Transport, m Mirror, opts ...Option) *Controller {
	c := &Controller{
		store:         s,
		transport:     t,
		mirror:        m,
		fetchTimeout:  DefaultFetchTimeout,
		pushTimeout:   DefaultPushTimeout,
		adminPassword: "admin",
		logger:        logx.Component("syncer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.setOnline(true)
	return c
}

// Online reports whether the last transport call succeeded.
func (c *Controller) Online() bool {
	return c.online.Load()
}

func (c *Controller) setOnline(v bool) {
	if c.online.Swap(v) != v {
		c.logger.Info().Bool("online", v).Msg("Connection mode changed.")
	}
	if v {
		metrics.Online.Set(1)
	} else {
		metrics.Online.Set(0)
	}
}

// Initialize performs the first pull, seeds an empty document and restores
// missing system records, saving when anything was added.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sync(ctx)

	changed := false
	if len(c.store.Users()) == 0 {
		if err := c.store.Seed(c.adminPassword); err != nil {
			return err
		}
		changed = true
	}

	restored, err := c.store.EnsureSystem(c.adminPassword)
	if err != nil {
		return err
	}

	if changed || restored {
		c.save(ctx)
	}
	return nil
}

// Sync pulls the snapshot. Transport failures are absorbed: the controller
// goes offline and reloads the mirror instead.
func (c *Controller) Sync(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sync(ctx)
}

func (c *Controller) sync(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	start := time.Now()
	snap, err := c.transport.Fetch(fetchCtx)
	metrics.SyncDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SyncTotal.WithLabelValues("offline").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn().Dur("timeout", c.fetchTimeout).Msg("Snapshot fetch timed out, using local mirror.")
		} else {
			c.logger.Warn().Err(err).Msg("Server unreachable, using local mirror.")
		}
		c.setOnline(false)
		c.reloadMirror()
		return
	}

	c.store.Replace(snap)
	c.setOnline(true)
	metrics.SyncTotal.WithLabelValues("online").Inc()

	if err := c.mirror.Store(c.store.Snapshot()); err != nil {
		c.logger.Error().Err(err).Msg("Failed to write local mirror.")
	}
}

func (c *Controller) reloadMirror() {
	snap, ok, err := c.mirror.Load()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to read local mirror.")
		return
	}
	if !ok {
		c.logger.Debug().Msg("Local mirror is empty; keeping in-memory state.")
		return
	}
	c.store.Replace(snap)
}

// Save writes the mirror and, when online, pushes the whole document.
func (c *Controller) Save(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.save(ctx)
}

func (c *Controller) save(ctx context.Context) {
	snap := c.store.Snapshot()

	if err := c.mirror.Store(snap); err != nil {
		c.logger.Error().Err(err).Msg("Failed to write local mirror.")
	}

	if !c.Online() {
		metrics.PushTotal.WithLabelValues("skipped").Inc()
		return
	}

	pushCtx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	if err := c.transport.Push(pushCtx, snap); err != nil {
		metrics.PushTotal.WithLabelValues("failed").Inc()
		c.logger.Error().Err(err).Msg("Failed to save to server.")
		c.setOnline(false)
		return
	}
	metrics.PushTotal.WithLabelValues("ok").Inc()
}

// Do runs fn on the controller's logical thread and saves afterwards. An
// error from fn is returned unchanged and nothing is saved.
func (c *Controller) Do(ctx context.Context, fn func(s *store.Store) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := fn(c.store); err != nil {
		return err
	}
	c.save(ctx)
	return nil
}

// Read runs fn on the controller's logical thread without saving.
func (c *Controller) Read(fn func(s *store.Store)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(c.store)
}

// Run pulls the snapshot every interval until ctx is cancelled.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info().Dur("interval", interval).Msg("Polling started.")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Polling stopped.")
			return
		case <-ticker.C:
			c.Sync(ctx)
		}
	}
}
