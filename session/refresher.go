package session

import (
	"context"
	"sync"
	"time"

	"github.com/olympus-platform/client-go/pkg/logger"
)

// Refresher renews the session in the background before the access token
// expires. It only acts while a session is Ready; an expired refresh
// simply runs the manager's uniform logout recovery.
type Refresher struct {
	manager  *Manager
	log      *logger.Logger
	interval time.Duration
	leeway   time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewRefresher creates a lifecycle-managed session refresher.
func NewRefresher(manager *Manager, log *logger.Logger) *Refresher {
	if log == nil {
		log = logger.NewDefault("session-refresher")
	}
	return &Refresher{
		manager:  manager,
		log:      log,
		interval: 30 * time.Second,
		leeway:   DefaultRefreshLeeway,
	}
}

// WithLeeway sets how long before expiry a refresh is triggered.
func (r *Refresher) WithLeeway(leeway time.Duration) *Refresher {
	r.leeway = leeway
	return r
}

// WithInterval sets how often the loop checks the token. Must be called
// before Start.
func (r *Refresher) WithInterval(interval time.Duration) *Refresher {
	r.interval = interval
	return r
}

// Start launches the background refresh loop. Calling Start on a running
// refresher is a no-op.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				r.tick(runCtx)
			}
		}
	}()

	r.log.Info("session refresher started")
	return nil
}

// Stop halts the loop and waits for an in-flight tick to finish.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.wg.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.log.Info("session refresher stopped")
	return nil
}

func (r *Refresher) tick(ctx context.Context) {
	if !r.manager.Current().IsReady() {
		return
	}
	if !r.manager.TokenExpiresWithin(r.leeway) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := r.manager.Refresh(ctx); err != nil {
		r.log.WithError(err).Warn("background refresh failed")
	}
}
