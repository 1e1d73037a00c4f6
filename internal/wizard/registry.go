package wizard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/credit-wizard/internal/i18n"
)

const minSweepInterval = time.Second

// Factory builds the wizard of a session.
type Factory func(sessionID string, l *i18n.Localizer) *Wizard

// Registry keeps one live wizard per session. Idle wizards are flushed and
// evicted by a background sweep.
type Registry struct {
	mu        sync.Mutex
	factory   Factory
	idleTTL   time.Duration
	logger    *zap.Logger
	now       func() time.Time
	wizards   map[string]*Wizard
	stopSweep chan struct{}
	stopOnce  sync.Once
}

// NewRegistry starts a registry. A zero idleTTL disables eviction.
func NewRegistry(factory Factory, idleTTL time.Duration, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		factory:   factory,
		idleTTL:   idleTTL,
		logger:    logger,
		now:       time.Now,
		wizards:   make(map[string]*Wizard),
		stopSweep: make(chan struct{}),
	}
	if idleTTL > 0 {
		go r.sweepLoop()
	}
	return r
}

// Get returns the session wizard, opening a new one on first use or after
// the previous one was submitted.
func (r *Registry) Get(ctx context.Context, sessionID string, l *i18n.Localizer) *Wizard {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.wizards[sessionID]; ok && !w.Finished() {
		if l != nil {
			w.SetLocalizer(l)
		}
		return w
	}

	w := r.factory(sessionID, l)
	w.Open(ctx)
	r.wizards[sessionID] = w
	return w
}

// Forget flushes and drops the session wizard.
func (r *Registry) Forget(ctx context.Context, sessionID string) {
	r.mu.Lock()
	w, ok := r.wizards[sessionID]
	delete(r.wizards, sessionID)
	r.mu.Unlock()

	if ok {
		r.flush(ctx, sessionID, w)
	}
}

// Len returns the number of live wizards.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wizards)
}

// Close stops the sweep and flushes every live wizard.
func (r *Registry) Close(ctx context.Context) {
	r.stopOnce.Do(func() { close(r.stopSweep) })

	r.mu.Lock()
	wizards := r.wizards
	r.wizards = make(map[string]*Wizard)
	r.mu.Unlock()

	for id, w := range wizards {
		r.flush(ctx, id, w)
	}
}

func (r *Registry) sweepLoop() {
	interval := r.idleTTL / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(context.Background())
		case <-r.stopSweep:
			return
		}
	}
}

// sweep evicts wizards idle for longer than the TTL and finished ones.
func (r *Registry) sweep(ctx context.Context) {
	now := r.now()
	evicted := make(map[string]*Wizard)

	r.mu.Lock()
	for id, w := range r.wizards {
		if w.Finished() || now.Sub(w.LastActive()) > r.idleTTL {
			evicted[id] = w
			delete(r.wizards, id)
		}
	}
	r.mu.Unlock()

	for id, w := range evicted {
		r.flush(ctx, id, w)
	}
	if len(evicted) > 0 {
		r.logger.Debug("evicted idle wizards",
			zap.String("op", "wizard.Registry.sweep"),
			zap.Int("count", len(evicted)),
		)
	}
}

func (r *Registry) flush(ctx context.Context, sessionID string, w *Wizard) {
	if err := w.Flush(ctx); err != nil {
		r.logger.Warn("flush on eviction failed",
			zap.String("op", "wizard.Registry.flush"),
			zap.String("session", sessionID),
			zap.Error(err),
		)
	}
}
