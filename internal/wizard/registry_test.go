package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwvelando/credit-wizard/internal/i18n"
	"github.com/iwvelando/credit-wizard/internal/session"
	"github.com/iwvelando/credit-wizard/internal/simulator"
	"github.com/iwvelando/credit-wizard/pkg/constants"
)

func newTestRegistry(store session.Store, cfg Config, ttl time.Duration) *Registry {
	submitter := &fakeSubmitter{}
	return NewRegistry(func(sessionID string, l *i18n.Localizer) *Wizard {
		scoped := session.Scope(store, sessionID)
		sim := simulator.New(scoped, simulator.DefaultTariff(), nil)
		opts := []Option{WithClock(fixedClock)}
		if l != nil {
			opts = append(opts, WithLocalizer(l))
		}
		return New(scoped, sim, submitter, cfg, nil, opts...)
	}, ttl, nil)
}

func TestRegistryReusesSessionWizard(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(session.NewMemoryStore(0), syncConfig(), 0)
	defer r.Close(ctx)

	a := r.Get(ctx, "a", nil)
	assert.Same(t, a, r.Get(ctx, "a", english))
	assert.NotSame(t, a, r.Get(ctx, "b", nil))
	assert.Equal(t, 2, r.Len())

	r.Forget(ctx, "a")
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, a, r.Get(ctx, "a", nil))
}

func TestRegistryReopensPersistedDraft(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore(0)
	cfg := DefaultConfig()
	cfg.Debounce = time.Hour
	r := newTestRegistry(store, cfg, 0)

	require.NoError(t, r.Get(ctx, "a", nil).SetField(FirstName, "Anna"))
	r.Forget(ctx, "a")

	raw, ok, err := session.Scope(store, "a").Get(ctx, constants.DraftKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "Anna")

	assert.Equal(t, "Anna", r.Get(ctx, "a", nil).State().Draft.FirstName)
	r.Close(ctx)
}

func TestRegistrySweepEvictsIdleWizards(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore(0)
	cfg := DefaultConfig()
	cfg.Debounce = time.Hour
	r := newTestRegistry(store, cfg, time.Hour)
	defer r.Close(ctx)

	require.NoError(t, r.Get(ctx, "idle", nil).SetField(LastName, "Rossi"))

	r.now = func() time.Time { return testNow.Add(30 * time.Minute) }
	r.sweep(ctx)
	assert.Equal(t, 1, r.Len())

	r.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	r.sweep(ctx)
	assert.Zero(t, r.Len())

	raw, ok, err := session.Scope(store, "idle").Get(ctx, constants.DraftKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "Rossi")
}

func TestRegistryCloseFlushes(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore(0)
	cfg := DefaultConfig()
	cfg.Debounce = time.Hour
	r := newTestRegistry(store, cfg, time.Minute)

	require.NoError(t, r.Get(ctx, "a", nil).SetField(City, "Lugano"))
	r.Close(ctx)
	r.Close(ctx)

	assert.Zero(t, r.Len())
	raw, ok, err := session.Scope(store, "a").Get(ctx, constants.DraftKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, "Lugano")
}
