package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucolog/glucolog/internal/apperrors"
	"github.com/glucolog/glucolog/internal/domain"
	"github.com/glucolog/glucolog/internal/prefs"
	"github.com/glucolog/glucolog/internal/units"
)

func newSettings(t *testing.T) (*SettingsContainer, prefs.Store) {
	t.Helper()
	store := prefs.NewMemoryStore()
	return NewSettingsContainer(context.Background(), store), store
}

func TestSettingsDefaults(t *testing.T) {
	c, _ := newSettings(t)
	s := c.Get()
	assert.Equal(t, domain.ThemeSystem, s.Theme)
	assert.Equal(t, units.MgPerDl, s.Units)
}

func TestSettingsHydratesFromStore(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(ctx, prefs.KeyTheme, "dark"))
	require.NoError(t, store.Set(ctx, prefs.KeyUnits, "mmol/L"))

	c := NewSettingsContainer(ctx, store)
	s := c.Get()
	assert.Equal(t, domain.ThemeDark, s.Theme)
	assert.Equal(t, units.MmolPerL, s.Units)
}

func TestSettingsHydrateIgnoresGarbage(t *testing.T) {
	ctx := context.Background()
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(ctx, prefs.KeyTheme, "sepia"))

	c := NewSettingsContainer(ctx, store)
	assert.Equal(t, domain.ThemeSystem, c.Get().Theme)
}

func TestSetUnitsRejectsUnknown(t *testing.T) {
	c, _ := newSettings(t)
	err := c.SetUnits(context.Background(), "stones/L")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	// State unchanged after rejection.
	assert.Equal(t, units.MgPerDl, c.Get().Units)
}

func TestSetThemeRejectsUnknown(t *testing.T) {
	c, _ := newSettings(t)
	err := c.SetTheme(context.Background(), "sepia")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestToggleUnitsIsInvolution(t *testing.T) {
	ctx := context.Background()
	c, _ := newSettings(t)
	start := c.Get().Units

	require.NoError(t, c.ToggleUnits(ctx))
	assert.Equal(t, units.MmolPerL, c.Get().Units)
	require.NoError(t, c.ToggleUnits(ctx))
	assert.Equal(t, start, c.Get().Units)
}

func TestToggleThemeTwoCycle(t *testing.T) {
	ctx := context.Background()
	c, _ := newSettings(t)

	// System resolves to dark on the first toggle, then alternates.
	require.NoError(t, c.ToggleTheme(ctx))
	assert.Equal(t, domain.ThemeDark, c.Get().Theme)
	require.NoError(t, c.ToggleTheme(ctx))
	assert.Equal(t, domain.ThemeLight, c.Get().Theme)
	require.NoError(t, c.ToggleTheme(ctx))
	assert.Equal(t, domain.ThemeDark, c.Get().Theme)
}

func TestCycleThemeThreeCycle(t *testing.T) {
	ctx := context.Background()
	c, _ := newSettings(t)
	require.NoError(t, c.SetTheme(ctx, domain.ThemeLight))

	seen := []domain.ThemeMode{}
	for i := 0; i < 3; i++ {
		require.NoError(t, c.CycleTheme(ctx))
		seen = append(seen, c.Get().Theme)
	}
	assert.Equal(t, []domain.ThemeMode{domain.ThemeDark, domain.ThemeSystem, domain.ThemeLight}, seen)
}

func TestSettingsPersistOnMutation(t *testing.T) {
	ctx := context.Background()
	c, store := newSettings(t)
	require.NoError(t, c.SetTheme(ctx, domain.ThemeDark))

	raw, err := store.Get(ctx, prefs.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", raw)
}

func TestSubscribersNotifiedInOrder(t *testing.T) {
	ctx := context.Background()
	c, _ := newSettings(t)

	var order []string
	c.Subscribe(func(SettingsState) { order = append(order, "first") })
	c.Subscribe(func(SettingsState) { order = append(order, "second") })

	require.NoError(t, c.ToggleUnits(ctx))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	ctx := context.Background()
	c, _ := newSettings(t)

	calls := 0
	unsubscribe := c.Subscribe(func(SettingsState) { calls++ })
	require.NoError(t, c.ToggleUnits(ctx))
	unsubscribe()
	require.NoError(t, c.ToggleUnits(ctx))
	assert.Equal(t, 1, calls)
}

func TestLateSubscriberGetsNoReplay(t *testing.T) {
	ctx := context.Background()
	c, _ := newSettings(t)
	require.NoError(t, c.ToggleUnits(ctx))

	calls := 0
	c.Subscribe(func(SettingsState) { calls++ })
	assert.Equal(t, 0, calls)
	// Current value is read on demand instead.
	assert.Equal(t, units.MmolPerL, c.Get().Units)
}

// Same contract as TestConcurrentMutationsEmitInCommitOrder on the
// locale container: a slow observer on one mutation must not let a
// concurrent mutation's emission overtake it.
func TestConcurrentThemeMutationsStaySerialized(t *testing.T) {
	ctx := context.Background()
	c, _ := newSettings(t)

	var mu sync.Mutex
	var emitted []domain.ThemeMode
	firstEntered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	c.Subscribe(func(s SettingsState) {
		mu.Lock()
		emitted = append(emitted, s.Theme)
		mu.Unlock()
		once.Do(func() {
			close(firstEntered)
			<-release
		})
	})

	done := make(chan error, 2)
	go func() { done <- c.SetTheme(ctx, domain.ThemeDark) }()
	<-firstEntered
	go func() { done <- c.SetTheme(ctx, domain.ThemeLight) }()
	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []domain.ThemeMode{domain.ThemeDark, domain.ThemeLight}, emitted)
	assert.Equal(t, c.Get().Theme, emitted[len(emitted)-1])
}

func TestRejectedMutationDoesNotEmit(t *testing.T) {
	c, _ := newSettings(t)

	calls := 0
	c.Subscribe(func(SettingsState) { calls++ })
	_ = c.SetUnits(context.Background(), "bogus")
	assert.Equal(t, 0, calls)
}
