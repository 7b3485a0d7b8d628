package state

import (
	"context"
	"sync"

	"github.com/glucolog/glucolog/internal/apperrors"
	"github.com/glucolog/glucolog/internal/domain"
	"github.com/glucolog/glucolog/internal/prefs"
	"github.com/glucolog/glucolog/internal/units"
)

// SettingsState is the immutable settings snapshot. Replaced, never
// mutated in place.
type SettingsState struct {
	Theme domain.ThemeMode
	Units units.Unit
}

// DefaultSettings is the state before any stored preference exists.
// Theme defaults to system; units to mg/dL.
func DefaultSettings() SettingsState {
	return SettingsState{
		Theme: domain.ThemeSystem,
		Units: units.MgPerDl,
	}
}

// SettingsContainer is the single-writer observable holder for
// SettingsState. Every successful mutation persists to the preference
// store before it is emitted, so the store never trails the emitted
// state.
type SettingsContainer struct {
	store prefs.Store
	bc    *broadcaster[SettingsState]

	// writeMu serializes whole mutations, emission included, so the
	// emission order always matches the commit order. Kept separate
	// from mu so Get never blocks on observers.
	writeMu sync.Mutex

	mu      sync.Mutex
	current SettingsState
}

// NewSettingsContainer builds a container hydrated from the preference
// store. Absent or unparsable stored values fall back to defaults.
func NewSettingsContainer(ctx context.Context, store prefs.Store) *SettingsContainer {
	s := DefaultSettings()

	if raw, err := store.Get(ctx, prefs.KeyTheme); err == nil {
		if theme, ok := parseTheme(raw); ok {
			s.Theme = theme
		}
	}
	if raw, err := store.Get(ctx, prefs.KeyUnits); err == nil {
		if u, err := units.ParseUnit(raw); err == nil {
			s.Units = u
		}
	}

	return &SettingsContainer{
		store:   store,
		bc:      newBroadcaster[SettingsState](),
		current: s,
	}
}

// Get returns the latest emitted state. Never blocks on observers.
func (c *SettingsContainer) Get() SettingsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers an observer for future state replacements and
// returns its unsubscribe func. No replay for late subscribers.
func (c *SettingsContainer) Subscribe(fn func(SettingsState)) func() {
	return c.bc.subscribe(fn)
}

// SetTheme replaces the theme. Unknown theme strings are rejected with
// an InvalidInput error; the source's silent no-op on bad input hid
// caller mistakes and is not reproduced.
func (c *SettingsContainer) SetTheme(ctx context.Context, theme domain.ThemeMode) error {
	if _, ok := parseTheme(string(theme)); !ok {
		return apperrors.NewValidationError("unknown theme mode: " + string(theme))
	}
	return c.replace(ctx, func(s SettingsState) SettingsState {
		s.Theme = theme
		return s
	})
}

// SetUnits replaces the glucose display unit, validated the same way.
func (c *SettingsContainer) SetUnits(ctx context.Context, unit string) error {
	u, err := units.ParseUnit(unit)
	if err != nil {
		return err
	}
	return c.replace(ctx, func(s SettingsState) SettingsState {
		s.Units = u
		return s
	})
}

// ToggleTheme is the two-state cycle: dark becomes light, anything
// else becomes dark. System resolves to dark on first toggle.
func (c *SettingsContainer) ToggleTheme(ctx context.Context) error {
	return c.replace(ctx, func(s SettingsState) SettingsState {
		if s.Theme == domain.ThemeDark {
			s.Theme = domain.ThemeLight
		} else {
			s.Theme = domain.ThemeDark
		}
		return s
	})
}

// CycleTheme is the three-state cycle light -> dark -> system -> light.
// Kept distinct from ToggleTheme; both orders ship.
func (c *SettingsContainer) CycleTheme(ctx context.Context) error {
	return c.replace(ctx, func(s SettingsState) SettingsState {
		switch s.Theme {
		case domain.ThemeLight:
			s.Theme = domain.ThemeDark
		case domain.ThemeDark:
			s.Theme = domain.ThemeSystem
		default:
			s.Theme = domain.ThemeLight
		}
		return s
	})
}

// ToggleUnits flips between the two units. An involution: applying it
// twice restores the original unit.
func (c *SettingsContainer) ToggleUnits(ctx context.Context) error {
	return c.replace(ctx, func(s SettingsState) SettingsState {
		s.Units = s.Units.Next()
		return s
	})
}

// replace runs the copy-on-write mutation, persists, commits, then
// emits, all under the write mutex: the next mutator cannot start
// until this one's emission has been delivered, so observers see
// replacements in commit order and the last emission is always the
// current state. A persistence failure aborts the replacement so the
// store never disagrees with the emitted state.
func (c *SettingsContainer) replace(ctx context.Context, mutate func(SettingsState) SettingsState) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	next := mutate(c.current)
	c.mu.Unlock()

	if err := c.store.Set(ctx, prefs.KeyTheme, string(next.Theme)); err != nil {
		return err
	}
	if err := c.store.Set(ctx, prefs.KeyUnits, string(next.Units)); err != nil {
		return err
	}

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()

	c.bc.emit(next)
	return nil
}

func parseTheme(s string) (domain.ThemeMode, bool) {
	switch domain.ThemeMode(s) {
	case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
		return domain.ThemeMode(s), true
	}
	return "", false
}
