package state

import (
	"context"
	"sync"

	"github.com/glucolog/glucolog/internal/apperrors"
	"github.com/glucolog/glucolog/internal/domain"
	"github.com/glucolog/glucolog/internal/prefs"
)

// LocaleState is the immutable locale snapshot.
type LocaleState struct {
	Language domain.Language
}

// IsRTL reports whether the language renders right-to-left. Arabic is
// the only RTL language in the supported set.
func (s LocaleState) IsRTL() bool {
	return s.Language == domain.LangArabic
}

// LocaleContainer is the single-writer observable holder for
// LocaleState. Same contract as SettingsContainer.
type LocaleContainer struct {
	store prefs.Store
	bc    *broadcaster[LocaleState]

	// writeMu serializes whole mutations, emission included; see
	// SettingsContainer.replace.
	writeMu sync.Mutex

	mu      sync.Mutex
	current LocaleState
}

// NewLocaleContainer builds a container hydrated from the preference
// store, defaulting to English.
func NewLocaleContainer(ctx context.Context, store prefs.Store) *LocaleContainer {
	s := LocaleState{Language: domain.LangEnglish}

	if raw, err := store.Get(ctx, prefs.KeyLocale); err == nil {
		if lang, ok := parseLanguage(raw); ok {
			s.Language = lang
		}
	}

	return &LocaleContainer{
		store:   store,
		bc:      newBroadcaster[LocaleState](),
		current: s,
	}
}

// Get returns the latest emitted state.
func (c *LocaleContainer) Get() LocaleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Subscribe registers an observer and returns its unsubscribe func.
func (c *LocaleContainer) Subscribe(fn func(LocaleState)) func() {
	return c.bc.subscribe(fn)
}

// SetLanguage replaces the language. Languages outside the supported
// set are rejected with an InvalidInput error.
func (c *LocaleContainer) SetLanguage(ctx context.Context, lang domain.Language) error {
	if _, ok := parseLanguage(string(lang)); !ok {
		return apperrors.NewValidationError("unsupported language: " + string(lang))
	}
	return c.replace(ctx, func(domain.Language) domain.Language { return lang })
}

// CycleLanguage advances to the next supported language in fixed order
// en -> fr -> ar -> en. Three calls return to the starting language.
func (c *LocaleContainer) CycleLanguage(ctx context.Context) error {
	return c.replace(ctx, func(current domain.Language) domain.Language {
		for i, lang := range domain.SupportedLanguages {
			if lang == current {
				return domain.SupportedLanguages[(i+1)%len(domain.SupportedLanguages)]
			}
		}
		return domain.SupportedLanguages[0]
	})
}

func (c *LocaleContainer) replace(ctx context.Context, mutate func(domain.Language) domain.Language) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	next := LocaleState{Language: mutate(c.current.Language)}
	c.mu.Unlock()

	if err := c.store.Set(ctx, prefs.KeyLocale, string(next.Language)); err != nil {
		return err
	}

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()

	c.bc.emit(next)
	return nil
}

func parseLanguage(s string) (domain.Language, bool) {
	for _, lang := range domain.SupportedLanguages {
		if string(lang) == s {
			return lang, true
		}
	}
	return "", false
}
