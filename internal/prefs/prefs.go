// Package prefs is the durable local key-value preference store used
// by the state containers. Keys are flat strings, values are strings;
// concurrent writers to the same key race with last-write-wins.
package prefs

import (
	"context"
	"strconv"

	"github.com/glucolog/glucolog/internal/apperrors"
)

// Well-known preference keys.
const (
	KeyTheme                = "theme"
	KeyLocale               = "locale"
	KeyUnits                = "units"
	KeyNotificationsEnabled = "notifications_enabled"
	KeyOnboardingComplete   = "onboarding_complete"
	KeyLoggedInUserID       = "logged_in_user_id"
)

// Store is a string-keyed preference store. Get returns
// apperrors.ErrNotFound for absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// GetBool reads a boolean preference, returning fallback when the key
// is absent or unparsable.
func GetBool(ctx context.Context, s Store, key string, fallback bool) bool {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// SetBool writes a boolean preference.
func SetBool(ctx context.Context, s Store, key string, value bool) error {
	return s.Set(ctx, key, strconv.FormatBool(value))
}

func notFound(key string) error {
	return apperrors.NewNotFoundError("preference").WithContext("key", key)
}
