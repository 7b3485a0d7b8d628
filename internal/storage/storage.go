// Package storage defines the backend-agnostic persistence contract
// the data service is built on. Three adapters implement it: a
// read-only JSON asset (demo data), an embedded SQLite database
// (single device) and Postgres (server deployment). Shared logic such
// as chart bucketing and dashboard assembly lives above this interface
// so no adapter reimplements it.
package storage

import (
	"context"
	"time"

	"github.com/glucolog/glucolog/internal/domain"
)

// CreateUserRequest carries everything needed to provision an account.
// Adapters create the 1:1 profile, diabetic profile and preferences
// rows in the same operation so a user never exists half-provisioned.
type CreateUserRequest struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
}

// ProfileUpdate is a partial-field merge; nil fields keep their
// stored value.
type ProfileUpdate struct {
	FullName  *string
	BirthDate *time.Time
	Gender    *string
}

// DiabeticProfileUpdate is a partial-field merge for the diabetic
// profile row.
type DiabeticProfileUpdate struct {
	DiabetesType *string
	MinGlucose   *float64
	MaxGlucose   *float64
}

// PreferencesUpdate is a partial-field merge for the durable per-user
// preference row.
type PreferencesUpdate struct {
	Theme                *domain.ThemeMode
	Units                *string
	Language             *domain.Language
	NotificationsEnabled *bool
}

// Store is the uniform persistence surface. Every method scopes its
// rows to the given user id; callers outside this package cannot
// express a cross-user access. Absent rows surface as
// apperrors.ErrNotFound; backend failures as ErrBackendUnavailable.
type Store interface {
	HealthCheck(ctx context.Context) error
	Close() error

	// Users
	CreateUser(ctx context.Context, req CreateUserRequest) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string) error

	// Profiles (1:1 with user)
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error
	GetDiabeticProfile(ctx context.Context, userID string) (*domain.DiabeticProfile, error)
	UpdateDiabeticProfile(ctx context.Context, userID string, update DiabeticProfileUpdate) error
	GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error)
	UpdatePreferences(ctx context.Context, userID string, update PreferencesUpdate) error

	// Glucose readings
	CreateGlucoseReading(ctx context.Context, reading domain.GlucoseReading) error
	ListGlucoseReadings(ctx context.Context, userID string, from, to time.Time) ([]domain.GlucoseReading, error)
	LatestGlucoseReading(ctx context.Context, userID string) (*domain.GlucoseReading, error)
	DeleteGlucoseReading(ctx context.Context, userID, readingID string) error

	// Health cards: unique per (user, card type, date); writes upsert
	UpsertHealthCard(ctx context.Context, card domain.HealthCard) error
	ListHealthCards(ctx context.Context, userID, date string) ([]domain.HealthCard, error)

	// Reminders
	CreateReminder(ctx context.Context, reminder domain.Reminder) error
	ListReminders(ctx context.Context, userID string) ([]domain.Reminder, error)
	UpdateReminderStatus(ctx context.Context, userID, reminderID string, status domain.ReminderStatus) error
	DeleteReminder(ctx context.Context, userID, reminderID string) error
}
