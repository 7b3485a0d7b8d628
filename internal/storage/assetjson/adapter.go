// Package assetjson implements storage.Store over a flat JSON
// document bundled with the app, the historical read-only demo
// backend. All reads serve the parsed document; every write fails so
// callers cannot mistake demo mode for durable storage.
package assetjson

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/glucolog/glucolog/internal/apperrors"
	"github.com/glucolog/glucolog/internal/domain"
	"github.com/glucolog/glucolog/internal/storage"
)

// document is the asset's on-disk shape: one demo user with their
// rows inlined.
type document struct {
	User            demoUser                `json:"user"`
	Profile         *domain.UserProfile     `json:"profile"`
	DiabeticProfile *domain.DiabeticProfile `json:"diabetic_profile"`
	Preferences     *domain.UserPreferences `json:"preferences"`
	GlucoseReadings []domain.GlucoseReading `json:"glucose_readings"`
	HealthCards     []domain.HealthCard     `json:"health_cards"`
	Reminders       []domain.Reminder       `json:"reminders"`
}

type demoUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

type AssetStore struct {
	doc document
}

// NewStore loads and parses the asset once; lookups never touch disk
// again.
func NewStore(path string) (storage.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse asset %s: %w", path, err)
	}
	return &AssetStore{doc: doc}, nil
}

func (s *AssetStore) HealthCheck(ctx context.Context) error { return nil }

func (s *AssetStore) Close() error { return nil }

// errReadOnly rejects every write against the demo backend.
func errReadOnly(operation string) error {
	return apperrors.New(apperrors.ErrorTypeUnavailable, "READ_ONLY_BACKEND",
		"demo data backend is read-only").WithContext("operation", operation)
}

// --- Users ---

func (s *AssetStore) CreateUser(ctx context.Context, req storage.CreateUserRequest) (*domain.User, error) {
	return nil, errReadOnly("CreateUser")
}

func (s *AssetStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email != s.doc.User.Email {
		return nil, apperrors.NewNotFoundError("user")
	}
	return s.user(), nil
}

func (s *AssetStore) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if userID != s.doc.User.ID {
		return nil, apperrors.NewNotFoundError("user")
	}
	return s.user(), nil
}

func (s *AssetStore) DeleteUser(ctx context.Context, userID string) error {
	return errReadOnly("DeleteUser")
}

// --- Profiles ---

func (s *AssetStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if userID != s.doc.User.ID || s.doc.Profile == nil {
		return nil, apperrors.NewNotFoundError("profile")
	}
	p := *s.doc.Profile
	return &p, nil
}

func (s *AssetStore) UpdateProfile(ctx context.Context, userID string, update storage.ProfileUpdate) error {
	return errReadOnly("UpdateProfile")
}

func (s *AssetStore) GetDiabeticProfile(ctx context.Context, userID string) (*domain.DiabeticProfile, error) {
	if userID != s.doc.User.ID || s.doc.DiabeticProfile == nil {
		return nil, apperrors.NewNotFoundError("diabetic profile")
	}
	p := *s.doc.DiabeticProfile
	return &p, nil
}

func (s *AssetStore) UpdateDiabeticProfile(ctx context.Context, userID string, update storage.DiabeticProfileUpdate) error {
	return errReadOnly("UpdateDiabeticProfile")
}

func (s *AssetStore) GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	if userID != s.doc.User.ID || s.doc.Preferences == nil {
		return nil, apperrors.NewNotFoundError("preferences")
	}
	p := *s.doc.Preferences
	return &p, nil
}

func (s *AssetStore) UpdatePreferences(ctx context.Context, userID string, update storage.PreferencesUpdate) error {
	return errReadOnly("UpdatePreferences")
}

// --- Glucose readings ---

func (s *AssetStore) CreateGlucoseReading(ctx context.Context, reading domain.GlucoseReading) error {
	return errReadOnly("CreateGlucoseReading")
}

func (s *AssetStore) ListGlucoseReadings(ctx context.Context, userID string, from, to time.Time) ([]domain.GlucoseReading, error) {
	if userID != s.doc.User.ID {
		return nil, nil
	}
	var readings []domain.GlucoseReading
	for _, r := range s.doc.GlucoseReadings {
		if r.RecordedAt.Before(from) || r.RecordedAt.After(to) {
			continue
		}
		readings = append(readings, r)
	}
	sort.Slice(readings, func(i, j int) bool {
		return readings[i].RecordedAt.Before(readings[j].RecordedAt)
	})
	return readings, nil
}

func (s *AssetStore) LatestGlucoseReading(ctx context.Context, userID string) (*domain.GlucoseReading, error) {
	if userID != s.doc.User.ID || len(s.doc.GlucoseReadings) == 0 {
		return nil, apperrors.NewNotFoundError("glucose reading")
	}
	latest := s.doc.GlucoseReadings[0]
	for _, r := range s.doc.GlucoseReadings[1:] {
		if r.RecordedAt.After(latest.RecordedAt) {
			latest = r
		}
	}
	return &latest, nil
}

func (s *AssetStore) DeleteGlucoseReading(ctx context.Context, userID, readingID string) error {
	return errReadOnly("DeleteGlucoseReading")
}

// --- Health cards ---

func (s *AssetStore) UpsertHealthCard(ctx context.Context, card domain.HealthCard) error {
	return errReadOnly("UpsertHealthCard")
}

func (s *AssetStore) ListHealthCards(ctx context.Context, userID, date string) ([]domain.HealthCard, error) {
	if userID != s.doc.User.ID {
		return nil, nil
	}
	var cards []domain.HealthCard
	for _, c := range s.doc.HealthCards {
		if c.Date == date {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

// --- Reminders ---

func (s *AssetStore) CreateReminder(ctx context.Context, reminder domain.Reminder) error {
	return errReadOnly("CreateReminder")
}

func (s *AssetStore) ListReminders(ctx context.Context, userID string) ([]domain.Reminder, error) {
	if userID != s.doc.User.ID {
		return nil, nil
	}
	reminders := make([]domain.Reminder, len(s.doc.Reminders))
	copy(reminders, s.doc.Reminders)
	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].ScheduledTime.Before(reminders[j].ScheduledTime)
	})
	return reminders, nil
}

func (s *AssetStore) UpdateReminderStatus(ctx context.Context, userID, reminderID string, status domain.ReminderStatus) error {
	return errReadOnly("UpdateReminderStatus")
}

func (s *AssetStore) DeleteReminder(ctx context.Context, userID, reminderID string) error {
	return errReadOnly("DeleteReminder")
}

func (s *AssetStore) user() *domain.User {
	return &domain.User{
		ID:           s.doc.User.ID,
		Email:        s.doc.User.Email,
		PasswordHash: s.doc.User.PasswordHash,
		Name:         s.doc.User.Name,
		CreatedAt:    s.doc.User.CreatedAt,
	}
}
