package assetjson

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucolog/glucolog/internal/apperrors"
	"github.com/glucolog/glucolog/internal/domain"
	"github.com/glucolog/glucolog/internal/storage"
)

const demoAsset = `{
  "user": {
    "id": "demo-user",
    "email": "demo@glucolog.app",
    "password_hash": "$2a$10$demo",
    "name": "Demo",
    "created_at": "2026-01-01T00:00:00Z"
  },
  "preferences": {
    "UserID": "demo-user",
    "Theme": "light",
    "Units": "mg/dL",
    "Language": "en",
    "NotificationsEnabled": true
  },
  "glucose_readings": [
    {"ID": "g1", "UserID": "demo-user", "Value": 110, "Unit": "mg/dL", "ReadingType": "fasting", "RecordedAt": "2026-01-02T08:00:00Z"},
    {"ID": "g2", "UserID": "demo-user", "Value": 150, "Unit": "mg/dL", "ReadingType": "after_meal", "RecordedAt": "2026-01-02T13:00:00Z"}
  ],
  "health_cards": [
    {"UserID": "demo-user", "CardType": "water", "Date": "2026-01-02", "Value": 4, "Unit": "glasses"}
  ],
  "reminders": [
    {"ID": "rem1", "UserID": "demo-user", "Title": "Walk", "ScheduledTime": "2026-01-02T18:00:00Z", "Status": "pending"}
  ]
}`

func newDemoStore(t *testing.T) storage.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.json")
	require.NoError(t, os.WriteFile(path, []byte(demoAsset), 0644))
	store, err := NewStore(path)
	require.NoError(t, err)
	return store
}

func TestReadsServeTheDocument(t *testing.T) {
	ctx := context.Background()
	store := newDemoStore(t)

	user, err := store.GetUserByEmail(ctx, "demo@glucolog.app")
	require.NoError(t, err)
	assert.Equal(t, "demo-user", user.ID)

	latest, err := store.LatestGlucoseReading(ctx, "demo-user")
	require.NoError(t, err)
	assert.Equal(t, "g2", latest.ID)

	from := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	readings, err := store.ListGlucoseReadings(ctx, "demo-user", from, from.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, readings, 2)

	cards, err := store.ListHealthCards(ctx, "demo-user", "2026-01-02")
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	reminders, err := store.ListReminders(ctx, "demo-user")
	require.NoError(t, err)
	assert.Len(t, reminders, 1)
}

func TestUnknownUserReads(t *testing.T) {
	ctx := context.Background()
	store := newDemoStore(t)

	_, err := store.GetUserByEmail(ctx, "other@x.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	readings, err := store.ListGlucoseReadings(ctx, "other", time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func assertReadOnly(t *testing.T, err error) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeUnavailable, appErr.Type)
	assert.Equal(t, "READ_ONLY_BACKEND", appErr.Code)
}

func TestAllWritesRejected(t *testing.T) {
	ctx := context.Background()
	store := newDemoStore(t)

	_, err := store.CreateUser(ctx, storage.CreateUserRequest{ID: "x", Email: "x@x.com"})
	assertReadOnly(t, err)

	assertReadOnly(t, store.CreateGlucoseReading(ctx, domain.GlucoseReading{ID: "g9", UserID: "demo-user"}))
	assertReadOnly(t, store.UpsertHealthCard(ctx, domain.HealthCard{UserID: "demo-user", CardType: domain.CardWater, Date: "2026-01-02"}))
	assertReadOnly(t, store.UpdateReminderStatus(ctx, "demo-user", "rem1", domain.ReminderDone))
	assertReadOnly(t, store.DeleteUser(ctx, "demo-user"))
}
