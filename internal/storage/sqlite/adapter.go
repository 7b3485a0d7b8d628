// Package sqlite implements storage.Store over an embedded SQLite
// database, the full-CRUD single-device backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/glucolog/glucolog/internal/apperrors"
	"github.com/glucolog/glucolog/internal/domain"
	"github.com/glucolog/glucolog/internal/storage"
)

type SqliteStore struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database file.
func NewStore(path string) (storage.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewStoreWithDB(db), nil
}

// NewStoreWithDB wires an existing connection (used by the factory and
// tests).
func NewStoreWithDB(db *sql.DB) *SqliteStore {
	return &SqliteStore{db: db}
}

func (s *SqliteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// --- Users ---

func (s *SqliteStore) CreateUser(ctx context.Context, req storage.CreateUserRequest) (*domain.User, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, created_at) VALUES (?,?,?,?,?)`,
		req.ID, req.Email, req.PasswordHash, req.Name, now)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.NewBackendError(err)
	}

	// The 1:1 rows exist from the moment the account does.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, full_name, updated_at) VALUES (?,?,?)`,
		req.ID, req.Name, now); err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO diabetic_profiles (user_id, updated_at) VALUES (?,?)`,
		req.ID, now); err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, updated_at) VALUES (?,?)`,
		req.ID, now); err != nil {
		return nil, apperrors.NewBackendError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewBackendError(err)
	}

	return &domain.User{
		ID:           req.ID,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Name:         req.Name,
		CreatedAt:    now,
	}, nil
}

func (s *SqliteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *SqliteStore) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at FROM users WHERE id = ?`, userID)
	return scanUser(row)
}

func (s *SqliteStore) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return requireAffected(res, "user")
}

// --- Profiles ---

func (s *SqliteStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, full_name, birth_date, gender, updated_at FROM user_profiles WHERE user_id = ?`, userID)

	var p domain.UserProfile
	var birthDate sql.NullTime
	if err := row.Scan(&p.UserID, &p.FullName, &birthDate, &p.Gender, &p.UpdatedAt); err != nil {
		return nil, mapScanErr(err, "profile")
	}
	if birthDate.Valid {
		p.BirthDate = &birthDate.Time
	}
	return &p, nil
}

func (s *SqliteStore) UpdateProfile(ctx context.Context, userID string, update storage.ProfileUpdate) error {
	set, args := []string{"updated_at = ?"}, []interface{}{time.Now().UTC()}
	if update.FullName != nil {
		set = append(set, "full_name = ?")
		args = append(args, *update.FullName)
	}
	if update.BirthDate != nil {
		set = append(set, "birth_date = ?")
		args = append(args, *update.BirthDate)
	}
	if update.Gender != nil {
		set = append(set, "gender = ?")
		args = append(args, *update.Gender)
	}
	args = append(args, userID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE user_profiles SET `+strings.Join(set, ", ")+` WHERE user_id = ?`, args...)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return requireAffected(res, "profile")
}

func (s *SqliteStore) GetDiabeticProfile(ctx context.Context, userID string) (*domain.DiabeticProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, diabetes_type, min_glucose, max_glucose, updated_at FROM diabetic_profiles WHERE user_id = ?`, userID)

	var p domain.DiabeticProfile
	if err := row.Scan(&p.UserID, &p.DiabetesType, &p.MinGlucose, &p.MaxGlucose, &p.UpdatedAt); err != nil {
		return nil, mapScanErr(err, "diabetic profile")
	}
	return &p, nil
}

func (s *SqliteStore) UpdateDiabeticProfile(ctx context.Context, userID string, update storage.DiabeticProfileUpdate) error {
	set, args := []string{"updated_at = ?"}, []interface{}{time.Now().UTC()}
	if update.DiabetesType != nil {
		set = append(set, "diabetes_type = ?")
		args = append(args, *update.DiabetesType)
	}
	if update.MinGlucose != nil {
		set = append(set, "min_glucose = ?")
		args = append(args, *update.MinGlucose)
	}
	if update.MaxGlucose != nil {
		set = append(set, "max_glucose = ?")
		args = append(args, *update.MaxGlucose)
	}
	args = append(args, userID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE diabetic_profiles SET `+strings.Join(set, ", ")+` WHERE user_id = ?`, args...)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return requireAffected(res, "diabetic profile")
}

func (s *SqliteStore) GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, theme, units, language, notifications_enabled, updated_at FROM user_preferences WHERE user_id = ?`, userID)

	var p domain.UserPreferences
	if err := row.Scan(&p.UserID, &p.Theme, &p.Units, &p.Language, &p.NotificationsEnabled, &p.UpdatedAt); err != nil {
		return nil, mapScanErr(err, "preferences")
	}
	return &p, nil
}

func (s *SqliteStore) UpdatePreferences(ctx context.Context, userID string, update storage.PreferencesUpdate) error {
	set, args := []string{"updated_at = ?"}, []interface{}{time.Now().UTC()}
	if update.Theme != nil {
		set = append(set, "theme = ?")
		args = append(args, string(*update.Theme))
	}
	if update.Units != nil {
		set = append(set, "units = ?")
		args = append(args, *update.Units)
	}
	if update.Language != nil {
		set = append(set, "language = ?")
		args = append(args, string(*update.Language))
	}
	if update.NotificationsEnabled != nil {
		set = append(set, "notifications_enabled = ?")
		args = append(args, *update.NotificationsEnabled)
	}
	args = append(args, userID)

	res, err := s.db.ExecContext(ctx,
		`UPDATE user_preferences SET `+strings.Join(set, ", ")+` WHERE user_id = ?`, args...)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return requireAffected(res, "preferences")
}

// --- Glucose readings ---

func (s *SqliteStore) CreateGlucoseReading(ctx context.Context, reading domain.GlucoseReading) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO glucose_readings (id, user_id, value, unit, reading_type, recorded_at, notes) VALUES (?,?,?,?,?,?,?)`,
		reading.ID, reading.UserID, reading.Value, reading.Unit, string(reading.ReadingType), reading.RecordedAt.UTC(), reading.Notes)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return nil
}

func (s *SqliteStore) ListGlucoseReadings(ctx context.Context, userID string, from, to time.Time) ([]domain.GlucoseReading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, value, unit, reading_type, recorded_at, notes
		 FROM glucose_readings
		 WHERE user_id = ? AND recorded_at >= ? AND recorded_at <= ?
		 ORDER BY recorded_at ASC`,
		userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	defer rows.Close()

	var readings []domain.GlucoseReading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, apperrors.NewBackendError(err)
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	return readings, nil
}

func (s *SqliteStore) LatestGlucoseReading(ctx context.Context, userID string) (*domain.GlucoseReading, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, value, unit, reading_type, recorded_at, notes
		 FROM glucose_readings WHERE user_id = ?
		 ORDER BY recorded_at DESC LIMIT 1`, userID)

	r, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("glucose reading")
		}
		return nil, apperrors.NewBackendError(err)
	}
	return &r, nil
}

func (s *SqliteStore) DeleteGlucoseReading(ctx context.Context, userID, readingID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM glucose_readings WHERE user_id = ? AND id = ?`, userID, readingID)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return requireAffected(res, "glucose reading")
}

// --- Health cards ---

func (s *SqliteStore) UpsertHealthCard(ctx context.Context, card domain.HealthCard) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO health_cards (user_id, card_type, date, value, unit) VALUES (?,?,?,?,?)
		 ON CONFLICT (user_id, card_type, date) DO UPDATE SET value = excluded.value, unit = excluded.unit`,
		card.UserID, string(card.CardType), card.Date, card.Value, card.Unit)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return nil
}

func (s *SqliteStore) ListHealthCards(ctx context.Context, userID, date string) ([]domain.HealthCard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, card_type, date, value, unit FROM health_cards WHERE user_id = ? AND date = ?`,
		userID, date)
	if err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	defer rows.Close()

	var cards []domain.HealthCard
	for rows.Next() {
		var c domain.HealthCard
		if err := rows.Scan(&c.UserID, &c.CardType, &c.Date, &c.Value, &c.Unit); err != nil {
			return nil, apperrors.NewBackendError(err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	return cards, nil
}

// --- Reminders ---

func (s *SqliteStore) CreateReminder(ctx context.Context, reminder domain.Reminder) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (id, user_id, title, reminder_type, scheduled_time, is_recurring, recurrence_pattern, status, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		reminder.ID, reminder.UserID, reminder.Title, reminder.ReminderType,
		reminder.ScheduledTime.UTC(), reminder.IsRecurring, reminder.RecurrencePattern,
		string(reminder.Status), reminder.CreatedAt.UTC())
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return nil
}

func (s *SqliteStore) ListReminders(ctx context.Context, userID string) ([]domain.Reminder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, reminder_type, scheduled_time, is_recurring, recurrence_pattern, status, created_at
		 FROM reminders WHERE user_id = ? ORDER BY scheduled_time ASC`, userID)
	if err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	defer rows.Close()

	var reminders []domain.Reminder
	for rows.Next() {
		var r domain.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.ReminderType, &r.ScheduledTime,
			&r.IsRecurring, &r.RecurrencePattern, &r.Status, &r.CreatedAt); err != nil {
			return nil, apperrors.NewBackendError(err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewBackendError(err)
	}
	return reminders, nil
}

func (s *SqliteStore) UpdateReminderStatus(ctx context.Context, userID, reminderID string, status domain.ReminderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET status = ? WHERE user_id = ? AND id = ?`,
		string(status), userID, reminderID)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return requireAffected(res, "reminder")
}

func (s *SqliteStore) DeleteReminder(ctx context.Context, userID, reminderID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE user_id = ? AND id = ?`, userID, reminderID)
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return requireAffected(res, "reminder")
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CreatedAt); err != nil {
		return nil, mapScanErr(err, "user")
	}
	return &u, nil
}

func scanReading(row rowScanner) (domain.GlucoseReading, error) {
	var r domain.GlucoseReading
	err := row.Scan(&r.ID, &r.UserID, &r.Value, &r.Unit, &r.ReadingType, &r.RecordedAt, &r.Notes)
	return r, err
}

func mapScanErr(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError(resource)
	}
	return apperrors.NewBackendError(err)
}

func requireAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(resource)
	}
	return nil
}

// isUniqueViolation matches the driver's constraint error text; the
// modernc driver exposes no typed error for it.
func isUniqueViolation(err error, constraint string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+constraint)
}
