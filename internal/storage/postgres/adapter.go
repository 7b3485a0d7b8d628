// Package postgres implements storage.Store over a managed Postgres
// database, the multi-device server backend. Row ownership is
// enforced the same way as everywhere else: every query is scoped by
// user id at this boundary (the deployment's own row-level policy is
// a redundant second line, not the primary one).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/glucolog/glucolog/internal/apperrors"
	"github.com/glucolog/glucolog/internal/config"
	"github.com/glucolog/glucolog/internal/domain"
	"github.com/glucolog/glucolog/internal/storage"
)

type userRow struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type profileRow struct {
	UserID    string `gorm:"primaryKey"`
	FullName  string
	BirthDate *time.Time
	Gender    string
	UpdatedAt time.Time
}

func (profileRow) TableName() string { return "user_profiles" }

type diabeticProfileRow struct {
	UserID       string `gorm:"primaryKey"`
	DiabetesType string
	MinGlucose   float64 `gorm:"default:70;check:min_glucose >= 0 AND min_glucose <= 500"`
	MaxGlucose   float64 `gorm:"default:180;check:max_glucose >= 0 AND max_glucose <= 500"`
	UpdatedAt    time.Time
}

func (diabeticProfileRow) TableName() string { return "diabetic_profiles" }

type preferencesRow struct {
	UserID               string `gorm:"primaryKey"`
	Theme                string `gorm:"default:system"`
	Units                string `gorm:"default:mg/dL"`
	Language             string `gorm:"default:en"`
	NotificationsEnabled bool   `gorm:"default:true"`
	UpdatedAt            time.Time
}

func (preferencesRow) TableName() string { return "user_preferences" }

type glucoseReadingRow struct {
	ID          string `gorm:"primaryKey"`
	UserID      string `gorm:"index:idx_glucose_user_recorded;not null"`
	Value       float64 `gorm:"check:value >= 0 AND value <= 1000"`
	Unit        string
	ReadingType string
	RecordedAt  time.Time `gorm:"index:idx_glucose_user_recorded"`
	Notes       string
}

func (glucoseReadingRow) TableName() string { return "glucose_readings" }

type healthCardRow struct {
	UserID   string `gorm:"primaryKey"`
	CardType string `gorm:"primaryKey"`
	Date     string `gorm:"primaryKey"`
	Value    float64 `gorm:"check:value >= 0"`
	Unit     string
}

func (healthCardRow) TableName() string { return "health_cards" }

type reminderRow struct {
	ID                string `gorm:"primaryKey"`
	UserID            string `gorm:"index;not null"`
	Title             string
	ReminderType      string
	ScheduledTime     time.Time
	IsRecurring       bool
	RecurrencePattern string
	Status            string `gorm:"default:pending;check:status IN ('pending','done','not_done','skipped','completed')"`
	CreatedAt         time.Time
}

func (reminderRow) TableName() string { return "reminders" }

type PostgresStore struct {
	db *gorm.DB
}

// NewStore connects to Postgres and migrates the schema.
func NewStore(cfg config.DBConfig) (storage.Store, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&userRow{},
		&profileRow{},
		&diabeticProfileRow{},
		&preferencesRow{},
		&glucoseReadingRow{},
		&healthCardRow{},
		&reminderRow{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewStoreWithDB wires an existing gorm connection (used by tests).
func NewStoreWithDB(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, req storage.CreateUserRequest) (*domain.User, error) {
	now := time.Now().UTC()
	user := userRow{
		ID:           req.ID,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		Name:         req.Name,
		CreatedAt:    now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&profileRow{UserID: req.ID, FullName: req.Name, UpdatedAt: now}).Error; err != nil {
			return err
		}
		if err := tx.Create(&diabeticProfileRow{UserID: req.ID, MinGlucose: 70, MaxGlucose: 180, UpdatedAt: now}).Error; err != nil {
			return err
		}
		return tx.Create(&preferencesRow{
			UserID:               req.ID,
			Theme:                string(domain.ThemeSystem),
			Units:                "mg/dL",
			Language:             string(domain.LangEnglish),
			NotificationsEnabled: true,
			UpdatedAt:            now,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.NewBackendError(err)
	}

	return userFromRow(user), nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return nil, mapGormErr(err, "user")
	}
	return userFromRow(row), nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error; err != nil {
		return nil, mapGormErr(err, "user")
	}
	return userFromRow(row), nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&glucoseReadingRow{}, &healthCardRow{}, &reminderRow{},
			&profileRow{}, &diabeticProfileRow{}, &preferencesRow{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		result := tx.Where("id = ?", userID).Delete(&userRow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return mapGormErr(err, "user")
	}
	return nil
}

// --- Profiles ---

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var row profileRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, mapGormErr(err, "profile")
	}
	return &domain.UserProfile{
		UserID:    row.UserID,
		FullName:  row.FullName,
		BirthDate: row.BirthDate,
		Gender:    row.Gender,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID string, update storage.ProfileUpdate) error {
	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if update.FullName != nil {
		fields["full_name"] = *update.FullName
	}
	if update.BirthDate != nil {
		fields["birth_date"] = *update.BirthDate
	}
	if update.Gender != nil {
		fields["gender"] = *update.Gender
	}
	return s.updateOwned(ctx, &profileRow{}, userID, fields, "profile")
}

func (s *PostgresStore) GetDiabeticProfile(ctx context.Context, userID string) (*domain.DiabeticProfile, error) {
	var row diabeticProfileRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, mapGormErr(err, "diabetic profile")
	}
	return &domain.DiabeticProfile{
		UserID:       row.UserID,
		DiabetesType: row.DiabetesType,
		MinGlucose:   row.MinGlucose,
		MaxGlucose:   row.MaxGlucose,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func (s *PostgresStore) UpdateDiabeticProfile(ctx context.Context, userID string, update storage.DiabeticProfileUpdate) error {
	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if update.DiabetesType != nil {
		fields["diabetes_type"] = *update.DiabetesType
	}
	if update.MinGlucose != nil {
		fields["min_glucose"] = *update.MinGlucose
	}
	if update.MaxGlucose != nil {
		fields["max_glucose"] = *update.MaxGlucose
	}
	return s.updateOwned(ctx, &diabeticProfileRow{}, userID, fields, "diabetic profile")
}

func (s *PostgresStore) GetPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	var row preferencesRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, mapGormErr(err, "preferences")
	}
	return &domain.UserPreferences{
		UserID:               row.UserID,
		Theme:                domain.ThemeMode(row.Theme),
		Units:                row.Units,
		Language:             domain.Language(row.Language),
		NotificationsEnabled: row.NotificationsEnabled,
		UpdatedAt:            row.UpdatedAt,
	}, nil
}

func (s *PostgresStore) UpdatePreferences(ctx context.Context, userID string, update storage.PreferencesUpdate) error {
	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if update.Theme != nil {
		fields["theme"] = string(*update.Theme)
	}
	if update.Units != nil {
		fields["units"] = *update.Units
	}
	if update.Language != nil {
		fields["language"] = string(*update.Language)
	}
	if update.NotificationsEnabled != nil {
		fields["notifications_enabled"] = *update.NotificationsEnabled
	}
	return s.updateOwned(ctx, &preferencesRow{}, userID, fields, "preferences")
}

// --- Glucose readings ---

func (s *PostgresStore) CreateGlucoseReading(ctx context.Context, reading domain.GlucoseReading) error {
	row := glucoseReadingRow{
		ID:          reading.ID,
		UserID:      reading.UserID,
		Value:       reading.Value,
		Unit:        reading.Unit,
		ReadingType: string(reading.ReadingType),
		RecordedAt:  reading.RecordedAt.UTC(),
		Notes:       reading.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return apperrors.NewBackendError(err)
	}
	return nil
}

func (s *PostgresStore) ListGlucoseReadings(ctx context.Context, userID string, from, to time.Time) ([]domain.GlucoseReading, error) {
	var rows []glucoseReadingRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND recorded_at >= ? AND recorded_at <= ?", userID, from.UTC(), to.UTC()).
		Order("recorded_at ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.NewBackendError(err)
	}

	readings := make([]domain.GlucoseReading, 0, len(rows))
	for _, row := range rows {
		readings = append(readings, readingFromRow(row))
	}
	return readings, nil
}

func (s *PostgresStore) LatestGlucoseReading(ctx context.Context, userID string) (*domain.GlucoseReading, error) {
	var row glucoseReadingRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at DESC").
		First(&row).Error; err != nil {
		return nil, mapGormErr(err, "glucose reading")
	}
	reading := readingFromRow(row)
	return &reading, nil
}

func (s *PostgresStore) DeleteGlucoseReading(ctx context.Context, userID, readingID string) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, readingID).
		Delete(&glucoseReadingRow{})
	if result.Error != nil {
		return apperrors.NewBackendError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("glucose reading")
	}
	return nil
}

// --- Health cards ---

func (s *PostgresStore) UpsertHealthCard(ctx context.Context, card domain.HealthCard) error {
	row := healthCardRow{
		UserID:   card.UserID,
		CardType: string(card.CardType),
		Date:     card.Date,
		Value:    card.Value,
		Unit:     card.Unit,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "card_type"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "unit"}),
	}).Create(&row).Error
	if err != nil {
		return apperrors.NewBackendError(err)
	}
	return nil
}

func (s *PostgresStore) ListHealthCards(ctx context.Context, userID, date string) ([]domain.HealthCard, error) {
	var rows []healthCardRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Find(&rows).Error; err != nil {
		return nil, apperrors.NewBackendError(err)
	}

	cards := make([]domain.HealthCard, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, domain.HealthCard{
			UserID:   row.UserID,
			CardType: domain.CardType(row.CardType),
			Date:     row.Date,
			Value:    row.Value,
			Unit:     row.Unit,
		})
	}
	return cards, nil
}

// --- Reminders ---

func (s *PostgresStore) CreateReminder(ctx context.Context, reminder domain.Reminder) error {
	row := reminderRow{
		ID:                reminder.ID,
		UserID:            reminder.UserID,
		Title:             reminder.Title,
		ReminderType:      reminder.ReminderType,
		ScheduledTime:     reminder.ScheduledTime.UTC(),
		IsRecurring:       reminder.IsRecurring,
		RecurrencePattern: reminder.RecurrencePattern,
		Status:            string(reminder.Status),
		CreatedAt:         reminder.CreatedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return apperrors.NewBackendError(err)
	}
	return nil
}

func (s *PostgresStore) ListReminders(ctx context.Context, userID string) ([]domain.Reminder, error) {
	var rows []reminderRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("scheduled_time ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.NewBackendError(err)
	}

	reminders := make([]domain.Reminder, 0, len(rows))
	for _, row := range rows {
		reminders = append(reminders, domain.Reminder{
			ID:                row.ID,
			UserID:            row.UserID,
			Title:             row.Title,
			ReminderType:      row.ReminderType,
			ScheduledTime:     row.ScheduledTime,
			IsRecurring:       row.IsRecurring,
			RecurrencePattern: row.RecurrencePattern,
			Status:            domain.ReminderStatus(row.Status),
			CreatedAt:         row.CreatedAt,
		})
	}
	return reminders, nil
}

func (s *PostgresStore) UpdateReminderStatus(ctx context.Context, userID, reminderID string, status domain.ReminderStatus) error {
	result := s.db.WithContext(ctx).
		Model(&reminderRow{}).
		Where("user_id = ? AND id = ?", userID, reminderID).
		Update("status", string(status))
	if result.Error != nil {
		return apperrors.NewBackendError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("reminder")
	}
	return nil
}

func (s *PostgresStore) DeleteReminder(ctx context.Context, userID, reminderID string) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, reminderID).
		Delete(&reminderRow{})
	if result.Error != nil {
		return apperrors.NewBackendError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("reminder")
	}
	return nil
}

// --- helpers ---

func (s *PostgresStore) updateOwned(ctx context.Context, model interface{}, userID string, fields map[string]interface{}, resource string) error {
	result := s.db.WithContext(ctx).Model(model).Where("user_id = ?", userID).Updates(fields)
	if result.Error != nil {
		return apperrors.NewBackendError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError(resource)
	}
	return nil
}

func userFromRow(row userRow) *domain.User {
	return &domain.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Name:         row.Name,
		CreatedAt:    row.CreatedAt,
	}
}

func readingFromRow(row glucoseReadingRow) domain.GlucoseReading {
	return domain.GlucoseReading{
		ID:          row.ID,
		UserID:      row.UserID,
		Value:       row.Value,
		Unit:        row.Unit,
		ReadingType: domain.ReadingType(row.ReadingType),
		RecordedAt:  row.RecordedAt,
		Notes:       row.Notes,
	}
}

func mapGormErr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFoundError(resource)
	}
	return apperrors.NewBackendError(err)
}
