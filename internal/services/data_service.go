// Package services holds the application services above the storage
// boundary. DataService is the single method surface the UI talks to,
// identical across the demo, embedded and server backends.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glucolog/glucolog/internal/apperrors"
	"github.com/glucolog/glucolog/internal/auth"
	"github.com/glucolog/glucolog/internal/chart"
	"github.com/glucolog/glucolog/internal/domain"
	"github.com/glucolog/glucolog/internal/prefs"
	"github.com/glucolog/glucolog/internal/storage"
	"github.com/glucolog/glucolog/internal/units"
)

// DefaultTimeout bounds every storage call. The mobile source had no
// timeout at all and hung on dead networks.
const DefaultTimeout = 15 * time.Second

const minPasswordLength = 6

// Session is an authenticated login. Registration auto-logs-in and
// returns one explicitly; callers never infer a session from a bool.
type Session struct {
	UserID   string
	Email    string
	Token    string // empty when no token issuer is configured
	IssuedAt time.Time
}

// ReadingDisplay is a glucose reading rendered in the user's display
// unit.
type ReadingDisplay struct {
	Value       float64
	Unit        string
	ReadingType domain.ReadingType
	Display     string
	RecordedAt  time.Time
}

// Dashboard is the assembled dashboard payload. The same shape is
// returned logged out, with zero series and empty card values, so the
// pre-login dashboard still renders.
type Dashboard struct {
	LatestReading *ReadingDisplay
	Chart         chart.Series
	HealthCards   []domain.HealthCard
	Reminders     []domain.Reminder
}

// DataService mediates between callers and one storage backend.
// Construct it explicitly and inject it; there is deliberately no
// package-level instance (the source's global service locator made
// backend swaps and tests miserable).
//
// Reads degrade to documented defaults when logged out; writes fail
// with ErrNotLoggedIn. Callers that need ordering between dependent
// writes must await each call: concurrent in-flight writes to the
// same resource resolve last-response-wins.
type DataService struct {
	store   storage.Store
	prefs   prefs.Store
	issuer  *auth.TokenIssuer
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	session *Session
}

// Option customizes a DataService.
type Option func(*DataService)

// WithTokenIssuer makes sessions carry signed bearer tokens.
func WithTokenIssuer(issuer *auth.TokenIssuer) Option {
	return func(s *DataService) { s.issuer = issuer }
}

// WithTimeout overrides the per-call storage timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *DataService) { s.timeout = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *DataService) { s.now = now }
}

// NewDataService creates a facade over the given backend. prefStore
// receives the logged_in_user_id echo and may be nil.
func NewDataService(store storage.Store, prefStore prefs.Store, opts ...Option) *DataService {
	s := &DataService{
		store:   store,
		prefs:   prefStore,
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// opCtx applies the per-call timeout.
func (s *DataService) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// CurrentSession returns the active session, or nil when logged out.
func (s *DataService) CurrentSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

// requireSession resolves the current user id or fails with
// ErrNotLoggedIn.
func (s *DataService) requireSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return "", apperrors.ErrNotLoggedIn
	}
	return s.session.UserID, nil
}

// --- Session lifecycle ---

// RegisterUser creates an account and auto-logs-in. A duplicate email
// fails with ErrEmailAlreadyExists and leaves no session: the
// pre-check catches the common case and the backend's uniqueness
// constraint closes the race against a concurrent registration.
func (s *DataService) RegisterUser(ctx context.Context, email, password, name string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.NewValidationError("password must be at least 6 characters")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user, err := s.store.CreateUser(ctx, storage.CreateUserRequest{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	})
	if err != nil {
		return nil, err
	}

	return s.establishSession(ctx, user)
}

// Login authenticates and establishes a session.
func (s *DataService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.establishSession(ctx, user)
}

func (s *DataService) establishSession(ctx context.Context, user *domain.User) (*Session, error) {
	session := &Session{
		UserID:   user.ID,
		Email:    user.Email,
		IssuedAt: s.now(),
	}
	if s.issuer != nil {
		token, err := s.issuer.Issue(user.ID)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		session.Token = token
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	if s.prefs != nil {
		// Best effort; a failed echo never blocks login.
		_ = s.prefs.Set(ctx, prefs.KeyLoggedInUserID, user.ID)
	}

	copied := *session
	return &copied, nil
}

// Logout drops the session. Idempotent.
func (s *DataService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if s.prefs != nil {
		_ = s.prefs.Delete(ctx, prefs.KeyLoggedInUserID)
	}
}

// DeleteAccount removes the user and all owned rows, then logs out.
func (s *DataService) DeleteAccount(ctx context.Context) error {
	userID, err := s.requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.Logout(ctx)
	return nil
}

// --- Glucose readings ---

// AddGlucoseReading stores a measurement entered in unit u, normalized
// to mg/dL. Values outside [0,1000] mg/dL and unknown reading types
// fail with InvalidInput.
func (s *DataService) AddGlucoseReading(ctx context.Context, value float64, u units.Unit, readingType domain.ReadingType, recordedAt time.Time, notes string) (*domain.GlucoseReading, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	if !domain.ValidReadingType(readingType) {
		return nil, apperrors.NewValidationError("unknown reading type: " + string(readingType))
	}

	normalized := units.ToMgDl(value, u)
	if normalized < 0 || normalized > 1000 {
		return nil, apperrors.NewValidationError("glucose value out of range [0,1000] mg/dL")
	}
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}

	reading := domain.GlucoseReading{
		ID:          uuid.New().String(),
		UserID:      userID,
		Value:       normalized,
		Unit:        string(units.MgPerDl),
		ReadingType: readingType,
		RecordedAt:  recordedAt,
		Notes:       notes,
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.store.CreateGlucoseReading(ctx, reading); err != nil {
		return nil, err
	}
	return &reading, nil
}

// DeleteGlucoseReading removes an owned reading.
func (s *DataService) DeleteGlucoseReading(ctx context.Context, readingID string) error {
	userID, err := s.requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.store.DeleteGlucoseReading(ctx, userID, readingID)
}

// GetLatestGlucoseReading returns the most recent reading rendered in
// the user's display unit, or nil when logged out or no reading
// exists.
func (s *DataService) GetLatestGlucoseReading(ctx context.Context) (*ReadingDisplay, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, nil // logged-out reads degrade, never fail
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	reading, err := s.store.LatestGlucoseReading(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	display := s.displayReading(ctx, userID, *reading)
	return &display, nil
}

// GetGlucoseChart aggregates the last 7 hourly buckets. Logged out it
// returns the all-zero series so the chart frame still renders.
func (s *DataService) GetGlucoseChart(ctx context.Context) (chart.Series, error) {
	now := s.now()

	userID, err := s.requireSession()
	if err != nil {
		return chart.Aggregate(nil, now), nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	readings, err := s.store.ListGlucoseReadings(ctx, userID, now.Add(-7*time.Hour), now)
	if err != nil {
		return chart.Series{}, err
	}
	return chart.Aggregate(readings, now), nil
}

// --- Health cards ---

// UpsertHealthCard writes the per-(type, day) card value; a second
// write to the same key replaces the first. An empty date means
// today.
func (s *DataService) UpsertHealthCard(ctx context.Context, cardType domain.CardType, date string, value float64) error {
	userID, err := s.requireSession()
	if err != nil {
		return err
	}
	if !validCardType(cardType) {
		return apperrors.NewValidationError("unknown card type: " + string(cardType))
	}
	if value < 0 {
		return apperrors.NewValidationError("card value must be >= 0")
	}
	if date == "" {
		date = s.now().Format("2006-01-02")
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.store.UpsertHealthCard(ctx, domain.HealthCard{
		UserID:   userID,
		CardType: cardType,
		Date:     date,
		Value:    value,
		Unit:     domain.CardUnit(cardType),
	})
}

// --- Reminders ---

// AddReminder creates a pending reminder.
func (s *DataService) AddReminder(ctx context.Context, title, reminderType string, scheduledTime time.Time, isRecurring bool, recurrencePattern string) (*domain.Reminder, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.NewValidationError("reminder title is required")
	}

	reminder := domain.Reminder{
		ID:                uuid.New().String(),
		UserID:            userID,
		Title:             title,
		ReminderType:      reminderType,
		ScheduledTime:     scheduledTime,
		IsRecurring:       isRecurring,
		RecurrencePattern: recurrencePattern,
		Status:            domain.ReminderPending,
		CreatedAt:         s.now(),
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.store.CreateReminder(ctx, reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// GetReminders lists the user's reminders, soonest first. Logged out
// it returns an empty list.
func (s *DataService) GetReminders(ctx context.Context) ([]domain.Reminder, error) {
	userID, err := s.requireSession()
	if err != nil {
		return nil, nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.store.ListReminders(ctx, userID)
}

// UpdateReminderStatus transitions a reminder to status.
func (s *DataService) UpdateReminderStatus(ctx context.Context, reminderID string, status domain.ReminderStatus) error {
	userID, err := s.requireSession()
	if err != nil {
		return err
	}
	if !domain.ValidReminderStatus(status) {
		return apperrors.NewValidationError("unknown reminder status: " + string(status))
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.store.UpdateReminderStatus(ctx, userID, reminderID, status)
}

// DeleteReminder removes an owned reminder.
func (s *DataService) DeleteReminder(ctx context.Context, reminderID string) error {
	userID, err := s.requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.store.DeleteReminder(ctx, userID, reminderID)
}

// --- Settings & profiles ---

// GetSettings returns the durable per-user preference row, or the
// defaults when logged out.
func (s *DataService) GetSettings(ctx context.Context) (*domain.UserPreferences, error) {
	userID, err := s.requireSession()
	if err != nil {
		return defaultPreferences(), nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	prefsRow, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return defaultPreferences(), nil
		}
		return nil, err
	}
	return prefsRow, nil
}

// UpdateSettings partially merges the preference row. Out-of-enum
// values fail with InvalidInput before anything is written.
func (s *DataService) UpdateSettings(ctx context.Context, update storage.PreferencesUpdate) error {
	userID, err := s.requireSession()
	if err != nil {
		return err
	}
	if update.Theme != nil && !validTheme(*update.Theme) {
		return apperrors.NewValidationError("unknown theme mode: " + string(*update.Theme))
	}
	if update.Units != nil {
		if _, err := units.ParseUnit(*update.Units); err != nil {
			return err
		}
	}
	if update.Language != nil && !validLanguage(*update.Language) {
		return apperrors.NewValidationError("unsupported language: " + string(*update.Language))
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.store.UpdatePreferences(ctx, userID, update)
}

// GetDiabeticProfile returns the user's diabetic profile row, or the
// provisioning defaults when logged out.
func (s *DataService) GetDiabeticProfile(ctx context.Context) (*domain.DiabeticProfile, error) {
	userID, err := s.requireSession()
	if err != nil {
		return defaultDiabeticProfile(), nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.store.GetDiabeticProfile(ctx, userID)
}

// UpdateDiabeticProfile merges the diabetic profile. The target range
// must satisfy 0 <= min < max <= 500 after the merge.
func (s *DataService) UpdateDiabeticProfile(ctx context.Context, update storage.DiabeticProfileUpdate) error {
	userID, err := s.requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if update.MinGlucose != nil || update.MaxGlucose != nil {
		current, err := s.store.GetDiabeticProfile(ctx, userID)
		if err != nil {
			return err
		}
		min, max := current.MinGlucose, current.MaxGlucose
		if update.MinGlucose != nil {
			min = *update.MinGlucose
		}
		if update.MaxGlucose != nil {
			max = *update.MaxGlucose
		}
		if min < 0 || max > 500 || min >= max {
			return apperrors.NewValidationError("glucose target range must satisfy 0 <= min < max <= 500")
		}
	}

	return s.store.UpdateDiabeticProfile(ctx, userID, update)
}

// UpdateProfile merges the general profile row.
func (s *DataService) UpdateProfile(ctx context.Context, update storage.ProfileUpdate) error {
	userID, err := s.requireSession()
	if err != nil {
		return err
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.store.UpdateProfile(ctx, userID, update)
}

// --- Dashboard ---

// GetDashboardData assembles the dashboard in one backend-agnostic
// pass: latest reading, 7-hour chart, today's cards (absent card
// types filled with zero values so every card renders) and pending
// reminders. Logged out it returns the same shape with defaults.
func (s *DataService) GetDashboardData(ctx context.Context) (*Dashboard, error) {
	now := s.now()

	userID, err := s.requireSession()
	if err != nil {
		return &Dashboard{
			Chart:       chart.Aggregate(nil, now),
			HealthCards: defaultCards("", now),
		}, nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	dashboard := &Dashboard{}

	readings, err := s.store.ListGlucoseReadings(ctx, userID, now.Add(-7*time.Hour), now)
	if err != nil {
		return nil, err
	}
	dashboard.Chart = chart.Aggregate(readings, now)

	latest, err := s.store.LatestGlucoseReading(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if latest != nil {
		display := s.displayReading(ctx, userID, *latest)
		dashboard.LatestReading = &display
	}

	today := now.Format("2006-01-02")
	cards, err := s.store.ListHealthCards(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	dashboard.HealthCards = fillCardDefaults(userID, today, cards)

	reminders, err := s.store.ListReminders(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range reminders {
		if r.Status == domain.ReminderPending {
			dashboard.Reminders = append(dashboard.Reminders, r)
		}
	}

	return dashboard, nil
}

// displayReading renders a reading in the user's preferred unit,
// falling back to mg/dL when no preference row is readable.
func (s *DataService) displayReading(ctx context.Context, userID string, reading domain.GlucoseReading) ReadingDisplay {
	unit := units.MgPerDl
	if prefsRow, err := s.store.GetPreferences(ctx, userID); err == nil {
		if parsed, err := units.ParseUnit(prefsRow.Units); err == nil {
			unit = parsed
		}
	}
	return ReadingDisplay{
		Value:       units.ToDisplay(reading.Value, unit),
		Unit:        string(unit),
		ReadingType: reading.ReadingType,
		Display:     units.Format(reading.Value, unit),
		RecordedAt:  reading.RecordedAt,
	}
}

// --- helpers ---

func defaultPreferences() *domain.UserPreferences {
	return &domain.UserPreferences{
		Theme:                domain.ThemeSystem,
		Units:                string(units.MgPerDl),
		Language:             domain.LangEnglish,
		NotificationsEnabled: true,
	}
}

// defaultDiabeticProfile mirrors the target range every backend
// provisions for a new account.
func defaultDiabeticProfile() *domain.DiabeticProfile {
	return &domain.DiabeticProfile{
		MinGlucose: 70,
		MaxGlucose: 180,
	}
}

func defaultCards(userID string, now time.Time) []domain.HealthCard {
	return fillCardDefaults(userID, now.Format("2006-01-02"), nil)
}

// fillCardDefaults pads the stored cards with zero-value entries so
// the dashboard always shows the full card set in fixed order.
func fillCardDefaults(userID, date string, stored []domain.HealthCard) []domain.HealthCard {
	byType := make(map[domain.CardType]domain.HealthCard, len(stored))
	for _, c := range stored {
		byType[c.CardType] = c
	}

	cards := make([]domain.HealthCard, 0, len(domain.CardTypes))
	for _, t := range domain.CardTypes {
		if c, ok := byType[t]; ok {
			cards = append(cards, c)
			continue
		}
		cards = append(cards, domain.HealthCard{
			UserID:   userID,
			CardType: t,
			Date:     date,
			Value:    0,
			Unit:     domain.CardUnit(t),
		})
	}
	return cards
}

func validTheme(t domain.ThemeMode) bool {
	switch t {
	case domain.ThemeLight, domain.ThemeDark, domain.ThemeSystem:
		return true
	}
	return false
}

func validLanguage(l domain.Language) bool {
	for _, lang := range domain.SupportedLanguages {
		if lang == l {
			return true
		}
	}
	return false
}

func validCardType(t domain.CardType) bool {
	for _, ct := range domain.CardTypes {
		if ct == t {
			return true
		}
	}
	return false
}
