package domain

import (
	"time"
)

// ThemeMode is the application color scheme preference.
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// Language is a supported interface language.
type Language string

const (
	LangEnglish Language = "en"
	LangFrench  Language = "fr"
	LangArabic  Language = "ar"
)

// SupportedLanguages lists languages in cycle order.
var SupportedLanguages = []Language{LangEnglish, LangFrench, LangArabic}

// ReadingType classifies a glucose measurement by meal context.
type ReadingType string

const (
	ReadingFasting    ReadingType = "fasting"
	ReadingBeforeMeal ReadingType = "before_meal"
	ReadingAfterMeal  ReadingType = "after_meal"
	ReadingBedtime    ReadingType = "bedtime"
	ReadingRandom     ReadingType = "random"
)

// ValidReadingType reports whether t is one of the five known types.
func ValidReadingType(t ReadingType) bool {
	switch t {
	case ReadingFasting, ReadingBeforeMeal, ReadingAfterMeal, ReadingBedtime, ReadingRandom:
		return true
	}
	return false
}

// CardType identifies a daily health tracking card.
type CardType string

const (
	CardWater    CardType = "water"
	CardPills    CardType = "pills"
	CardActivity CardType = "activity"
	CardCarbs    CardType = "carbs"
	CardInsulin  CardType = "insulin"
)

// CardTypes lists card types in dashboard order.
var CardTypes = []CardType{CardWater, CardPills, CardActivity, CardCarbs, CardInsulin}

// CardUnit returns the display unit a card type is tracked in.
func CardUnit(t CardType) string {
	switch t {
	case CardWater:
		return "glasses"
	case CardPills:
		return "pills"
	case CardActivity:
		return "min"
	case CardCarbs:
		return "g"
	case CardInsulin:
		return "units"
	}
	return ""
}

// ReminderStatus is the lifecycle state of a reminder occurrence.
type ReminderStatus string

const (
	ReminderPending   ReminderStatus = "pending"
	ReminderDone      ReminderStatus = "done"
	ReminderNotDone   ReminderStatus = "not_done"
	ReminderSkipped   ReminderStatus = "skipped"
	ReminderCompleted ReminderStatus = "completed"
)

// ValidReminderStatus reports whether s is one of the five known states.
func ValidReminderStatus(s ReminderStatus) bool {
	switch s {
	case ReminderPending, ReminderDone, ReminderNotDone, ReminderSkipped, ReminderCompleted:
		return true
	}
	return false
}

// User is an account identity. Email is unique across the store.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}

// UserProfile holds general per-user attributes, 1:1 with User.
type UserProfile struct {
	UserID    string
	FullName  string
	BirthDate *time.Time
	Gender    string
	UpdatedAt time.Time
}

// DiabeticProfile holds diabetes-specific per-user attributes, 1:1 with
// User. MinGlucose and MaxGlucose bound the personal target range and
// satisfy 0 <= MinGlucose < MaxGlucose <= 500 (mg/dL).
type DiabeticProfile struct {
	UserID       string
	DiabetesType string
	MinGlucose   float64
	MaxGlucose   float64
	UpdatedAt    time.Time
}

// UserPreferences mirrors the durable per-user preference row, 1:1 with
// User. Theme, Units and Language hold the same string enums as the
// local preference store keys.
type UserPreferences struct {
	UserID               string
	Theme                ThemeMode
	Units                string
	Language             Language
	NotificationsEnabled bool
	UpdatedAt            time.Time
}

// GlucoseReading is a single measurement. Value is always stored
// normalized to mg/dL regardless of the unit it was entered in;
// invariant 0 <= Value <= 1000. Readings are create/delete only.
type GlucoseReading struct {
	ID          string
	UserID      string
	Value       float64
	Unit        string
	ReadingType ReadingType
	RecordedAt  time.Time
	Notes       string
}

// IsBeforeMeal reports whether the reading belongs to the before-meal
// chart series. Fasting readings chart as before-meal; every other
// type charts as after-meal.
func (r GlucoseReading) IsBeforeMeal() bool {
	return r.ReadingType == ReadingBeforeMeal || r.ReadingType == ReadingFasting
}

// HealthCard is the per-(user, card type, day) tracked quantity. At
// most one row exists per key; writes are upserts.
type HealthCard struct {
	UserID   string
	CardType CardType
	Date     string // "2006-01-02"
	Value    float64
	Unit     string
}

// Reminder is a scheduled user task.
type Reminder struct {
	ID                string
	UserID            string
	Title             string
	ReminderType      string
	ScheduledTime     time.Time
	IsRecurring       bool
	RecurrencePattern string
	Status            ReminderStatus
	CreatedAt         time.Time
}
