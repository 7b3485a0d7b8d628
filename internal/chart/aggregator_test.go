package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/glucolog/glucolog/internal/domain"
)

// 15:30 local on a fixed day; slots cover hours 9..15.
var testNow = time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC)

func reading(value float64, rt domain.ReadingType, at time.Time) domain.GlucoseReading {
	return domain.GlucoseReading{
		ID:          "r",
		UserID:      "u",
		Value:       value,
		Unit:        "mg/dL",
		ReadingType: rt,
		RecordedAt:  at,
	}
}

func TestAggregateEmpty(t *testing.T) {
	out := Aggregate(nil, testNow)
	assert.Equal(t, [Slots]float64{}, out.BeforeMeal)
	assert.Equal(t, [Slots]float64{}, out.AfterMeal)
	assert.Equal(t, [Slots]string{"9AM", "10AM", "11AM", "12PM", "1PM", "2PM", "3PM"}, out.HourLabels)
}

func TestAggregateCarryForward(t *testing.T) {
	// One before-meal reading at the oldest slot hour; its value must
	// carry into every later slot.
	readings := []domain.GlucoseReading{
		reading(120, domain.ReadingBeforeMeal, testNow.Add(-6*time.Hour)),
	}
	out := Aggregate(readings, testNow)
	assert.Equal(t, [Slots]float64{120, 120, 120, 120, 120, 120, 120}, out.BeforeMeal)
	assert.Equal(t, [Slots]float64{}, out.AfterMeal)
}

func TestAggregateCurrentHourAndOverwrite(t *testing.T) {
	readings := []domain.GlucoseReading{
		reading(120, domain.ReadingBeforeMeal, testNow.Add(-6*time.Hour)),
		reading(100, domain.ReadingFasting, testNow.Add(-10*time.Minute)),
	}
	out := Aggregate(readings, testNow)
	// Slots between the two readings carry 120; the current hour shows
	// the newer value.
	assert.Equal(t, 120.0, out.BeforeMeal[0])
	assert.Equal(t, 120.0, out.BeforeMeal[5])
	assert.Equal(t, 100.0, out.BeforeMeal[6])
}

func TestAggregateMeanPerBucket(t *testing.T) {
	hour := testNow.Add(-2 * time.Hour)
	readings := []domain.GlucoseReading{
		reading(100, domain.ReadingAfterMeal, hour),
		reading(140, domain.ReadingRandom, hour.Add(20*time.Minute)),
	}
	out := Aggregate(readings, testNow)
	assert.Equal(t, 120.0, out.AfterMeal[4])
}

func TestAggregateBinarySplit(t *testing.T) {
	at := testNow.Add(-time.Hour)
	readings := []domain.GlucoseReading{
		reading(90, domain.ReadingFasting, at),
		reading(95, domain.ReadingBeforeMeal, at),
		reading(150, domain.ReadingAfterMeal, at),
		reading(130, domain.ReadingBedtime, at),
		reading(110, domain.ReadingRandom, at),
	}
	out := Aggregate(readings, testNow)
	assert.Equal(t, 92.5, out.BeforeMeal[5])
	assert.Equal(t, 130.0, out.AfterMeal[5])
}

func TestAggregateWindowExcludesOldReadings(t *testing.T) {
	readings := []domain.GlucoseReading{
		reading(500, domain.ReadingBeforeMeal, testNow.Add(-8*time.Hour)),
		reading(500, domain.ReadingAfterMeal, testNow.Add(time.Minute)),
	}
	out := Aggregate(readings, testNow)
	assert.Equal(t, [Slots]float64{}, out.BeforeMeal)
	assert.Equal(t, [Slots]float64{}, out.AfterMeal)
}

func TestAggregateBucketsByCalendarHour(t *testing.T) {
	// The bucket key is hour-of-day, not elapsed offset: an in-window
	// reading whose calendar hour falls outside the 7 slot hours is
	// dropped rather than shifted. 08:45 is inside [08:30, 15:30] but
	// hour 8 is not a slot.
	readings := []domain.GlucoseReading{
		reading(80, domain.ReadingBeforeMeal, time.Date(2026, 3, 14, 8, 45, 0, 0, time.UTC)),
	}
	out := Aggregate(readings, testNow)
	assert.Equal(t, [Slots]float64{}, out.BeforeMeal)
}

func TestAggregateSameHourAcrossDays(t *testing.T) {
	// Two readings sharing a calendar hour a day apart map to the same
	// bucket key, but the window filter runs first: only the in-window
	// reading contributes, so the bucket never mixes days in practice.
	readings := []domain.GlucoseReading{
		reading(100, domain.ReadingBeforeMeal, time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)),
		reading(300, domain.ReadingBeforeMeal, time.Date(2026, 3, 13, 15, 0, 0, 0, time.UTC)),
	}
	out := Aggregate(readings, testNow)
	assert.Equal(t, 100.0, out.BeforeMeal[Slots-1])
}

func TestAggregateMidnightWindowLabels(t *testing.T) {
	// Window crossing midnight: 2:30AM gives slots 20,21,22,23,0,1,2.
	now := time.Date(2026, 3, 14, 2, 30, 0, 0, time.UTC)
	out := Aggregate(nil, now)
	assert.Equal(t, [Slots]string{"8PM", "9PM", "10PM", "11PM", "12AM", "1AM", "2AM"}, out.HourLabels)
}

func TestHourLabel(t *testing.T) {
	assert.Equal(t, "12AM", hourLabel(0))
	assert.Equal(t, "3AM", hourLabel(3))
	assert.Equal(t, "12PM", hourLabel(12))
	assert.Equal(t, "3PM", hourLabel(15))
	assert.Equal(t, "11PM", hourLabel(23))
}
