// Package chart projects glucose readings into the dashboard's
// fixed-width hourly series.
package chart

import (
	"fmt"
	"time"

	"github.com/glucolog/glucolog/internal/domain"
)

// Slots is the number of hourly buckets the dashboard chart renders.
const Slots = 7

// Series is the aggregated chart payload: one before-meal and one
// after-meal value per slot, oldest slot first, ending at the current
// hour, plus 12-hour clock labels for each slot.
type Series struct {
	BeforeMeal [Slots]float64
	AfterMeal  [Slots]float64
	HourLabels [Slots]string
}

// Aggregate buckets readings from the last Slots hours ending at now.
//
// Readings are keyed by calendar hour-of-day (0-23) of RecordedAt in
// now's location, not by elapsed-hour offset. Two readings a day apart
// that share an hour-of-day land in the same bucket; this mirrors the
// shipped behavior and is kept deliberately. A slot's value is the
// mean of its readings; an empty slot carries the previous slot's
// value forward, and an empty first slot emits 0.
//
// Never fails: zero readings produce all-zero series with labels
// still populated.
func Aggregate(readings []domain.GlucoseReading, now time.Time) Series {
	var out Series

	windowStart := now.Add(-Slots * time.Hour)

	type bucket struct {
		sum   float64
		count int
	}
	var beforeBuckets, afterBuckets [24]bucket

	for _, r := range readings {
		if r.RecordedAt.Before(windowStart) || r.RecordedAt.After(now) {
			continue
		}
		hour := r.RecordedAt.In(now.Location()).Hour()
		if r.IsBeforeMeal() {
			beforeBuckets[hour].sum += r.Value
			beforeBuckets[hour].count++
		} else {
			afterBuckets[hour].sum += r.Value
			afterBuckets[hour].count++
		}
	}

	var beforePrev, afterPrev float64
	for i := 0; i < Slots; i++ {
		hour := ((now.Hour() - (Slots - 1) + i) % 24 + 24) % 24
		out.HourLabels[i] = hourLabel(hour)

		if b := beforeBuckets[hour]; b.count > 0 {
			beforePrev = b.sum / float64(b.count)
		}
		out.BeforeMeal[i] = beforePrev

		if b := afterBuckets[hour]; b.count > 0 {
			afterPrev = b.sum / float64(b.count)
		}
		out.AfterMeal[i] = afterPrev
	}

	return out
}

// hourLabel renders an hour-of-day on the 12-hour clock: 0 -> "12AM",
// 15 -> "3PM".
func hourLabel(hour int) string {
	suffix := "AM"
	display := hour
	if hour >= 12 {
		suffix = "PM"
		display = hour - 12
	}
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d%s", display, suffix)
}
