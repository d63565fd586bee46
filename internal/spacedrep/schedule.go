package spacedrep

import (
	"math"
	"time"
)

// Fixed intervals for the first two successful recalls.
const (
	FirstIntervalDays  = 1
	SecondIntervalDays = 6
)

// Schedule computes the next review state for an item after a grade.
// prev may be nil for an item that has never been reviewed. prev is never
// modified. today is the calendar day of the review; the next review date is
// computed by calendar-day arithmetic from it.
func Schedule(prev *ReviewState, q Quality, today time.Time) (ReviewState, error) {
	if !q.Valid() {
		return ReviewState{}, ErrQualityOutOfRange
	}

	ef := DefaultEaseFactor
	interval := 0
	reps := 0
	if prev != nil {
		ef = prev.EaseFactor
		interval = prev.IntervalDays
		reps = prev.Repetitions
	}

	if q.Passed() {
		reps++
		switch reps {
		case 1:
			interval = FirstIntervalDays
		case 2:
			interval = SecondIntervalDays
		default:
			interval = int(math.Round(float64(interval) * ef))
		}
	} else {
		reps = 0
		interval = 0
	}

	day := Day(today)
	reviewed := day
	return ReviewState{
		EaseFactor:     NextEaseFactor(ef, q),
		IntervalDays:   interval,
		Repetitions:    reps,
		NextReviewAt:   day.AddDate(0, 0, interval),
		LastReviewedAt: &reviewed,
	}, nil
}

// NextEaseFactor applies the SM-2 ease adjustment for grade q, floored at
// MinEaseFactor and rounded to two decimals.
func NextEaseFactor(ef float64, q Quality) float64 {
	miss := float64(QualityPerfect - q)
	next := ef + 0.1 - miss*(0.08+miss*0.02)
	next = math.Round(next*100) / 100
	if next < MinEaseFactor {
		return MinEaseFactor
	}
	return next
}
