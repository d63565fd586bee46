package spacedrep

import "time"

// Defaults applied when an item has never been reviewed.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// MasteredIntervalDays is the interval at which an item counts as mastered.
const MasteredIntervalDays = 21

// ReviewState holds the scheduling state for one learning item.
type ReviewState struct {
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
}

// IsDue returns true if the item is due at now (at or past the review date).
func (rs *ReviewState) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReviewAt)
}

// DaysUntilReview returns the number of whole calendar days until the next
// review. Returns 0 if already due.
func (rs *ReviewState) DaysUntilReview(now time.Time) int {
	if rs.IsDue(now) {
		return 0
	}
	return civilDays(rs.NextReviewAt) - civilDays(now)
}

// civilDays numbers t's calendar date in its own location. Dates are
// re-anchored in UTC so a DST change never shortens a day.
func civilDays(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// Day truncates t to midnight of its calendar date, keeping t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
