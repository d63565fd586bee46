package spacedrep

import "time"

// Status is the derived learning status of an item. It is never stored;
// recompute it from the review state on read.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusReview   Status = "review"
	StatusMastered Status = "mastered"
)

// StatusOf classifies an item by its review state. A nil state means the
// item has never been reviewed.
func StatusOf(rs *ReviewState) Status {
	switch {
	case rs == nil:
		return StatusNew
	case rs.Repetitions == 0:
		return StatusLearning
	case rs.IntervalDays >= MasteredIntervalDays:
		return StatusMastered
	default:
		return StatusReview
	}
}

// DueItems returns the ids of items that are due at now, in input order.
// Items without recorded progress are always due.
func DueItems(itemIDs []string, progress map[string]*ReviewState, now time.Time) []string {
	due := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		rs, ok := progress[id]
		if !ok || rs == nil || rs.IsDue(now) {
			due = append(due, id)
		}
	}
	return due
}

// StatusCounts tallies items by status.
func StatusCounts(itemIDs []string, progress map[string]*ReviewState) map[Status]int {
	counts := make(map[Status]int, 4)
	for _, id := range itemIDs {
		counts[StatusOf(progress[id])]++
	}
	return counts
}
