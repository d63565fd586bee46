package progression

import "github.com/abhisek/studyhall/internal/store"

// EventKind names something a presentation layer may want to announce.
type EventKind string

const (
	EventLevelUp     EventKind = "level_up"
	EventBadgeEarned EventKind = "badge_earned"
	EventStreakBonus EventKind = "streak_bonus"
)

// Event is a notable outcome of an operation. The core never delivers
// notifications itself; callers render these however they like.
type Event struct {
	Kind   EventKind              `json:"kind"`
	Level  int                    `json:"level,omitempty"`
	Badge  *store.BadgeDefinition `json:"badge,omitempty"`
	XP     int                    `json:"xp,omitempty"`
	Streak int                    `json:"streak,omitempty"`
}

// Source tags an XP transaction with what earned it.
type Source string

const (
	SourceQuiz       Source = "quiz"
	SourceFlashcard  Source = "flashcard"
	SourceStreak     Source = "streak"
	SourceBadge      Source = "badge"
	SourceGeneration Source = "generation"
	SourceManual     Source = "manual"
)

var knownSources = map[Source]bool{
	SourceQuiz:       true,
	SourceFlashcard:  true,
	SourceStreak:     true,
	SourceBadge:      true,
	SourceGeneration: true,
	SourceManual:     true,
}

// EngineOnly reports whether the source is reserved for XP the progression
// core grants itself.
func (s Source) EngineOnly() bool {
	return s == SourceStreak || s == SourceBadge
}

// ParseSource validates a source tag.
func ParseSource(s string) (Source, error) {
	src := Source(s)
	if !knownSources[src] {
		return "", &ValidationError{Field: "source", Reason: "unknown source " + s}
	}
	return src, nil
}
