package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an update targets a row that does not exist.
var ErrNotFound = errors.New("not found")

// DateLayout is the storage format for calendar dates.
const DateLayout = "2006-01-02"

// Account is a user's progression account. Level is always derived from
// TotalXP by the progression package; the store never computes it.
type Account struct {
	UserID    string    `json:"user_id"`
	TotalXP   int       `json:"total_xp"`
	Level     int       `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is one append-only entry of the experience ledger.
type Transaction struct {
	ID          string    `json:"id"`
	Sequence    int64     `json:"sequence"`
	UserID      string    `json:"user_id"`
	Amount      int       `json:"amount"`
	Source      string    `json:"source"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StreakRecord is a user's daily-activity streak. LastActivityDate is a
// calendar date (midnight UTC of the civil date), nil before any activity.
type StreakRecord struct {
	UserID           string     `json:"user_id"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

// RequirementType identifies what a badge threshold is measured against.
type RequirementType string

const (
	RequirementLevel              RequirementType = "level"
	RequirementStreakDays         RequirementType = "streak_days"
	RequirementFlashcardsReviewed RequirementType = "flashcards_reviewed"
	RequirementTotalXP            RequirementType = "total_xp"
	RequirementCardsMastered      RequirementType = "cards_mastered"
)

// BadgeDefinition is a static catalog entry.
type BadgeDefinition struct {
	ID               string          `json:"id" yaml:"id"`
	Name             string          `json:"name" yaml:"name"`
	Description      string          `json:"description" yaml:"description"`
	Icon             string          `json:"icon" yaml:"icon"`
	Category         string          `json:"category" yaml:"category"`
	RequirementType  RequirementType `json:"requirement_type" yaml:"requirement_type"`
	RequirementValue int             `json:"requirement_value" yaml:"requirement_value"`
	XPReward         int             `json:"xp_reward" yaml:"xp_reward"`
}

// EarnedBadge records that a user unlocked a badge. At most one exists per
// (user, badge).
type EarnedBadge struct {
	UserID   string    `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// ReviewProgress is the persisted scheduling state of one item for one user
// within a content group.
type ReviewProgress struct {
	UserID         string
	ItemID         string
	GroupKey       string
	EaseFactor     float64
	IntervalDays   int
	Repetitions    int
	NextReviewAt   time.Time
	LastReviewedAt *time.Time
	UpdatedAt      time.Time
}

// ReviewLogEntry is one answered review.
type ReviewLogEntry struct {
	UserID     string
	ItemID     string
	GroupKey   string
	Quality    int
	ReviewedAt time.Time
}

// Gateway is the durable store consumed by the progression core.
type Gateway interface {
	// GetOrCreateAccount returns the account, creating it with 0 XP at
	// level 1 when absent.
	GetOrCreateAccount(ctx context.Context, userID string) (Account, error)
	UpdateAccount(ctx context.Context, userID string, totalXP, level int) error
	AppendTransaction(ctx context.Context, userID string, amount int, source, description string) error

	GetOrCreateStreak(ctx context.Context, userID string) (StreakRecord, error)
	UpdateStreak(ctx context.Context, userID string, current, longest int, lastActivity time.Time) error

	// ListBadgeCatalog returns all badge definitions ordered by requirement
	// value ascending.
	ListBadgeCatalog(ctx context.Context) ([]BadgeDefinition, error)
	ListEarnedBadges(ctx context.Context, userID string) ([]EarnedBadge, error)
	// InsertEarnedBadge returns false, nil when the badge was already earned.
	InsertEarnedBadge(ctx context.Context, userID, badgeID string) (bool, error)

	GetReviewProgress(ctx context.Context, userID, groupKey string) (map[string]ReviewProgress, error)
	UpsertReviewProgress(ctx context.Context, p ReviewProgress) (ReviewProgress, error)
}

// ReviewLog records answered reviews and answers aggregate questions about
// a user's review history.
type ReviewLog interface {
	AppendReviewLog(ctx context.Context, entry ReviewLogEntry) error
	CountReviews(ctx context.Context, userID string) (int, error)
	CountMastered(ctx context.Context, userID string, minIntervalDays int) (int, error)
}

// LedgerReader exposes the transaction log for reporting.
type LedgerReader interface {
	ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
}

// LLMRequestEventData captures the data for a single AI gateway request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMLog records AI gateway calls.
type LLMLog interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
