package progression

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/studyhall/internal/lock"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/store"
)

// Config holds progression settings.
type Config struct {
	// Location is the time zone whose calendar days streaks are counted in.
	Location *time.Location

	// MaxCascadeDepth caps how many times a badge reward may trigger a
	// further badge check.
	MaxCascadeDepth int

	// StreakBonusPerDay is multiplied by the streak length for the daily
	// streak bonus.
	StreakBonusPerDay int

	// AllowNegative permits negative Award amounts. The account total is
	// still floored at zero.
	AllowNegative bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Location:          time.UTC,
		MaxCascadeDepth:   2,
		StreakBonusPerDay: 5,
	}
}

// Service is the per-user progression surface. Award, RecordActivity and
// CheckAndAward each run under the user's lock; nested calls made while
// evaluating one operation reuse the held lock.
type Service struct {
	gw      store.Gateway
	locks   lock.Locker
	catalog *Catalog
	log     *logger.Logger
	tracer  trace.Tracer
	cfg     Config
}

// NewService creates a progression service. The badge catalog is loaded
// lazily from gw on first use.
func NewService(gw store.Gateway, locks lock.Locker, log *logger.Logger, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if locks == nil {
		locks = lock.NewLocal()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		gw:      gw,
		locks:   locks,
		catalog: NewCatalog(gw),
		log:     log,
		tracer:  otel.Tracer("github.com/abhisek/studyhall/internal/progression"),
		cfg:     cfg,
	}
}

// Catalog returns the service's badge catalog snapshot.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Today returns the calendar day of at in the configured time zone, as
// midnight UTC of that date.
func (s *Service) Today(at time.Time) time.Time {
	y, m, d := at.In(s.cfg.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) lockUser(ctx context.Context, userID string) (func(), error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user", Reason: "empty user id"}
	}
	unlock, err := s.locks.Lock(ctx, "user:"+userID)
	if err != nil {
		return nil, fmt.Errorf("lock user %s: %w", userID, err)
	}
	return unlock, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Summary is a read-only view of a user's progression.
type Summary struct {
	Account  store.Account       `json:"account"`
	Progress XPProgress          `json:"progress"`
	Streak   store.StreakRecord  `json:"streak"`
	Badges   []store.EarnedBadge `json:"badges"`
}

// Summary loads the user's account, streak and earned badges.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	acct, err := s.gw.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("load account: %w", err)
	}
	streak, err := s.gw.GetOrCreateStreak(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("load streak: %w", err)
	}
	earned, err := s.gw.ListEarnedBadges(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("load badges: %w", err)
	}
	return Summary{
		Account:  acct,
		Progress: XPProgressOf(acct.TotalXP),
		Streak:   streak,
		Badges:   earned,
	}, nil
}
