// Package review is the review-answer submission flow: it schedules the
// answered card, persists its progress and feeds the progression core.
package review

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/studyhall/internal/lock"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/spacedrep"
	"github.com/abhisek/studyhall/internal/store"
)

// Config holds review settings.
type Config struct {
	// XPCorrect and XPFailed are granted per answered card.
	XPCorrect int
	XPFailed  int

	// Grading converts timed answers into quality grades.
	Grading spacedrep.Grading

	// Location is the time zone whose calendar days reviews are scheduled
	// in. It should match the progression service's.
	Location *time.Location
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		XPCorrect: 10,
		XPFailed:  2,
		Grading:   spacedrep.DefaultGrading(),
		Location:  time.UTC,
	}
}

// ProgressStore is the slice of the store the review flow needs.
type ProgressStore interface {
	GetReviewProgress(ctx context.Context, userID, groupKey string) (map[string]store.ReviewProgress, error)
	UpsertReviewProgress(ctx context.Context, p store.ReviewProgress) (store.ReviewProgress, error)
	store.ReviewLog
}

// Progression is the slice of the progression service the review flow
// drives.
type Progression interface {
	RecordActivity(ctx context.Context, userID string, at time.Time) (progression.ActivityResult, error)
	Award(ctx context.Context, userID string, amount int, source progression.Source, description string) (progression.AwardResult, error)
	CheckAndAward(ctx context.Context, userID string, reqType store.RequirementType, value int) (progression.BadgeResult, error)
}

// Service submits review answers. Loading, scheduling and saving an item's
// state runs under the user's lock; the progression calls that follow take
// the same lock themselves, so it is released first.
type Service struct {
	st     ProgressStore
	prog   Progression
	locks  lock.Locker
	log    *logger.Logger
	tracer trace.Tracer
	cfg    Config
}

// NewService creates a review service.
// locks must be the locker the progression service uses; nil means a
// private in-process locker.
func NewService(st ProgressStore, prog Progression, locks lock.Locker, log *logger.Logger, cfg Config) *Service {
	if locks == nil {
		locks = lock.NewLocal()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		st:     st,
		prog:   prog,
		locks:  locks,
		log:    log,
		tracer: otel.Tracer("github.com/abhisek/studyhall/internal/review"),
		cfg:    cfg,
	}
}

// Grading returns the configured response-time grading.
func (s *Service) Grading() spacedrep.Grading {
	return s.cfg.Grading
}

// Submission is one answered card.
type Submission struct {
	UserID   string
	GroupKey string
	ItemID   string
	Quality  spacedrep.Quality
	// At is when the answer was given; zero means now.
	At time.Time
}

// TimedSubmission is an answered card graded from its response time.
type TimedSubmission struct {
	UserID     string
	GroupKey   string
	ItemID     string
	ResponseMs int64
	Correct    bool
	At         time.Time
}

// Outcome is the result of a submission. Scheduling is reported even when
// saving progress failed: ProgressSaved is then false and Warning says why,
// so callers can keep the learner moving.
type Outcome struct {
	ItemID        string                `json:"item_id"`
	Quality       spacedrep.Quality     `json:"quality"`
	Scheduled     bool                  `json:"scheduled"`
	State         spacedrep.ReviewState `json:"state"`
	Status        spacedrep.Status      `json:"status"`
	XP            int                   `json:"xp"`
	ProgressSaved bool                  `json:"progress_saved"`
	Warning       string                `json:"warning,omitempty"`
	Events        []progression.Event   `json:"events,omitempty"`
}

const progressNotSaved = "progress not saved this time"

// SubmitTimed grades a timed answer and submits it.
func (s *Service) SubmitTimed(ctx context.Context, ts TimedSubmission) (Outcome, error) {
	q := s.cfg.Grading.QualityFromResponse(ts.ResponseMs, ts.Correct)
	return s.Submit(ctx, Submission{
		UserID:   ts.UserID,
		GroupKey: ts.GroupKey,
		ItemID:   ts.ItemID,
		Quality:  q,
		At:       ts.At,
	})
}

// Submit schedules the answered card, stores its new state and records the
// progression side effects: the day's activity, per-card XP and review
// count badges, plus mastery badges when the card crossed into mastered.
//
// Only invalid input returns an error. Store and progression failures are
// logged and reported through Outcome.ProgressSaved.
func (s *Service) Submit(ctx context.Context, sub Submission) (out Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "review.Submit", trace.WithAttributes(
		attribute.String("user_id", sub.UserID),
		attribute.String("group_key", sub.GroupKey),
		attribute.String("item_id", sub.ItemID),
		attribute.Int("quality", int(sub.Quality)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Bool("progress_saved", out.ProgressSaved))
		span.End()
	}()

	if err := validate(sub); err != nil {
		return Outcome{}, err
	}
	at := sub.At
	if at.IsZero() {
		at = time.Now()
	}
	today := s.today(at)
	log := s.log.With("user_id", sub.UserID, "item_id", sub.ItemID, "group_key", sub.GroupKey)

	out = Outcome{ItemID: sub.ItemID, Quality: sub.Quality, ProgressSaved: true}

	prev, next, saved, err := s.schedule(ctx, log, sub, at, today)
	if err != nil {
		return Outcome{}, err
	}
	if next != nil {
		out.Scheduled = true
		out.State = *next
		out.Status = spacedrep.StatusOf(next)
	}
	if !saved {
		return s.degrade(out), nil
	}

	s.applyProgression(ctx, log, sub, at, prev, *next, &out)
	return out, nil
}

// schedule loads the item's state, schedules it and stores the result under
// the user's lock. next is nil when nothing could be scheduled; saved is
// false when the store failed.
func (s *Service) schedule(ctx context.Context, log *logger.Logger, sub Submission, at, today time.Time) (prev, next *spacedrep.ReviewState, saved bool, err error) {
	unlock, err := s.locks.Lock(ctx, "user:"+sub.UserID)
	if err != nil {
		log.Warn("lock user failed", "error", err)
		return nil, nil, false, nil
	}
	defer unlock()

	existing, err := s.st.GetReviewProgress(ctx, sub.UserID, sub.GroupKey)
	if err != nil {
		log.Warn("load review progress failed", "error", err)
		return nil, nil, false, nil
	}
	if p, ok := existing[sub.ItemID]; ok {
		prev = toState(p)
	}

	rs, err := spacedrep.Schedule(prev, sub.Quality, today)
	if err != nil {
		return nil, nil, false, err
	}
	next = &rs

	if _, err := s.st.UpsertReviewProgress(ctx, fromState(sub, rs)); err != nil {
		log.Warn("save review progress failed", "error", err)
		return prev, next, false, nil
	}
	if err := s.st.AppendReviewLog(ctx, store.ReviewLogEntry{
		UserID:     sub.UserID,
		ItemID:     sub.ItemID,
		GroupKey:   sub.GroupKey,
		Quality:    int(sub.Quality),
		ReviewedAt: at,
	}); err != nil {
		log.Warn("append review log failed", "error", err)
	}
	return prev, next, true, nil
}

func (s *Service) applyProgression(ctx context.Context, log *logger.Logger, sub Submission, at time.Time, prev *spacedrep.ReviewState, next spacedrep.ReviewState, out *Outcome) {
	fail := func(step string, err error) {
		log.Warn("progression update failed", "step", step, "error", err, "partial", progression.IsPartial(err))
		out.ProgressSaved = false
		out.Warning = progressNotSaved
	}

	if ar, err := s.prog.RecordActivity(ctx, sub.UserID, at); err != nil {
		fail("record_activity", err)
	} else {
		out.Events = append(out.Events, ar.Events...)
	}

	xp := s.cfg.XPFailed
	if sub.Quality.Passed() {
		xp = s.cfg.XPCorrect
	}
	if xp > 0 {
		desc := fmt.Sprintf("review %s (q=%d)", sub.ItemID, sub.Quality)
		if res, err := s.prog.Award(ctx, sub.UserID, xp, progression.SourceFlashcard, desc); err != nil {
			fail("award", err)
		} else {
			out.XP = xp
			out.Events = append(out.Events, res.Events...)
		}
	}

	if n, err := s.st.CountReviews(ctx, sub.UserID); err != nil {
		fail("count_reviews", err)
	} else if br, err := s.prog.CheckAndAward(ctx, sub.UserID, store.RequirementFlashcardsReviewed, n); err != nil {
		fail("review_badges", err)
	} else {
		out.Events = append(out.Events, br.Events...)
	}

	if spacedrep.StatusOf(&next) == spacedrep.StatusMastered && spacedrep.StatusOf(prev) != spacedrep.StatusMastered {
		if n, err := s.st.CountMastered(ctx, sub.UserID, spacedrep.MasteredIntervalDays); err != nil {
			fail("count_mastered", err)
		} else if br, err := s.prog.CheckAndAward(ctx, sub.UserID, store.RequirementCardsMastered, n); err != nil {
			fail("mastery_badges", err)
		} else {
			out.Events = append(out.Events, br.Events...)
		}
	}
}

func (s *Service) degrade(out Outcome) Outcome {
	out.ProgressSaved = false
	out.Warning = progressNotSaved
	return out
}

func (s *Service) today(at time.Time) time.Time {
	y, m, d := at.In(s.cfg.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validate(sub Submission) error {
	if !sub.Quality.Valid() {
		return fmt.Errorf("%w: %d", spacedrep.ErrQualityOutOfRange, sub.Quality)
	}
	switch {
	case sub.UserID == "":
		return &progression.ValidationError{Field: "user", Reason: "empty user id"}
	case sub.GroupKey == "":
		return &progression.ValidationError{Field: "group_key", Reason: "empty group key"}
	case sub.ItemID == "":
		return &progression.ValidationError{Field: "item_id", Reason: "empty item id"}
	}
	return nil
}

func toState(p store.ReviewProgress) *spacedrep.ReviewState {
	return &spacedrep.ReviewState{
		EaseFactor:     p.EaseFactor,
		IntervalDays:   p.IntervalDays,
		Repetitions:    p.Repetitions,
		NextReviewAt:   p.NextReviewAt,
		LastReviewedAt: p.LastReviewedAt,
	}
}

func fromState(sub Submission, rs spacedrep.ReviewState) store.ReviewProgress {
	return store.ReviewProgress{
		UserID:         sub.UserID,
		ItemID:         sub.ItemID,
		GroupKey:       sub.GroupKey,
		EaseFactor:     rs.EaseFactor,
		IntervalDays:   rs.IntervalDays,
		Repetitions:    rs.Repetitions,
		NextReviewAt:   rs.NextReviewAt,
		LastReviewedAt: rs.LastReviewedAt,
	}
}
