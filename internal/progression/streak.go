package progression

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/studyhall/internal/store"
)

// ActivityResult is the outcome of recording a day's activity.
type ActivityResult struct {
	Streak  store.StreakRecord      `json:"streak"`
	Changed bool                    `json:"changed"`
	Bonus   int                     `json:"bonus"`
	Badges  []store.BadgeDefinition `json:"badges,omitempty"`
	Events  []Event                 `json:"events,omitempty"`
}

// NextStreak applies one activity on day today (a calendar date at
// midnight UTC) to rec. It reports false and returns rec unchanged when
// today was already counted or lies before the last recorded day.
func NextStreak(rec store.StreakRecord, today time.Time) (store.StreakRecord, bool) {
	next := rec
	if last := rec.LastActivityDate; last != nil {
		if !today.After(*last) {
			return rec, false
		}
		if last.AddDate(0, 0, 1).Equal(today) {
			next.CurrentStreak++
		} else {
			next.CurrentStreak = 1
		}
	} else {
		next.CurrentStreak = 1
	}
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	day := today
	next.LastActivityDate = &day
	return next, true
}

// RecordActivity counts at toward the user's daily streak. The first
// activity of a day extends or resets the streak and, for streaks longer
// than one day, grants a bonus of StreakBonusPerDay XP per streak day.
// Further activity the same day changes nothing. Streak badges are checked
// on every call.
//
// The bonus is granted before the streak is saved. If saving fails after
// the bonus landed, a *PartialApplicationError is returned; retrying would
// grant the bonus again.
func (s *Service) RecordActivity(ctx context.Context, userID string, at time.Time) (res ActivityResult, err error) {
	today := s.Today(at)
	ctx, span := s.tracer.Start(ctx, "progression.RecordActivity", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("day", today.Format(store.DateLayout)),
	))
	defer func() { endSpan(span, err) }()

	unlock, err := s.lockUser(ctx, userID)
	if err != nil {
		return ActivityResult{}, err
	}
	defer unlock()

	rec, err := s.gw.GetOrCreateStreak(ctx, userID)
	if err != nil {
		return ActivityResult{}, fmt.Errorf("load streak: %w", err)
	}

	next, changed := NextStreak(rec, today)
	res = ActivityResult{Streak: next, Changed: changed}
	if !changed {
		return s.checkStreakBadges(ctx, userID, res, false)
	}

	var (
		bonusErr     error
		bonusGranted bool
	)
	if next.CurrentStreak > 1 {
		bonus := s.cfg.StreakBonusPerDay * next.CurrentStreak
		ar, applied, err := s.award(ctx, userID, bonus, SourceStreak, fmt.Sprintf("%d-day streak", next.CurrentStreak), 0)
		if !applied {
			return ActivityResult{}, fmt.Errorf("streak bonus: %w", err)
		}
		bonusErr, bonusGranted = err, true
		res.Bonus = bonus
		res.Events = append(res.Events, Event{Kind: EventStreakBonus, XP: bonus, Streak: next.CurrentStreak})
		res.Events = append(res.Events, ar.Events...)
	}

	if err := s.gw.UpdateStreak(ctx, userID, next.CurrentStreak, next.LongestStreak, today); err != nil {
		if !bonusGranted {
			return ActivityResult{}, fmt.Errorf("update streak: %w", err)
		}
		s.log.Error("streak bonus granted but streak not saved",
			"integrity", "partial_application",
			"user_id", userID,
			"streak", next.CurrentStreak,
			"bonus", res.Bonus,
			"error", err,
		)
		return res, &PartialApplicationError{
			Op:      "record_activity",
			Applied: "streak bonus",
			Failed:  "streak update",
			Err:     err,
		}
	}
	if bonusErr != nil {
		return res, bonusErr
	}
	return s.checkStreakBadges(ctx, userID, res, true)
}

func (s *Service) checkStreakBadges(ctx context.Context, userID string, res ActivityResult, saved bool) (ActivityResult, error) {
	br, err := s.checkAndAward(ctx, userID, store.RequirementStreakDays, res.Streak.CurrentStreak, 0)
	res.Badges = append(res.Badges, br.Earned...)
	res.Events = append(res.Events, br.Events...)
	if err != nil {
		if saved && !IsPartial(err) {
			err = &PartialApplicationError{
				Op:      "record_activity",
				Applied: "streak update",
				Failed:  "badge check",
				Err:     err,
			}
		}
		return res, err
	}
	return res, nil
}
