package progression

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/studyhall/internal/store"
)

// BadgeResult lists the badges a check unlocked.
type BadgeResult struct {
	Earned    []store.BadgeDefinition `json:"earned,omitempty"`
	XPAwarded int                     `json:"xp_awarded"`
	Events    []Event                 `json:"events,omitempty"`
}

// CheckAndAward unlocks every catalog badge of reqType whose threshold value
// reaches and that the user has not earned yet. It is idempotent: the store's
// uniqueness on (user, badge) guarantees each badge, and its XP reward, is
// granted at most once even when checks race.
func (s *Service) CheckAndAward(ctx context.Context, userID string, reqType store.RequirementType, value int) (res BadgeResult, err error) {
	ctx, span := s.tracer.Start(ctx, "progression.CheckAndAward", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.String("requirement_type", string(reqType)),
		attribute.Int("value", value),
	))
	defer func() { endSpan(span, err) }()

	unlock, err := s.lockUser(ctx, userID)
	if err != nil {
		return BadgeResult{}, err
	}
	defer unlock()

	return s.checkAndAward(ctx, userID, reqType, value, 0)
}

// checkAndAward runs with the user's lock held. Badge rewards are granted
// at depth+1.
func (s *Service) checkAndAward(ctx context.Context, userID string, reqType store.RequirementType, value, depth int) (BadgeResult, error) {
	var res BadgeResult

	defs, err := s.catalog.Get(ctx)
	if err != nil {
		return res, err
	}
	candidates := eligible(defs, reqType, value)
	if len(candidates) == 0 {
		return res, nil
	}

	earned, err := s.gw.ListEarnedBadges(ctx, userID)
	if err != nil {
		return res, fmt.Errorf("list earned badges: %w", err)
	}
	have := make(map[string]bool, len(earned))
	for _, e := range earned {
		have[e.BadgeID] = true
	}

	for _, def := range candidates {
		if have[def.ID] {
			continue
		}
		inserted, err := s.gw.InsertEarnedBadge(ctx, userID, def.ID)
		if err != nil {
			return res, s.badgeFailure(res, fmt.Errorf("insert earned badge %s: %w", def.ID, err))
		}
		if !inserted {
			s.log.Debug("badge already earned", "user_id", userID, "badge_id", def.ID)
			continue
		}

		def := def
		res.Earned = append(res.Earned, def)
		res.Events = append(res.Events, Event{Kind: EventBadgeEarned, Badge: &def, XP: def.XPReward})
		s.log.Info("badge earned", "user_id", userID, "badge_id", def.ID, "xp_reward", def.XPReward)

		if def.XPReward <= 0 {
			continue
		}
		ar, applied, err := s.award(ctx, userID, def.XPReward, SourceBadge, "Badge: "+def.Name, depth+1)
		if applied {
			res.XPAwarded += def.XPReward
			res.Events = append(res.Events, ar.Events...)
		}
		if err != nil {
			if IsPartial(err) {
				return res, err
			}
			return res, &PartialApplicationError{
				Op:      "check_and_award",
				Applied: "badge " + def.ID,
				Failed:  "badge xp reward",
				Err:     err,
			}
		}
	}
	return res, nil
}

// badgeFailure wraps err as a partial application when earlier badges in
// the same check were already recorded.
func (s *Service) badgeFailure(res BadgeResult, err error) error {
	if len(res.Earned) == 0 {
		return err
	}
	return &PartialApplicationError{
		Op:      "check_and_award",
		Applied: fmt.Sprintf("%d badge(s)", len(res.Earned)),
		Failed:  "remaining badges",
		Err:     err,
	}
}
