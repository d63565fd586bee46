package progression

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/studyhall/internal/store"
)

// AwardResult is the outcome of granting XP.
type AwardResult struct {
	PreviousXP    int     `json:"previous_xp"`
	TotalXP       int     `json:"total_xp"`
	PreviousLevel int     `json:"previous_level"`
	Level         int     `json:"level"`
	LeveledUp     bool    `json:"leveled_up"`
	Events        []Event `json:"events,omitempty"`
}

// Award adds amount XP to the user's account, appends a ledger entry and,
// when the level changes, evaluates level badges.
//
// The account update and the ledger append are both attempted. If only the
// update fails a *PartialApplicationError is returned; if only the append
// fails the award stands and the gap is logged, since the account row is
// authoritative and the ledger is an audit trail.
func (s *Service) Award(ctx context.Context, userID string, amount int, source Source, description string) (res AwardResult, err error) {
	ctx, span := s.tracer.Start(ctx, "progression.Award", trace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.Int("amount", amount),
		attribute.String("source", string(source)),
	))
	defer func() { endSpan(span, err) }()

	if err := s.validateAmount(amount); err != nil {
		return AwardResult{}, err
	}
	if _, err := ParseSource(string(source)); err != nil {
		return AwardResult{}, err
	}
	unlock, err := s.lockUser(ctx, userID)
	if err != nil {
		return AwardResult{}, err
	}
	defer unlock()

	res, _, err = s.award(ctx, userID, amount, source, description, 0)
	return res, err
}

// MaxAward bounds the size of a single award in either direction.
const MaxAward = 1_000_000

func (s *Service) validateAmount(amount int) error {
	if amount < 0 && !s.cfg.AllowNegative {
		return fmt.Errorf("%w: %d is negative", ErrInvalidAmount, amount)
	}
	if amount > MaxAward || amount < -MaxAward {
		return fmt.Errorf("%w: %d exceeds %d", ErrInvalidAmount, amount, MaxAward)
	}
	return nil
}

// award runs with the user's lock held. applied reports whether the account
// total changed, which callers need to decide whether a later failure is a
// partial application.
func (s *Service) award(ctx context.Context, userID string, amount int, source Source, description string, depth int) (AwardResult, bool, error) {
	acct, err := s.gw.GetOrCreateAccount(ctx, userID)
	if err != nil {
		return AwardResult{}, false, fmt.Errorf("load account: %w", err)
	}

	if amount > 0 && acct.TotalXP > math.MaxInt-amount {
		return AwardResult{}, false, &ValidationError{Field: "amount", Reason: fmt.Sprintf("%d would overflow total XP %d", amount, acct.TotalXP)}
	}
	total := acct.TotalXP + amount
	if total < 0 {
		total = 0
	}
	level := LevelFromXP(total)
	res := AwardResult{
		PreviousXP:    acct.TotalXP,
		TotalXP:       total,
		PreviousLevel: acct.Level,
		Level:         level,
		LeveledUp:     level > acct.Level,
	}

	updateErr := s.gw.UpdateAccount(ctx, userID, total, level)
	appendErr := s.gw.AppendTransaction(ctx, userID, amount, string(source), description)
	switch {
	case updateErr != nil && appendErr != nil:
		return AwardResult{}, false, fmt.Errorf("update account: %w", updateErr)
	case updateErr != nil:
		s.log.Error("xp ledger out of sync with account",
			"integrity", "partial_application",
			"user_id", userID,
			"amount", amount,
			"source", source,
			"error", updateErr,
		)
		return AwardResult{}, false, &PartialApplicationError{
			Op:      "award",
			Applied: "ledger append",
			Failed:  "account update",
			Err:     updateErr,
		}
	case appendErr != nil:
		s.log.Error("xp awarded without ledger entry",
			"integrity", "partial_application",
			"user_id", userID,
			"amount", amount,
			"source", source,
			"error", appendErr,
		)
	}

	if res.LeveledUp {
		res.Events = append(res.Events, Event{Kind: EventLevelUp, Level: level})
		s.log.Info("level up", "user_id", userID, "level", level, "total_xp", total)
	}
	if depth >= s.cfg.MaxCascadeDepth {
		return res, true, nil
	}

	if res.LeveledUp {
		br, err := s.checkAndAward(ctx, userID, store.RequirementLevel, level, depth)
		res.Events = append(res.Events, br.Events...)
		if err != nil {
			return res, true, partialAfterAward(err)
		}
	}
	if amount > 0 {
		br, err := s.checkAndAward(ctx, userID, store.RequirementTotalXP, total, depth)
		res.Events = append(res.Events, br.Events...)
		if err != nil {
			return res, true, partialAfterAward(err)
		}
	}
	return res, true, nil
}

func partialAfterAward(err error) error {
	if IsPartial(err) {
		return err
	}
	return &PartialApplicationError{
		Op:      "award",
		Applied: "xp",
		Failed:  "badge check",
		Err:     err,
	}
}
