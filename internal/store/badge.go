package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// ListBadgeCatalog returns every badge definition ordered by requirement
// value, then id.
func (s *Store) ListBadgeCatalog(ctx context.Context) ([]BadgeDefinition, error) {
	b := s.builder()
	sel := b.Select(
		"id", "name", "description", "icon", "category",
		"requirement_type", "requirement_value", "xp_reward",
	).From(b.Table(badgeDefinitionsTable.Name))

	rows, err := s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list badge catalog: %w", err)
	}
	defer rows.Close()

	var out []BadgeDefinition
	for rows.Next() {
		var (
			d  BadgeDefinition
			rt string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.Icon, &d.Category, &rt, &d.RequirementValue, &d.XPReward); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		d.RequirementType = RequirementType(rt)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RequirementValue != out[j].RequirementValue {
			return out[i].RequirementValue < out[j].RequirementValue
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SeedCatalog upserts the given definitions. Existing rows with the same id
// take the new values; definitions not listed are left alone.
func (s *Store) SeedCatalog(ctx context.Context, defs []BadgeDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	q := s.builder().Insert(badgeDefinitionsTable.Name).
		Columns("id", "name", "description", "icon", "category", "requirement_type", "requirement_value", "xp_reward")
	for _, d := range defs {
		q = q.Values(d.ID, d.Name, d.Description, d.Icon, d.Category, string(d.RequirementType), d.RequirementValue, d.XPReward)
	}
	q = q.OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("seed badge catalog: %w", err)
	}
	return nil
}

// ListEarnedBadges returns the user's badges, oldest first.
func (s *Store) ListEarnedBadges(ctx context.Context, userID string) ([]EarnedBadge, error) {
	b := s.builder()
	t := b.Table(earnedBadgesTable.Name)
	sel := b.Select(t.C("user_id"), t.C("badge_id"), t.C("earned_at")).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		OrderBy(t.C("id"))

	rows, err := s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list earned badges: %w", err)
	}
	defer rows.Close()

	var out []EarnedBadge
	for rows.Next() {
		var (
			e      EarnedBadge
			earned string
		)
		if err := rows.Scan(&e.UserID, &e.BadgeID, &earned); err != nil {
			return nil, fmt.Errorf("scan earned badge: %w", err)
		}
		e.EarnedAt = parseTime(earned)
		out = append(out, e)
	}
	return out, rows.Err()
}

// InsertEarnedBadge records the badge for the user. The unique index on
// (user_id, badge_id) makes this at-most-once: it returns false when the row
// already existed.
func (s *Store) InsertEarnedBadge(ctx context.Context, userID, badgeID string) (bool, error) {
	q := s.builder().Insert(earnedBadgesTable.Name).
		Columns("user_id", "badge_id", "earned_at").
		Values(userID, badgeID, formatTime(time.Now())).
		OnConflict(entsql.ConflictColumns("user_id", "badge_id"), entsql.DoNothing())
	res, err := s.exec(ctx, q)
	if err != nil {
		return false, fmt.Errorf("insert earned badge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
