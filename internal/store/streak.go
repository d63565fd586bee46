package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// GetOrCreateStreak returns the user's streak, creating an empty one with
// no activity date on first touch.
func (s *Store) GetOrCreateStreak(ctx context.Context, userID string) (StreakRecord, error) {
	b := s.builder()
	ins := b.Insert(streaksTable.Name).
		Columns("user_id", "current_streak", "longest_streak").
		Values(userID, 0, 0).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing())
	if _, err := s.exec(ctx, ins); err != nil {
		return StreakRecord{}, fmt.Errorf("create streak: %w", err)
	}

	sel := b.Select("user_id", "current_streak", "longest_streak", "last_activity_date").
		From(b.Table(streaksTable.Name)).
		Where(entsql.EQ("user_id", userID))
	var (
		r    StreakRecord
		last sql.NullString
	)
	if err := s.queryRow(ctx, sel).Scan(&r.UserID, &r.CurrentStreak, &r.LongestStreak, &last); err != nil {
		return StreakRecord{}, fmt.Errorf("get streak: %w", err)
	}
	if last.Valid && last.String != "" {
		d, err := parseDate(last.String)
		if err != nil {
			return StreakRecord{}, fmt.Errorf("parse last activity date %q: %w", last.String, err)
		}
		r.LastActivityDate = &d
	}
	return r, nil
}

// UpdateStreak stores the new streak counters. lastActivity is stored as its
// calendar date only.
func (s *Store) UpdateStreak(ctx context.Context, userID string, current, longest int, lastActivity time.Time) error {
	q := s.builder().Update(streaksTable.Name).
		Set("current_streak", current).
		Set("longest_streak", longest).
		Set("last_activity_date", formatDate(lastActivity)).
		Where(entsql.EQ("user_id", userID))
	res, err := s.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return requireRow(res, "streak")
}
