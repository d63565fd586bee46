package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var _ ReviewLog = (*Store)(nil)

// GetReviewProgress returns the user's scheduling state for every item in
// the content group, keyed by item id.
func (s *Store) GetReviewProgress(ctx context.Context, userID, groupKey string) (map[string]ReviewProgress, error) {
	b := s.builder()
	sel := b.Select(
		"user_id", "item_id", "group_key", "ease_factor", "interval_days",
		"repetitions", "next_review_at", "last_reviewed_at", "updated_at",
	).
		From(b.Table(reviewProgressTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("group_key", groupKey),
		))

	rows, err := s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get review progress: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ReviewProgress)
	for rows.Next() {
		var (
			p              ReviewProgress
			next, updated  string
			lastReviewedAt sql.NullString
		)
		if err := rows.Scan(&p.UserID, &p.ItemID, &p.GroupKey, &p.EaseFactor, &p.IntervalDays,
			&p.Repetitions, &next, &lastReviewedAt, &updated); err != nil {
			return nil, fmt.Errorf("scan review progress: %w", err)
		}
		if p.NextReviewAt, err = parseDate(next); err != nil {
			return nil, fmt.Errorf("parse next review date %q: %w", next, err)
		}
		if lastReviewedAt.Valid && lastReviewedAt.String != "" {
			d, err := parseDate(lastReviewedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse last review date %q: %w", lastReviewedAt.String, err)
			}
			p.LastReviewedAt = &d
		}
		p.UpdatedAt = parseTime(updated)
		out[p.ItemID] = p
	}
	return out, rows.Err()
}

// UpsertReviewProgress stores the item's new scheduling state and returns
// the stored record.
func (s *Store) UpsertReviewProgress(ctx context.Context, p ReviewProgress) (ReviewProgress, error) {
	p.UpdatedAt = time.Now().UTC()
	var last any
	if p.LastReviewedAt != nil {
		last = formatDate(*p.LastReviewedAt)
	}
	q := s.builder().Insert(reviewProgressTable.Name).
		Columns(
			"user_id", "group_key", "item_id", "ease_factor", "interval_days",
			"repetitions", "next_review_at", "last_reviewed_at", "updated_at",
		).
		Values(
			p.UserID, p.GroupKey, p.ItemID, p.EaseFactor, p.IntervalDays,
			p.Repetitions, formatDate(p.NextReviewAt), last, formatTime(p.UpdatedAt),
		).
		OnConflict(
			entsql.ConflictColumns("user_id", "group_key", "item_id"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := s.exec(ctx, q); err != nil {
		return ReviewProgress{}, fmt.Errorf("upsert review progress: %w", err)
	}
	return p, nil
}

// AppendReviewLog records one answered review.
func (s *Store) AppendReviewLog(ctx context.Context, e ReviewLogEntry) error {
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}
	if e.ReviewedAt.IsZero() {
		e.ReviewedAt = time.Now()
	}
	q := s.builder().Insert(reviewLogTable.Name).
		Columns("sequence", "user_id", "group_key", "item_id", "quality", "reviewed_at").
		Values(seq, e.UserID, e.GroupKey, e.ItemID, e.Quality, formatTime(e.ReviewedAt))
	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("append review log: %w", err)
	}
	return nil
}

// CountReviews returns how many reviews the user has answered in total.
func (s *Store) CountReviews(ctx context.Context, userID string) (int, error) {
	b := s.builder()
	sel := b.Select(entsql.Count("*")).
		From(b.Table(reviewLogTable.Name)).
		Where(entsql.EQ("user_id", userID))
	var n int
	if err := s.queryRow(ctx, sel).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// CountMastered returns how many of the user's items have an interval of at
// least minIntervalDays.
func (s *Store) CountMastered(ctx context.Context, userID string, minIntervalDays int) (int, error) {
	b := s.builder()
	sel := b.Select(entsql.Count("*")).
		From(b.Table(reviewProgressTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.GTE("interval_days", minIntervalDays),
		))
	var n int
	if err := s.queryRow(ctx, sel).Scan(&n); err != nil {
		return 0, fmt.Errorf("count mastered: %w", err)
	}
	return n, nil
}
