package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var _ LedgerReader = (*Store)(nil)

// GetOrCreateAccount returns the user's account, creating it at 0 XP and
// level 1 on first touch.
func (s *Store) GetOrCreateAccount(ctx context.Context, userID string) (Account, error) {
	b := s.builder()
	ins := b.Insert(accountsTable.Name).
		Columns("user_id", "total_xp", "level", "updated_at").
		Values(userID, 0, 1, formatTime(time.Now())).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing())
	if _, err := s.exec(ctx, ins); err != nil {
		return Account{}, fmt.Errorf("create account: %w", err)
	}

	sel := b.Select("user_id", "total_xp", "level", "updated_at").
		From(b.Table(accountsTable.Name)).
		Where(entsql.EQ("user_id", userID))
	var (
		a       Account
		updated string
	)
	if err := s.queryRow(ctx, sel).Scan(&a.UserID, &a.TotalXP, &a.Level, &updated); err != nil {
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	a.UpdatedAt = parseTime(updated)
	return a, nil
}

// UpdateAccount overwrites the account totals.
func (s *Store) UpdateAccount(ctx context.Context, userID string, totalXP, level int) error {
	q := s.builder().Update(accountsTable.Name).
		Set("total_xp", totalXP).
		Set("level", level).
		Set("updated_at", formatTime(time.Now())).
		Where(entsql.EQ("user_id", userID))
	res, err := s.exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res, "account")
}

// AppendTransaction writes one ledger entry. Rows are never updated or
// deleted.
func (s *Store) AppendTransaction(ctx context.Context, userID string, amount int, source, description string) error {
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}
	var desc any
	if description != "" {
		desc = description
	}
	q := s.builder().Insert(xpTransactionsTable.Name).
		Columns("id", "sequence", "user_id", "amount", "source", "description", "created_at").
		Values(uuid.NewString(), seq, userID, amount, source, desc, formatTime(time.Now()))
	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's most recent ledger entries, newest
// first. A limit of zero or less returns all of them.
func (s *Store) ListTransactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	b := s.builder()
	t := b.Table(xpTransactionsTable.Name)
	sel := b.Select(
		t.C("id"), t.C("sequence"), t.C("user_id"), t.C("amount"),
		t.C("source"), t.C("description"), t.C("created_at"),
	).
		From(t).
		Where(entsql.EQ(t.C("user_id"), userID)).
		OrderBy(entsql.Desc(t.C("sequence")))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	rows, err := s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var (
			tx      Transaction
			desc    sql.NullString
			created string
		)
		if err := rows.Scan(&tx.ID, &tx.Sequence, &tx.UserID, &tx.Amount, &tx.Source, &desc, &created); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Description = desc.String
		tx.CreatedAt = parseTime(created)
		out = append(out, tx)
	}
	return out, rows.Err()
}

// requireRow maps a zero-row update to ErrNotFound.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// IsNotFound reports whether err wraps ErrNotFound or sql.ErrNoRows.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}
