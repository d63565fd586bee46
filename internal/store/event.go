package store

import (
	"context"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence shared by the
// append-only tables (xp_transactions, review_log, llm_requests). Per-table
// auto-increment ids can't order rows across tables; this counter can, so a
// transaction and the review that caused it always read back in the order
// they were written.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	s  *Store
}

func newSequenceCounter(s *Store) *sequenceCounter {
	return &sequenceCounter{s: s}
}

// init seeds the single counter row. Safe to call on every open.
func (sc *sequenceCounter) init(ctx context.Context) error {
	q := sc.s.builder().Insert(globalSequenceTable.Name).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
	if _, err := sc.s.exec(ctx, q); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.s.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
