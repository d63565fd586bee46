package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var _ LLMLog = (*Store)(nil)

// AppendLLMRequest records one AI gateway call.
func (s *Store) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}
	var errMsg any
	if data.ErrorMessage != "" {
		errMsg = data.ErrorMessage
	}
	q := s.builder().Insert(llmRequestsTable.Name).
		Columns(
			"sequence", "provider", "model", "purpose", "input_tokens",
			"output_tokens", "latency_ms", "success", "error_message", "created_at",
		).
		Values(
			seq, data.Provider, data.Model, data.Purpose, data.InputTokens,
			data.OutputTokens, data.LatencyMs, data.Success, errMsg, formatTime(time.Now()),
		)
	if _, err := s.exec(ctx, q); err != nil {
		return fmt.Errorf("append llm request: %w", err)
	}
	return nil
}

// CountLLMRequests returns how many AI gateway calls have been recorded.
func (s *Store) CountLLMRequests(ctx context.Context) (int, error) {
	b := s.builder()
	var n int
	err := s.queryRow(ctx, b.Select(entsql.Count("*")).From(b.Table(llmRequestsTable.Name))).Scan(&n)
	return n, err
}

// LLMRequest is a recorded AI gateway call.
type LLMRequest struct {
	ID        int64
	Sequence  int64
	CreatedAt time.Time
	LLMRequestEventData
}

// ListLLMRequests returns the most recent calls first. An empty purpose
// matches every call; limit <= 0 means no limit.
func (s *Store) ListLLMRequests(ctx context.Context, purpose string, limit int) ([]LLMRequest, error) {
	b := s.builder()
	t := b.Table(llmRequestsTable.Name)
	sel := b.Select(
		t.C("id"), t.C("sequence"), t.C("provider"), t.C("model"), t.C("purpose"),
		t.C("input_tokens"), t.C("output_tokens"), t.C("latency_ms"), t.C("success"),
		t.C("error_message"), t.C("created_at"),
	).
		From(t).
		OrderBy(entsql.Desc(t.C("sequence")))
	if purpose != "" {
		sel = sel.Where(entsql.EQ(t.C("purpose"), purpose))
	}
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	rows, err := s.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list llm requests: %w", err)
	}
	defer rows.Close()

	var out []LLMRequest
	for rows.Next() {
		var (
			r       LLMRequest
			errMsg  sql.NullString
			created string
		)
		if err := rows.Scan(&r.ID, &r.Sequence, &r.Provider, &r.Model, &r.Purpose,
			&r.InputTokens, &r.OutputTokens, &r.LatencyMs, &r.Success, &errMsg, &created); err != nil {
			return nil, fmt.Errorf("scan llm request: %w", err)
		}
		r.ErrorMessage = errMsg.String
		r.CreatedAt = parseTime(created)
		out = append(out, r)
	}
	return out, rows.Err()
}
