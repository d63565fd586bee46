package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
	if s.Dialect() != dialectSQLite {
		t.Errorf("Dialect() = %q, want %q", s.Dialect(), dialectSQLite)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := OpenDriver(context.Background(), "oracle", "x"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not checked here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table.Name,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table.Name, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Monotonically increasing from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}

	// Re-seeding does not reset the counter.
	if err := s.seq.init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	seq, err := s.seq.Next(ctx)
	if err != nil {
		t.Fatalf("next after init: %v", err)
	}
	if seq != 6 {
		t.Errorf("seq after re-init = %d, want 6", seq)
	}
}

func TestAccountCreateAndUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.GetOrCreateAccount(ctx, "u1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if a.TotalXP != 0 || a.Level != 1 {
		t.Errorf("new account = %+v, want 0 XP at level 1", a)
	}

	if err := s.UpdateAccount(ctx, "u1", 250, 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	a, err = s.GetOrCreateAccount(ctx, "u1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if a.TotalXP != 250 || a.Level != 3 {
		t.Errorf("account = %+v, want 250 XP at level 3", a)
	}
}

func TestUpdateAccountMissing(t *testing.T) {
	s := openTestStore(t)
	err := s.UpdateAccount(context.Background(), "ghost", 10, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateAccount(missing) = %v, want ErrNotFound", err)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound = false")
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entries := []struct {
		amount int
		source string
		desc   string
	}{
		{50, "quiz", "first"},
		{30, "flashcard", ""},
		{25, "manual", "third"},
	}
	for _, e := range entries {
		if err := s.AppendTransaction(ctx, "u1", e.amount, e.source, e.desc); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := s.AppendTransaction(ctx, "u2", 99, "quiz", ""); err != nil {
		t.Fatalf("append other user: %v", err)
	}

	txs, err := s.ListTransactions(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}
	if txs[0].Amount != 25 || txs[2].Amount != 50 {
		t.Errorf("order = %d,%d,%d; want newest first", txs[0].Amount, txs[1].Amount, txs[2].Amount)
	}
	if txs[1].Description != "" || txs[0].Description != "third" {
		t.Errorf("descriptions = %q, %q", txs[0].Description, txs[1].Description)
	}
	if txs[0].ID == "" || txs[0].ID == txs[1].ID {
		t.Error("expected distinct transaction ids")
	}

	limited, err := s.ListTransactions(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d rows", len(limited))
	}
}

func TestStreakRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	r, err := s.GetOrCreateStreak(ctx, "u1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if r.CurrentStreak != 0 || r.LongestStreak != 0 || r.LastActivityDate != nil {
		t.Errorf("new streak = %+v", r)
	}

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := s.UpdateStreak(ctx, "u1", 4, 7, day); err != nil {
		t.Fatalf("update: %v", err)
	}
	r, err = s.GetOrCreateStreak(ctx, "u1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if r.CurrentStreak != 4 || r.LongestStreak != 7 {
		t.Errorf("streak = %+v", r)
	}
	if r.LastActivityDate == nil || !r.LastActivityDate.Equal(day) {
		t.Errorf("last activity = %v, want %v", r.LastActivityDate, day)
	}
}

func TestBadgeCatalogOrderedByRequirement(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	defs := []BadgeDefinition{
		{ID: "streak-7", Name: "Week", RequirementType: RequirementStreakDays, RequirementValue: 7, XPReward: 50},
		{ID: "level-2", Name: "Rising", RequirementType: RequirementLevel, RequirementValue: 2},
		{ID: "streak-3", Name: "Warm", RequirementType: RequirementStreakDays, RequirementValue: 3, XPReward: 20},
	}
	if err := s.SeedCatalog(ctx, defs); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding again with changed values updates in place.
	defs[0].XPReward = 75
	if err := s.SeedCatalog(ctx, defs[:1]); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	got, err := s.ListBadgeCatalog(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for _, d := range got {
		ids = append(ids, d.ID)
	}
	if strings.Join(ids, ",") != "level-2,streak-3,streak-7" {
		t.Errorf("catalog order = %v", ids)
	}
	if got[2].XPReward != 75 || got[2].RequirementType != RequirementStreakDays {
		t.Errorf("streak-7 = %+v", got[2])
	}
}

func TestInsertEarnedBadgeAtMostOnce(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.InsertEarnedBadge(ctx, "u1", "streak-3")
	if err != nil || !inserted {
		t.Fatalf("first insert = %v, %v; want true, nil", inserted, err)
	}
	inserted, err = s.InsertEarnedBadge(ctx, "u1", "streak-3")
	if err != nil || inserted {
		t.Fatalf("second insert = %v, %v; want false, nil", inserted, err)
	}
	if _, err := s.InsertEarnedBadge(ctx, "u2", "streak-3"); err != nil {
		t.Fatalf("other user: %v", err)
	}

	earned, err := s.ListEarnedBadges(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(earned) != 1 || earned[0].BadgeID != "streak-3" {
		t.Errorf("earned = %+v", earned)
	}
}

func TestReviewProgressUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	next := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	p := ReviewProgress{
		UserID: "u1", GroupKey: "g1", ItemID: "card-1",
		EaseFactor: 2.5, IntervalDays: 1, Repetitions: 1, NextReviewAt: next,
	}
	if _, err := s.UpsertReviewProgress(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}

	reviewed := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	p.IntervalDays, p.Repetitions = 6, 2
	p.NextReviewAt = reviewed.AddDate(0, 0, 6)
	p.LastReviewedAt = &reviewed
	if _, err := s.UpsertReviewProgress(ctx, p); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := s.GetReviewProgress(ctx, "u1", "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	rp := got["card-1"]
	if rp.IntervalDays != 6 || rp.Repetitions != 2 || rp.EaseFactor != 2.5 {
		t.Errorf("progress = %+v", rp)
	}
	if !rp.NextReviewAt.Equal(p.NextReviewAt) {
		t.Errorf("next review = %v, want %v", rp.NextReviewAt, p.NextReviewAt)
	}
	if rp.LastReviewedAt == nil || !rp.LastReviewedAt.Equal(reviewed) {
		t.Errorf("last reviewed = %v", rp.LastReviewedAt)
	}

	other, err := s.GetReviewProgress(ctx, "u1", "g2")
	if err != nil {
		t.Fatalf("get other group: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("other group has %d rows, want 0", len(other))
	}
}

func TestReviewCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.AppendReviewLog(ctx, ReviewLogEntry{UserID: "u1", GroupKey: "g", ItemID: fmt.Sprint(i), Quality: 4}); err != nil {
			t.Fatalf("append review: %v", err)
		}
	}
	n, err := s.CountReviews(ctx, "u1")
	if err != nil || n != 3 {
		t.Errorf("CountReviews = %d, %v; want 3", n, err)
	}

	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, interval := range []int{1, 21, 40} {
		_, err := s.UpsertReviewProgress(ctx, ReviewProgress{
			UserID: "u1", GroupKey: "g", ItemID: fmt.Sprint(i),
			EaseFactor: 2.5, IntervalDays: interval, Repetitions: 3, NextReviewAt: day,
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	m, err := s.CountMastered(ctx, "u1", 21)
	if err != nil || m != 2 {
		t.Errorf("CountMastered = %d, %v; want 2", m, err)
	}
}

func TestAppendLLMRequest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "m", Purpose: "cardgen", Success: false, ErrorMessage: "boom",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	n, err := s.CountLLMRequests(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountLLMRequests = %d, %v; want 1", n, err)
	}
}

func TestListLLMRequests(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, d := range []LLMRequestEventData{
		{Provider: "mock", Model: "m1", Purpose: "card-generation", InputTokens: 10, OutputTokens: 20, LatencyMs: 5, Success: true},
		{Provider: "mock", Model: "m2", Purpose: "other", Success: true},
		{Provider: "mock", Model: "m3", Purpose: "card-generation", ErrorMessage: "boom"},
	} {
		if err := s.AppendLLMRequest(ctx, d); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := s.ListLLMRequests(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Model != "m3" || all[2].Model != "m1" {
		t.Fatalf("want 3 newest first, got %+v", all)
	}
	if all[0].ErrorMessage != "boom" || all[0].Success {
		t.Errorf("failed call = %+v", all[0])
	}
	if all[2].InputTokens != 10 || all[2].OutputTokens != 20 || all[2].LatencyMs != 5 {
		t.Errorf("usage = %+v", all[2])
	}

	gen, err := s.ListLLMRequests(ctx, "card-generation", 1)
	if err != nil {
		t.Fatalf("list by purpose: %v", err)
	}
	if len(gen) != 1 || gen[0].Model != "m3" {
		t.Errorf("want latest card-generation call, got %+v", gen)
	}
}
