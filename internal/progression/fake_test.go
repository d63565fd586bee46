package progression

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abhisek/studyhall/internal/store"
)

var errBoom = errors.New("boom")

// memGateway is an in-memory store.Gateway with failure injection.
type memGateway struct {
	mu       sync.Mutex
	accounts map[string]store.Account
	txs      []store.Transaction
	streaks  map[string]store.StreakRecord
	catalog  []store.BadgeDefinition
	earned   map[string]map[string]time.Time
	progress map[string]store.ReviewProgress

	catalogLoads int

	failUpdateAccount error
	failAppend        error
	failUpdateStreak  error
	failInsertBadge   error
	failCatalog       error
	// hideEarned makes ListEarnedBadges return nothing, as a stale read
	// would under a race.
	hideEarned bool
}

func newMemGateway(catalog ...store.BadgeDefinition) *memGateway {
	return &memGateway{
		accounts: make(map[string]store.Account),
		streaks:  make(map[string]store.StreakRecord),
		catalog:  catalog,
		earned:   make(map[string]map[string]time.Time),
		progress: make(map[string]store.ReviewProgress),
	}
}

var _ store.Gateway = (*memGateway)(nil)

func (g *memGateway) GetOrCreateAccount(_ context.Context, userID string) (store.Account, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.accounts[userID]
	if !ok {
		a = store.Account{UserID: userID, Level: 1}
		g.accounts[userID] = a
	}
	return a, nil
}

func (g *memGateway) UpdateAccount(_ context.Context, userID string, totalXP, level int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failUpdateAccount != nil {
		return g.failUpdateAccount
	}
	a, ok := g.accounts[userID]
	if !ok {
		return store.ErrNotFound
	}
	a.TotalXP, a.Level = totalXP, level
	g.accounts[userID] = a
	return nil
}

func (g *memGateway) AppendTransaction(_ context.Context, userID string, amount int, source, description string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failAppend != nil {
		return g.failAppend
	}
	g.txs = append(g.txs, store.Transaction{
		Sequence:    int64(len(g.txs) + 1),
		UserID:      userID,
		Amount:      amount,
		Source:      source,
		Description: description,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (g *memGateway) GetOrCreateStreak(_ context.Context, userID string) (store.StreakRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.streaks[userID]
	if !ok {
		r = store.StreakRecord{UserID: userID}
		g.streaks[userID] = r
	}
	return r, nil
}

func (g *memGateway) UpdateStreak(_ context.Context, userID string, current, longest int, lastActivity time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failUpdateStreak != nil {
		return g.failUpdateStreak
	}
	day := lastActivity
	g.streaks[userID] = store.StreakRecord{
		UserID:           userID,
		CurrentStreak:    current,
		LongestStreak:    longest,
		LastActivityDate: &day,
	}
	return nil
}

func (g *memGateway) ListBadgeCatalog(context.Context) ([]store.BadgeDefinition, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.catalogLoads++
	if g.failCatalog != nil {
		return nil, g.failCatalog
	}
	out := make([]store.BadgeDefinition, len(g.catalog))
	copy(out, g.catalog)
	return out, nil
}

func (g *memGateway) ListEarnedBadges(_ context.Context, userID string) ([]store.EarnedBadge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hideEarned {
		return nil, nil
	}
	var out []store.EarnedBadge
	for id, at := range g.earned[userID] {
		out = append(out, store.EarnedBadge{UserID: userID, BadgeID: id, EarnedAt: at})
	}
	return out, nil
}

func (g *memGateway) InsertEarnedBadge(_ context.Context, userID, badgeID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failInsertBadge != nil {
		return false, g.failInsertBadge
	}
	if g.earned[userID] == nil {
		g.earned[userID] = make(map[string]time.Time)
	}
	if _, ok := g.earned[userID][badgeID]; ok {
		return false, nil
	}
	g.earned[userID][badgeID] = time.Now()
	return true, nil
}

func (g *memGateway) GetReviewProgress(_ context.Context, userID, groupKey string) (map[string]store.ReviewProgress, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]store.ReviewProgress)
	for _, p := range g.progress {
		if p.UserID == userID && p.GroupKey == groupKey {
			out[p.ItemID] = p
		}
	}
	return out, nil
}

func (g *memGateway) UpsertReviewProgress(_ context.Context, p store.ReviewProgress) (store.ReviewProgress, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.progress[p.UserID+"|"+p.GroupKey+"|"+p.ItemID] = p
	return p, nil
}

func (g *memGateway) account(userID string) store.Account {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accounts[userID]
}

func (g *memGateway) transactions(userID string) []store.Transaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []store.Transaction
	for _, tx := range g.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

func (g *memGateway) hasBadge(userID, badgeID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.earned[userID][badgeID]
	return ok
}

func (g *memGateway) set(fn func(g *memGateway)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
