package progression

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abhisek/studyhall/internal/store"
)

// CatalogSource loads badge definitions.
type CatalogSource interface {
	ListBadgeCatalog(ctx context.Context) ([]store.BadgeDefinition, error)
}

// Catalog is a read-only snapshot of the badge catalog. The evaluator reads
// the snapshot instead of querying the store on every check; Refresh swaps
// in a new one.
type Catalog struct {
	src   CatalogSource
	snap  atomic.Pointer[catalogSnapshot]
	group singleflight.Group
}

type catalogSnapshot struct {
	defs     []store.BadgeDefinition
	loadedAt time.Time
}

// NewCatalog creates an empty catalog backed by src. The first Get loads it.
func NewCatalog(src CatalogSource) *Catalog {
	return &Catalog{src: src}
}

// Get returns the current snapshot, loading it on first use. Concurrent
// first loads share one store call. The returned slice is shared and must
// not be modified.
func (c *Catalog) Get(ctx context.Context) ([]store.BadgeDefinition, error) {
	if s := c.snap.Load(); s != nil {
		return s.defs, nil
	}
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.snap.Load().defs, nil
}

// Refresh reloads the snapshot from the source. On failure the previous
// snapshot stays in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	return c.load(ctx)
}

// Set replaces the snapshot directly.
func (c *Catalog) Set(defs []store.BadgeDefinition) {
	c.snap.Store(newSnapshot(defs))
}

// LoadedAt returns when the current snapshot was taken, zero if never.
func (c *Catalog) LoadedAt() time.Time {
	if s := c.snap.Load(); s != nil {
		return s.loadedAt
	}
	return time.Time{}
}

// Len returns the number of definitions in the snapshot.
func (c *Catalog) Len() int {
	if s := c.snap.Load(); s != nil {
		return len(s.defs)
	}
	return 0
}

func (c *Catalog) load(ctx context.Context) error {
	_, err, _ := c.group.Do("catalog", func() (any, error) {
		defs, err := c.src.ListBadgeCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("load badge catalog: %w", err)
		}
		c.snap.Store(newSnapshot(defs))
		return nil, nil
	})
	return err
}

func newSnapshot(defs []store.BadgeDefinition) *catalogSnapshot {
	sorted := make([]store.BadgeDefinition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RequirementValue < sorted[j].RequirementValue
	})
	return &catalogSnapshot{defs: sorted, loadedAt: time.Now()}
}

// eligible returns the definitions of the given type whose threshold value
// reaches.
func eligible(defs []store.BadgeDefinition, reqType store.RequirementType, value int) []store.BadgeDefinition {
	var out []store.BadgeDefinition
	for _, d := range defs {
		if d.RequirementType == reqType && d.RequirementValue <= value {
			out = append(out, d)
		}
	}
	return out
}

// DefaultCatalog is the built-in badge set seeded into new databases.
func DefaultCatalog() []store.BadgeDefinition {
	return []store.BadgeDefinition{
		{ID: "level-2", Name: "Getting Started", Description: "Reach level 2", Icon: "🌱", Category: "level", RequirementType: store.RequirementLevel, RequirementValue: 2, XPReward: 0},
		{ID: "level-5", Name: "Scholar", Description: "Reach level 5", Icon: "🎓", Category: "level", RequirementType: store.RequirementLevel, RequirementValue: 5, XPReward: 50},
		{ID: "level-10", Name: "Sage", Description: "Reach level 10", Icon: "🦉", Category: "level", RequirementType: store.RequirementLevel, RequirementValue: 10, XPReward: 200},
		{ID: "streak-3", Name: "On a Roll", Description: "Study 3 days in a row", Icon: "🔥", Category: "streak", RequirementType: store.RequirementStreakDays, RequirementValue: 3, XPReward: 15},
		{ID: "streak-7", Name: "Week Warrior", Description: "Study 7 days in a row", Icon: "📅", Category: "streak", RequirementType: store.RequirementStreakDays, RequirementValue: 7, XPReward: 50},
		{ID: "streak-30", Name: "Unstoppable", Description: "Study 30 days in a row", Icon: "🏆", Category: "streak", RequirementType: store.RequirementStreakDays, RequirementValue: 30, XPReward: 300},
		{ID: "reviews-10", Name: "First Steps", Description: "Review 10 flashcards", Icon: "🃏", Category: "review", RequirementType: store.RequirementFlashcardsReviewed, RequirementValue: 10, XPReward: 10},
		{ID: "reviews-100", Name: "Card Shark", Description: "Review 100 flashcards", Icon: "🦈", Category: "review", RequirementType: store.RequirementFlashcardsReviewed, RequirementValue: 100, XPReward: 75},
		{ID: "reviews-1000", Name: "Memory Palace", Description: "Review 1000 flashcards", Icon: "🏛", Category: "review", RequirementType: store.RequirementFlashcardsReviewed, RequirementValue: 1000, XPReward: 500},
		{ID: "xp-1000", Name: "Thousand Club", Description: "Earn 1000 XP", Icon: "💎", Category: "xp", RequirementType: store.RequirementTotalXP, RequirementValue: 1000, XPReward: 0},
		{ID: "mastered-10", Name: "Locked In", Description: "Master 10 cards", Icon: "🔒", Category: "mastery", RequirementType: store.RequirementCardsMastered, RequirementValue: 10, XPReward: 40},
		{ID: "mastered-50", Name: "Encyclopedic", Description: "Master 50 cards", Icon: "📚", Category: "mastery", RequirementType: store.RequirementCardsMastered, RequirementValue: 50, XPReward: 150},
	}
}
