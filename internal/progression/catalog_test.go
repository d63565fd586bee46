package progression

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/store"
)

type slowSource struct {
	mu    sync.Mutex
	loads int
	defs  []store.BadgeDefinition
}

func (s *slowSource) ListBadgeCatalog(context.Context) ([]store.BadgeDefinition, error) {
	time.Sleep(50 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.defs, nil
}

func TestCatalogLazyLoadIsShared(t *testing.T) {
	src := &slowSource{defs: reviewBadges()}
	c := NewCatalog(src)
	assert.True(t, c.LoadedAt().IsZero())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defs, err := c.Get(context.Background())
			assert.NoError(t, err)
			assert.Len(t, defs, 3)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.loads)
	assert.False(t, c.LoadedAt().IsZero())
}

func TestCatalogSortedByRequirementValue(t *testing.T) {
	c := NewCatalog(newMemGateway())
	c.Set([]store.BadgeDefinition{
		{ID: "c", RequirementValue: 30},
		{ID: "a", RequirementValue: 3},
		{ID: "b", RequirementValue: 10},
	})
	defs, err := c.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", defs[0].ID)
	assert.Equal(t, "b", defs[1].ID)
	assert.Equal(t, "c", defs[2].ID)
}

func TestCatalogRefresh(t *testing.T) {
	gw := newMemGateway(reviewBadges()[:1]...)
	c := NewCatalog(gw)
	ctx := context.Background()

	_, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	gw.set(func(g *memGateway) { g.catalog = reviewBadges() })
	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, 3, c.Len())

	// A failed refresh keeps the previous snapshot.
	gw.set(func(g *memGateway) { g.failCatalog = errBoom })
	assert.Error(t, c.Refresh(ctx))
	assert.Equal(t, 3, c.Len())
}

func TestDefaultCatalogWellFormed(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range DefaultCatalog() {
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		assert.GreaterOrEqual(t, d.XPReward, 0)
		assert.Positive(t, d.RequirementValue)
		assert.NotEmpty(t, d.Name)
	}
}
