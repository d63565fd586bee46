package progression

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/store"
)

func reviewBadges() []store.BadgeDefinition {
	return []store.BadgeDefinition{
		{ID: "reviews-10", Name: "Ten", RequirementType: store.RequirementFlashcardsReviewed, RequirementValue: 10, XPReward: 25},
		{ID: "reviews-50", Name: "Fifty", RequirementType: store.RequirementFlashcardsReviewed, RequirementValue: 50, XPReward: 40},
		{ID: "streak-3", Name: "Three", RequirementType: store.RequirementStreakDays, RequirementValue: 3, XPReward: 15},
	}
}

func TestCheckAndAwardFiltersByTypeAndValue(t *testing.T) {
	gw := newMemGateway(reviewBadges()...)
	svc := newTestService(gw)

	res, err := svc.CheckAndAward(context.Background(), "u", store.RequirementFlashcardsReviewed, 12)
	require.NoError(t, err)
	require.Len(t, res.Earned, 1)
	assert.Equal(t, "reviews-10", res.Earned[0].ID)
	assert.Equal(t, 25, res.XPAwarded)
	assert.False(t, gw.hasBadge("u", "streak-3"))
	assert.False(t, gw.hasBadge("u", "reviews-50"))
}

func TestCheckAndAwardIsIdempotent(t *testing.T) {
	gw := newMemGateway(reviewBadges()...)
	svc := newTestService(gw)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CheckAndAward(ctx, "u", store.RequirementFlashcardsReviewed, 60)
		require.NoError(t, err)
	}
	assert.Equal(t, 65, gw.account("u").TotalXP)
	assert.Len(t, gw.transactions("u"), 2)
}

func TestCheckAndAwardStoreGuardWithStaleRead(t *testing.T) {
	gw := newMemGateway(reviewBadges()...)
	svc := newTestService(gw)
	ctx := context.Background()

	_, err := svc.CheckAndAward(ctx, "u", store.RequirementStreakDays, 3)
	require.NoError(t, err)

	// The read guard sees nothing; the insert reports the badge as already
	// earned and no XP is granted.
	gw.set(func(g *memGateway) { g.hideEarned = true })
	res, err := svc.CheckAndAward(ctx, "u", store.RequirementStreakDays, 3)
	require.NoError(t, err)
	assert.Empty(t, res.Earned)
	assert.Equal(t, 15, gw.account("u").TotalXP)
}

func TestCheckAndAwardConcurrent(t *testing.T) {
	gw := newMemGateway(reviewBadges()...)
	svc := newTestService(gw)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CheckAndAward(ctx, "u", store.RequirementFlashcardsReviewed, 100)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 65, gw.account("u").TotalXP)
}

func TestCheckAndAwardZeroRewardGrantsNoXP(t *testing.T) {
	gw := newMemGateway(store.BadgeDefinition{ID: "l2", RequirementType: store.RequirementLevel, RequirementValue: 2})
	svc := newTestService(gw)

	res, err := svc.CheckAndAward(context.Background(), "u", store.RequirementLevel, 2)
	require.NoError(t, err)
	assert.Len(t, res.Earned, 1)
	assert.Zero(t, res.XPAwarded)
	assert.Empty(t, gw.transactions("u"))
}

func TestBadgeCascadeDepthIsCapped(t *testing.T) {
	gw := newMemGateway(
		store.BadgeDefinition{ID: "level-2", Name: "L2", RequirementType: store.RequirementLevel, RequirementValue: 2, XPReward: 150},
		store.BadgeDefinition{ID: "level-3", Name: "L3", RequirementType: store.RequirementLevel, RequirementValue: 3, XPReward: 225},
		store.BadgeDefinition{ID: "level-4", Name: "L4", RequirementType: store.RequirementLevel, RequirementValue: 4, XPReward: 10},
	)
	svc := newTestService(gw)
	ctx := context.Background()

	// 100 -> level 2 -> +150 (depth 1) -> level 3 -> +225 (depth 2) -> level 4,
	// where the cascade stops.
	res, err := svc.Award(ctx, "u", 100, SourceQuiz, "")
	require.NoError(t, err)
	assert.Equal(t, 100, res.TotalXP)
	assert.True(t, gw.hasBadge("u", "level-2"))
	assert.True(t, gw.hasBadge("u", "level-3"))
	assert.False(t, gw.hasBadge("u", "level-4"))

	a := gw.account("u")
	assert.Equal(t, 475, a.TotalXP)
	assert.Equal(t, 4, a.Level)

	// A later explicit check picks up what the cascade left.
	br, err := svc.CheckAndAward(ctx, "u", store.RequirementLevel, a.Level)
	require.NoError(t, err)
	require.Len(t, br.Earned, 1)
	assert.Equal(t, "level-4", br.Earned[0].ID)
}

func TestCheckAndAwardInsertFailure(t *testing.T) {
	gw := newMemGateway(reviewBadges()...)
	gw.failInsertBadge = errBoom
	svc := newTestService(gw)

	_, err := svc.CheckAndAward(context.Background(), "u", store.RequirementFlashcardsReviewed, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
	assert.False(t, IsPartial(err))
}

func TestCheckAndAwardRewardFailureIsPartial(t *testing.T) {
	gw := newMemGateway(reviewBadges()...)
	gw.failUpdateAccount = errBoom
	gw.failAppend = errBoom
	svc := newTestService(gw)

	res, err := svc.CheckAndAward(context.Background(), "u", store.RequirementFlashcardsReviewed, 10)
	require.Error(t, err)
	assert.True(t, IsPartial(err))
	assert.Len(t, res.Earned, 1)
	assert.True(t, gw.hasBadge("u", "reviews-10"))
}

func TestCheckAndAwardCatalogFailure(t *testing.T) {
	gw := newMemGateway(reviewBadges()...)
	gw.failCatalog = errBoom
	svc := newTestService(gw)

	_, err := svc.CheckAndAward(context.Background(), "u", store.RequirementFlashcardsReviewed, 10)
	assert.True(t, errors.Is(err, errBoom))
}
