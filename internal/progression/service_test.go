package progression

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/lock"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestServiceAgainstSQLite(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	require.NoError(t, st.SeedCatalog(ctx, DefaultCatalog()))

	svc := NewService(st, lock.NewLocal(), logger.Nop(), DefaultConfig())

	for _, n := range []int{1, 2, 3} {
		_, err := svc.RecordActivity(ctx, "u", day(2025, 9, n))
		require.NoError(t, err)
	}
	// Bonuses 10 + 15, plus the streak-3 badge reward of 15.
	sum, err := svc.Summary(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 40, sum.Account.TotalXP)
	assert.Equal(t, 3, sum.Streak.CurrentStreak)
	require.Len(t, sum.Badges, 1)
	assert.Equal(t, "streak-3", sum.Badges[0].BadgeID)

	res, err := svc.Award(ctx, "u", 60, SourceQuiz, "quiz")
	require.NoError(t, err)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 2, res.Level)
	assert.Contains(t, eventKinds(res.Events), EventBadgeEarned)

	// Running the same check again grants nothing new.
	br, err := svc.CheckAndAward(ctx, "u", store.RequirementStreakDays, 3)
	require.NoError(t, err)
	assert.Empty(t, br.Earned)

	txs, err := st.ListTransactions(ctx, "u", 0)
	require.NoError(t, err)
	assert.Len(t, txs, 4)
	assert.Equal(t, "quiz", txs[0].Source)
}

func TestServiceUsersIndependent(t *testing.T) {
	gw := newMemGateway()
	svc := newTestService(gw)
	ctx := context.Background()

	var wg sync.WaitGroup
	for u := 0; u < 5; u++ {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(user string) {
				defer wg.Done()
				_, err := svc.Award(ctx, user, 7, SourceManual, "")
				assert.NoError(t, err)
			}(fmt.Sprintf("user-%d", u))
		}
	}
	wg.Wait()
	for u := 0; u < 5; u++ {
		assert.Equal(t, 70, gw.account(fmt.Sprintf("user-%d", u)).TotalXP)
	}
}
