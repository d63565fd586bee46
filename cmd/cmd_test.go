package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyhall/internal/content"
	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/logger"
	"github.com/abhisek/studyhall/internal/store"
)

// run executes the root command against a fresh database in dir.
func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--db", filepath.Join(dir, "test.db"), "--user", "ana"}, args...))
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir) // keep a stray .env out of the way
	for _, k := range []string{"STUDYHALL_DB", "STUDYHALL_DB_DRIVER", "STUDYHALL_LOCK", "STUDYHALL_LLM_PROVIDER"} {
		t.Setenv(k, "")
	}
	t.Setenv("STUDYHALL_LOG_MODE", "prod")
	return dir
}

func TestVersion(t *testing.T) {
	dir := isolateEnv(t)
	assert.Contains(t, run(t, dir, "version"), "studyhall (devel)")
}

func TestVisitAwardStats(t *testing.T) {
	dir := isolateEnv(t)

	assert.Contains(t, run(t, dir, "visit"), "Streak: 1 day(s)")
	assert.Contains(t, run(t, dir, "visit"), "Already counted today")

	out := run(t, dir, "award", "120", "--source", "quiz", "--description", "test")
	assert.Contains(t, out, "XP: 0 -> 120")
	assert.Contains(t, out, "Level up!")

	stats := run(t, dir, "stats")
	assert.Contains(t, stats, "ana")
	assert.Contains(t, stats, "Total XP")

	assert.Contains(t, run(t, dir, "badges"), "earned")
}

func TestAwardRejectsBadInput(t *testing.T) {
	dir := isolateEnv(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	rootCmd.SetArgs([]string{"--db", filepath.Join(dir, "test.db"), "award", "ten"})
	assert.Error(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"--db", filepath.Join(dir, "test.db"), "award", "5", "--source", "bogus"})
	assert.Error(t, rootCmd.Execute())
	awardCmd.Flags().Set("source", "manual")
}

func TestDeckStatus(t *testing.T) {
	dir := isolateEnv(t)
	deck := filepath.Join(dir, "spanish.yaml")
	require.NoError(t, os.WriteFile(deck, []byte(`title: Spanish
cards:
  - front: Hola
    back: Hello
  - front: Adiós
    back: Goodbye
`), 0o644))

	out := run(t, dir, "deck", deck)
	assert.Contains(t, out, "Spanish")
	assert.Contains(t, out, "card-1")
	assert.Contains(t, out, "new: 2")
}

func TestLLMCommands(t *testing.T) {
	dir := isolateEnv(t)
	assert.Contains(t, run(t, dir, "llm", "list"), "No AI requests recorded.")

	t.Setenv("STUDYHALL_LLM_PROVIDER", "mock")
	assert.Contains(t, run(t, dir, "llm", "config"), "Provider: mock")
}

func TestGenerateKeepsProgressOfExistingCards(t *testing.T) {
	dir := isolateEnv(t)
	deckPath := filepath.Join(dir, "spanish.yaml")
	require.NoError(t, os.WriteFile(deckPath, []byte(`title: Spanish
cards:
  - front: Hola
    back: Hello
  - front: Adiós
    back: Goodbye
`), 0o644))
	deck, err := content.LoadDeck(deckPath)
	require.NoError(t, err)

	// card-1 was reviewed before the deck grew.
	st, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	_, err = st.UpsertReviewProgress(context.Background(), store.ReviewProgress{
		UserID: "ana", GroupKey: deck.GroupKey(), ItemID: "card-1",
		EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2,
		NextReviewAt: time.Now().AddDate(0, 0, 6),
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"title":"Spanish","cards":[{"front":"Gracias","back":"Thanks"}]}`),
	})
	orig := newProvider
	newProvider = func(context.Context, llm.Config, store.LLMLog, *logger.Logger) (llm.Provider, error) {
		return mock, nil
	}
	t.Cleanup(func() { newProvider = orig })

	out := run(t, dir, "generate", "spanish", "-o", deckPath)
	assert.Contains(t, out, "Added 1 card(s)")

	grown, err := content.LoadDeck(deckPath)
	require.NoError(t, err)
	require.Len(t, grown.Cards, 3)
	assert.Equal(t, deck.GroupKey(), grown.GroupKey())

	status := run(t, dir, "deck", deckPath)
	assert.Contains(t, status, "new: 2")
	assert.Contains(t, status, "review: 1")
}
