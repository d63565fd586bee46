package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/cardgen"
	"github.com/abhisek/studyhall/internal/content"
	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/progression"
)

// generationXP is granted for each drafted card that is kept.
const generationXP = 1

// newProvider builds the AI provider; tests swap it for a mock.
var newProvider = llm.NewProvider

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Draft flashcards on a topic with an AI provider",
	Long: "Draft flashcards on a topic and save them as a YAML deck. When the " +
		"output deck exists the new cards are appended and existing fronts " +
		"are not repeated. The deck's group key is pinned in the file so " +
		"review progress carries over as the deck grows.",
	Args: cobra.MinimumNArgs(1),
	RunE: withRuntime(false, func(cmd *cobra.Command, args []string, rt *runtime) error {
		ctx := cmd.Context()
		topic := strings.Join(args, " ")
		count, _ := cmd.Flags().GetInt("count")
		notes, _ := cmd.Flags().GetString("notes")
		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" {
			outPath = slug(topic) + ".yaml"
		}

		existing, err := loadExisting(outPath)
		if err != nil {
			return err
		}

		provider, err := newProvider(ctx, rt.cfg.LLM, rt.store, rt.log)
		if err != nil {
			return fmt.Errorf("AI provider not configured: %w", err)
		}
		gen := cardgen.New(provider, cardgen.DefaultConfig())

		drafted, err := gen.Generate(ctx, cardgen.Request{
			Topic:    topic,
			Notes:    notes,
			Count:    count,
			Existing: existing.Cards,
		})
		if err != nil {
			return err
		}

		deck := existing
		if deck.Title == "" {
			deck.Title = drafted.Title
		}
		// Pin before appending: progress for the existing cards is stored
		// under the key their fronts hash to.
		deck.PinGroup()
		deck.Cards = append(deck.Cards, drafted.Cards...)
		deck.PinGroup()
		if err := content.SaveDeck(outPath, deck); err != nil {
			return fmt.Errorf("save deck: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added %d card(s) to %s (%d total)\n", len(drafted.Cards), outPath, len(deck.Cards))
		for _, c := range drafted.Cards {
			fmt.Fprintf(out, "  %-10s %s -> %s\n", c.ID, c.Front, c.Back)
		}

		// Drafting counts as study activity. A failure here does not undo
		// the saved deck.
		if act, err := rt.prog.RecordActivity(ctx, rt.user, time.Now()); err != nil {
			rt.log.Warn("record activity failed", "error", err)
		} else {
			printEvents(out, act.Events)
		}
		desc := fmt.Sprintf("generated %d card(s): %s", len(drafted.Cards), topic)
		if res, err := rt.prog.Award(ctx, rt.user, generationXP*len(drafted.Cards), progression.SourceGeneration, desc); err != nil {
			rt.log.Warn("award generation xp failed", "error", err)
		} else {
			printEvents(out, res.Events)
		}
		return nil
	}),
}

// loadExisting returns the deck at path, or an empty deck when there is
// none yet.
func loadExisting(path string) (content.Deck, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return content.Deck{}, nil
	}
	deck, err := content.LoadDeck(path)
	if err != nil {
		return content.Deck{}, fmt.Errorf("load existing deck: %w", err)
	}
	return deck, nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		out = "deck"
	}
	return out
}

func init() {
	generateCmd.Flags().Int("count", 10, fmt.Sprintf("Number of cards to draft (1-%d)", cardgen.MaxCount))
	generateCmd.Flags().String("notes", "", "Extra guidance for the drafted cards")
	generateCmd.Flags().StringP("out", "o", "", "Deck file to write or extend (default <topic>.yaml)")
}
