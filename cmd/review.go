package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/app"
	"github.com/abhisek/studyhall/internal/content"
	"github.com/abhisek/studyhall/internal/screens/study"
	"github.com/abhisek/studyhall/internal/spacedrep"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

var reviewCmd = &cobra.Command{
	Use:   "review <deck-file>",
	Short: "Review the due cards of a deck",
	Long: "Review the due cards of a deck (.yaml, .json or .xlsx). Type each " +
		"answer; how fast you answer decides when the card comes back.",
	Args: cobra.ExactArgs(1),
	RunE: withRuntime(true, func(cmd *cobra.Command, args []string, rt *runtime) error {
		ctx := cmd.Context()
		deck, err := content.LoadDeck(args[0])
		if err != nil {
			return err
		}

		queue := deck.ItemIDs()
		if all, _ := cmd.Flags().GetBool("all"); !all {
			if queue, err = rt.reviews.Due(ctx, rt.user, deck, time.Now()); err != nil {
				return fmt.Errorf("load due cards: %w", err)
			}
		}
		if len(queue) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Nothing due in %q. Come back tomorrow!\n", deck.Title)
			return nil
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(queue) > limit {
			queue = queue[:limit]
		}

		sum, err := rt.prog.Summary(ctx, rt.user)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		return app.RunReview(ctx, study.Options{
			Reviewer: rt.reviews,
			UserID:   rt.user,
			Deck:     deck,
			Queue:    queue,
			Status:   layout.Status{Level: sum.Account.Level, Streak: sum.Streak.CurrentStreak},
		})
	}),
}

var deckCmd = &cobra.Command{
	Use:   "deck <deck-file>",
	Short: "Show the review status of every card in a deck",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(false, func(cmd *cobra.Command, args []string, rt *runtime) error {
		deck, err := content.LoadDeck(args[0])
		if err != nil {
			return err
		}
		st, err := rt.reviews.Statuses(cmd.Context(), rt.user, deck)
		if err != nil {
			return fmt.Errorf("load review progress: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s  (group %s)\n\n", deck.Title, st.GroupKey)
		fmt.Fprintf(out, "%-10s  %-9s  %-12s  %s\n", "ID", "Status", "Next review", "Front")
		for _, c := range deck.Cards {
			next := "-"
			if rs := st.States[c.ID]; rs != nil {
				next = rs.NextReviewAt.Format("2006-01-02")
			}
			fmt.Fprintf(out, "%-10s  %-9s  %-12s  %s\n", c.ID, st.Items[c.ID], next, c.Front)
		}
		fmt.Fprintln(out)
		for _, s := range []spacedrep.Status{spacedrep.StatusNew, spacedrep.StatusLearning, spacedrep.StatusReview, spacedrep.StatusMastered} {
			fmt.Fprintf(out, "%s: %d  ", s, st.Counts[s])
		}
		fmt.Fprintln(out)
		return nil
	}),
}

func init() {
	reviewCmd.Flags().Bool("all", false, "Review every card, not only the due ones")
	reviewCmd.Flags().Int("limit", 0, "Review at most this many cards (0 = no limit)")
}
