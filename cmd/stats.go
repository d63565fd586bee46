package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/screens/summary"
	"github.com/abhisek/studyhall/internal/ui/components"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show level, XP, streak and badge progress",
	RunE: withRuntime(false, func(cmd *cobra.Command, args []string, rt *runtime) error {
		ctx := cmd.Context()
		sum, err := rt.prog.Summary(ctx, rt.user)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		reviews, err := rt.store.CountReviews(ctx, rt.user)
		if err != nil {
			return fmt.Errorf("count reviews: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), components.StatsCard{Summary: sum, Reviews: reviews, Width: 64}.View())
		return nil
	}),
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List every badge and the ones earned",
	RunE: withRuntime(false, func(cmd *cobra.Command, args []string, rt *runtime) error {
		ctx := cmd.Context()
		catalog, err := rt.prog.Catalog().Get(ctx)
		if err != nil {
			return fmt.Errorf("load badge catalog: %w", err)
		}
		sum, err := rt.prog.Summary(ctx, rt.user)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), components.BadgeList{Catalog: catalog, Earned: sum.Badges}.View())
		return nil
	}),
}

var visitCmd = &cobra.Command{
	Use:   "visit",
	Short: "Record today's activity and update the streak",
	RunE: withRuntime(false, func(cmd *cobra.Command, args []string, rt *runtime) error {
		res, err := rt.prog.RecordActivity(cmd.Context(), rt.user, time.Now())
		if err != nil {
			return fmt.Errorf("record activity: %w", err)
		}
		out := cmd.OutOrStdout()
		if !res.Changed {
			fmt.Fprintf(out, "Already counted today. Streak: %d day(s)\n", res.Streak.CurrentStreak)
		} else {
			fmt.Fprintf(out, "Streak: %d day(s) (longest %d)\n", res.Streak.CurrentStreak, res.Streak.LongestStreak)
		}
		printEvents(out, res.Events)
		return nil
	}),
}

var awardCmd = &cobra.Command{
	Use:   "award <amount>",
	Short: "Grant XP",
	Long: "Grant XP to the learner. Negative amounts deduct XP when " +
		"STUDYHALL_ALLOW_NEGATIVE_XP is set; pass them after --, e.g. award -- -5.",
	Args:  cobra.ExactArgs(1),
	RunE: withRuntime(false, func(cmd *cobra.Command, args []string, rt *runtime) error {
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("amount must be an integer: %q", args[0])
		}
		srcFlag, _ := cmd.Flags().GetString("source")
		src, err := progression.ParseSource(srcFlag)
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetString("description")

		res, err := rt.prog.Award(cmd.Context(), rt.user, amount, src, desc)
		if err != nil {
			return fmt.Errorf("award xp: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "XP: %d -> %d  (level %d)\n", res.PreviousXP, res.TotalXP, res.Level)
		printEvents(out, res.Events)
		return nil
	}),
}

func printEvents(w io.Writer, events []progression.Event) {
	for _, line := range summary.EventLines(events) {
		fmt.Fprintln(w, "  "+line)
	}
}

func init() {
	awardCmd.Flags().String("source", string(progression.SourceManual), "XP source: quiz, flashcard, streak, badge, generation or manual")
	awardCmd.Flags().String("description", "", "Note stored with the transaction")
}
