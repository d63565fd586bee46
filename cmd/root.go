package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studyhall",
	Short: "Flashcard review with XP, levels, streaks and badges",
	Long: "studyhall schedules flashcard reviews with spaced repetition and keeps " +
		"learners going with XP, levels, daily streaks and badges.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Database DSN or SQLite file path (overrides STUDYHALL_DB)")
	pf.String("user", "", "Learner id (overrides STUDYHALL_USER)")
	pf.String("env", "", "Env file to load before reading STUDYHALL_* variables")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(deckCmd)
	rootCmd.AddCommand(visitCmd)
	rootCmd.AddCommand(awardCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDSN returns the database DSN using --db (highest priority), then
// STUDYHALL_DB, then the default SQLite path.
func resolveDSN(cmd *cobra.Command, driver, fromEnv string) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	switch {
	case p != "" && driver == store.DriverSQLite:
		return p, store.EnsureDir(p)
	case p != "":
		return p, nil
	case driver == store.DriverPostgres:
		return fromEnv, nil
	}
	return store.DefaultDBPath()
}
