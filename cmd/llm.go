package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/llm"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the AI provider setup and recorded requests",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent AI requests",
	RunE: withRuntime(false, func(cmd *cobra.Command, args []string, rt *runtime) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		reqs, err := rt.store.ListLLMRequests(cmd.Context(), purpose, limit)
		if err != nil {
			return fmt.Errorf("query requests: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(reqs) == 0 {
			fmt.Fprintln(out, "No AI requests recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-5s  %-19s  %-16s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(out, strings.Repeat("─", 102))
		for _, r := range reqs {
			ok := "✓"
			if !r.Success {
				ok = "✗ " + r.ErrorMessage
			}
			model := r.Model
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-16s  %-28s  %-6d  %-6d  %-7d  %s\n",
				r.ID,
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.Purpose,
				model,
				r.InputTokens,
				r.OutputTokens,
				r.LatencyMs,
				ok,
			)
		}
		return nil
	}),
}

var llmConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show which AI provider and model would be used",
	RunE: withRuntime(false, func(cmd *cobra.Command, args []string, rt *runtime) error {
		out := cmd.OutOrStdout()
		cfg := rt.cfg.LLM
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(out, "AI provider not configured:", err)
			return nil
		}
		model := ""
		switch cfg.Provider {
		case llm.ProviderAnthropic:
			model = cfg.Anthropic.Model
		case llm.ProviderOpenAI:
			model = cfg.OpenAI.Model
		case llm.ProviderGemini:
			model = cfg.Gemini.Model
		case llm.ProviderOpenRouter:
			model = cfg.OpenRouter.Model
		}
		fmt.Fprintf(out, "Provider: %s\nModel:    %s\nTimeout:  %s\nAttempts: %d\n",
			cfg.Provider, model, cfg.Timeout, cfg.Retry.MaxAttempts)
		return nil
	}),
}

func init() {
	llmListCmd.Flags().Int("limit", 20, "Maximum number of requests to show")
	llmListCmd.Flags().String("purpose", "", "Only show requests with this purpose")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmConfigCmd)
}
