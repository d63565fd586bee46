package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

// StatsCard renders a learner's progression for the stats command.
type StatsCard struct {
	Summary progression.Summary
	Reviews int
	Width   int
}

func (c StatsCard) View() string {
	s := c.Summary
	width := max(c.Width, 40)

	var b strings.Builder
	b.WriteString(theme.Title.Render(s.Account.UserID))
	b.WriteString("\n\n")
	b.WriteString(XPBar(s.Progress, width-12).View())
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Total XP", fmt.Sprint(s.Account.TotalXP)},
		{"Current streak", fmt.Sprintf("%d day(s)", s.Streak.CurrentStreak)},
		{"Longest streak", fmt.Sprintf("%d day(s)", s.Streak.LongestStreak)},
		{"Cards reviewed", fmt.Sprint(c.Reviews)},
		{"Badges", fmt.Sprint(len(s.Badges))},
	}
	if s.Streak.LastActivityDate != nil {
		rows = append(rows, [2]string{"Last active", s.Streak.LastActivityDate.Format("2006-01-02")})
	}
	for _, r := range rows {
		b.WriteString(theme.Subtitle.Width(16).Render(r[0]))
		b.WriteString(theme.Body.Render(r[1]))
		b.WriteString("\n")
	}

	return theme.Card.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// BadgeList renders the catalog, marking the badges in earned.
type BadgeList struct {
	Catalog []store.BadgeDefinition
	Earned  []store.EarnedBadge
}

func (l BadgeList) View() string {
	earned := make(map[string]store.EarnedBadge, len(l.Earned))
	for _, e := range l.Earned {
		earned[e.BadgeID] = e
	}

	var b strings.Builder
	category := ""
	for _, def := range l.Catalog {
		if def.Category != category {
			if category != "" {
				b.WriteString("\n")
			}
			category = def.Category
			b.WriteString(theme.Title.Render(strings.ToUpper(category)))
			b.WriteString("\n")
		}

		name := fmt.Sprintf("%s %s", def.Icon, def.Name)
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(26).Render(name),
			theme.Subtitle.Render(def.Description))
		if e, ok := earned[def.ID]; ok {
			b.WriteString(theme.Correct.Render("✓ "))
			b.WriteString(line)
			b.WriteString(theme.Subtitle.Render("  earned " + e.EarnedAt.Format("2006-01-02")))
		} else {
			b.WriteString("  ")
			b.WriteString(theme.Hint.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
