// Package summary is the end-of-session screen of a review run.
package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/ui/layout"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

// Results is the tally of one review run.
type Results struct {
	DeckTitle string
	Answered  int
	Correct   int
	XP        int
	// Unsaved counts answers whose progress could not be recorded.
	Unsaved  int
	Events   []progression.Event
	Duration time.Duration
}

// Accuracy returns the share of correct answers in [0, 1].
func (r Results) Accuracy() float64 {
	if r.Answered == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Answered)
}

// Screen displays Results.
type Screen struct {
	results Results
}

var _ screen.Screen = (*Screen)(nil)

func New(r Results) *Screen {
	return &Screen{results: r}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "Session Summary"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Done"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	r := s.results
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString(center(theme.Title.Render("Session complete")))
	b.WriteString("\n")
	if r.DeckTitle != "" {
		b.WriteString(center(theme.Subtitle.Render(r.DeckTitle)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	mins := int(r.Duration.Minutes())
	secs := int(r.Duration.Seconds()) % 60
	b.WriteString(center(theme.Body.Render(fmt.Sprintf(
		"Cards: %d    Correct: %d    Accuracy: %.0f%%    Time: %d:%02d",
		r.Answered, r.Correct, r.Accuracy()*100, mins, secs))))
	b.WriteString("\n\n")
	b.WriteString(center(theme.Celebrate.Render(fmt.Sprintf("+%d XP", r.XP))))
	b.WriteString("\n")

	if lines := EventLines(r.Events); len(lines) > 0 {
		b.WriteString("\n")
		for _, l := range lines {
			b.WriteString(center(theme.Celebrate.Render(l)))
			b.WriteString("\n")
		}
	}

	if r.Unsaved > 0 {
		b.WriteString("\n")
		b.WriteString(center(theme.Warn.Render(fmt.Sprintf(
			"Progress for %d answer(s) was not saved.", r.Unsaved))))
		b.WriteString("\n")
	}
	return b.String()
}

// EventLines renders progression events as one line each.
func EventLines(events []progression.Event) []string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		switch e.Kind {
		case progression.EventLevelUp:
			lines = append(lines, fmt.Sprintf("Level up! You reached level %d", e.Level))
		case progression.EventBadgeEarned:
			if e.Badge == nil {
				continue
			}
			line := fmt.Sprintf("%s Badge earned: %s", e.Badge.Icon, e.Badge.Name)
			if e.XP > 0 {
				line += fmt.Sprintf(" (+%d XP)", e.XP)
			}
			lines = append(lines, line)
		case progression.EventStreakBonus:
			lines = append(lines, fmt.Sprintf("%d day streak! +%d XP", e.Streak, e.XP))
		}
	}
	return lines
}
