package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyhall/internal/screens/summary"
	"github.com/abhisek/studyhall/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	if len(s.cards) == 0 || s.idx >= len(s.cards) {
		return ""
	}
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}
	cardWidth := min(width-8, 70)

	var b strings.Builder
	b.WriteString(center(theme.Subtitle.Render(
		fmt.Sprintf("Card %d of %d", s.idx+1, len(s.cards)))))
	b.WriteString("\n\n")

	card := s.cards[s.idx]
	b.WriteString(center(theme.Card.Width(cardWidth).Render(theme.Body.Bold(true).Render(card.Front))))
	b.WriteString("\n\n")
	b.WriteString(center(s.input.View()))
	b.WriteString("\n\n")

	switch s.phase {
	case phaseSaving:
		b.WriteString(center(theme.Hint.Render("saving...")))
	case phaseFeedback:
		b.WriteString(s.feedbackView(center))
	}
	return b.String()
}

func (s *Screen) feedbackView(center func(string) string) string {
	a := s.last
	if a == nil {
		return ""
	}

	var b strings.Builder
	if a.correct {
		b.WriteString(center(theme.Correct.Render("Correct!")))
	} else {
		b.WriteString(center(theme.Incorrect.Render("Not quite. Answer: " + a.card.Back)))
	}
	b.WriteString("\n")

	if a.err != nil {
		b.WriteString(center(theme.Warn.Render("Could not record this answer: " + a.err.Error())))
		b.WriteString("\n")
		return b.String()
	}

	out := a.outcome
	if out.Scheduled {
		next := "tomorrow"
		if d := out.State.IntervalDays; d > 1 {
			next = fmt.Sprintf("in %d days", d)
		}
		b.WriteString(center(theme.Subtitle.Render(fmt.Sprintf("Next review %s  (%s)", next, out.Status))))
		b.WriteString("\n")
	}
	if out.XP > 0 {
		b.WriteString(center(theme.Celebrate.Render(fmt.Sprintf("+%d XP", out.XP))))
		b.WriteString("\n")
	}
	for _, line := range summary.EventLines(out.Events) {
		b.WriteString(center(theme.Celebrate.Render(line)))
		b.WriteString("\n")
	}
	if out.Warning != "" {
		b.WriteString(center(theme.Warn.Render(out.Warning)))
		b.WriteString("\n")
	}
	return b.String()
}
