package cardgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write flashcards for spaced-repetition study.

Rules:
- Each card tests exactly one fact.
- The front is a self-contained question or cue. The back is the shortest complete answer.
- Answers are plain text that a learner can type: no markdown, no lists, no trailing punctuation.
- Do not repeat any card from the "already in the deck" list, even reworded.
- Produce exactly the requested number of cards.`

func buildUserMessage(req Request, maxExisting int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Number of cards: %d\n", req.Count)
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		b.WriteString("\nSource notes:\n")
		b.WriteString(notes)
		b.WriteString("\n")
	}

	b.WriteString("\nAlready in the deck:\n")
	existing := req.Existing
	if maxExisting > 0 && len(existing) > maxExisting {
		existing = existing[len(existing)-maxExisting:]
	}
	if len(existing) == 0 {
		b.WriteString("None")
	}
	for i, c := range existing {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Front)
	}
	return strings.TrimRight(b.String(), "\n")
}
