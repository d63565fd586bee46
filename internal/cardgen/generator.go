// Package cardgen drafts flashcard decks with the AI gateway.
package cardgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/studyhall/internal/content"
	"github.com/abhisek/studyhall/internal/llm"
)

// Purpose labels generation calls in the request log.
const Purpose = "card-generation"

// MaxCount bounds the number of cards requested in one call.
const MaxCount = 50

var (
	ErrEmptyTopic   = errors.New("topic is required")
	ErrInvalidCount = fmt.Errorf("count must be between 1 and %d", MaxCount)
)

// Request describes the deck to draft.
type Request struct {
	Topic string
	Notes string
	Count int

	// Existing cards are listed in the prompt and filtered from the result.
	Existing []content.Card
}

type Config struct {
	MaxTokens   int
	Temperature float64

	// MaxExisting caps how many existing cards are listed in the prompt.
	MaxExisting int
}

func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.4,
		MaxExisting: 100,
	}
}

// Generator drafts decks.
type Generator struct {
	provider llm.Provider
	cfg      Config
}

func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, cfg: cfg}
}

type deckOutput struct {
	Title string `json:"title"`
	Cards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"cards"`
}

// Generate asks the model for req.Count cards. Cards with an empty side or
// whose normalized front repeats an existing or earlier card are dropped.
// Ids continue the "card-N" numbering after the existing cards. The deck
// is titled after the topic when the model gives no title.
func (g *Generator) Generate(ctx context.Context, req Request) (content.Deck, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return content.Deck{}, ErrEmptyTopic
	}
	if req.Count < 1 || req.Count > MaxCount {
		return content.Deck{}, ErrInvalidCount
	}

	resp, err := g.provider.Generate(llm.WithPurpose(ctx, Purpose), llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(req, g.cfg.MaxExisting)}},
		Schema:      DeckSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return content.Deck{}, fmt.Errorf("generate cards: %w", err)
	}

	var out deckOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return content.Deck{}, fmt.Errorf("parse generated cards: %w", err)
	}

	seen := make(map[string]bool, len(req.Existing)+len(out.Cards))
	for _, c := range req.Existing {
		seen[content.Normalize(c.Front)] = true
	}
	deck := content.Deck{Title: strings.TrimSpace(out.Title)}
	if deck.Title == "" {
		deck.Title = req.Topic
	}
	for _, c := range out.Cards {
		front, back := strings.TrimSpace(c.Front), strings.TrimSpace(c.Back)
		key := content.Normalize(front)
		if front == "" || back == "" || seen[key] {
			continue
		}
		seen[key] = true
		deck.Cards = append(deck.Cards, content.Card{Front: front, Back: back})
	}
	if len(deck.Cards) > req.Count {
		deck.Cards = deck.Cards[:req.Count]
	}

	assignIDs(deck.Cards, req.Existing)
	if err := deck.Validate(); err != nil {
		return content.Deck{}, fmt.Errorf("generated deck: %w", err)
	}
	return deck, nil
}

func assignIDs(cards, existing []content.Card) {
	taken := make(map[string]bool, len(existing))
	for _, c := range existing {
		taken[c.ID] = true
	}
	n := len(existing)
	for i := range cards {
		for {
			n++
			id := fmt.Sprintf("card-%d", n)
			if !taken[id] {
				cards[i].ID = id
				break
			}
		}
	}
}
