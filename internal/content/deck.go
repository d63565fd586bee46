// Package content holds the learning material the scheduler works over:
// cards, decks, and the fingerprint that scopes review progress to a deck.
package content

import (
	"errors"
	"fmt"
	"strings"
)

// Card is a single front/back learning item.
type Card struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Front string `json:"front" yaml:"front"`
	Back  string `json:"back" yaml:"back"`
}

// Deck is an ordered batch of cards reviewed together.
type Deck struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Group pins the deck's group key. Decks that grow over time set it
	// so that adding cards keeps the progress stored for the old ones.
	Group string `json:"group,omitempty" yaml:"group,omitempty"`
	Cards []Card `json:"cards" yaml:"cards"`
}

var (
	ErrEmptyDeck   = errors.New("deck has no cards")
	ErrEmptyFront  = errors.New("card has empty front")
	ErrDuplicateID = errors.New("duplicate card id")
)

// Validate checks that the deck has cards, every card has a front, and ids
// are unique.
func (d *Deck) Validate() error {
	if len(d.Cards) == 0 {
		return ErrEmptyDeck
	}
	seen := make(map[string]bool, len(d.Cards))
	for i, c := range d.Cards {
		if strings.TrimSpace(c.Front) == "" {
			return fmt.Errorf("card %d: %w", i+1, ErrEmptyFront)
		}
		if seen[c.ID] {
			return fmt.Errorf("card %d: %w: %q", i+1, ErrDuplicateID, c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// FillIDs gives every card without an id one derived from its position.
func (d *Deck) FillIDs() {
	for i := range d.Cards {
		if strings.TrimSpace(d.Cards[i].ID) == "" {
			d.Cards[i].ID = fmt.Sprintf("card-%d", i+1)
		}
	}
}

// ItemIDs returns the card ids in deck order.
func (d *Deck) ItemIDs() []string {
	ids := make([]string, len(d.Cards))
	for i, c := range d.Cards {
		ids[i] = c.ID
	}
	return ids
}

// Card returns the card with the given id.
func (d *Deck) Card(id string) (Card, bool) {
	for _, c := range d.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// GroupKey is the deck's pinned Group, or the content group key of its
// cards when none is pinned. See GroupKey.
func (d *Deck) GroupKey() string {
	if g := strings.TrimSpace(d.Group); g != "" {
		return g
	}
	return GroupKey(d.Cards)
}

// PinGroup fixes the deck's current group key in Group, so later edits to
// its cards do not move it. It is a no-op once a group is pinned.
func (d *Deck) PinGroup() {
	if strings.TrimSpace(d.Group) == "" && len(d.Cards) > 0 {
		d.Group = GroupKey(d.Cards)
	}
}
