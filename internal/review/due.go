package review

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/studyhall/internal/content"
	"github.com/abhisek/studyhall/internal/spacedrep"
)

// Due returns the ids of the deck's cards that are due on now's calendar
// day, in deck order. Cards never reviewed are always due.
func (s *Service) Due(ctx context.Context, userID string, deck content.Deck, now time.Time) ([]string, error) {
	progress, err := s.progress(ctx, userID, deck)
	if err != nil {
		return nil, err
	}
	return spacedrep.DueItems(deck.ItemIDs(), progress, s.today(now)), nil
}

// DeckStatus summarizes a user's standing on one deck.
type DeckStatus struct {
	GroupKey string                            `json:"group_key"`
	Items    map[string]spacedrep.Status       `json:"items"`
	Counts   map[spacedrep.Status]int          `json:"counts"`
	States   map[string]*spacedrep.ReviewState `json:"-"`
}

// Statuses classifies every card in the deck.
func (s *Service) Statuses(ctx context.Context, userID string, deck content.Deck) (DeckStatus, error) {
	progress, err := s.progress(ctx, userID, deck)
	if err != nil {
		return DeckStatus{}, err
	}
	ids := deck.ItemIDs()
	items := make(map[string]spacedrep.Status, len(ids))
	for _, id := range ids {
		items[id] = spacedrep.StatusOf(progress[id])
	}
	return DeckStatus{
		GroupKey: deck.GroupKey(),
		Items:    items,
		Counts:   spacedrep.StatusCounts(ids, progress),
		States:   progress,
	}, nil
}

func (s *Service) progress(ctx context.Context, userID string, deck content.Deck) (map[string]*spacedrep.ReviewState, error) {
	rows, err := s.st.GetReviewProgress(ctx, userID, deck.GroupKey())
	if err != nil {
		return nil, fmt.Errorf("load review progress: %w", err)
	}
	out := make(map[string]*spacedrep.ReviewState, len(rows))
	for id, p := range rows {
		out[id] = toState(p)
	}
	return out, nil
}
