// Package study is the interactive review screen: it shows each due card,
// times the typed answer and submits it for scheduling.
package study

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/content"
	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/review"
	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/summary"
	"github.com/abhisek/studyhall/internal/ui/components"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

// Reviewer submits timed answers.
type Reviewer interface {
	SubmitTimed(ctx context.Context, ts review.TimedSubmission) (review.Outcome, error)
}

// Options configures a review run.
type Options struct {
	Reviewer Reviewer
	UserID   string
	Deck     content.Deck
	// Queue lists the ids of the cards to ask, in order. Unknown ids are
	// skipped.
	Queue  []string
	Status layout.Status
	// Now defaults to time.Now.
	Now func() time.Time
}

type phase int

const (
	phaseQuestion phase = iota
	phaseSaving
	phaseFeedback
)

// answer is the last answered card and what came of it.
type answer struct {
	card    content.Card
	given   string
	correct bool
	outcome review.Outcome
	err     error
}

// Screen runs through the queued cards.
type Screen struct {
	ctx      context.Context
	opts     Options
	groupKey string
	cards    []content.Card
	idx      int
	phase    phase
	input    components.AnswerInput
	shownAt  time.Time
	started  time.Time
	last     *answer
	results  summary.Results
	status   layout.Status
}

var _ screen.Screen = (*Screen)(nil)

// New creates the review screen. ctx bounds every submission.
func New(ctx context.Context, opts Options) *Screen {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Screen{
		ctx:      ctx,
		opts:     opts,
		groupKey: opts.Deck.GroupKey(),
		input:    components.NewAnswerInput("type the answer", 200),
		status:   opts.Status,
		results:  summary.Results{DeckTitle: opts.Deck.Title},
	}
	for _, id := range opts.Queue {
		if c, ok := opts.Deck.Card(id); ok {
			s.cards = append(s.cards, c)
		}
	}
	s.started = opts.Now()
	s.shownAt = s.started
	return s
}

func (s *Screen) Init() tea.Cmd {
	if len(s.cards) == 0 {
		return s.finish()
	}
	return s.input.Model.Focus()
}

func (s *Screen) Title() string {
	if s.opts.Deck.Title != "" {
		return s.opts.Deck.Title
	}
	return "Review"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseFeedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next card"},
			{Key: "Esc", Description: "Finish"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Finish"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case answerSavedMsg:
		return s, s.handleSaved(msg)
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	if s.phase == phaseQuestion {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "esc" && s.phase != phaseSaving {
		return s.finish()
	}

	switch s.phase {
	case phaseQuestion:
		if key == "enter" {
			return s.submit()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	case phaseFeedback:
		if key == "enter" || key == "space" || key == " " {
			return s.next()
		}
	}
	return nil
}

func (s *Screen) submit() tea.Cmd {
	card := s.cards[s.idx]
	given := s.input.Value()
	now := s.opts.Now()
	correct := content.Normalize(given) == content.Normalize(card.Back)

	s.input.Mark(correct)
	s.phase = phaseSaving
	s.last = &answer{card: card, given: given, correct: correct}

	sub := review.TimedSubmission{
		UserID:     s.opts.UserID,
		GroupKey:   s.groupKey,
		ItemID:     card.ID,
		ResponseMs: now.Sub(s.shownAt).Milliseconds(),
		Correct:    correct,
		At:         now,
	}
	ctx, reviewer := s.ctx, s.opts.Reviewer
	return func() tea.Msg {
		out, err := reviewer.SubmitTimed(ctx, sub)
		return answerSavedMsg{Outcome: out, Err: err}
	}
}

func (s *Screen) handleSaved(msg answerSavedMsg) tea.Cmd {
	if s.phase != phaseSaving || s.last == nil {
		return nil
	}
	s.phase = phaseFeedback
	s.last.outcome = msg.Outcome
	s.last.err = msg.Err

	s.results.Answered++
	if s.last.correct {
		s.results.Correct++
	}
	if msg.Err != nil || !msg.Outcome.ProgressSaved {
		s.results.Unsaved++
	}
	if msg.Err != nil {
		return nil
	}
	s.results.XP += msg.Outcome.XP
	s.results.Events = append(s.results.Events, msg.Outcome.Events...)

	changed := false
	for _, e := range msg.Outcome.Events {
		switch e.Kind {
		case progression.EventLevelUp:
			s.status.Level = e.Level
			changed = true
		case progression.EventStreakBonus:
			s.status.Streak = e.Streak
			changed = true
		}
	}
	if !changed {
		return nil
	}
	st := s.status
	return func() tea.Msg { return screen.StatusMsg(st) }
}

func (s *Screen) next() tea.Cmd {
	s.idx++
	if s.idx >= len(s.cards) {
		return s.finish()
	}
	s.input.Reset()
	s.phase = phaseQuestion
	s.shownAt = s.opts.Now()
	return nil
}

func (s *Screen) finish() tea.Cmd {
	r := s.results
	r.Duration = s.opts.Now().Sub(s.started)
	return func() tea.Msg {
		return screen.SwitchMsg{Screen: summary.New(r)}
	}
}
