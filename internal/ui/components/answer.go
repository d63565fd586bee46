package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/ui/theme"
)

// AnswerInput is the free-text answer box of a review card. After Mark it
// shows whether the answer was right until Reset.
type AnswerInput struct {
	Model  textinput.Model
	marked bool
	right  bool
}

// NewAnswerInput creates a focused answer box. limit caps the answer length;
// 0 means no limit.
func NewAnswerInput(placeholder string, limit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if limit > 0 {
		ti.CharLimit = limit
	}
	return AnswerInput{Model: ti}
}

// Update forwards key input unless the answer has already been marked.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	if a.marked {
		return a, nil
	}
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

func (a AnswerInput) View() string {
	view := a.Model.View()
	if a.marked {
		if a.right {
			view += " " + theme.Correct.Render("✓")
		} else {
			view += " " + theme.Incorrect.Render("✗")
		}
	}
	return view
}

func (a AnswerInput) Value() string {
	return a.Model.Value()
}

// Mark freezes the input and records whether the answer was right.
func (a *AnswerInput) Mark(right bool) {
	a.marked = true
	a.right = right
}

// Reset clears the answer for the next card.
func (a *AnswerInput) Reset() {
	a.Model.Reset()
	a.marked = false
	a.right = false
}
