// Package app hosts the full-screen terminal UI.
package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyhall/internal/screen"
	"github.com/abhisek/studyhall/internal/screens/study"
	"github.com/abhisek/studyhall/internal/ui/layout"
)

// Model is the root Bubble Tea model. It frames the active screen with
// the header and footer and swaps screens on request.
type Model struct {
	active screen.Screen
	status layout.Status
	width  int
	height int
}

func newModel(initial screen.Screen, status layout.Status) Model {
	return Model{active: initial, status: status}
}

func (m Model) Init() tea.Cmd {
	return m.active.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case screen.SwitchMsg:
		m.active = msg.Screen
		return m, m.active.Init()

	case screen.StatusMsg:
		m.status = layout.Status(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.active, cmd = m.active.Update(msg)
	return m, cmd
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

func (m Model) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	header := layout.RenderHeader(m.active.Title(), m.status, m.width)
	footer := layout.RenderFooter(m.active.KeyHints(), m.width)
	content := m.active.View(m.width, layout.ContentHeight(header, footer, m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// RunReview runs an interactive review session until the learner quits.
func RunReview(ctx context.Context, opts study.Options) error {
	p := tea.NewProgram(newModel(study.New(ctx, opts), opts.Status), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
