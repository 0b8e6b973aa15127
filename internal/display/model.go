package display

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GregMSThompson/stocks-snapshot/internal/models"
)

// FrameMsg tells the program a new frame was committed.
type FrameMsg struct{}

// widgetSource is read on every redraw, so the screen always shows the
// committed view regardless of how frame notifications interleave.
type widgetSource interface {
	View() models.WidgetView
	Prices() models.PriceSeries
	ClickSymbol() (models.QuoteClick, bool)
}

// Model is the watch screen. "o" or enter clicks the symbol, q quits.
type Model struct {
	source    widgetSource
	lastClick string
}

func NewModel(source widgetSource) Model {
	return Model{source: source}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "o", "enter":
			if click, ok := m.source.ClickSymbol(); ok {
				m.lastClick = click.URL
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	out := Render(m.source.View(), m.source.Prices()) + "\n"
	if m.lastClick != "" {
		out += mutedStyle.Render("opened "+m.lastClick) + "\n"
	}
	return out + mutedStyle.Render("o: company site  q: quit") + "\n"
}
