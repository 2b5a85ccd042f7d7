// Package picker provides the Bubble Tea document picker shown when
// flowread starts without a document argument.
package picker

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aryan-Shakya/FlowRead/internal/model"
)

var frameStyle = lipgloss.NewStyle().Margin(1, 2)

type docItem struct {
	progress model.DocumentProgress
}

// Title implements list.DefaultItem.
func (d docItem) Title() string {
	return d.progress.Document.Title
}

// Description implements list.DefaultItem.
func (d docItem) Description() string {
	p := d.progress
	switch {
	case p.Completed:
		return fmt.Sprintf("%d words · finished", p.Document.WordCount)
	case p.TimeMs == 0 && p.Position == 0:
		return fmt.Sprintf("%d words · not started", p.Document.WordCount)
	default:
		return fmt.Sprintf("%d words · %d%% read · %d wpm", p.Document.WordCount, readPercent(p), p.SpeedWPM)
	}
}

// FilterValue implements list.Item.
func (d docItem) FilterValue() string {
	return d.progress.Document.Title
}

func readPercent(p model.DocumentProgress) int {
	total := p.Document.WordCount
	if total < 1 {
		return 0
	}
	return (p.Position + 1) * 100 / total
}

type keyMap struct {
	Choose key.Binding
	Quit   key.Binding
}

// Model implements the Bubble Tea document picker.
type Model struct {
	list   list.Model
	keys   keyMap
	choice *model.Document
}

// NewModel constructs a picker over the library, newest first.
func NewModel(progress []model.DocumentProgress) *Model {
	items := make([]list.Item, 0, len(progress))
	for _, p := range progress {
		items = append(items, docItem{progress: p})
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "flowread library"
	l.SetShowStatusBar(false)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read"))}
	}
	return &Model{
		list: l,
		keys: keyMap{
			Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
	}
}

// Choice returns the selected document once the program has finished.
func (m *Model) Choice() (model.Document, bool) {
	if m.choice == nil {
		return model.Document{}, false
	}
	return *m.choice, true
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := frameStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
		return m, nil
	case tea.KeyMsg:
		// While the filter input owns the keyboard, every key belongs
		// to the list.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Choose):
			if item, ok := m.list.SelectedItem().(docItem); ok {
				doc := item.progress.Document
				m.choice = &doc
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	return frameStyle.Render(m.list.View())
}
