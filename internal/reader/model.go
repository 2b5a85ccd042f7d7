package reader

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Aryan-Shakya/FlowRead/internal/logger"
	"github.com/Aryan-Shakya/FlowRead/internal/model"
	"github.com/Aryan-Shakya/FlowRead/internal/playback"
	"github.com/Aryan-Shakya/FlowRead/internal/render"
)

// Notifier raises a desktop notification when a document is finished.
type Notifier interface {
	Notify(title, body string) error
}

// Model implements the Bubble Tea reading UI. Key presses drive the
// playback controller directly; paced advancement arrives as
// PlaybackMsg/CompletedMsg through a Relay.
type Model struct {
	log      *logger.Logger
	doc      model.Document
	ctrl     *playback.Controller
	colors   render.Colors
	theme    render.Theme
	notifier Notifier

	keys keyMap
	help help.Model
	prog progress.Model

	width  int
	height int

	snap   playback.Snapshot
	styles map[string]lipgloss.Style
}

var (
	railStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

// NewModel constructs a reader model for one document.
func NewModel(doc model.Document, ctrl *playback.Controller, colors render.Colors, theme render.Theme, notifier Notifier, log *logger.Logger) *Model {
	return &Model{
		log:      log,
		doc:      doc,
		ctrl:     ctrl,
		colors:   colors,
		theme:    theme,
		notifier: notifier,
		keys:     defaultKeyMap(),
		help:     help.New(),
		prog:     progress.New(progress.WithGradient(colors.Consonant, colors.Vowel), progress.WithoutPercentage()),
		snap:     ctrl.Snapshot(),
		styles:   map[string]lipgloss.Style{},
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		barWidth := msg.Width / 2
		if barWidth < 10 {
			barWidth = 10
		}
		if barWidth > 60 {
			barWidth = 60
		}
		m.prog.Width = barWidth
		return m, nil
	case PlaybackMsg:
		m.snap = msg.Snapshot
		return m, nil
	case CompletedMsg:
		m.snap = msg.Snapshot
		return m, m.notifyCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.ctrl.TogglePlay()
	case key.Matches(msg, m.keys.Back):
		m.ctrl.SeekBackward()
	case key.Matches(msg, m.keys.Forward):
		m.ctrl.SeekForward()
	case key.Matches(msg, m.keys.Faster):
		m.ctrl.SpeedUp()
	case key.Matches(msg, m.keys.Slower):
		m.ctrl.SlowDown()
	case key.Matches(msg, m.keys.Bookmark):
		m.ctrl.SetBookmark()
	case key.Matches(msg, m.keys.Jump):
		m.ctrl.JumpToBookmark()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.snap = m.ctrl.Snapshot()
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.ctrl.WordCount() == 0 {
		return "document has no words"
	}
	body := m.focusBlock()
	footer := strings.Join([]string{
		m.prog.ViewAs(m.percent()),
		m.statusLine(),
		m.help.View(m.keys),
	}, "\n")
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	bodyHeight := m.height - footerHeight - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	placedBody := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body)
	placedFooter := lipgloss.Place(m.width, footerHeight, lipgloss.Center, lipgloss.Top, footer)
	return placedBody + "\n" + placedFooter
}

// focusBlock renders the flashed word between two rails sized to the
// word so the eye stays anchored while words change width.
func (m *Model) focusBlock() string {
	word, ok := m.ctrl.WordAt(m.snap.Index)
	if !ok {
		return ""
	}
	var b strings.Builder
	for _, span := range render.Map(word, m.colors, m.theme) {
		b.WriteString(m.styleFor(span.Color).Render(string(span.Char)))
	}
	railWidth := runewidth.StringWidth(word.Text)
	if railWidth < 1 {
		railWidth = 1
	}
	rail := railStyle.Render(strings.Repeat("─", railWidth))
	block := rail + "\n" + b.String() + "\n" + rail
	if m.snap.Completed {
		block += "\n\n" + noticeStyle.Render("finished · q to exit")
	}
	return block
}

func (m *Model) statusLine() string {
	state := "paused"
	switch {
	case m.snap.Completed:
		state = "done"
	case m.snap.Playing:
		state = "reading"
	}
	segments := []string{
		m.doc.Title,
		fmt.Sprintf("word %d/%d", m.snap.Index+1, m.ctrl.WordCount()),
		fmt.Sprintf("%d wpm", m.snap.WPM),
		state,
	}
	if m.snap.Bookmark >= 0 {
		segments = append(segments, fmt.Sprintf("bookmark %d", m.snap.Bookmark+1))
	}
	return footerStyle.Render(strings.Join(segments, " · "))
}

func (m *Model) percent() float64 {
	total := m.ctrl.WordCount()
	if total == 0 {
		return 0
	}
	return float64(m.snap.Index+1) / float64(total)
}

func (m *Model) styleFor(color string) lipgloss.Style {
	style, ok := m.styles[color]
	if !ok {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
		m.styles[color] = style
	}
	return style
}

func (m *Model) notifyCmd() tea.Cmd {
	if m.notifier == nil {
		return nil
	}
	title := m.doc.Title
	return func() tea.Msg {
		if err := m.notifier.Notify("FlowRead", fmt.Sprintf("Finished reading %q", title)); err != nil {
			m.log.Warnf("completion notification failed: %v", err)
		}
		return nil
	}
}
