package app

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/LiteracyBridge/utilities-sub000/internal/ui/theme"
	collectionsview "github.com/LiteracyBridge/utilities-sub000/internal/ui/views/collections"
)

type keyMap struct {
	Reload key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Reload, k.Help, k.Quit},
		{
			key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
			key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "select")),
		},
	}
}

// Model is the root of the collections browser.
type Model struct {
	collections collectionsview.Model
	keys        keyMap
	help        help.Model
	source      string
	width       int
	height      int
}

// NewModel builds the browser; source names the projection shown in the
// status bar.
func NewModel(source string, port collectionsview.CollectionsPort) Model {
	h := help.New()
	h.Styles.ShortKey = theme.Muted
	h.Styles.ShortDesc = theme.Muted
	return Model{
		collections: collectionsview.New(port),
		keys:        defaultKeys(),
		help:        h,
		source:      source,
	}
}

func (m Model) Init() tea.Cmd {
	return m.collections.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		var cmd tea.Cmd
		m.collections, cmd = m.collections.Update(tea.WindowSizeMsg{Width: msg.Width - 4, Height: msg.Height - 4})
		return m, cmd

	case tea.KeyMsg:
		if !m.collections.Filtering() {
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, tea.Quit
			case key.Matches(msg, m.keys.Help):
				m.help.ShowAll = !m.help.ShowAll
				return m, nil
			case key.Matches(msg, m.keys.Reload):
				return m, m.collections.Reload()
			}
		}
	}

	var cmd tea.Cmd
	m.collections, cmd = m.collections.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	status := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.Title.Render("tbstats "),
		theme.Muted.Render(m.source+"  "),
		m.help.View(m.keys),
	)
	return theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, m.collections.View(), status))
}
