package collections

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	collecteddto "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/dto"
	"github.com/LiteracyBridge/utilities-sub000/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type CollectionsPort interface {
	ListCollections(ctx context.Context) ([]collecteddto.CollectionOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type CollectionsLoadedMsg struct {
	Collections []collecteddto.CollectionOutput
	Err         error
}

// ─── list item ───────────────────────────────────────────────────────────────

type collectionItem struct {
	collection collecteddto.CollectionOutput
}

func (i collectionItem) Title() string {
	if i.collection.TalkingBookID == "" {
		return "(unattributed)"
	}
	return i.collection.TalkingBookID
}

func (i collectionItem) Description() string {
	return fmt.Sprintf("%s  %d plays  %d errors", orDash(i.collection.Deployment), i.collection.Plays, i.collection.Errors)
}

func (i collectionItem) FilterValue() string {
	return i.collection.TalkingBookID + " " + i.collection.Deployment + " " + i.collection.ContentPackage
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    CollectionsPort
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	loading bool
	err     error
	width   int
	height  int
}

func New(port CollectionsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Collections"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, detail: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload fetches the collection index again.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		collections, err := m.port.ListCollections(context.Background())
		return CollectionsLoadedMsg{Collections: collections, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case CollectionsLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.detail.SetContent(theme.Bad.Render(msg.Err.Error()))
			return m, nil
		}
		items := make([]list.Item, len(msg.Collections))
		for i, c := range msg.Collections {
			items[i] = collectionItem{collection: c}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		prev := m.list.Index()
		var lCmd tea.Cmd
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prev {
			m.detail.SetContent(m.renderDetail())
			m.detail.GotoTop()
		}

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading collections…")
	}
	listW := m.width * 4 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := theme.Detail.Width(m.width - listW - 2).Height(m.height - 2).Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is active, so the
// parent model leaves keys to the filter input.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Selected() (collecteddto.CollectionOutput, bool) {
	if item, ok := m.list.SelectedItem().(collectionItem); ok {
		return item.collection, true
	}
	return collecteddto.CollectionOutput{}, false
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	m.list.SetSize(listW, m.height)
	m.detail.Width = m.width - listW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	c, ok := m.Selected()
	if !ok {
		return theme.Muted.Render("No collections have been processed yet")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(orDash(c.TalkingBookID)) + "\n\n")
	row := func(label, value string) {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("%-12s", label)) + value + "\n")
	}
	row("collection", c.CollectionID)
	row("deployment", orDash(c.Deployment))
	row("package", orDash(c.ContentPackage))
	row("collected", orDash(c.CollectedAt))
	row("processed", c.ProcessedAt)
	row("messages", fmt.Sprintf("%d", c.Messages))
	row("plays", theme.Hot.Render(fmt.Sprintf("%d", c.Plays)))
	row("errors", theme.Count(c.Errors))
	return sb.String()
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
