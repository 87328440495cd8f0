package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/tgwire/internal/journal"
)

const (
	pollInterval = 2 * time.Second
	pollLimit    = 50
)

// Source provides the journal rows the monitor displays. *journal.Journal
// satisfies this.
type Source interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Model is the main BubbleTea model for the watch TUI.
type Model struct {
	source Source

	width  int
	height int

	entries     []journal.Entry
	lastRefresh time.Time
	lastError   string

	entryTable table.Model
	theme      Theme
}

type tickMsg time.Time

type entriesMsg []journal.Entry

type errMsg struct{ err error }

// New creates a new watch TUI model over a journal source.
func New(source Source) *Model {
	theme := NewDefaultTheme()

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Time", Width: 12},
			{Title: "Update", Width: 10},
			{Title: "Type", Width: 20},
			{Title: "Plugins", Width: 7},
			{Title: "Status", Width: 8},
			{Title: "Error", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("#61AFEF"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#874BFD"))
	t.SetStyles(styles)

	return &Model{
		source:     source,
		entryTable: t,
		theme:      theme,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchEntries(m.source),
		tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		return m, tea.Batch(
			fetchEntries(m.source),
			tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) }),
		)

	case entriesMsg:
		m.entries = msg
		m.lastRefresh = time.Now()
		m.lastError = ""
		m.entryTable.SetRows(entryRows(m.entries))
		return m, nil

	case errMsg:
		m.lastError = msg.err.Error()
		return m, nil
	}

	var cmd tea.Cmd
	m.entryTable, cmd = m.entryTable.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing watch..."
	}

	header := m.renderHeader()
	entries := m.theme.Border.Width(m.width - 4).Render(m.entryTable.View())

	var errBar string
	if m.lastError != "" {
		errBar = m.theme.StatusFailed.Render(fmt.Sprintf(" ⚠ %s", m.lastError))
	}

	help := m.theme.Dim.Render(" [q] Quit • [↑/↓] Navigate")

	parts := []string{header, entries}
	if errBar != "" {
		parts = append(parts, errBar)
	}
	parts = append(parts, help)

	return lipgloss.NewStyle().Margin(1, 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

func (m Model) renderHeader() string {
	refreshed := "never"
	if !m.lastRefresh.IsZero() {
		refreshed = m.lastRefresh.Format("15:04:05")
	}

	failed := 0
	killed := 0
	for _, e := range m.entries {
		if e.Error != nil {
			failed++
		}
		if e.Killed {
			killed++
		}
	}

	line := fmt.Sprintf("entries %d  failed %d  killed %d  refreshed %s",
		len(m.entries), failed, killed, refreshed)

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("TGWIRE WATCH"),
		m.theme.Dim.Render(" "+line),
	)
	return m.theme.Border.Width(m.width - 4).Render(content)
}

// entryRows converts journal entries into table rows, newest first.
func entryRows(entries []journal.Entry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		status := "ok"
		if e.Killed {
			status = "killed"
		}
		errText := ""
		if e.Error != nil {
			status = "failed"
			errText = *e.Error
		}
		rows = append(rows, table.Row{
			e.ReceivedAt.Local().Format("15:04:05.000"),
			fmt.Sprintf("%d", e.UpdateID),
			e.Type,
			fmt.Sprintf("%d", e.PluginsRun),
			status,
			errText,
		})
	}
	return rows
}

// fetchEntries reads the latest journal rows off the UI goroutine.
func fetchEntries(source Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entries, err := source.Recent(ctx, pollLimit)
		if err != nil {
			return errMsg{err: err}
		}
		return entriesMsg(entries)
	}
}
