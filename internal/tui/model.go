package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/astrokit/nightlog/internal/runner"
)

// Page identifies one view of an analyzed log.
type Page int

const (
	PageSummary Page = iota
	PageSegments
	PageRMS
	pageCount
)

func (p Page) String() string {
	switch p {
	case PageSummary:
		return "Summary"
	case PageSegments:
		return "Segments"
	case PageRMS:
		return "Guiding RMS"
	default:
		return fmt.Sprintf("Page(%d)", int(p))
	}
}

// Model represents the browser state over a batch of analyzed logs.
type Model struct {
	results []runner.FileResult

	file   int // index into results
	page   Page
	scroll int // row offset within the active table

	width  int
	height int

	quitting bool
}

// New creates a new browser over the given results.
func New(results []runner.FileResult) Model {
	return Model{
		results: results,
		width:   80,
		height:  24,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab", "right", "l":
			m.page = (m.page + 1) % pageCount
			m.scroll = 0
			return m, nil
		case "shift+tab", "left", "h":
			m.page = (m.page + pageCount - 1) % pageCount
			m.scroll = 0
			return m, nil
		case "n":
			if m.file < len(m.results)-1 {
				m.file++
				m.scroll = 0
			}
			return m, nil
		case "p":
			if m.file > 0 {
				m.file--
				m.scroll = 0
			}
			return m, nil
		case "down", "j":
			if m.scroll < m.maxScroll() {
				m.scroll++
			}
			return m, nil
		case "up", "k":
			if m.scroll > 0 {
				m.scroll--
			}
			return m, nil
		case "g":
			m.scroll = 0
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

// View renders the browser.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if len(m.results) == 0 {
		return errStyle.Render("no results to display") + "\n"
	}
	return m.render()
}

// current returns the result under the cursor.
func (m Model) current() runner.FileResult {
	return m.results[m.file]
}

// visibleRows returns how many table rows fit under the chrome.
func (m Model) visibleRows() int {
	rows := m.height - 10
	if rows < 3 {
		rows = 3
	}
	return rows
}

// maxScroll returns the last valid scroll offset for the active page.
func (m Model) maxScroll() int {
	cur := m.current()
	if cur.Result == nil {
		return 0
	}

	var rows int
	switch m.page {
	case PageSegments:
		rows = len(cur.Result.Segments)
	case PageRMS:
		rows = len(cur.Result.RMSAnalysis.Bursts) + len(cur.Result.RMSAnalysis.SettingsChanges)
	default:
		return 0
	}

	max := rows - m.visibleRows()
	if max < 0 {
		return 0
	}
	return max
}
