package preview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/twitterss/pkg/feed"
)

// ViewMode represents the current view mode
type ViewMode int

// View modes for the preview TUI
const (
	ListViewMode ViewMode = iota
	DetailViewMode
	XMLViewMode
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Bold(true)
)

// Model is the Bubble Tea model for previewing an assembled feed
type Model struct {
	doc       *feed.Document
	format    feed.Format
	visible   []int // indexes into doc.Entries shown in the list
	mediaOnly bool
	cursor    int // position in visible
	viewMode  ViewMode
	width     int
	height    int
}

// NewModel creates a new preview model
func NewModel(doc *feed.Document, format feed.Format) Model {
	m := Model{
		doc:      doc,
		format:   format,
		viewMode: ListViewMode,
	}
	m.applyFilter()
	return m
}

// applyFilter rebuilds the visible entries and keeps the cursor in range
func (m *Model) applyFilter() {
	visible := make([]int, 0, len(m.doc.Entries))
	for i := range m.doc.Entries {
		if m.mediaOnly && m.doc.Entries[i].Enclosure == nil {
			continue
		}
		visible = append(visible, i)
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

// selected returns the entry index under the cursor, or -1
func (m Model) selected() int {
	if len(m.visible) == 0 {
		return -1
	}
	return m.visible[m.cursor]
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

		switch m.viewMode {
		case ListViewMode:
			return m.updateListView(msg), nil
		case DetailViewMode, XMLViewMode:
			return m.updateDetailView(msg), nil
		}
	}

	return m, nil
}

func (m Model) updateListView(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

	case "g", "home":
		m.cursor = 0

	case "G", "end":
		m.cursor = max(len(m.visible)-1, 0)

	case "m":
		m.mediaOnly = !m.mediaOnly
		m.cursor = 0
		m.applyFilter()

	case "enter":
		if m.selected() >= 0 {
			m.viewMode = DetailViewMode
		}

	case "x":
		if m.selected() >= 0 {
			m.viewMode = XMLViewMode
		}
	}

	return m
}

func (m Model) updateDetailView(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.viewMode = ListViewMode

	case "n", "right":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}

	case "p", "left":
		if m.cursor > 0 {
			m.cursor--
		}

	case "x":
		// Toggle between detail and XML views
		if m.viewMode == DetailViewMode {
			m.viewMode = XMLViewMode
		} else {
			m.viewMode = DetailViewMode
		}
	}

	return m
}

// View implements tea.Model
func (m Model) View() string {
	switch m.viewMode {
	case DetailViewMode:
		return m.renderDetailView()
	case XMLViewMode:
		return m.renderXMLView()
	default:
		return m.renderListView()
	}
}

// visibleRange returns the window of rows to draw, keeping the cursor centered when possible
func visibleRange(cursor, total, height int) (start, end int) {
	maxVisible := height - 6 // header, footer and padding
	if height <= 0 || maxVisible >= total {
		return 0, total
	}
	if maxVisible < 1 {
		maxVisible = 1
	}

	start = max(cursor-maxVisible/2, 0)
	end = start + maxVisible
	if end > total {
		end = total
		start = max(end-maxVisible, 0)
	}
	return start, end
}

func (m Model) header() string {
	meta := feed.GetMetadata(m.doc)
	header := fmt.Sprintf("Feed Preview - %s (%d items, %d with media, %s)",
		meta.Title, meta.ItemCount, meta.Enclosures, strings.ToUpper(string(m.format)))
	if m.mediaOnly {
		header += " [media only]"
	}
	header = headerStyle.Render(header)
	if meta.ItemCount > 0 {
		header += "\n" + subtleStyle.Render(postedSpan(meta))
	}
	return header
}

// postedSpan describes the publication window of the feed's entries in UTC
func postedSpan(meta *feed.Metadata) string {
	const layout = "2006-01-02 15:04"
	return fmt.Sprintf("Posted %s to %s UTC",
		meta.OldestItem.UTC().Format(layout), meta.NewestItem.UTC().Format(layout))
}

func (m Model) renderListView() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")
	if m.doc.Description != "" {
		b.WriteString(subtleStyle.Render(m.doc.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString("  No entries match\n")
	}

	start, end := visibleRange(m.cursor, len(m.visible), m.height)
	for row := start; row < end; row++ {
		idx := m.visible[row]
		line := FormatCompactListItem(idx, &m.doc.Entries[idx])

		if row == m.cursor {
			b.WriteString(selectedStyle.Render("→ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("↑/↓ or j/k: navigate • g/G: top/bottom • m: media only • enter: details • x: XML • q: quit"))

	return b.String()
}

func (m Model) renderDetailView() string {
	idx := m.selected()
	if idx < 0 {
		return "No item selected"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Entry %d of %d", idx+1, len(m.doc.Entries))))
	b.WriteString("\n")
	b.WriteString(FormatDetailedItem(&m.doc.Entries[idx], m.width))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("n/p: next/previous • esc: back to list • x: XML view • q: quit"))

	return b.String()
}

func (m Model) renderXMLView() string {
	idx := m.selected()
	if idx < 0 {
		return "No item selected"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s entry %d", strings.ToUpper(string(m.format)), idx+1)))
	b.WriteString("\n\n")
	b.WriteString(FormatXMLItem(m.doc, idx, m.format))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("n/p: next/previous • esc: back to list • x: detail view • q: quit"))

	return b.String()
}

// Run starts the Bubble Tea program
func Run(doc *feed.Document, format feed.Format) error {
	if len(doc.Entries) == 0 {
		fmt.Println("No items to preview")
		return nil
	}

	p := tea.NewProgram(NewModel(doc, format), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
