package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current view (Bubble Tea interface).
func (m BrowserModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return m.renderErrorView()
	case ViewStateLoading:
		return RenderLoading(m.loading)
	case ViewStateList:
		return m.renderListView()
	default:
		return ""
	}
}

func (m BrowserModel) renderErrorView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)),
		SubtleStyle.Render("ctrl+r retry | q quit"),
	)
}

// renderListView renders the form, the table and the pager.
func (m BrowserModel) renderListView() string {
	sections := []string{
		HeaderStyle.Render("SALES RECORDS"),
		m.renderSearch(),
		m.renderFilters(),
		m.table.View(),
		m.renderPager(),
		m.renderStatusBar(),
	}
	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("Fetch failed: %v", m.err)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m BrowserModel) renderSearch() string {
	label := LabelStyle.Render("Search: ")
	if m.focus == FocusSearch {
		label = FocusedFieldStyle.Render("Search: ")
	}
	return label + m.panel.search.View()
}

func (m BrowserModel) renderFilters() string {
	parts := make([]string, 0, len(m.panel.filters))
	for i, f := range m.panel.filters {
		label := LabelStyle.Render(f.name + ": ")
		if m.focus == FocusFilters && i == m.filterCursor {
			label = FocusedFieldStyle.Render(f.name + ": ")
		} else if i == m.filterCursor {
			label = ValueStyle.Render(f.name + ": ")
		}
		value := f.input.View()
		if len(f.choices) > 0 && m.focus == FocusFilters && i == m.filterCursor {
			value += SubtleStyle.Render(fmt.Sprintf(" (%d choices, up/down)", len(f.choices)))
		}
		parts = append(parts, label+value)
	}
	return strings.Join(parts, "  ")
}

// renderPager draws the page buttons from the window and the range label.
func (m BrowserModel) renderPager() string {
	view := m.panel.Pager()

	var b strings.Builder
	b.WriteString(LabelStyle.Render("« ‹ "))
	for _, page := range view.Pages {
		label := strconv.Itoa(page)
		if page == view.CurrentPage {
			b.WriteString(ActivePageStyle.Render(label))
		} else {
			b.WriteString(PageStyle.Render(label))
		}
	}
	b.WriteString(LabelStyle.Render(" › »"))

	b.WriteString("  ")
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%d–%d of %d", view.FirstRow, view.LastRow, view.TotalItems)))
	b.WriteString(LabelStyle.Render(fmt.Sprintf("  rows/page: %d", m.panel.RowsPerPage())))

	if m.fetching {
		b.WriteString("  ")
		b.WriteString(RenderLoading(m.loading))
	}
	return b.String()
}

func (m BrowserModel) renderStatusBar() string {
	switch m.focus {
	case FocusSearch:
		return SubtleStyle.Render("enter apply | esc back")
	case FocusFilters:
		return SubtleStyle.Render("tab next field | up/down choices | enter apply | esc back")
	case FocusTable:
	}
	return SubtleStyle.Render(
		"←/→ page | home/end first/last | 1-9 page | s/S sort | / search | f filters | x clear | r rows | ctrl+r refresh | ctrl+l reset | q quit",
	)
}
