package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/paging"
)

func newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(nil),
		table.WithFocused(true),
	)
	t.SetStyles(portalTableStyles())
	return t
}

// spread splits width across columns by weight, at least min cells each.
func spread(width int, titles []string, weights []int) []table.Column {
	total := 0
	for _, w := range weights {
		total += w
	}
	// Two cells of padding per column.
	avail := width - 2*len(titles)
	cols := make([]table.Column, len(titles))
	for i, t := range titles {
		w := avail * weights[i] / total
		if w < runewidth.StringWidth(t) {
			w = runewidth.StringWidth(t)
		}
		cols[i] = table.Column{Title: t, Width: w}
	}
	return cols
}

func apiColumns(width int) []table.Column {
	return spread(width,
		[]string{"ID", "API Name", "Version", "Status", "Owner", "Deployed Date"},
		[]int{1, 4, 2, 2, 3, 3})
}

func historyColumns(width int) []table.Column {
	return spread(width,
		[]string{"ID", "API Name", "Action", "User", "Timestamp"},
		[]int{1, 4, 2, 3, 4})
}

func (m *Model) layout() {
	w := m.contentWidth()
	m.apisTable.SetColumns(apiColumns(w))
	m.historyTable.SetColumns(historyColumns(w))
	// header, title, summary, pager, notice, help
	h := m.height - 9
	if h < 3 {
		h = 3
	}
	m.apisTable.SetHeight(h)
	m.historyTable.SetHeight(h)
	m.refreshTables()
}

func (m *Model) refreshTables() {
	apiRows := []table.Row{}
	for _, r := range m.apis.Current().Items {
		apiRows = append(apiRows, table.Row{r.ID.String(), r.Name, r.Version, r.Status, dash(r.Owner), dash(r.DeployedDate)})
	}
	m.apisTable.SetRows(apiRows)
	clampCursor(&m.apisTable, len(apiRows))

	historyRows := []table.Row{}
	for _, r := range m.history.Current().Items {
		historyRows = append(historyRows, table.Row{r.ID.String(), r.APIName, r.Action, dash(r.User), r.Timestamp})
	}
	m.historyTable.SetRows(historyRows)
	clampCursor(&m.historyTable, len(historyRows))
}

func clampCursor(t *table.Model, n int) {
	if n > 0 && t.Cursor() >= n {
		t.SetCursor(n - 1)
	}
}

// selectedAPI is the highlighted row of the current API page.
func (m Model) selectedAPI() (api.APIRecord, bool) {
	items := m.apis.Current().Items
	i := m.apisTable.Cursor()
	if i < 0 || i >= len(items) {
		return api.APIRecord{}, false
	}
	return items[i], true
}

func (m Model) selectedHistory() (api.HistoryRecord, bool) {
	items := m.history.Current().Items
	i := m.historyTable.Cursor()
	if i < 0 || i >= len(items) {
		return api.HistoryRecord{}, false
	}
	return items[i], true
}

// pager is the part of Listing both screens page through.
type pager interface {
	Next()
	Prev()
	Jump(int)
	Cursor() paging.Cursor
}

// updatePaging handles the keys shared by both listings. It reports whether
// the key was consumed.
func (m *Model) updatePaging(msg tea.KeyMsg, p pager) (tea.Cmd, bool) {
	if !key.Matches(msg, m.keys.JumpPage) {
		m.jump = ""
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil, true
	case key.Matches(msg, m.keys.Back):
		return m.back(), true
	case key.Matches(msg, m.keys.PrevPage):
		p.Prev()
	case key.Matches(msg, m.keys.NextPage):
		p.Next()
	case key.Matches(msg, m.keys.JumpPage):
		m.jump = pageDigits(m.jump, msg.Runes[0], p.Cursor().TotalPages())
		if m.jump == "" {
			return nil, true
		}
		n, _ := strconv.Atoi(m.jump)
		p.Jump(n)
	default:
		return nil, false
	}
	m.refreshTables()
	return nil, true
}

// pageDigits appends d to the page number being typed. A number past the last
// page starts over from d. A lone zero is dropped.
func pageDigits(typed string, d rune, last int) string {
	next := typed + string(d)
	if n, _ := strconv.Atoi(next); n > last {
		next = string(d)
	}
	if next == "0" {
		return ""
	}
	return next
}

func (m Model) updateAPIs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.updatePaging(msg, m.apis); ok {
		return m, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.fetchAPIs()
		return m, cmd
	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Enter):
		rec, ok := m.selectedAPI()
		if !ok {
			return m, nil
		}
		cmd := m.startEdit(rec)
		return m, cmd
	case key.Matches(msg, m.keys.Copy):
		if rec, ok := m.selectedAPI(); ok {
			m.copyID(rec.ID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.apisTable, cmd = m.apisTable.Update(msg)
	return m, cmd
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.updatePaging(msg, m.history); ok {
		return m, cmd
	}
	switch {
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.fetchHistory()
		return m, cmd
	case key.Matches(msg, m.keys.Copy):
		if rec, ok := m.selectedHistory(); ok {
			m.copyID(rec.ID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.historyTable, cmd = m.historyTable.Update(msg)
	return m, cmd
}

func (m *Model) copyID(id api.ID) {
	if err := copyToClipboard(id.String()); err != nil {
		m.setNotice(noticeError, "Copy failed: "+err.Error())
		return
	}
	m.setNotice(noticeSuccess, "Copied id "+id.String())
}

func (m Model) renderListing(t *table.Model, summary string, cur paging.Cursor, pending, substituted bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.shell.Current().Title()))
	if substituted {
		b.WriteString(noticeStyle(noticeWarn).Render("  sample data"))
	}
	b.WriteString("\n\n")
	if pending && len(t.Rows()) == 0 {
		b.WriteString(m.spinner.View() + " Loading…\n")
		return b.String()
	}
	b.WriteString(t.View())
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(summary))
	b.WriteString("  ")
	b.WriteString(renderPager(cur))
	return b.String()
}

// renderPager draws "‹ 1 [2] 3 ›" with unavailable arrows dimmed.
func renderPager(cur paging.Cursor) string {
	total := cur.TotalPages()
	if total <= 1 {
		return ""
	}
	arrow := func(s string, enabled bool) string {
		if enabled {
			return focusStyle.Render(s)
		}
		return subtitleStyle.Render(s)
	}
	parts := []string{arrow("‹", cur.HasPrev())}
	for i := 1; i <= total; i++ {
		if i == cur.Page() {
			parts = append(parts, focusStyle.Render(fmt.Sprintf("[%d]", i)))
		} else {
			parts = append(parts, fmt.Sprintf("%d", i))
		}
	}
	parts = append(parts, arrow("›", cur.HasNext()))
	return strings.Join(parts, " ")
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return strings.TrimSpace(s)
}

// truncate cuts s to width terminal cells.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
