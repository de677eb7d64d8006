package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwportal/gwportal-cli/internal/nav"
)

type menuAction int

const (
	actionGo menuAction = iota
	actionDocs
)

type menuItem struct {
	title  string
	desc   string
	action menuAction
	target nav.Screen
}

var menus = map[nav.Screen][]menuItem{
	nav.Home: {
		{title: "Product Teams", desc: "Create, review and track API deployments", target: nav.ProductTeams},
		{title: "Administrator", desc: "Portal administration", target: nav.Administrator},
	},
	nav.ProductTeams: {
		{title: "Create API", desc: "Deploy and manage new APIs on the gateway", target: nav.CreateAPI},
		{title: "View APIs", desc: "Monitor and manage your existing API deployments", target: nav.ViewAPIs},
		{title: "Documentation", desc: "Access wiki pages and integration guides", action: actionDocs},
		{title: "API History", desc: "View history of all API requests and deployments", target: nav.APIHistory},
	},
}

// Administrator features are not built yet; the screen only shows what is planned.
var adminCards = []menuItem{
	{title: "User Management", desc: "Manage user access and permissions"},
	{title: "System Settings", desc: "Configure gateway and portal settings"},
	{title: "Analytics", desc: "View system metrics and usage reports"},
}

var recentActivity = []string{
	"New API deployment approved - Payment API v2.0",
	"User access granted to Product Team Alpha",
	"Gateway configuration updated",
}

const homeBlurb = "Onboard an API on the gateway through the self service portal in minutes. " +
	"Create and promote new APIs, review what is deployed and follow the history of every request."

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen := m.shell.Current()
	items := menus[screen]
	sel := m.menus[screen]

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Back):
		cmd := m.back()
		return m, cmd
	case key.Matches(msg, m.keys.Up):
		if sel > 0 {
			m.menus[screen] = sel - 1
		}
	case key.Matches(msg, m.keys.Down):
		if sel < len(items)-1 {
			m.menus[screen] = sel + 1
		}
	case key.Matches(msg, m.keys.Enter):
		if sel < 0 || sel >= len(items) {
			return m, nil
		}
		item := items[sel]
		if item.action == actionDocs {
			cmd := m.openDocs()
			return m, cmd
		}
		cmd := m.goTo(item.target)
		return m, cmd
	}
	return m, nil
}

func (m Model) renderMenu() string {
	screen := m.shell.Current()
	var b strings.Builder
	b.WriteString(titleStyle.Render(screen.Title()))
	b.WriteString("\n")
	if screen == nav.Home {
		b.WriteString(subtitleStyle.Width(m.contentWidth()).Render(homeBlurb))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.renderCards(menus[screen], m.menus[screen]))
	return b.String()
}

func (m Model) renderAdministrator() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(nav.Administrator.Title()))
	b.WriteString("\n\n")
	b.WriteString(m.renderCards(adminCards, -1))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Recent Activity"))
	b.WriteString("\n")
	for _, a := range recentActivity {
		b.WriteString(labelStyle.Render("• ") + truncate(a, m.contentWidth()-2) + "\n")
	}
	return b.String()
}

// renderCards lays cards out side by side when they fit, stacked otherwise.
// selected < 0 renders every card unselected.
func (m Model) renderCards(items []menuItem, selected int) string {
	const cardW = 28
	perRow := m.contentWidth() / (cardW + 2)
	if perRow < 1 {
		perRow = 1
	}
	var rows []string
	var row []string
	for i, it := range items {
		style := cardStyle
		title := titleStyle.Render(it.title)
		if i == selected {
			style = selectedCardStyle
			title = focusStyle.Render("> " + it.title)
		}
		desc := subtitleStyle.Width(cardW - 4).Render(it.desc)
		row = append(row, style.Width(cardW).Render(title+"\n"+desc))
		if len(row) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return m.width
}
