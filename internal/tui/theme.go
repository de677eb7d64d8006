package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Portal palette. Each color keeps contrast on light and dark terminals.
var (
	portalText   = lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#f3f4f6"}
	portalMuted  = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	portalBorder = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#d1d5db"}
	portalAccent = lipgloss.AdaptiveColor{Light: "#1e40af", Dark: "#60a5fa"}
	portalOK     = lipgloss.AdaptiveColor{Light: "#166534", Dark: "#4ade80"}
	portalWarn   = lipgloss.AdaptiveColor{Light: "#92400e", Dark: "#fbbf24"}
	portalDanger = lipgloss.AdaptiveColor{Light: "#a32138", Dark: "#f87171"}
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(portalText)
	subtitleStyle = lipgloss.NewStyle().Foreground(portalMuted)
	labelStyle    = lipgloss.NewStyle().Foreground(portalMuted)
	focusStyle    = lipgloss.NewStyle().Foreground(portalAccent).Bold(true)
	requiredStyle = lipgloss.NewStyle().Foreground(portalDanger)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(portalBorder).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(portalAccent)
)

func faintIfDark(s lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return s.Faint(true)
	}
	return s
}

func noticeStyle(kind noticeKind) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch kind {
	case noticeSuccess:
		return s.Foreground(portalOK)
	case noticeWarn:
		return s.Foreground(portalWarn)
	case noticeError:
		return s.Foreground(portalDanger)
	default:
		return s.Foreground(portalAccent)
	}
}

func portalTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = faintIfDark(lipgloss.NewStyle().Foreground(portalMuted)).
		Bold(true).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(portalBorder)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	// Selected row: typographic emphasis rather than color blocks.
	s.Selected = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(portalAccent)
	return s
}
