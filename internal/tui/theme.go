package tui

import "github.com/charmbracelet/lipgloss"

// palette 一组基础色；样式由 newTheme 统一派生
// palette is the set of base colors every style is derived from
type palette struct {
	accent  lipgloss.AdaptiveColor
	danger  lipgloss.AdaptiveColor
	success lipgloss.AdaptiveColor
	muted   lipgloss.AdaptiveColor
	text    lipgloss.AdaptiveColor
	panel   lipgloss.AdaptiveColor
	bar     lipgloss.AdaptiveColor
	border  lipgloss.AdaptiveColor
}

// Theme holds the pre-built styles the views render with.
type Theme struct {
	TitleStyle       lipgloss.Style
	ActiveTabStyle   lipgloss.Style
	InactiveTabStyle lipgloss.Style
	StatusBarStyle   lipgloss.Style
	InputStyle       lipgloss.Style
	FocusedStyle     lipgloss.Style
	ErrorStyle       lipgloss.Style
	SuccessStyle     lipgloss.Style
	MutedStyle       lipgloss.Style
	SelectedStyle    lipgloss.Style
	DoneStyle        lipgloss.Style
	OpenStyle        lipgloss.Style
}

// taskPalette adapts to light and dark terminals.
var taskPalette = palette{
	accent:  lipgloss.AdaptiveColor{Light: "#5B21B6", Dark: "#7C3AED"},
	danger:  lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"},
	success: lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"},
	muted:   lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"},
	text:    lipgloss.AdaptiveColor{Light: "#111827", Dark: "#E5E7EB"},
	panel:   lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#1F2937"},
	bar:     lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"},
	border:  lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"},
}

// DefaultTheme 默认主题，颜色随终端背景自适应
// DefaultTheme returns the default theme; colors follow the terminal background
func DefaultTheme() Theme {
	return newTheme(taskPalette)
}

func newTheme(p palette) Theme {
	input := lipgloss.NewStyle().
		Foreground(p.text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	return Theme{
		TitleStyle:       lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		ActiveTabStyle:   lipgloss.NewStyle().Foreground(p.text).Background(p.accent).Padding(0, 2).Bold(true),
		InactiveTabStyle: lipgloss.NewStyle().Foreground(p.muted).Padding(0, 2),
		StatusBarStyle:   lipgloss.NewStyle().Foreground(p.muted).Background(p.bar),
		InputStyle:       input,
		FocusedStyle:     input.BorderForeground(p.accent),
		ErrorStyle:       lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		SuccessStyle:     lipgloss.NewStyle().Foreground(p.success),
		MutedStyle:       lipgloss.NewStyle().Foreground(p.muted),
		SelectedStyle:    lipgloss.NewStyle().Foreground(p.text).Background(p.panel).Bold(true),
		// 已完成任务划线显示 / Completed tasks are struck through
		DoneStyle: lipgloss.NewStyle().Foreground(p.success).Strikethrough(true),
		OpenStyle: lipgloss.NewStyle().Foreground(p.text),
	}
}
