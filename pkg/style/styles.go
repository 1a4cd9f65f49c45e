package style

import (
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	NormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	ListItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	PathStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	DetailStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)
)

// Category identifies one section of a deployment report.
type Category string

const (
	CategoryAdded    Category = "added"
	CategoryChanged  Category = "changed"
	CategoryDeleted  Category = "deleted"
	CategoryIgnored  Category = "ignored"
	CategoryRealized Category = "realized"
	CategoryBackedUp Category = "backed_up"
	CategoryRestored Category = "restored"
	CategoryErrors   Category = "errors"
)

var categoryStyles = map[Category]lipgloss.Style{
	CategoryAdded:    lipgloss.NewStyle().Foreground(SuccessColor).Bold(true),
	CategoryChanged:  lipgloss.NewStyle().Foreground(WarningColor).Bold(true),
	CategoryDeleted:  lipgloss.NewStyle().Foreground(ErrorColor).Bold(true),
	CategoryIgnored:  lipgloss.NewStyle().Foreground(MutedColor),
	CategoryRealized: lipgloss.NewStyle().Foreground(SecondaryColor),
	CategoryBackedUp: lipgloss.NewStyle().Foreground(InfoColor),
	CategoryRestored: lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true),
	CategoryErrors:   ErrorStyle,
}

var categoryIndicators = map[Category]string{
	CategoryAdded:    "+",
	CategoryChanged:  "~",
	CategoryDeleted:  "-",
	CategoryIgnored:  "·",
	CategoryRealized: "*",
	CategoryBackedUp: "↓",
	CategoryRestored: "↑",
	CategoryErrors:   "✗",
}

var categoryTitles = map[Category]string{
	CategoryAdded:    "Added",
	CategoryChanged:  "Changed",
	CategoryDeleted:  "Deleted",
	CategoryIgnored:  "Ignored",
	CategoryRealized: "Realized",
	CategoryBackedUp: "Backed up",
	CategoryRestored: "Restored",
	CategoryErrors:   "Errors",
}

// Categories lists report sections in display order.
func Categories() []Category {
	return []Category{
		CategoryAdded,
		CategoryChanged,
		CategoryDeleted,
		CategoryIgnored,
		CategoryRealized,
		CategoryBackedUp,
		CategoryRestored,
		CategoryErrors,
	}
}

// GetCategoryStyle returns the style for a report section, NormalStyle if unknown.
func GetCategoryStyle(c Category) lipgloss.Style {
	if s, ok := categoryStyles[c]; ok {
		return s
	}
	return NormalStyle
}

// Indicator returns the single-character marker for a report section.
func Indicator(c Category) string {
	if i, ok := categoryIndicators[c]; ok {
		return i
	}
	return "?"
}

// Title returns the human heading for a report section.
func Title(c Category) string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}
