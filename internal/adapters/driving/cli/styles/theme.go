// Package styles provides colour themes and styling for terminal reports.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// Theme defines the colour palette for reports.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"), // Purple
		Secondary: lipgloss.Color("#06B6D4"), // Cyan
		Muted:     lipgloss.Color("#6C7086"), // Medium gray
		Success:   lipgloss.Color("#A6E3A1"), // Green
		Warning:   lipgloss.Color("#F9E2AF"), // Yellow
		Error:     lipgloss.Color("#F38BA8"), // Red
		Border:    lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Label style for field names.
	Label lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Success style for success messages.
	Success lipgloss.Style

	// Warning style for skipped stages and hints.
	Warning lipgloss.Style

	// Box frames the failure summary.
	Box lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Error).
			Padding(0, 1),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// StageStatus returns the style for a stage outcome.
func (s *Styles) StageStatus(status domain.StageStatus) lipgloss.Style {
	switch status {
	case domain.StageCompleted:
		return s.Success
	case domain.StageFailed:
		return s.Error
	case domain.StageSkipped:
		return s.Warning
	default:
		return s.Muted
	}
}

// StageSymbol returns the marker printed before a stage name.
func StageSymbol(status domain.StageStatus) string {
	switch status {
	case domain.StageCompleted:
		return "✓"
	case domain.StageFailed:
		return "✗"
	case domain.StageSkipped:
		return "-"
	default:
		return "·"
	}
}

// RunStatus returns the style for a run outcome.
func (s *Styles) RunStatus(status domain.RunStatus) lipgloss.Style {
	if status == domain.RunSuccess {
		return s.Success
	}
	return s.Error
}
