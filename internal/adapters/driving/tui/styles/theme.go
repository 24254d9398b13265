// Package styles holds the lipgloss palette of the chat view.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette assigns a colour to each role in a conversation.
type Palette struct {
	Heading  lipgloss.Color
	Question lipgloss.Color
	Answer   lipgloss.Color
	Citation lipgloss.Color
	Degraded lipgloss.Color
	Failure  lipgloss.Color
	Frame    lipgloss.Color
	Bar      lipgloss.Color
}

// DefaultPalette is tuned for dark terminals.
func DefaultPalette() Palette {
	return Palette{
		Heading:  lipgloss.Color("#2DD4BF"),
		Question: lipgloss.Color("#FBBF24"),
		Answer:   lipgloss.Color("#E5E7EB"),
		Citation: lipgloss.Color("#9CA3AF"),
		Degraded: lipgloss.Color("#FB923C"),
		Failure:  lipgloss.Color("#F87171"),
		Frame:    lipgloss.Color("#374151"),
		Bar:      lipgloss.Color("#111827"),
	}
}

// Styles are the rendered styles derived from a Palette.
type Styles struct {
	Title    lipgloss.Style
	Question lipgloss.Style
	Answer   lipgloss.Style

	// Placeholder renders replies such as "(no response)" that stand in
	// for a generated answer.
	Placeholder lipgloss.Style

	// Source renders the citation lines under an answer.
	Source lipgloss.Style

	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
}

// NewStyles derives the chat styles from p.
func NewStyles(p Palette) *Styles {
	indent := func(n int) lipgloss.Style { return lipgloss.NewStyle().PaddingLeft(n) }

	return &Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(p.Heading),
		Question:    lipgloss.NewStyle().Bold(true).Foreground(p.Question),
		Answer:      indent(2).Foreground(p.Answer),
		Placeholder: indent(2).Italic(true).Foreground(p.Degraded),
		Source:      indent(4).Foreground(p.Citation),
		Normal:      lipgloss.NewStyle().Foreground(p.Answer),
		Muted:       lipgloss.NewStyle().Foreground(p.Citation),
		Error:       lipgloss.NewStyle().Foreground(p.Failure),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(p.Frame).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.Citation).
			Background(p.Bar).
			Padding(0, 1),
	}
}

// DefaultStyles returns NewStyles(DefaultPalette()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}
