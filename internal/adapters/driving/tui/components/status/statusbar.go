// Package status renders the one-line footer of the chat view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
)

// State is where the conversation stands.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

const defaultWidth = 80

// Bar shows the dataset and conversation state on the left and the key
// hints on the right.
type Bar struct {
	styles  *styles.Styles
	hints   string
	dataset string
	state   State
	message string
	turns   int
	width   int
}

// NewBar builds a bar for dataset. Nil styles or keymap use the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap, dataset string) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bindings := km.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}

	return &Bar{
		styles:  s,
		hints:   strings.Join(hints, " | "),
		dataset: dataset,
		state:   StateReady,
		width:   defaultWidth,
	}
}

// Thinking marks a question as in flight.
func (b *Bar) Thinking() {
	b.state = StateThinking
	b.message = ""
}

// Answered records that turns questions have been answered so far.
func (b *Bar) Answered(turns int) {
	b.state = StateReady
	b.message = ""
	b.turns = turns
}

// Failed shows err until the next question.
func (b *Bar) Failed(err error) {
	b.state = StateError
	b.message = ""
	if err != nil {
		b.message = err.Error()
	}
}

// Clear forgets the conversation.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.turns = 0
}

func (b *Bar) State() State    { return b.state }
func (b *Bar) Message() string { return b.message }
func (b *Bar) Turns() int      { return b.turns }

// SetWidth follows the terminal width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

func (b *Bar) View() string {
	left := b.styles.Normal.Render(b.dataset) + " " + b.stateText()
	right := b.styles.Muted.Render(b.hints)
	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)

	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) stateText() string {
	switch {
	case b.state == StateThinking:
		return b.styles.Muted.Render("Thinking...")
	case b.state == StateError && b.message != "":
		return b.styles.Error.Render("Error: " + b.message)
	case b.state == StateError:
		return b.styles.Error.Render("Error")
	case b.turns > 0:
		return b.styles.Muted.Render(fmt.Sprintf("%d questions", b.turns))
	default:
		return b.styles.Muted.Render("Ready")
	}
}
