package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		key     string
		binding key.Binding
	}{
		{"enter", km.Send},
		{"esc", km.Quit},
		{"ctrl+c", km.Quit},
		{"ctrl+l", km.Clear},
		{"pgup", km.ScrollUp},
		{"pgdown", km.ScrollDown},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.True(t, Matches(tt.key, tt.binding))
		})
	}
}

func TestMatches_LettersUnbound(t *testing.T) {
	km := DefaultKeyMap()

	// Letters are typed into the question.
	for _, b := range []key.Binding{km.Quit, km.Send, km.Clear, km.ScrollUp, km.ScrollDown} {
		assert.False(t, Matches("q", b))
	}
}

func TestHelp(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 3)
	assert.Len(t, km.FullHelp(), 3)
	assert.Equal(t, "ask", km.Send.Help().Desc)
}
