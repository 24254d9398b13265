package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestAskCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockAnswerService{answer: "Berlin."}
	answerService = mock

	out, err := executeCommand("ask", "-d", "geo", "What is the capital", "of Germany?")

	require.NoError(t, err)
	assert.Equal(t, "Berlin.\n", out)
	assert.Equal(t, "ds_geo", mock.gotCollection)
	assert.Equal(t, "What is the capital of Germany?", mock.gotQuestion)
	assert.Empty(t, mock.gotExtra)
}

func TestAskCmd_ExtraContext(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockAnswerService{answer: "ok"}
	answerService = mock

	_, err := executeCommand("ask", "-d", "geo", "-c", "first block", "--context", "second block", "q")

	require.NoError(t, err)
	assert.Equal(t, []string{"first block", "second block"}, mock.gotExtra)
}

func TestAskCmd_Errors(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("ask", "q")
	assert.ErrorIs(t, err, errDatasetRequired)

	_, err = executeCommand("ask", "-d", "geo")
	assert.Error(t, err)

	answerService = nil
	_, err = executeCommand("ask", "-d", "geo", "q")
	assert.EqualError(t, err, "answer service not configured")
}

func TestAskImageCmd(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(image, pngHeader, 0o600))

	tests := []struct {
		name         string
		args         []string
		wantQuestion string
	}{
		{"default question", []string{"ask-image", "-d", "geo", image}, ""},
		{"explicit question", []string{"ask-image", "-d", "geo", image, "Which city?"}, "Which city?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()
			mock := &mockAnswerService{answer: "A heron."}
			answerService = mock

			out, err := executeCommand(tt.args...)

			require.NoError(t, err)
			assert.Equal(t, "A heron.\n", out)
			assert.Equal(t, "image/png", mock.gotMime)
			assert.Equal(t, pngHeader, mock.gotImage)
			assert.Equal(t, tt.wantQuestion, mock.gotQuestion)
		})
	}
}

func TestAskImageCmd_NotAnImage(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	_, err := executeCommand("ask-image", "-d", "geo", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not an image")

	_, err = executeCommand("ask-image", "-d", "geo", filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read image")
}
