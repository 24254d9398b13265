package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()

	tests := []struct {
		name    string
		version string
		args    []string
		want    string
	}{
		{"full", "1.2.0", []string{"version"}, "sercha-rag version 1.2.0 (" + runtime.Version()},
		{"dev build", "dev", []string{"version"}, "sercha-rag version dev"},
		{"short", "1.2.0", []string{"version", "--short"}, "1.2.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version = tt.version
			out, err := executeCommand(tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestVersionCmd_ShortOmitsPlatform(t *testing.T) {
	out, err := executeCommand("version", "--short")
	require.NoError(t, err)
	assert.NotContains(t, out, runtime.GOOS)
}

func TestVersionCmd_RejectsArgs(t *testing.T) {
	_, err := executeCommand("version", "extra")
	assert.Error(t, err)
}
