package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
)

func TestWatchKey(t *testing.T) {
	root := filepath.Join("home", "docs")
	tests := []struct {
		file string
		want string
	}{
		{filepath.Join(root, "a.txt"), "a.txt"},
		{filepath.Join(root, "sub", "b.pdf"), "sub/b.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, watchKey(root, tt.file))
		})
	}
}

func TestApplyChange(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name    string
		change  filesystem.Change
		err     error
		want    string
		wantOut string
	}{
		{
			"created",
			filesystem.Change{Type: filesystem.ChangeCreated, Path: filepath.Join(root, "a.txt")},
			nil,
			"doc ds_geo " + filepath.Join(root, "a.txt") + " a.txt",
			"Ingested a.txt: 2 passages",
		},
		{
			"updated",
			filesystem.Change{Type: filesystem.ChangeUpdated, Path: filepath.Join(root, "sub", "b.txt")},
			nil,
			"doc ds_geo " + filepath.Join(root, "sub", "b.txt") + " sub/b.txt",
			"Ingested sub/b.txt",
		},
		{
			"deleted",
			filesystem.Change{Type: filesystem.ChangeDeleted, Path: filepath.Join(root, "a.txt")},
			nil,
			"remove ds_geo a.txt",
			"Removed a.txt",
		},
		{
			"failure is reported, not returned",
			filesystem.Change{Type: filesystem.ChangeCreated, Path: filepath.Join(root, "a.txt")},
			errors.New("embedder down"),
			"doc ds_geo " + filepath.Join(root, "a.txt") + " a.txt",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := setupTestServices()
			defer cleanup()
			mock := &mockIngestService{n: 2, err: tt.err}
			ingestService = mock

			buf := new(bytes.Buffer)
			cmd := &cobra.Command{}
			cmd.SetOut(buf)

			applyChange(context.Background(), cmd, "ds_geo", root, tt.change)

			assert.Equal(t, []string{tt.want}, mock.Calls())
			if tt.wantOut == "" {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), tt.wantOut)
			}
		})
	}
}

func TestWatchCmd_Errors(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("watch", t.TempDir())
	assert.ErrorIs(t, err, errDatasetRequired)

	_, err = executeCommand("watch", "-d", "geo", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan")

	file := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = executeCommand("watch", "-d", "geo", file)
	assert.Error(t, err)
}

func TestWatchCmd_InitialScanStopsWithContext(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := &mockIngestService{n: 1}
	ingestService = mock

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.exe"), []byte("x"), 0o600))

	// Subcommands keep the context of their first run, so set it directly.
	ctx, cancel := context.WithCancel(context.Background())
	watchCmd.SetContext(ctx)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"watch", "-d", "geo", root})
	defer func() {
		rootCmd.SetArgs(nil)
		watchCmd.SetContext(context.Background())
		resetFlags()
	}()

	done := make(chan error, 1)
	go func() { done <- rootCmd.Execute() }()

	assert.Eventually(t, func() bool {
		return len(mock.Calls()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Equal(t, []string{"doc ds_geo " + filepath.Join(root, "a.txt") + " a.txt"}, mock.Calls())
}
