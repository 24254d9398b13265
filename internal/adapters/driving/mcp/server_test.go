package mcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil search service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(validPorts())
		require.NoError(t, err)
		assert.NotNil(t, server)
	})

	t.Run("ingest port registers ingest tool", func(t *testing.T) {
		ports := validPorts()
		ports.Ingest = &mockIngestService{}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"empty", &Ports{}, ErrMissingSearchService},
		{"search only", &Ports{Search: &mockSearchService{}}, ErrMissingAnswerService},
		{"search and answer", validPorts(), nil},
		{"all ports", &Ports{
			Search:  &mockSearchService{},
			Answer:  &mockAnswerService{},
			Ingest:  &mockIngestService{},
			Dataset: &mockDatasetService{},
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithShutdownTimeout(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"default", 0, DefaultShutdownTimeout},
		{"negative ignored", -time.Second, DefaultShutdownTimeout},
		{"override", 2 * time.Second, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(validPorts(), WithShutdownTimeout(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, server.shutdownTimeout)
		})
	}
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(validPorts())
	require.NoError(t, err)
	assert.NotNil(t, server.Handler())
}

func TestRunHTTP_StopsOnCancel(t *testing.T) {
	server, err := NewServer(validPorts(), WithShutdownTimeout(time.Second))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- server.RunHTTP(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancel")
	}
}

func TestRunHTTP_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	server, err := NewServer(validPorts())
	require.NoError(t, err)

	err = server.RunHTTP(context.Background(), ln.Addr().String())
	assert.Error(t, err)
}
