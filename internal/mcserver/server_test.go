package mcserver

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ironvein/blocksrv/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.BindAddress = "127.0.0.1:0"
	cfg.WorldDirectory = t.TempDir()
	s, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestPlayerCountStartsAtZero(t *testing.T) {
	s := newTestServer(t)
	require.EqualValues(t, 0, s.PlayerCount())
}

func TestServeReturnsAfterStop(t *testing.T) {
	s := newTestServer(t)

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	require.NoError(t, s.Stop())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}
