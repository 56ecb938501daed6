package signal

import (
	"context"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_SignalCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	require.NoError(t, h.Context().Err())
	assert.Nil(t, h.Signal())

	h.handleSignal(syscall.SIGINT)
	h.handleSignal(syscall.SIGTERM)

	require.ErrorIs(t, h.Context().Err(), context.Canceled)
	assert.Equal(t, syscall.SIGINT, h.Signal(), "only the first signal is recorded")

	select {
	case <-h.Interrupted():
	default:
		t.Fatal("interrupted channel should be closed")
	}
}

func TestHandler_StopIsIdempotent(t *testing.T) {
	h := NewHandler(context.Background())
	h.Stop()
	h.Stop()

	require.Error(t, h.Context().Err())

	select {
	case <-h.Interrupted():
		t.Fatal("stop is not an interrupt")
	default:
	}
}

func TestHandler_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()
	assert.Error(t, h.Context().Err())
}
