// Package signal cancels a command's context when the user interrupts it, so
// in-flight Notion requests and history lock waits stop promptly.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler owns a context that is canceled on the first SIGINT or SIGTERM.
type Handler struct {
	ctx    context.Context //nolint:containedctx // the handler owns this context's lifetime
	cancel context.CancelFunc

	sigChan     chan os.Signal
	interrupted chan struct{}
	done        chan struct{}

	mu       sync.Mutex
	received os.Signal
	once     sync.Once
	stopOnce sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM. Call Stop when the
// command returns.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		sigChan:     make(chan os.Signal, 1),
		interrupted: make(chan struct{}),
		done:        make(chan struct{}),
	}

	signal.Notify(h.sigChan, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the context canceled on interrupt.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted is closed once a signal has been received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Signal returns the first signal received, or nil.
func (h *Handler) Signal() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.received
}

// Stop stops listening and cancels the context. It is safe to call more
// than once.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigChan)
		close(h.done)
		h.cancel()
	})
}

// handleSignal records sig and cancels the context. Only the first call has
// any effect.
func (h *Handler) handleSignal(sig os.Signal) {
	h.once.Do(func() {
		h.mu.Lock()
		h.received = sig
		h.mu.Unlock()
		h.cancel()
		close(h.interrupted)
	})
}

// listen keeps draining sigChan after the first signal so repeated Ctrl+C
// never blocks delivery.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case sig := <-h.sigChan:
			h.handleSignal(sig)
		}
	}
}
