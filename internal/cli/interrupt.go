package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a run on SIGINT/SIGTERM and tells the user what
// state the data was left in.
type InterruptHandler struct {
	writer      io.Writer
	cancelFunc  context.CancelFunc
	stop        chan struct{}
	interrupted bool
	mu          sync.Mutex
	stopOnce    sync.Once
}

// NewInterruptHandler creates a new interrupt handler.
func NewInterruptHandler(writer io.Writer) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer: writer,
		stop:   make(chan struct{}),
	}
}

// HandleInterrupts returns a context that is canceled on interrupt. Call Stop
// when the run ends to release the signal handler.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.cancelFunc = cancel

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.interrupt()
		case <-h.stop:
		case <-ctx.Done():
		}
	}()

	return ctx
}

// Stop releases the signal handler and cancels the derived context.
func (h *InterruptHandler) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
		if h.cancelFunc != nil {
			h.cancelFunc()
		}
	})
}

func (h *InterruptHandler) interrupt() {
	h.mu.Lock()
	if !h.interrupted {
		h.interrupted = true
		h.showInterruptMessage()
	}
	h.mu.Unlock()
	if h.cancelFunc != nil {
		h.cancelFunc()
	}
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n\n" + FormatWarning("Validation interrupted!") +
		"\n" + FormatInfo("Files already being repaired will finish; the rest are untouched.") +
		"\n" + FormatInfo("Rerun the command to validate the remaining files.") + "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		// Best effort - we're shutting down anyway
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
