package lsp

import (
	"context"
	"log/slog"

	"github.com/creachadair/jrpc2"
)

func (h *Handler) handleShutdown(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = true
	h.files = make(map[DocumentURI]*File)
	return nil, nil
}

func (h *Handler) handleExit(ctx context.Context, req *jrpc2.Request) (any, error) {
	h.mu.Lock()
	clean := h.shutdown
	h.mu.Unlock()
	if !clean {
		slog.WarnContext(ctx, "exit without shutdown")
	}
	if h.stop != nil {
		// Stop waits for running handlers, including this one.
		go h.stop()
	}
	return nil, nil
}
