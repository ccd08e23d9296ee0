package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sync"
	"unicode"

	"github.com/creachadair/jrpc2"
	"github.com/lili-lang/lili/pkg/lili"
)

// Notifier pushes notifications to the client. *jrpc2.Server implements it
// when started with AllowPush.
type Notifier interface {
	Notify(ctx context.Context, method string, params any) error
}

// Handler serves language server requests for .ll files. Every change to an
// open document recompiles it and publishes the resulting diagnostics.
type Handler struct {
	mu       sync.Mutex
	files    map[DocumentURI]*File
	shutdown bool

	// used when no lili.toml is found next to a document
	config *lili.Config

	notifier Notifier
	stop     func()
}

// File is an open document and the results of its last compile.
type File struct {
	LanguageID  string
	Text        string
	Version     int
	Diagnostics []Diagnostic

	// Forms and Table come from the last successful compile and are always
	// replaced together, so positions in Forms resolve against Table.
	Forms []lili.Node
	Table *lili.SymbolTable
}

// NewHandler creates a Handler. A nil config means the defaults.
func NewHandler(config *lili.Config) *Handler {
	if config == nil {
		config = lili.DefaultConfig()
	}
	return &Handler{
		files:  make(map[DocumentURI]*File),
		config: config,
	}
}

// SetServer wires the handler to the server it is assigned to, for
// publishing diagnostics and handling exit.
func (h *Handler) SetServer(srv *jrpc2.Server) {
	h.notifier = srv
	h.stop = srv.Stop
}

// SetNotifier replaces the notification sink.
func (h *Handler) SetNotifier(n Notifier) {
	h.notifier = n
}

// Assign implements jrpc2.Assigner.
func (h *Handler) Assign(ctx context.Context, method string) jrpc2.Handler {
	slog.DebugContext(ctx, "assign", "method", method)

	switch method {
	case "initialize":
		return h.handleInitialize
	case "initialized":
		return h.handleInitialized
	case "shutdown":
		return h.handleShutdown
	case "exit":
		return h.handleExit
	case "textDocument/didOpen":
		return h.handleTextDocumentDidOpen
	case "textDocument/didChange":
		return h.handleTextDocumentDidChange
	case "textDocument/didSave":
		return h.handleTextDocumentDidSave
	case "textDocument/didClose":
		return h.handleTextDocumentDidClose
	case "textDocument/hover":
		return h.handleTextDocumentHover
	case "textDocument/definition":
		return h.handleTextDocumentDefinition
	case "textDocument/completion":
		return h.handleTextDocumentCompletion
	case "workspace/symbol":
		return h.handleWorkspaceSymbol
	}
	return nil
}

func isWindowsDriveURI(uri string) bool {
	if len(uri) < 4 {
		return false
	}
	return uri[0] == '/' && unicode.IsLetter(rune(uri[1])) && uri[2] == ':'
}

func fromURI(uri DocumentURI) (string, error) {
	u, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("only file URIs are supported, got %v", u.Scheme)
	}
	if isWindowsDriveURI(u.Path) {
		u.Path = u.Path[1:]
	}
	return u.Path, nil
}

func (h *Handler) openFile(uri DocumentURI, languageID string, version int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.files[uri] = &File{
		LanguageID: languageID,
		Version:    version,
	}
}

func (h *Handler) closeFile(ctx context.Context, uri DocumentURI) {
	h.mu.Lock()
	delete(h.files, uri)
	h.mu.Unlock()

	// clear whatever the client is still showing
	h.publishDiagnostics(ctx, PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []Diagnostic{},
	})
}

func (h *Handler) updateFile(ctx context.Context, uri DocumentURI, text string, version *int) error {
	h.mu.Lock()
	f, ok := h.files[uri]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("document not found: %v", uri)
	}

	f.Text = text
	if version != nil {
		f.Version = *version
	}
	h.check(ctx, uri, f)

	params := PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: f.Diagnostics,
		Version:     f.Version,
	}
	h.mu.Unlock()

	h.publishDiagnostics(ctx, params)
	return nil
}

// check compiles f and records its diagnostics. The compiler stops at the
// first error, so there is at most one.
func (h *Handler) check(ctx context.Context, uri DocumentURI, f *File) {
	path, err := fromURI(uri)
	if err != nil {
		path = string(uri)
	}

	f.Diagnostics = []Diagnostic{}

	forms, err := lili.Parse(filepath.Base(path), []byte(f.Text))
	if err != nil {
		slog.DebugContext(ctx, "parse failed", "path", path, "error", err)
		f.Diagnostics = append(f.Diagnostics, errorToDiagnostic(err))
		return
	}

	unit, err := lili.CompileForms(ctx, forms, h.configFor(ctx, path))
	if err != nil {
		slog.DebugContext(ctx, "compile failed", "path", path, "error", err)
		f.Diagnostics = append(f.Diagnostics, errorToDiagnostic(err))
		return
	}
	f.Forms = forms
	f.Table = unit.Table

	slog.InfoContext(ctx, "file compiled", "path", path, "functions", len(unit.Functions), "rounds", unit.Rounds)
}

// configFor loads the lili.toml governing path, falling back to the
// handler's config.
func (h *Handler) configFor(ctx context.Context, path string) *lili.Config {
	if !filepath.IsAbs(path) {
		return h.config
	}
	found, config, err := lili.FindConfig(filepath.Dir(path))
	if err != nil {
		slog.WarnContext(ctx, "ignoring invalid config", "path", path, "error", err)
		return h.config
	}
	if config == nil {
		return h.config
	}
	slog.DebugContext(ctx, "using config", "path", found)
	return config
}

func (h *Handler) publishDiagnostics(ctx context.Context, params PublishDiagnosticsParams) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		slog.ErrorContext(ctx, "failed to publish diagnostics", "error", err)
	}
}

// errorToDiagnostic converts a compile error to an LSP Diagnostic.
func errorToDiagnostic(err error) Diagnostic {
	r := Range{End: Position{Character: 1}}
	if loc := lili.LocationOf(err); loc != nil {
		r = rangeOf(loc)
	}

	message := err.Error()
	var sourceErr *lili.SourceError
	if errors.As(err, &sourceErr) {
		message = sourceErr.Inner.Error()
	}

	return Diagnostic{
		Range:    r,
		Severity: SeverityError,
		Code:     errorCode(err),
		Source:   "lili",
		Message:  message,
	}
}

func errorCode(err error) string {
	var (
		syntaxErr     *lili.SyntaxError
		structuralErr *lili.StructuralError
		arityErr      *lili.ArityError
		mismatchErr   *lili.TypeMismatchError
		unknownErr    *lili.UnknownSymbolError
		loweringErr   *lili.LoweringError
	)
	switch {
	case errors.As(err, &syntaxErr):
		return "syntax"
	case errors.As(err, &structuralErr):
		return "structure"
	case errors.As(err, &arityErr):
		return "arity"
	case errors.As(err, &mismatchErr):
		return "type"
	case errors.As(err, &unknownErr):
		return "unknown-symbol"
	case errors.As(err, &loweringErr):
		return "lowering"
	default:
		return ""
	}
}

// rangeOf converts a 1-based source location to a 0-based LSP range.
func rangeOf(loc *lili.SourceLocation) Range {
	start := Position{Line: loc.Line - 1, Character: loc.Column - 1}
	end := Position{Line: start.Line, Character: start.Character + max(1, loc.Length)}
	if loc.End != nil {
		end = Position{Line: loc.End.Line - 1, Character: loc.End.Column - 1}
	}
	return Range{Start: start, End: end}
}
