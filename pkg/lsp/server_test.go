package lsp

import (
	"context"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/stretchr/testify/require"
)

const testURI = DocumentURI("file:///tmp/lili-test/twice.ll")

const twiceSource = `(defun inc (x) (+ x 1))
(defun twice (y) (inc (inc y)))
`

func startServer(t *testing.T) (*jrpc2.Client, <-chan PublishDiagnosticsParams) {
	t.Helper()

	h := NewHandler(nil)
	cch, sch := channel.Direct()
	srv := jrpc2.NewServer(h, &jrpc2.ServerOptions{AllowPush: true})
	h.SetServer(srv)
	srv.Start(sch)

	published := make(chan PublishDiagnosticsParams, 16)
	cli := jrpc2.NewClient(cch, &jrpc2.ClientOptions{
		OnNotify: func(req *jrpc2.Request) {
			if req.Method() != "textDocument/publishDiagnostics" {
				return
			}
			var params PublishDiagnosticsParams
			if err := req.UnmarshalParams(&params); err == nil {
				published <- params
			}
		},
	})

	t.Cleanup(func() {
		cli.Close()
		srv.Stop()
	})

	return cli, published
}

func awaitDiagnostics(t *testing.T, published <-chan PublishDiagnosticsParams) PublishDiagnosticsParams {
	t.Helper()
	select {
	case params := <-published:
		return params
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for diagnostics")
		return PublishDiagnosticsParams{}
	}
}

func openDocument(ctx context.Context, t *testing.T, cli *jrpc2.Client, published <-chan PublishDiagnosticsParams, text string) PublishDiagnosticsParams {
	t.Helper()
	require.NoError(t, cli.Notify(ctx, "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: testURI, LanguageID: "lili", Version: 1, Text: text},
	}))
	return awaitDiagnostics(t, published)
}

func position(line, character int) TextDocumentPositionParams {
	return TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Position:     Position{Line: line, Character: character},
	}
}

func TestServerInitialize(t *testing.T) {
	ctx := t.Context()
	cli, _ := startServer(t)

	var result InitializeResult
	require.NoError(t, cli.CallResult(ctx, "initialize", InitializeParams{RootURI: "file:///tmp/lili-test"}, &result))
	require.Equal(t, TDSKFull, result.Capabilities.TextDocumentSync)
	require.True(t, result.Capabilities.HoverProvider)
	require.Equal(t, "lili", result.ServerInfo.Name)

	require.NoError(t, cli.Notify(ctx, "initialized", struct{}{}))

	_, err := cli.Call(ctx, "initialize", nil)
	require.ErrorContains(t, err, "missing parameters")

	_, err = cli.Call(ctx, "textDocument/rename", struct{}{})
	require.Error(t, err)

	_, err = cli.Call(ctx, "shutdown", nil)
	require.NoError(t, err)
}

func TestServerDiagnosticsLifecycle(t *testing.T) {
	ctx := t.Context()
	cli, published := startServer(t)

	opened := openDocument(ctx, t, cli, published, twiceSource)
	require.Equal(t, testURI, opened.URI)
	require.Empty(t, opened.Diagnostics)

	require.NoError(t, cli.Notify(ctx, "textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []TextDocumentContentChangeEvent{
			{Text: twiceSource + "(defun bad () (twice 1 2))\n"},
		},
	}))

	changed := awaitDiagnostics(t, published)
	require.Equal(t, 2, changed.Version)
	require.Len(t, changed.Diagnostics, 1)
	require.Equal(t, "arity", changed.Diagnostics[0].Code)
	require.Equal(t, "wrong number of arguments in call to twice: want 1, got 2", changed.Diagnostics[0].Message)
	require.Equal(t, 2, changed.Diagnostics[0].Range.Start.Line)

	require.NoError(t, cli.Notify(ctx, "textDocument/didClose", DidCloseTextDocumentParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
	}))
	closed := awaitDiagnostics(t, published)
	require.Empty(t, closed.Diagnostics)
}

func TestServerHover(t *testing.T) {
	ctx := t.Context()
	cli, published := startServer(t)
	openDocument(ctx, t, cli, published, twiceSource)

	var hover Hover
	require.NoError(t, cli.CallResult(ctx, "textDocument/hover", HoverParams{position(1, 19)}, &hover))
	require.Equal(t, Markdown, hover.Contents.Kind)
	require.Equal(t, "```lisp\ninc(x Integer) Integer\n```", hover.Contents.Value)

	require.NoError(t, cli.CallResult(ctx, "textDocument/hover", HoverParams{position(1, 27)}, &hover))
	require.Equal(t, "```lisp\ny Integer\n```", hover.Contents.Value)

	var none *Hover
	require.NoError(t, cli.CallResult(ctx, "textDocument/hover", HoverParams{position(1, 2)}, &none))
	require.Nil(t, none)
}

func TestServerDefinition(t *testing.T) {
	ctx := t.Context()
	cli, published := startServer(t)
	openDocument(ctx, t, cli, published, twiceSource)

	var loc Location
	require.NoError(t, cli.CallResult(ctx, "textDocument/definition", DocumentDefinitionParams{position(1, 19)}, &loc))
	require.Equal(t, testURI, loc.URI)
	require.Equal(t, Range{Start: Position{0, 7}, End: Position{0, 10}}, loc.Range)

	require.NoError(t, cli.CallResult(ctx, "textDocument/definition", DocumentDefinitionParams{position(1, 27)}, &loc))
	require.Equal(t, Range{Start: Position{1, 14}, End: Position{1, 15}}, loc.Range)
}

func TestServerCompletion(t *testing.T) {
	ctx := t.Context()
	cli, published := startServer(t)
	openDocument(ctx, t, cli, published, twiceSource)

	var items []CompletionItem
	require.NoError(t, cli.CallResult(ctx, "textDocument/completion", CompletionParams{position(1, 22)}, &items))

	byLabel := map[string]CompletionItem{}
	for _, item := range items {
		byLabel[item.Label] = item
	}
	require.Equal(t, "inc(x Integer) Integer", byLabel["inc"].Detail)
	require.Equal(t, FunctionCompletion, byLabel["car"].Kind)
	require.Equal(t, KeywordCompletion, byLabel["cond"].Kind)
	require.Equal(t, VariableCompletion, byLabel["y"].Kind)
	require.Equal(t, "Integer", byLabel["y"].Detail)
	require.NotContains(t, byLabel, "x")
}

func TestServerWorkspaceSymbol(t *testing.T) {
	ctx := t.Context()
	cli, published := startServer(t)
	openDocument(ctx, t, cli, published, twiceSource)

	var symbols []SymbolInformation
	require.NoError(t, cli.CallResult(ctx, "workspace/symbol", WorkspaceSymbolParams{Query: "TW"}, &symbols))
	require.Len(t, symbols, 1)
	require.Equal(t, "twice", symbols[0].Name)
	require.Equal(t, SymbolKindFunction, symbols[0].Kind)

	require.NoError(t, cli.CallResult(ctx, "workspace/symbol", WorkspaceSymbolParams{}, &symbols))
	require.Len(t, symbols, 2)
	require.Equal(t, "inc", symbols[0].Name)
}
