package codebase

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/scry/diagnostic"
	"github.com/dhamidi/scry/source"
)

type notification struct {
	method string
	params any
}

func recordingContext(sent *[]notification) *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			*sent = append(*sent, notification{method: method, params: params})
		},
	}
}

func initializedServer(t *testing.T, dir string) *LSPServer {
	t.Helper()
	ls := NewLSPServer("test")
	uri := pathToURI(dir)
	result, err := ls.initialize(&glsp.Context{}, &protocol.InitializeParams{RootURI: &uri})
	require.NoError(t, err)
	initResult, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	assert.Equal(t, "scry", initResult.ServerInfo.Name)
	return ls
}

func TestLSPPublishesDiagnostics(t *testing.T) {
	dir := t.TempDir()
	ls := initializedServer(t, dir)

	var sent []notification
	ctx := recordingContext(&sent)
	uri := pathToURI(filepath.Join(dir, "counter.js"))

	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "javascript", Version: 1, Text: component},
	}))
	require.Len(t, sent, 1)
	assert.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, sent[0].method)

	params, ok := sent[0].params.(protocol.PublishDiagnosticsParams)
	require.True(t, ok)
	assert.Equal(t, uri, params.URI)
	require.Len(t, params.Diagnostics, 1)
	d := params.Diagnostics[0]
	assert.Equal(t, "This hook does not specify all of its dependencies.", d.Message)
	assert.Equal(t, protocol.Position{Line: 2, Character: 2}, d.Range.Start)
	require.Len(t, d.RelatedInformation, 1)
	assert.Equal(t, protocol.Position{Line: 3, Character: 16}, d.RelatedInformation[0].Location.Range.Start)

	require.NoError(t, ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "a;\n"}},
	}))
	require.Len(t, sent, 2)
	params = sent[1].params.(protocol.PublishDiagnosticsParams)
	assert.Empty(t, params.Diagnostics)

	require.NoError(t, ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	require.Len(t, sent, 3)
	assert.Empty(t, sent[2].params.(protocol.PublishDiagnosticsParams).Diagnostics)
}

func TestLSPIgnoresUnsupportedDocuments(t *testing.T) {
	dir := t.TempDir()
	ls := initializedServer(t, dir)

	var sent []notification
	require.NoError(t, ls.textDocumentDidOpen(recordingContext(&sent), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: pathToURI(filepath.Join(dir, "notes.md")), Text: "# notes"},
	}))
	assert.Empty(t, sent)
}

func TestToProtocolPositionCountsUTF16(t *testing.T) {
	text := "const s = \"é😀\"; x;\n"
	lines := source.NewLineIndex(text)

	// `x` follows a two-byte and a four-byte character.
	offset := len("const s = \"é😀\"; ")
	pos := toProtocolPosition(text, lines.Position(offset))
	assert.Equal(t, protocol.Position{Line: 0, Character: protocol.UInteger(offset - 1 - 2)}, pos)
}

func TestToProtocolDiagnostics(t *testing.T) {
	text := "a;\nb;\n"
	lines := source.NewLineIndex(text)
	d := diagnostic.New("parse", diagnostic.Warning, lines.Span(3, 4), "oops").
		WithSecondary(lines.Span(0, 1), "here")

	out := ToProtocolDiagnostics("/tmp/x.js", []byte(text), []diagnostic.Diagnostic{d})
	require.Len(t, out, 1)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *out[0].Severity)
	assert.Equal(t, "parse", out[0].Code.Value)
	assert.Equal(t, "scry", *out[0].Source)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 0},
		End:   protocol.Position{Line: 1, Character: 1},
	}, out[0].Range)
	assert.Equal(t, "file:///tmp/x.js", out[0].RelatedInformation[0].Location.URI)
}

func TestURIConversion(t *testing.T) {
	path, err := uriToPath("file:///home/user/my%20app/a.js")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/home/user/my app/a.js"), path)

	path, err = uriToPath("untitled:1")
	require.NoError(t, err)
	assert.Equal(t, "untitled:1", path)

	assert.Equal(t, "file:///home/user/my%20app/a.js", pathToURI("/home/user/my app/a.js"))
}
