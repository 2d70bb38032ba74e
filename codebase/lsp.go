package codebase

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/scry/config"
	"github.com/dhamidi/scry/diagnostic"
	"github.com/dhamidi/scry/lint"
	"github.com/dhamidi/scry/source"
)

const lsName = "scry"

var lspLog = commonlog.GetLogger("scry.lsp")

// LSPServer publishes parse and lint diagnostics for open documents and for
// the files found under the workspace root.
type LSPServer struct {
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	} else if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	}

	cfg, err := config.LoadOptional(filepath.Join(rootDir, config.FileName))
	if err != nil {
		lspLog.Errorf("%s; using defaults", err)
		cfg = config.Default()
	}
	ls.codebase = New(rootDir, lint.NewRunner(cfg.Rules()))

	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.codebase.ScanAll(context.Background()); err != nil {
		lspLog.Errorf("scan %s: %s", ls.codebase.RootDir(), err)
	}
	for _, f := range ls.codebase.Files() {
		ls.publish(ctx, f)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.update(ctx, params.TextDocument.URI, []byte(whole.Text))
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.notify(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, []byte(*params.Text))
		return nil
	}
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	f, err := ls.codebase.ScanFile(context.Background(), path)
	if err != nil {
		lspLog.Warningf("save %s: %s", path, err)
		return nil
	}
	ls.publish(ctx, f)
	return nil
}

func (ls *LSPServer) update(ctx *glsp.Context, uri protocol.DocumentUri, content []byte) {
	path, err := uriToPath(uri)
	if err != nil {
		return
	}
	f, err := ls.codebase.UpdateFile(context.Background(), path, content)
	if err != nil {
		lspLog.Debugf("update %s: %s", path, err)
		return
	}
	ls.publish(ctx, f)
}

func (ls *LSPServer) publish(ctx *glsp.Context, f *File) {
	ls.notify(ctx, pathToURI(f.Path), ToProtocolDiagnostics(f.Path, f.Content, f.Diagnostics))
}

func (ls *LSPServer) notify(ctx *glsp.Context, uri protocol.DocumentUri, diags []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// ToProtocolDiagnostics converts diagnostics of the file at path. Secondary
// labels become related information.
func ToProtocolDiagnostics(path string, content []byte, diags []diagnostic.Diagnostic) []protocol.Diagnostic {
	uri := pathToURI(path)
	text := string(content)
	name := lsName

	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := toProtocolSeverity(d.Severity)
		pd := protocol.Diagnostic{
			Range:    toProtocolRange(text, d.Primary.Span),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: d.Rule},
			Source:   &name,
			Message:  d.Primary.Message,
		}
		for _, l := range d.Secondary {
			pd.RelatedInformation = append(pd.RelatedInformation, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{URI: uri, Range: toProtocolRange(text, l.Span)},
				Message:  l.Message,
			})
		}
		out = append(out, pd)
	}
	return out
}

func toProtocolSeverity(s diagnostic.Severity) protocol.DiagnosticSeverity {
	switch s {
	case diagnostic.Error:
		return protocol.DiagnosticSeverityError
	case diagnostic.Warning:
		return protocol.DiagnosticSeverityWarning
	case diagnostic.Information:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

func toProtocolRange(text string, span source.Span) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(text, span.Start),
		End:   toProtocolPosition(text, span.End),
	}
}

// toProtocolPosition converts a byte column into the UTF-16 character
// offset used by the protocol.
func toProtocolPosition(text string, pos source.Position) protocol.Position {
	lineStart := pos.Offset - (pos.Column - 1)
	if lineStart < 0 || pos.Offset > len(text) {
		return protocol.Position{Line: protocol.UInteger(max(pos.Line-1, 0))}
	}
	units := 0
	for i := lineStart; i < pos.Offset; {
		r, size := utf8.DecodeRuneInString(text[i:])
		if n := utf16.RuneLen(r); n > 0 {
			units += n
		} else {
			units++
		}
		i += size
	}
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(units),
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
