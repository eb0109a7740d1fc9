// Package lsp serves monalisp source to editors over the Language Server
// Protocol: reader diagnostics, completion of global names and hovers.
package lsp

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"nickandperla.net/monalisp/internal/eval"
	"nickandperla.net/monalisp/internal/form"
	"nickandperla.net/monalisp/internal/read"
	"nickandperla.net/monalisp/pkg/monalisp"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "monalisp-lsp"

// maxItems caps a completion response.
const maxItems = 100

// Server bridges LSP editor features to a monalisp runtime.
type Server struct {
	mu      sync.Mutex
	runtime *monalisp.Runtime
	docs    map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
	log     commonlog.Logger
}

// New creates a language server answering from the global scope of r.
func New(r *monalisp.Runtime, version string) *Server {
	s := &Server{
		runtime: r,
		docs:    make(map[string]string),
		version: version,
		log:     commonlog.GetLogger("monalisp.lsp"),
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

// Run starts the server on stdio. Blocks until the client disconnects.
func (s *Server) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.log.Infof("initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"("},
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	s.log.Infof("shutting down")
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Language features ---

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return s.complete(prefix), nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return s.hover(word), nil
}

func (s *Server) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// complete lists global names starting with prefix.
func (s *Server) complete(prefix string) []protocol.CompletionItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []protocol.CompletionItem
	for _, name := range s.runtime.Globals() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		v, _ := s.runtime.Lookup(name)
		kind, detail := describe(v)
		nameCopy := name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &nameCopy,
		})
		if len(items) == maxItems {
			break
		}
	}
	return items
}

// hover shows what a global name is bound to. Callables show their kind
// and how to call them.
func (s *Server) hover(word string) *protocol.Hover {
	s.mu.Lock()
	v, ok := s.runtime.Lookup(word)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	var b strings.Builder
	_, detail := describe(v)
	fmt.Fprintf(&b, "**%s** %s\n\n", word, detail)
	b.WriteString("```\n")
	if c, ok := v.Value.(eval.Callable); ok {
		b.WriteString(usage(word, c.Signature()))
	} else {
		b.WriteString(v.String())
	}
	b.WriteString("\n```")

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// describe picks a completion kind and a short description for a binding.
func describe(v form.Tagged) (protocol.CompletionItemKind, string) {
	c, ok := v.Value.(eval.Callable)
	if !ok {
		return protocol.CompletionItemKindVariable, v.Flag().String()
	}
	detail := c.Kind()
	if c.Partial() {
		detail = "partial " + detail
	}
	switch c.(type) {
	case *eval.SpecialForm, *eval.Macro:
		return protocol.CompletionItemKindKeyword, detail
	default:
		return protocol.CompletionItemKindFunction, detail
	}
}

// usage renders a call template such as (map f xs).
func usage(name string, sig *eval.Signature) string {
	params := strings.TrimSuffix(strings.TrimPrefix(sig.String(), "("), ")")
	if params == "" {
		return "(" + name + ")"
	}
	return "(" + name + " " + params + ")"
}

// --- Diagnostics ---

func (s *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := s.diagnose(text)
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// diagnose reads text and reports the reader failure, if any, at the
// position it occurred.
func (s *Server) diagnose(text string) []protocol.Diagnostic {
	s.mu.Lock()
	_, err := s.runtime.Read(text)
	s.mu.Unlock()

	diagnostics := []protocol.Diagnostic{}
	if err == nil {
		return diagnostics
	}

	var pf *monalisp.ParseFailure
	if !errors.As(err, &pf) {
		return diagnostics
	}
	line := protocol.UInteger(0)
	if pf.Info.Line > 0 {
		line = protocol.UInteger(pf.Info.Line - 1)
	}
	start, end := utf16Span([]rune(pf.Info.LineText), pf.Info.Column)

	severity := protocol.DiagnosticSeverityError
	source := lspName
	diagnostics = append(diagnostics, protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: start},
			End:   protocol.Position{Line: line, Character: end},
		},
		Severity: &severity,
		Source:   &source,
		Message:  pf.Message,
	})
	s.log.Debugf("diagnostic at %d:%d: %s", line, start, pf.Message)
	return diagnostics
}

// --- Text extraction helpers ---

func isWordRune(r rune) bool {
	return read.IsIdentifierRest(r)
}

// lineRunes returns the runes of the line pos points into and the cursor
// as a rune index clamped to it. Positions count UTF-16 code units.
func lineRunes(text string, pos protocol.Position) ([]rune, int, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return nil, 0, false
	}
	line := []rune(lines[pos.Line])
	return line, runeIndex(line, int(pos.Character)), true
}

// runeIndex converts a UTF-16 offset into line to a rune index.
func runeIndex(line []rune, units int) int {
	n := 0
	for i, r := range line {
		if n >= units {
			return i
		}
		n += utf16.RuneLen(r)
	}
	return len(line)
}

// utf16Span converts a rune column into the UTF-16 range of the rune there.
func utf16Span(line []rune, column int) (protocol.UInteger, protocol.UInteger) {
	if column > len(line) {
		column = len(line)
	}
	start := 0
	for _, r := range line[:column] {
		start += utf16.RuneLen(r)
	}
	width := 1
	if column < len(line) {
		width = utf16.RuneLen(line[column])
	}
	return protocol.UInteger(start), protocol.UInteger(start + width)
}

// extractPrefix returns the identifier fragment before the cursor.
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := lineRunes(text, pos)
	if !ok {
		return ""
	}
	start := col
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	return string(line[start:col])
}

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := lineRunes(text, pos)
	if !ok {
		return ""
	}
	start := col
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordRune(line[end]) {
		end++
	}
	return string(line[start:end])
}

func boolPtr(b bool) *bool {
	return &b
}
