// Package mock provides function-field implementations of the deadcode
// interfaces for tests.
package mock

import (
	"context"
	"os/exec"

	deadcode "github.com/fwojciec/deadcodehunter"
)

var (
	_ deadcode.Workspace        = (*Workspace)(nil)
	_ deadcode.TextSource       = (*TextSource)(nil)
	_ deadcode.DocumentSyncer   = (*DocumentSyncer)(nil)
	_ deadcode.Opener           = (*Opener)(nil)
	_ deadcode.Tokenizer        = (*Tokenizer)(nil)
	_ deadcode.LanguageDetector = (*LanguageDetector)(nil)
)

// Workspace implements deadcode.Workspace.
type Workspace struct {
	TextDocumentsFn func() []deadcode.URI
	DiagnosticsFn   func(uri deadcode.URI) []deadcode.Diagnostic
}

func (m *Workspace) TextDocuments() []deadcode.URI {
	return m.TextDocumentsFn()
}

func (m *Workspace) Diagnostics(uri deadcode.URI) []deadcode.Diagnostic {
	return m.DiagnosticsFn(uri)
}

// TextSource implements deadcode.TextSource.
type TextSource struct {
	TextFn func(uri deadcode.URI) (string, bool)
}

func (m *TextSource) Text(uri deadcode.URI) (string, bool) {
	return m.TextFn(uri)
}

// DocumentSyncer implements deadcode.DocumentSyncer.
type DocumentSyncer struct {
	DidOpenFn   func(ctx context.Context, uri deadcode.URI, text string) error
	DidChangeFn func(ctx context.Context, uri deadcode.URI, text string) error
	DidCloseFn  func(ctx context.Context, uri deadcode.URI) error
}

func (m *DocumentSyncer) DidOpen(ctx context.Context, uri deadcode.URI, text string) error {
	return m.DidOpenFn(ctx, uri, text)
}

func (m *DocumentSyncer) DidChange(ctx context.Context, uri deadcode.URI, text string) error {
	return m.DidChangeFn(ctx, uri, text)
}

func (m *DocumentSyncer) DidClose(ctx context.Context, uri deadcode.URI) error {
	return m.DidCloseFn(ctx, uri)
}

// Opener implements deadcode.Opener.
type Opener struct {
	OpenCommandFn func(uri deadcode.URI, line int) (*exec.Cmd, error)
}

func (m *Opener) OpenCommand(uri deadcode.URI, line int) (*exec.Cmd, error) {
	return m.OpenCommandFn(uri, line)
}

// Tokenizer implements deadcode.Tokenizer.
type Tokenizer struct {
	TokenizeFn func(language, source string) []deadcode.Token
}

func (m *Tokenizer) Tokenize(language, source string) []deadcode.Token {
	return m.TokenizeFn(language, source)
}

// LanguageDetector implements deadcode.LanguageDetector.
type LanguageDetector struct {
	DetectFromPathFn func(path string) string
}

func (m *LanguageDetector) DetectFromPath(path string) string {
	return m.DetectFromPathFn(path)
}
