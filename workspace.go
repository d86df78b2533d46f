package deadcode

import "context"

// Workspace is the host's view of open documents and their diagnostics.
type Workspace interface {
	// TextDocuments returns the currently open documents in the order they
	// were opened.
	TextDocuments() []URI
	// Diagnostics returns the latest diagnostics for uri.
	Diagnostics(uri URI) []Diagnostic
}

// TextSource returns the current text of an open document.
type TextSource interface {
	Text(uri URI) (string, bool)
}

// DocumentSyncer forwards document lifecycle events to a language service.
type DocumentSyncer interface {
	DidOpen(ctx context.Context, uri URI, text string) error
	DidChange(ctx context.Context, uri URI, text string) error
	DidClose(ctx context.Context, uri URI) error
}
