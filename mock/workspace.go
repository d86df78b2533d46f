package mock

import deadcode "github.com/fwojciec/deadcodehunter"

// StaticWorkspace returns a Workspace serving a fixed snapshot. Documents are
// reported in the order given by docs.
func StaticWorkspace(docs []deadcode.URI, diags map[deadcode.URI][]deadcode.Diagnostic) *Workspace {
	return &Workspace{
		TextDocumentsFn: func() []deadcode.URI { return docs },
		DiagnosticsFn:   func(uri deadcode.URI) []deadcode.Diagnostic { return diags[uri] },
	}
}
