// Package deadcode provides domain types for aggregating editor diagnostics
// into a categorized tree of documents.
package deadcode

import (
	"net/url"
	"path/filepath"
	"strings"
)

// DeadCodeMarker is the message fragment language services use when reporting
// an unused declaration, e.g. "x is declared but its value is never read".
const DeadCodeMarker = "is declared but"

// Command identifiers attached to tree nodes.
const (
	CommandOpen      = "deadCodeHunter.open"
	CommandClearList = "deadCodeHunter.clearList"
)

// URI identifies an open document. It is a file:// URI as reported by the
// language server.
type URI string

// URIFromPath returns the file URI for a filesystem path.
func URIFromPath(path string) URI {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return URI(u.String())
}

// Path returns the filesystem path named by u. URIs with a scheme other than
// file are returned unchanged.
func (u URI) Path() string {
	s := string(u)
	if !strings.HasPrefix(s, "file:") {
		return s
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return s
	}
	return filepath.FromSlash(parsed.Path)
}

// Severity is the importance of a diagnostic.
type Severity int

// Severities, in the order the Language Server Protocol numbers them.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	}
	return "unknown"
}

// Position is a zero-based line and character offset in a document.
type Position struct {
	Line      int
	Character int
}

// Range is a span within a document.
type Range struct {
	Start Position
	End   Position
}

// Diagnostic is an issue reported for a document by a language service.
type Diagnostic struct {
	Severity Severity
	Message  string
	Range    Range
	Source   string // e.g. "compiler", "ts"
	Code     string // empty if the server sent none
}

// Category is a bucket of documents shown as a top-level tree node.
type Category string

// Categories.
const (
	CategoryDeadCode Category = "deadCode"
	CategoryError    Category = "error"
	CategoryWarning  Category = "warning"
)

// Categories lists every category in tree order.
var Categories = []Category{CategoryDeadCode, CategoryError, CategoryWarning}

// Label returns the header text for c.
func (c Category) Label() string {
	switch c {
	case CategoryDeadCode:
		return "Dead Code"
	case CategoryError:
		return "Errors"
	case CategoryWarning:
		return "Warnings"
	}
	return string(c)
}

// Matches reports whether d places its document in c. Severity and dead code
// are independent: one diagnostic can match both Error and DeadCode.
func (c Category) Matches(d Diagnostic) bool {
	switch c {
	case CategoryError:
		return d.Severity == SeverityError
	case CategoryWarning:
		return d.Severity == SeverityWarning
	case CategoryDeadCode:
		return strings.Contains(d.Message, DeadCodeMarker)
	}
	return false
}

// NodeKind discriminates the variants of Node.
type NodeKind int

// Node kinds.
const (
	NodeHeader NodeKind = iota
	NodeLeaf
	NodeAction
)

// Command is an action bound to a node.
type Command struct {
	ID    string
	Title string
	URI   URI // set for CommandOpen
}

// Node is a renderable unit of the tree: a category header, a document leaf
// or an action button. Nodes are values and are rebuilt on every query.
type Node struct {
	Kind     NodeKind
	Label    string
	Category Category // empty for actions
	Expanded bool     // headers only
	URI      URI      // leaves only
	Command  *Command // leaves and actions
}

// HeaderNode returns the expanded header for c.
func HeaderNode(c Category) Node {
	return Node{Kind: NodeHeader, Label: c.Label(), Category: c, Expanded: true}
}

// LeafNode returns the openable leaf for uri under c.
func LeafNode(c Category, uri URI) Node {
	return Node{
		Kind:     NodeLeaf,
		Label:    uri.Path(),
		Category: c,
		URI:      uri,
		Command:  &Command{ID: CommandOpen, Title: "Open File", URI: uri},
	}
}

// ClearNode returns the "Clear List" action node.
func ClearNode() Node {
	return Node{
		Kind:    NodeAction,
		Label:   "Clear List",
		Command: &Command{ID: CommandClearList, Title: "Clear List"},
	}
}
