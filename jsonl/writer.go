// Package jsonl writes tree snapshots as JSON Lines.
package jsonl

import (
	"encoding/json"
	"fmt"
	"io"

	deadcode "github.com/fwojciec/deadcodehunter"
)

// Entry is one document under one category.
type Entry struct {
	Category deadcode.Category `json:"category"`
	URI      deadcode.URI      `json:"uri"`
	Path     string            `json:"path"`
}

// Writer encodes the leaves of a tree, one JSON object per line.
type Writer struct {
	enc *json.Encoder
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// WriteTree writes every leaf of p in tree order and returns the number of
// entries written.
func (w *Writer) WriteTree(p deadcode.TreeDataProvider) (int, error) {
	n := 0
	for _, root := range p.RootNodes() {
		for _, leaf := range p.Children(root) {
			if leaf.Kind != deadcode.NodeLeaf {
				continue
			}
			entry := Entry{Category: leaf.Category, URI: leaf.URI, Path: leaf.Label}
			if err := w.enc.Encode(entry); err != nil {
				return n, fmt.Errorf("line %d: %w", n+1, err)
			}
			n++
		}
	}
	return n, nil
}
