// Package lsp implements a minimal Language Server Protocol client that opens
// documents in a language server and records the diagnostics it publishes.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	deadcode "github.com/fwojciec/deadcodehunter"
)

// Compile-time interface verification.
var (
	_ deadcode.Workspace      = (*Client)(nil)
	_ deadcode.TextSource     = (*Client)(nil)
	_ deadcode.DocumentSyncer = (*Client)(nil)
)

// ErrClosed is returned by calls made after the connection to the server
// has ended.
var ErrClosed = errors.New("lsp: connection closed")

// Error is a JSON-RPC error returned by the server.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lsp: %s (code %d)", e.Message, e.Code)
}

// Options configures a Client.
type Options struct {
	Logger        *slog.Logger
	ClientName    string
	ClientVersion string
}

// Client speaks JSON-RPC to a language server over a reader/writer pair.
// Its methods are safe for concurrent use; Run must be called exactly once.
type Client struct {
	in     *bufio.Reader
	out    io.Writer
	logger *slog.Logger
	name   string
	ver    string

	sendMu sync.Mutex
	nextID atomic.Int64

	mu          sync.Mutex
	pending     map[int64]chan *rpcMessage
	docs        []deadcode.URI
	texts       map[deadcode.URI]string
	versions    map[deadcode.URI]int
	diagnostics map[deadcode.URI][]deadcode.Diagnostic

	changes   chan struct{}
	done      chan struct{}
	closing   atomic.Bool
	closeOnce sync.Once
}

// NewClient returns a Client reading server output from r and writing
// requests to w.
func NewClient(r io.Reader, w io.Writer, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	name := opts.ClientName
	if name == "" {
		name = "deadcodehunter"
	}
	return &Client{
		in:          bufio.NewReader(r),
		out:         w,
		logger:      logger,
		name:        name,
		ver:         opts.ClientVersion,
		pending:     make(map[int64]chan *rpcMessage),
		texts:       make(map[deadcode.URI]string),
		versions:    make(map[deadcode.URI]int),
		diagnostics: make(map[deadcode.URI][]deadcode.Diagnostic),
		changes:     make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

// Changes returns a channel that receives a value whenever the recorded
// diagnostics or the set of open documents change. Bursts are coalesced.
func (c *Client) Changes() <-chan struct{} {
	return c.changes
}

// Done is closed when Run returns.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Run reads messages from the server until the stream ends or ctx is
// canceled. It returns nil on a clean end of stream, including any read
// error once the client is shutting down.
func (c *Client) Run(ctx context.Context) error {
	defer c.close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(c.in)
		if err != nil {
			if c.closing.Load() || errors.Is(err, io.EOF) ||
				errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.logger.Warn("failed to parse server message", "error", err)
			continue
		}
		switch {
		case msg.Method != "" && len(msg.ID) > 0:
			c.handleRequest(&msg)
		case msg.Method != "":
			c.handleNotification(&msg)
		default:
			c.handleResponse(&msg)
		}
	}
}

// Initialize performs the initialize handshake for the workspace at root.
func (c *Client) Initialize(ctx context.Context, root string) error {
	rootURI := deadcode.URIFromPath(root)
	params := initializeParams{
		ProcessID:  os.Getpid(),
		ClientInfo: clientInfo{Name: c.name, Version: c.ver},
		RootURI:    string(rootURI),
		WorkspaceFolders: []workspaceFolder{
			{URI: string(rootURI), Name: filepath.Base(root)},
		},
		Capabilities: clientCapabilities{
			Workspace: workspaceClientCapabilities{
				Configuration:    true,
				WorkspaceFolders: true,
			},
			TextDocument: textDocumentClientCapabilities{
				PublishDiagnostics: publishDiagnosticsCapabilities{VersionSupport: true},
			},
		},
	}
	var result initializeResult
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if result.ServerInfo != nil {
		c.logger.Info("language server initialized",
			"server", result.ServerInfo.Name,
			"version", result.ServerInfo.Version)
	}
	return c.notify("initialized", struct{}{})
}

// Shutdown asks the server to shut down and then to exit.
func (c *Client) Shutdown(ctx context.Context) error {
	if err := c.call(ctx, "shutdown", nil, nil); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	c.markClosing()
	return c.notify("exit", nil)
}

// markClosing makes Run return nil when the stream ends or its pipe is
// closed underneath it.
func (c *Client) markClosing() {
	c.closing.Store(true)
}

// DidOpen opens uri in the server with the given text. Opening a document
// that is already open sends a change instead.
func (c *Client) DidOpen(ctx context.Context, uri deadcode.URI, text string) error {
	uri = canonicalURI(uri)
	c.mu.Lock()
	if _, ok := c.versions[uri]; ok {
		c.mu.Unlock()
		return c.DidChange(ctx, uri, text)
	}
	c.docs = append(c.docs, uri)
	c.texts[uri] = text
	c.versions[uri] = 1
	c.mu.Unlock()

	c.signal()
	return c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{
			URI:        string(uri),
			LanguageID: LanguageID(uri.Path()),
			Version:    1,
			Text:       text,
		},
	})
}

// DidChange replaces the full text of an open document.
func (c *Client) DidChange(_ context.Context, uri deadcode.URI, text string) error {
	uri = canonicalURI(uri)
	c.mu.Lock()
	version, ok := c.versions[uri]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("document not open: %s", uri)
	}
	version++
	c.versions[uri] = version
	c.texts[uri] = text
	c.mu.Unlock()

	return c.notify("textDocument/didChange", didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: string(uri), Version: version},
		ContentChanges: []textDocumentContentChangeEvent{{Text: text}},
	})
}

// DidClose closes uri and forgets its diagnostics. Closing a document that
// is not open is a no-op.
func (c *Client) DidClose(_ context.Context, uri deadcode.URI) error {
	uri = canonicalURI(uri)
	c.mu.Lock()
	if _, ok := c.versions[uri]; !ok {
		c.mu.Unlock()
		return nil
	}
	c.docs = slices.DeleteFunc(c.docs, func(u deadcode.URI) bool { return u == uri })
	delete(c.texts, uri)
	delete(c.versions, uri)
	delete(c.diagnostics, uri)
	c.mu.Unlock()

	c.signal()
	return c.notify("textDocument/didClose", didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: string(uri)},
	})
}

// TextDocuments returns the open documents in the order they were opened.
func (c *Client) TextDocuments() []deadcode.URI {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.docs)
}

// Diagnostics returns the diagnostics most recently published for uri.
func (c *Client) Diagnostics(uri deadcode.URI) []deadcode.Diagnostic {
	uri = canonicalURI(uri)
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.diagnostics[uri])
}

// Text returns the last text sent to the server for uri.
func (c *Client) Text(uri deadcode.URI) (string, bool) {
	uri = canonicalURI(uri)
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.texts[uri]
	return text, ok
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	id := c.nextID.Add(1)
	ch := make(chan *rpcMessage, 1)

	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		return ErrClosed
	default:
	}
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	msg := rpcMessage{JSONRPC: "2.0", ID: json.RawMessage(fmt.Sprint(id)), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		msg.Params = raw
	}
	if err := c.send(&msg); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrClosed
	case resp := <-ch:
		if resp.Error != nil {
			return &Error{Code: resp.Error.Code, Message: resp.Error.Message}
		}
		if result == nil || len(resp.Result) == 0 || string(resp.Result) == "null" {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
		return nil
	}
}

func (c *Client) notify(method string, params any) error {
	msg := rpcMessage{JSONRPC: "2.0", Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		msg.Params = raw
	}
	return c.send(&msg)
}

func (c *Client) respond(id json.RawMessage, result any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return c.send(&rpcMessage{JSONRPC: "2.0", ID: id, Result: raw})
}

func (c *Client) send(msg *rpcMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := writeMessage(c.out, payload); err != nil {
		return fmt.Errorf("write %s: %w", msg.Method, err)
	}
	return nil
}

func (c *Client) handleResponse(msg *rpcMessage) {
	var id int64
	if err := json.Unmarshal(msg.ID, &id); err != nil {
		c.logger.Warn("response with unexpected id", "id", string(msg.ID))
		return
	}
	c.mu.Lock()
	ch, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("response for unknown request", "id", id)
		return
	}
	select {
	case ch <- msg:
	default:
		c.logger.Warn("duplicate response", "id", id)
	}
}

// handleRequest answers requests the server sends to the client. Nothing the
// server asks for changes how diagnostics are collected, so every request
// gets an empty answer rather than a method-not-found error that some
// servers treat as fatal.
func (c *Client) handleRequest(msg *rpcMessage) {
	var result any
	if msg.Method == "workspace/configuration" {
		var params configurationParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			result = make([]any, len(params.Items))
		} else {
			result = []any{}
		}
	}
	c.logger.Debug("server request", "method", msg.Method)
	if err := c.respond(msg.ID, result); err != nil {
		c.logger.Warn("failed to answer server request", "method", msg.Method, "error", err)
	}
}

func (c *Client) handleNotification(msg *rpcMessage) {
	switch msg.Method {
	case "textDocument/publishDiagnostics":
		var params publishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			c.logger.Warn("invalid publishDiagnostics params", "error", err)
			return
		}
		c.storeDiagnostics(params)
	case "window/logMessage", "window/showMessage":
		var params logMessageParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return
		}
		c.logger.Log(context.Background(), messageLevel(params.Type), params.Message, "source", "server")
	default:
		c.logger.Debug("ignored notification", "method", msg.Method)
	}
}

func (c *Client) storeDiagnostics(params publishDiagnosticsParams) {
	uri := canonicalURI(deadcode.URI(params.URI))
	diags := make([]deadcode.Diagnostic, 0, len(params.Diagnostics))
	for _, d := range params.Diagnostics {
		diags = append(diags, d.toDomain())
	}
	c.mu.Lock()
	if _, open := c.versions[uri]; !open {
		c.mu.Unlock()
		c.logger.Debug("diagnostics for closed document dropped", "uri", uri)
		return
	}
	if len(diags) == 0 {
		delete(c.diagnostics, uri)
	} else {
		c.diagnostics[uri] = diags
	}
	c.mu.Unlock()
	c.logger.Debug("diagnostics published", "uri", uri, "count", len(diags))
	c.signal()
}

func (c *Client) signal() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		close(c.done)
		c.mu.Unlock()
	})
}

// messageLevel maps an LSP MessageType to a log level.
func messageLevel(t int) slog.Level {
	switch t {
	case 1:
		return slog.LevelError
	case 2:
		return slog.LevelWarn
	case 3:
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// canonicalURI normalizes file URIs so that URIs built locally and URIs
// echoed by the server compare equal.
func canonicalURI(uri deadcode.URI) deadcode.URI {
	if len(uri) < 5 || string(uri[:5]) != "file:" {
		return uri
	}
	return deadcode.URIFromPath(uri.Path())
}
