package lsp_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	deadcode "github.com/fwojciec/deadcodehunter"
	"github.com/fwojciec/deadcodehunter/lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wireMessage mirrors a JSON-RPC message as the server sees it.
type wireMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type textDocument struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// fakeServer is the server end of a pipe pair. It answers initialize and
// records everything else the client sends.
type fakeServer struct {
	in        *bufio.Reader
	out       io.WriteCloser
	mu        sync.Mutex
	received  chan wireMessage
	initError *wireError
	// initReplies is how many times initialize is answered; zero means once.
	initReplies int
}

func newClientPair(t *testing.T, configure func(*fakeServer)) (*lsp.Client, *fakeServer, <-chan error) {
	t.Helper()

	clientR, serverW := io.Pipe()
	serverR, clientW := io.Pipe()

	s := &fakeServer{
		in:       bufio.NewReader(serverR),
		out:      serverW,
		received: make(chan wireMessage, 64),
	}
	if configure != nil {
		configure(s)
	}
	go s.loop()

	c := lsp.NewClient(clientR, clientW, lsp.Options{})
	runErr := make(chan error, 1)
	go func() { runErr <- c.Run(context.Background()) }()

	t.Cleanup(func() {
		_ = serverW.Close()
		_ = clientW.Close()
	})
	return c, s, runErr
}

func (s *fakeServer) loop() {
	defer close(s.received)
	for {
		payload, err := lsp.ReadMessage(s.in)
		if err != nil {
			return
		}
		var msg wireMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return
		}
		if msg.Method == "initialize" {
			resp := wireMessage{JSONRPC: "2.0", ID: msg.ID}
			if s.initError != nil {
				resp.Error = s.initError
			} else {
				resp.Result = json.RawMessage(`{"capabilities":{},"serverInfo":{"name":"fake","version":"1.0"}}`)
			}
			for i := 0; i < max(s.initReplies, 1); i++ {
				s.write(resp)
			}
		}
		s.received <- msg
	}
}

func (s *fakeServer) write(msg wireMessage) {
	payload, _ := json.Marshal(msg)
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = lsp.WriteMessage(s.out, payload)
}

func (s *fakeServer) publish(params string) {
	s.write(wireMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  json.RawMessage(params),
	})
}

func (s *fakeServer) next(t *testing.T) wireMessage {
	t.Helper()
	select {
	case msg, ok := <-s.received:
		require.True(t, ok, "server connection closed")
		return msg
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for client message")
	}
	return wireMessage{}
}

func (s *fakeServer) expect(t *testing.T, method string) wireMessage {
	t.Helper()
	for {
		msg := s.next(t)
		if msg.Method == method {
			return msg
		}
	}
}

func drainChanges(c *lsp.Client) {
	for {
		select {
		case <-c.Changes():
		default:
			return
		}
	}
}

func TestClient_Initialize(t *testing.T) {
	t.Parallel()

	c, s, _ := newClientPair(t, nil)

	require.NoError(t, c.Initialize(context.Background(), "/work/project"))

	init := s.expect(t, "initialize")
	var params struct {
		RootURI          string `json:"rootUri"`
		WorkspaceFolders []struct {
			URI  string `json:"uri"`
			Name string `json:"name"`
		} `json:"workspaceFolders"`
		ClientInfo struct {
			Name string `json:"name"`
		} `json:"clientInfo"`
		Capabilities struct {
			Workspace struct {
				Configuration bool `json:"configuration"`
			} `json:"workspace"`
		} `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(init.Params, &params))
	assert.Equal(t, "file:///work/project", params.RootURI)
	require.Len(t, params.WorkspaceFolders, 1)
	assert.Equal(t, "project", params.WorkspaceFolders[0].Name)
	assert.Equal(t, "deadcodehunter", params.ClientInfo.Name)
	assert.True(t, params.Capabilities.Workspace.Configuration)

	s.expect(t, "initialized")
}

func TestClient_Initialize_ServerError(t *testing.T) {
	t.Parallel()

	c, _, _ := newClientPair(t, func(s *fakeServer) {
		s.initError = &wireError{Code: -32603, Message: "no workspace"}
	})

	err := c.Initialize(context.Background(), "/work")

	require.Error(t, err)
	var lspErr *lsp.Error
	require.True(t, errors.As(err, &lspErr))
	assert.Equal(t, -32603, lspErr.Code)
	assert.Contains(t, err.Error(), "no workspace")
}

func TestClient_PublishDiagnostics(t *testing.T) {
	t.Parallel()

	c, s, _ := newClientPair(t, nil)
	ctx := context.Background()
	uri := deadcode.URIFromPath("/work/a.ts")

	require.NoError(t, c.DidOpen(ctx, uri, "let x = 1"))
	open := s.expect(t, "textDocument/didOpen")
	var openParams struct {
		TextDocument textDocument `json:"textDocument"`
	}
	require.NoError(t, json.Unmarshal(open.Params, &openParams))
	assert.Equal(t, "typescript", openParams.TextDocument.LanguageID)
	assert.Equal(t, 1, openParams.TextDocument.Version)
	assert.Equal(t, []deadcode.URI{uri}, c.TextDocuments())
	drainChanges(c)

	s.publish(`{"uri":"file:///work/a.ts","diagnostics":[
		{"range":{"start":{"line":0,"character":4},"end":{"line":0,"character":5}},
		 "severity":4,"code":6133,"source":"ts",
		 "message":"'x' is declared but its value is never read."},
		{"range":{"start":{"line":2,"character":0},"end":{"line":2,"character":1}},
		 "code":"E1","message":"missing severity"}
	]}`)

	select {
	case <-c.Changes():
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no change signal")
	}
	require.Eventually(t, func() bool { return len(c.Diagnostics(uri)) == 2 }, 2*time.Second, 5*time.Millisecond)

	diags := c.Diagnostics(uri)
	assert.Equal(t, deadcode.SeverityHint, diags[0].Severity)
	assert.Equal(t, "6133", diags[0].Code)
	assert.Equal(t, "ts", diags[0].Source)
	assert.Equal(t, deadcode.Position{Line: 0, Character: 4}, diags[0].Range.Start)
	assert.Equal(t, deadcode.SeverityError, diags[1].Severity, "omitted severity is an error")
	assert.Equal(t, "E1", diags[1].Code)

	s.publish(`{"uri":"file:///work/a.ts","diagnostics":[]}`)
	require.Eventually(t, func() bool { return len(c.Diagnostics(uri)) == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestClient_DidChangeAndClose(t *testing.T) {
	t.Parallel()

	c, s, _ := newClientPair(t, nil)
	ctx := context.Background()
	uri := deadcode.URIFromPath("/work/main.go")

	err := c.DidChange(ctx, uri, "package main")
	require.Error(t, err, "change before open")

	require.NoError(t, c.DidOpen(ctx, uri, "package main"))
	require.NoError(t, c.DidOpen(ctx, uri, "package main\n\nfunc main() {}"))

	change := s.expect(t, "textDocument/didChange")
	var params struct {
		TextDocument   textDocument `json:"textDocument"`
		ContentChanges []struct {
			Text string `json:"text"`
		} `json:"contentChanges"`
	}
	require.NoError(t, json.Unmarshal(change.Params, &params))
	assert.Equal(t, 2, params.TextDocument.Version)
	require.Len(t, params.ContentChanges, 1)
	assert.Equal(t, "package main\n\nfunc main() {}", params.ContentChanges[0].Text)

	text, ok := c.Text(uri)
	require.True(t, ok)
	assert.Equal(t, "package main\n\nfunc main() {}", text)

	s.publish(`{"uri":"file:///work/main.go","diagnostics":[{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"severity":1,"message":"boom"}]}`)
	require.Eventually(t, func() bool { return len(c.Diagnostics(uri)) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.DidClose(ctx, uri))
	s.expect(t, "textDocument/didClose")

	assert.Empty(t, c.TextDocuments())
	assert.Empty(t, c.Diagnostics(uri))
	_, ok = c.Text(uri)
	assert.False(t, ok)

	require.NoError(t, c.DidClose(ctx, uri), "closing twice is a no-op")
}

func TestClient_AnswersServerRequests(t *testing.T) {
	t.Parallel()

	c, s, _ := newClientPair(t, nil)
	_ = c

	s.write(wireMessage{
		JSONRPC: "2.0",
		ID:      json.RawMessage("7"),
		Method:  "workspace/configuration",
		Params:  json.RawMessage(`{"items":[{"section":"gopls"},{"section":"go"}]}`),
	})
	s.write(wireMessage{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`"progress-1"`),
		Method:  "window/workDoneProgress/create",
		Params:  json.RawMessage(`{"token":"t"}`),
	})

	first := s.next(t)
	assert.Empty(t, first.Method)
	assert.JSONEq(t, "7", string(first.ID))
	assert.JSONEq(t, "[null,null]", string(first.Result))

	second := s.next(t)
	assert.JSONEq(t, `"progress-1"`, string(second.ID))
	assert.JSONEq(t, "null", string(second.Result))
}

func TestClient_CallAfterClose(t *testing.T) {
	t.Parallel()

	c, s, runErr := newClientPair(t, nil)

	require.NoError(t, s.out.Close())
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "Run did not return")
	}

	err := c.Initialize(context.Background(), "/work")
	assert.ErrorIs(t, err, lsp.ErrClosed)
}

func TestClient_CallCanceled(t *testing.T) {
	t.Parallel()

	c, _, _ := newClientPair(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Shutdown(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_DuplicateResponseDoesNotStallReader(t *testing.T) {
	t.Parallel()

	c, s, _ := newClientPair(t, func(s *fakeServer) { s.initReplies = 3 })
	ctx := context.Background()
	uri := deadcode.URIFromPath("/work/a.go")

	require.NoError(t, c.Initialize(ctx, "/work"))
	require.NoError(t, c.DidOpen(ctx, uri, "package a"))
	s.expect(t, "textDocument/didOpen")

	s.publish(`{"uri":"file:///work/a.go","diagnostics":[{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"severity":2,"message":"w"}]}`)

	require.Eventually(t, func() bool { return len(c.Diagnostics(uri)) == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestClient_IgnoresDiagnosticsForClosedDocuments(t *testing.T) {
	t.Parallel()

	c, s, _ := newClientPair(t, nil)
	ctx := context.Background()
	opened := deadcode.URIFromPath("/work/open.go")
	closed := deadcode.URIFromPath("/work/closed.go")

	require.NoError(t, c.DidOpen(ctx, closed, "package a"))
	require.NoError(t, c.DidClose(ctx, closed))
	require.NoError(t, c.DidOpen(ctx, opened, "package a"))

	const diag = `{"range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"severity":1,"message":"boom"}`
	s.publish(`{"uri":"file:///work/closed.go","diagnostics":[` + diag + `]}`)
	s.publish(`{"uri":"file:///work/never.go","diagnostics":[` + diag + `]}`)
	s.publish(`{"uri":"file:///work/open.go","diagnostics":[` + diag + `]}`)

	// Notifications are handled in order, so once the last one is stored
	// the earlier ones have been seen.
	require.Eventually(t, func() bool { return len(c.Diagnostics(opened)) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, c.Diagnostics(closed))
	assert.Empty(t, c.Diagnostics(deadcode.URIFromPath("/work/never.go")))

	require.NoError(t, c.DidOpen(ctx, closed, "package a"))
	assert.Empty(t, c.Diagnostics(closed), "reopened document starts without diagnostics")
}

func TestClient_ShutdownEndsRunCleanly(t *testing.T) {
	t.Parallel()

	c, s, runErr := newClientPair(t, nil)
	go func() {
		for msg := range s.received {
			switch msg.Method {
			case "shutdown":
				s.write(wireMessage{JSONRPC: "2.0", ID: msg.ID, Result: json.RawMessage("null")})
			case "exit":
				_ = s.out.Close()
				return
			}
		}
	}()

	require.NoError(t, c.Shutdown(context.Background()))

	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "Run did not return")
	}
}
