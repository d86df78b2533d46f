package lsp

import (
	"encoding/json"
	"strings"

	deadcode "github.com/fwojciec/deadcodehunter"
)

// JSON-RPC 2.0 envelope. Requests carry ID and Method, notifications only
// Method, responses ID and Result or Error.
type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type initializeParams struct {
	ProcessID        int                `json:"processId"`
	ClientInfo       clientInfo         `json:"clientInfo"`
	RootURI          string             `json:"rootUri"`
	WorkspaceFolders []workspaceFolder  `json:"workspaceFolders"`
	Capabilities     clientCapabilities `json:"capabilities"`
}

type clientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type workspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

type clientCapabilities struct {
	Workspace    workspaceClientCapabilities    `json:"workspace"`
	TextDocument textDocumentClientCapabilities `json:"textDocument"`
}

type workspaceClientCapabilities struct {
	Configuration    bool `json:"configuration"`
	WorkspaceFolders bool `json:"workspaceFolders"`
}

type textDocumentClientCapabilities struct {
	Synchronization    synchronizationCapabilities    `json:"synchronization"`
	PublishDiagnostics publishDiagnosticsCapabilities `json:"publishDiagnostics"`
}

type synchronizationCapabilities struct {
	DidSave bool `json:"didSave"`
}

type publishDiagnosticsCapabilities struct {
	RelatedInformation bool `json:"relatedInformation"`
	VersionSupport     bool `json:"versionSupport"`
}

type initializeResult struct {
	ServerInfo *struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo,omitempty"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type versionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type textDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type didOpenTextDocumentParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type didChangeTextDocumentParams struct {
	TextDocument   versionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []textDocumentContentChangeEvent `json:"contentChanges"`
}

type didCloseTextDocumentParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type lspRange struct {
	Start position `json:"start"`
	End   position `json:"end"`
}

type diagnostic struct {
	Range    lspRange        `json:"range"`
	Severity int             `json:"severity,omitempty"`
	Code     json.RawMessage `json:"code,omitempty"`
	Source   string          `json:"source,omitempty"`
	Message  string          `json:"message"`
}

type publishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Version     *int         `json:"version,omitempty"`
	Diagnostics []diagnostic `json:"diagnostics"`
}

type logMessageParams struct {
	Type    int    `json:"type"`
	Message string `json:"message"`
}

type configurationParams struct {
	Items []json.RawMessage `json:"items"`
}

// toDomain converts a wire diagnostic. An omitted severity is reported as
// an error, which is how editors interpret it.
func (d diagnostic) toDomain() deadcode.Diagnostic {
	sev := deadcode.SeverityError
	switch d.Severity {
	case 2:
		sev = deadcode.SeverityWarning
	case 3:
		sev = deadcode.SeverityInformation
	case 4:
		sev = deadcode.SeverityHint
	}
	return deadcode.Diagnostic{
		Severity: sev,
		Message:  d.Message,
		Source:   d.Source,
		Code:     decodeCode(d.Code),
		Range: deadcode.Range{
			Start: deadcode.Position{Line: d.Range.Start.Line, Character: d.Range.Start.Character},
			End:   deadcode.Position{Line: d.Range.End.Line, Character: d.Range.End.Character},
		},
	}
}

// decodeCode renders a diagnostic code, which may be a string or a number.
func decodeCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
