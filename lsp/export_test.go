package lsp

// Framing hooks for the external test package.
var (
	ReadMessage  = readMessage
	WriteMessage = writeMessage
)

const MaxContentLength = maxContentLength
