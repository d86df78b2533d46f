package lsp_test

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/deadcodehunter/lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMessage_MultipleMessages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	msg1 := []byte(`{"jsonrpc":"2.0","method":"one"}`)
	msg2 := []byte(`{"jsonrpc":"2.0","method":"two"}`)
	require.NoError(t, lsp.WriteMessage(&buf, msg1))
	require.NoError(t, lsp.WriteMessage(&buf, msg2))

	r := bufio.NewReader(&buf)
	got1, err := lsp.ReadMessage(r)
	require.NoError(t, err)
	got2, err := lsp.ReadMessage(r)
	require.NoError(t, err)

	assert.Equal(t, msg1, got1)
	assert.Equal(t, msg2, got2)
}

func TestReadMessage_Headers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{
			name:  "case insensitive header with content type",
			input: "content-length: 2\r\nContent-Type: application/vscode-jsonrpc; charset=utf-8\r\n\r\n{}",
			want:  "{}",
		},
		{
			name:  "bare newlines",
			input: "Content-Length: 2\n\n{}",
			want:  "{}",
		},
		{
			name:    "missing content length",
			input:   "Content-Type: text\r\n\r\n{}",
			wantErr: "missing Content-Length",
		},
		{
			name:    "invalid content length",
			input:   "Content-Length: abc\r\n\r\n{}",
			wantErr: "invalid Content-Length",
		},
		{
			name:    "oversized content length",
			input:   "Content-Length: 99999999999\r\n\r\n{}",
			wantErr: "out of range",
		},
		{
			name:    "negative content length",
			input:   "Content-Length: -1\r\n\r\n{}",
			wantErr: "out of range",
		},
		{
			name:    "truncated body",
			input:   "Content-Length: 10\r\n\r\n{}",
			wantErr: "read body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := lsp.ReadMessage(bufio.NewReader(strings.NewReader(tt.input)))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestReadMessage_LimitBoundary(t *testing.T) {
	t.Parallel()

	input := fmt.Sprintf("Content-Length: %d\r\n\r\n", lsp.MaxContentLength+1)
	_, err := lsp.ReadMessage(bufio.NewReader(strings.NewReader(input)))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestLanguageID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "go", lsp.LanguageID("/src/main.go"))
	assert.Equal(t, "typescriptreact", lsp.LanguageID("App.TSX"))
	assert.Equal(t, "plaintext", lsp.LanguageID("README"))
}
