package jsonl_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	deadcode "github.com/fwojciec/deadcodehunter"
	"github.com/fwojciec/deadcodehunter/jsonl"
	"github.com/fwojciec/deadcodehunter/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WriteTree(t *testing.T) {
	t.Parallel()

	t.Run("writes leaves in tree order", func(t *testing.T) {
		t.Parallel()

		ws := mock.StaticWorkspace([]deadcode.URI{"file:///w/a.ts", "file:///w/b.ts"}, map[deadcode.URI][]deadcode.Diagnostic{
			"file:///w/a.ts": {{Severity: deadcode.SeverityError, Message: "x is declared but never used"}},
			"file:///w/b.ts": {{Severity: deadcode.SeverityWarning, Message: "unreachable code"}},
		})
		agg := deadcode.NewAggregator(ws)
		agg.Refresh()

		var buf bytes.Buffer
		n, err := jsonl.NewWriter(&buf).WriteTree(agg)

		require.NoError(t, err)
		assert.Equal(t, 3, n)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.JSONEq(t, `{"category":"deadCode","uri":"file:///w/a.ts","path":"/w/a.ts"}`, lines[0])
		assert.JSONEq(t, `{"category":"error","uri":"file:///w/a.ts","path":"/w/a.ts"}`, lines[1])
		assert.JSONEq(t, `{"category":"warning","uri":"file:///w/b.ts","path":"/w/b.ts"}`, lines[2])
	})

	t.Run("empty tree writes nothing", func(t *testing.T) {
		t.Parallel()

		agg := deadcode.NewAggregator(mock.StaticWorkspace(nil, nil))
		agg.Refresh()

		var buf bytes.Buffer
		n, err := jsonl.NewWriter(&buf).WriteTree(agg)

		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, buf.String())
	})

	t.Run("reports write errors with line number", func(t *testing.T) {
		t.Parallel()

		ws := mock.StaticWorkspace([]deadcode.URI{"file:///w/a.ts"}, map[deadcode.URI][]deadcode.Diagnostic{
			"file:///w/a.ts": {{Severity: deadcode.SeverityError}},
		})
		agg := deadcode.NewAggregator(ws)
		agg.Refresh()

		_, err := jsonl.NewWriter(failingWriter{}).WriteTree(agg)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1")
	})
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}
