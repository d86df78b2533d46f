// Package editor opens documents in the user's editor.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	deadcode "github.com/fwojciec/deadcodehunter"
)

// Compile-time interface verification.
var _ deadcode.Opener = (*Opener)(nil)

// ErrNoEditor is returned when neither a command nor $VISUAL/$EDITOR is set.
var ErrNoEditor = errors.New("no editor configured: set [editor] command or $EDITOR")

// Opener launches an editor at a document's line.
type Opener struct {
	// Command is the editor command line, e.g. "nvim" or "code --wait".
	// When empty, $VISUAL and then $EDITOR are used.
	Command string
}

// OpenCommand returns the command that opens uri at the zero-based line.
func (o *Opener) OpenCommand(uri deadcode.URI, line int) (*exec.Cmd, error) {
	command := o.Command
	if command == "" {
		command = os.Getenv("VISUAL")
	}
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, ErrNoEditor
	}
	args := append(fields[1:], lineArgs(fields[0], uri.Path(), line+1)...)
	return exec.Command(fields[0], args...), nil
}

// lineArgs returns the arguments that open path at a one-based line for the
// given editor binary.
func lineArgs(bin, path string, line int) []string {
	switch filepath.Base(bin) {
	case "code", "code-insiders", "codium", "cursor":
		return []string{"--goto", fmt.Sprintf("%s:%d", path, line)}
	case "subl", "zed", "hx", "helix":
		return []string{fmt.Sprintf("%s:%d", path, line)}
	case "vi", "vim", "nvim", "nano", "emacs", "emacsclient", "kak", "micro":
		return []string{fmt.Sprintf("+%d", line), path}
	}
	return []string{path}
}
