package deadcode

import "os/exec"

// Opener builds the command that opens a document for editing.
type Opener interface {
	// OpenCommand returns a command that opens uri at the given zero-based
	// line when run.
	OpenCommand(uri URI, line int) (*exec.Cmd, error)
}
