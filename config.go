package deadcode

// Config holds the settings of a deadcodehunter session.
type Config struct {
	// ServerCommand and ServerArgs start the language server.
	ServerCommand string
	ServerArgs    []string

	// Extensions selects the workspace files opened in the server.
	Extensions []string
	// MaxFiles caps the number of files opened. Zero means no limit.
	MaxFiles int
	// Watch forwards on-disk edits to the server.
	Watch bool

	// Editor is the command used to open documents. Empty uses $EDITOR.
	Editor string

	LogFile  string
	LogLevel string
}

// DefaultConfig returns the configuration used when no file is present:
// gopls over Go sources.
func DefaultConfig() Config {
	return Config{
		ServerCommand: "gopls",
		Extensions:    []string{".go"},
		MaxFiles:      500,
		Watch:         true,
		LogLevel:      "info",
	}
}
