package lsp

import (
	"path/filepath"
	"strings"
)

var languageIDs = map[string]string{
	".c":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".cs":   "csharp",
	".go":   "go",
	".h":    "c",
	".hpp":  "cpp",
	".java": "java",
	".js":   "javascript",
	".jsx":  "javascriptreact",
	".lua":  "lua",
	".mjs":  "javascript",
	".php":  "php",
	".py":   "python",
	".rb":   "ruby",
	".rs":   "rust",
	".ts":   "typescript",
	".tsx":  "typescriptreact",
	".zig":  "zig",
}

// LanguageID returns the LSP language identifier for path, or "plaintext".
func LanguageID(path string) string {
	if id, ok := languageIDs[strings.ToLower(filepath.Ext(path))]; ok {
		return id
	}
	return "plaintext"
}
