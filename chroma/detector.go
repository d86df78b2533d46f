package chroma

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// LanguageDetector detects languages from file names using chroma's lexer
// registry.
type LanguageDetector struct{}

// NewLanguageDetector creates a new LanguageDetector.
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{}
}

// DetectFromPath returns the lexer name for path, lowercased, or "" if no
// lexer matches.
func (d *LanguageDetector) DetectFromPath(path string) string {
	lexer := lexers.Match(path)
	if lexer == nil {
		return ""
	}
	return strings.ToLower(lexer.Config().Name)
}
