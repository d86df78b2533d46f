package deadcode

// Token is a run of source text with a single style.
type Token struct {
	Text  string
	Style Style
}

// Style is the visual style of a token. Foreground is a hex colour or empty.
type Style struct {
	Foreground string
	Bold       bool
	Italic     bool
}

// Tokenizer splits source code into styled tokens.
type Tokenizer interface {
	// Tokenize returns the tokens for source, or nil if language is unknown.
	Tokenize(language, source string) []Token
}

// LanguageDetector guesses a source language from a file path.
type LanguageDetector interface {
	// DetectFromPath returns a language name, or "" if unknown.
	DetectFromPath(path string) string
}

// Palette holds the syntax colours used when highlighting source lines.
type Palette struct {
	Keyword  string
	Comment  string
	String   string
	Number   string
	Operator string
	Builtin  string
	Function string
	Name     string
}
