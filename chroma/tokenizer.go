// Package chroma provides syntax highlighting and language detection using
// the chroma library.
package chroma

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	deadcode "github.com/fwojciec/deadcodehunter"
)

// Compile-time interface verification.
var (
	_ deadcode.Tokenizer        = (*Tokenizer)(nil)
	_ deadcode.LanguageDetector = (*LanguageDetector)(nil)
)

// StyleFunc maps a chroma token type to a style.
type StyleFunc func(chroma.TokenType) deadcode.Style

// Tokenizer extracts syntax tokens using chroma.
type Tokenizer struct {
	style StyleFunc
}

// NewTokenizer creates a tokenizer that styles tokens with style.
func NewTokenizer(style StyleFunc) *Tokenizer {
	return &Tokenizer{style: style}
}

// Tokenize splits source into styled tokens for language. It returns nil
// if the language is not supported and an empty slice for empty source.
func (t *Tokenizer) Tokenize(language, source string) []deadcode.Token {
	if source == "" {
		return []deadcode.Token{}
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return nil
	}
	var tokens []deadcode.Token
	for token := iterator(); token != chroma.EOF; token = iterator() {
		tokens = append(tokens, deadcode.Token{
			Text:  token.Value,
			Style: t.style(token.Type),
		})
	}
	// Some lexers append a newline the source did not have.
	if n := len(tokens); n > 0 && !strings.HasSuffix(source, "\n") {
		last := strings.TrimSuffix(tokens[n-1].Text, "\n")
		if last == "" {
			tokens = tokens[:n-1]
		} else {
			tokens[n-1].Text = last
		}
	}
	return tokens
}

// StyleFromPalette returns a StyleFunc that colours token categories from p.
func StyleFromPalette(p deadcode.Palette) StyleFunc {
	return func(tt chroma.TokenType) deadcode.Style {
		switch {
		case tt == chroma.NameBuiltin || tt == chroma.NameBuiltinPseudo:
			return deadcode.Style{Foreground: p.Builtin}
		case tt == chroma.NameFunction || tt == chroma.NameFunctionMagic:
			return deadcode.Style{Foreground: p.Function}
		case tt.InCategory(chroma.Keyword):
			return deadcode.Style{Foreground: p.Keyword, Bold: true}
		case tt.InCategory(chroma.Comment):
			return deadcode.Style{Foreground: p.Comment, Italic: true}
		case tt.InSubCategory(chroma.LiteralString):
			return deadcode.Style{Foreground: p.String}
		case tt.InSubCategory(chroma.LiteralNumber):
			return deadcode.Style{Foreground: p.Number}
		case tt.InCategory(chroma.Operator):
			return deadcode.Style{Foreground: p.Operator}
		case tt.InCategory(chroma.Name):
			return deadcode.Style{Foreground: p.Name}
		}
		return deadcode.Style{}
	}
}
