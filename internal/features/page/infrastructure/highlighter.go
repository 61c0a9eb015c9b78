package infrastructure

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Output formats understood by NewChromaHighlighter.
const (
	FormatTerminal = "terminal"
	FormatHTML     = "html"
)

const classPrefix = "language-"

// ChromaHighlighter applies syntax coloring to a snippet, selecting the
// grammar from a "language-<name>" class.
type ChromaHighlighter struct {
	formatter chroma.Formatter
	style     *chroma.Style
}

// NewChromaHighlighter creates a highlighter for format ("terminal" or "html")
// using the named chroma style.
func NewChromaHighlighter(format, style string) (*ChromaHighlighter, error) {
	var f chroma.Formatter
	switch format {
	case FormatTerminal:
		f = formatters.TTY256
	case FormatHTML:
		f = html.New(html.WithClasses(true), html.PreventSurroundingPre(false))
	default:
		return nil, fmt.Errorf("unknown highlight format %q", format)
	}
	return &ChromaHighlighter{formatter: f, style: styles.Get(style)}, nil
}

// Highlight renders code with the grammar named by class. Unknown grammars
// fall back to plain text.
func (h *ChromaHighlighter) Highlight(class, code string) (string, error) {
	lexer := LexerFor(class)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", class, err)
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iterator); err != nil {
		return "", fmt.Errorf("format %s: %w", class, err)
	}
	return b.String(), nil
}

// LexerFor resolves a "language-<name>" class to a chroma lexer.
func LexerFor(class string) chroma.Lexer {
	name := strings.TrimPrefix(class, classPrefix)
	lexer := lexers.Get(name)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
