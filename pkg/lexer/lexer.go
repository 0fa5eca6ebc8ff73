package lexer

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/xplshn/tacc/pkg/symtab"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/util"
)

type pattern struct {
	re   *regexp2.Regexp
	kind token.Kind
}

func rule(expr string, kind token.Kind) pattern {
	return pattern{re: regexp2.MustCompile(`^(?:`+expr+`)`, regexp2.None), kind: kind}
}

// Order matters: two-character operators before their one-character
// prefixes. Keywords are matched as identifiers and looked up afterwards.
var patterns = []pattern{
	rule(`->`, token.Arrow),
	rule(`==`, token.Equal),
	rule(`!=`, token.Different),
	rule(`>=`, token.GreaterOrEqual),
	rule(`<=`, token.LessOrEqual),
	rule(`\+`, token.Plus),
	rule(`-`, token.Minus),
	rule(`\*`, token.Multiply),
	rule(`/`, token.Divide),
	rule(`%`, token.Module),
	rule(`=`, token.Assign),
	rule(`;`, token.Semicolon),
	rule(`,`, token.Comma),
	rule(`\(`, token.LParen),
	rule(`\)`, token.RParen),
	rule(`>`, token.Greater),
	rule(`<`, token.Less),
	rule(`\{`, token.LBrace),
	rule(`\}`, token.RBrace),

	rule(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`, token.Identifier),
	rule(`\b[0-9]+\b`, token.Integer),
}

type Lexer struct {
	lines  []string
	line   int
	column int
	tokens []token.Token
	table  *symtab.Table
}

func NewLexer(source string) *Lexer {
	return &Lexer{
		lines: strings.Split(source, "\n"),
		table: symtab.NewTable(),
	}
}

// Lex tokenizes the whole source. Every IDENTIFIER occurrence gets its own
// empty slot in the returned table, keyed by its token index.
func (l *Lexer) Lex() ([]token.Token, *symtab.Table, error) {
	for i, text := range l.lines {
		l.line = i + 1
		if err := l.lexLine(strings.TrimRight(text, "\r")); err != nil {
			return nil, nil, err
		}
	}
	return l.tokens, l.table, nil
}

func (l *Lexer) lexLine(text string) error {
	pos := 0
	for {
		pos = skipSpace(text, pos)
		if pos >= len(text) {
			return nil
		}
		rest := text[pos:]
		if strings.HasPrefix(rest, "//") {
			return nil
		}
		l.column = pos + 1

		tok, ok, err := l.match(rest)
		if err != nil {
			return err
		}
		if !ok {
			word := rest
			if i := strings.IndexAny(word, " \t"); i > 0 {
				word = word[:i]
			}
			bad := token.Token{Text: word, Line: l.line, Column: l.column}
			return util.LexicalErrorf(bad, "invalid token '%s'", word)
		}
		if tok.Kind == token.Identifier {
			l.table.Add(len(l.tokens), tok)
		}
		l.tokens = append(l.tokens, tok)
		pos += len(tok.Text)
	}
}

func (l *Lexer) match(rest string) (token.Token, bool, error) {
	for _, p := range patterns {
		m, err := p.re.FindStringMatch(rest)
		if err != nil {
			at := token.Token{Text: rest[:1], Line: l.line, Column: l.column}
			return token.Token{}, false, util.LexicalErrorf(at, "%v", err)
		}
		if m == nil || m.Length == 0 {
			continue
		}
		text, kind := m.String(), p.kind
		if kind == token.Identifier {
			if kw, isKeyword := token.KeywordMap[text]; isKeyword {
				kind = kw
			}
		}
		return token.Token{Kind: kind, Text: text, Line: l.line, Column: l.column}, true, nil
	}
	return token.Token{}, false, nil
}

func skipSpace(text string, pos int) int {
	for pos < len(text) {
		switch text[pos] {
		case ' ', '\t', '\v', '\f':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// Lex is a shorthand for NewLexer(source).Lex().
func Lex(source string) ([]token.Token, *symtab.Table, error) {
	return NewLexer(source).Lex()
}
