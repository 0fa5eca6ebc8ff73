package util

import (
	"errors"
	"fmt"

	"github.com/xplshn/tacc/pkg/token"
)

type ErrorKind int

const (
	KindLexical ErrorKind = iota
	KindSyntax
	KindSemantic
	KindGeneration
)

func (k ErrorKind) String() string {
	switch k {
	case KindLexical:
		return "lexical"
	case KindSyntax:
		return "syntax"
	case KindSemantic:
		return "semantic"
	case KindGeneration:
		return "generation"
	}
	return "unknown"
}

// CompileError is the single error type produced by every compilation stage.
// Tok is the offending token; its Line is the reported line.
type CompileError struct {
	Kind ErrorKind
	Tok  token.Token
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s error at line %d: %s", e.Kind, e.Tok.Line, e.Msg)
}

func (e *CompileError) Line() int { return e.Tok.Line }

func newError(kind ErrorKind, tok token.Token, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Tok: tok, Msg: fmt.Sprintf(format, args...)}
}

func LexicalErrorf(tok token.Token, format string, args ...interface{}) *CompileError {
	return newError(KindLexical, tok, format, args...)
}

func SyntaxErrorf(tok token.Token, format string, args ...interface{}) *CompileError {
	return newError(KindSyntax, tok, format, args...)
}

func SemanticErrorf(tok token.Token, format string, args ...interface{}) *CompileError {
	return newError(KindSemantic, tok, format, args...)
}

func GenerationErrorf(tok token.Token, format string, args ...interface{}) *CompileError {
	return newError(KindGeneration, tok, format, args...)
}

// IsKind reports whether err wraps a CompileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Kind == kind
}
