// Package compiler runs the whole pipeline: tokens, analysis, TAC.
package compiler

import (
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/codegen"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/parser"
	"github.com/xplshn/tacc/pkg/symtab"
	"github.com/xplshn/tacc/pkg/tac"
	"github.com/xplshn/tacc/pkg/token"
)

type Result struct {
	Name    string
	Source  string
	Tokens  []token.Token
	Symbols *symtab.Table
	Stream  []token.Token
	Markers int
	Root    *ast.Node
	Program *tac.Program
	Lines   []string
}

// Text is the TAC output, newline terminated.
func (r *Result) Text() string {
	if len(r.Lines) == 0 {
		return ""
	}
	return strings.Join(r.Lines, "\n") + "\n"
}

// Fingerprint identifies the generated code; identical input always yields
// the same value.
func (r *Result) Fingerprint() uint64 { return xxhash.Sum64String(r.Text()) }

// Stage names a pipeline step for progress reporting.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageGenerate
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "Tokenizing"
	case StageParse:
		return "Parsing"
	}
	return "Generating three-address code"
}

type Options struct {
	Config *config.Config
	// OnStage, if set, is called before each step runs.
	OnStage func(Stage)
}

// Compile runs every stage on src and stops at the first error, which is
// always a *util.CompileError.
func Compile(name, src string, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	stage := func(s Stage) {
		if opts.OnStage != nil {
			opts.OnStage(s)
		}
	}

	res := &Result{Name: name, Source: src}

	stage(StageLex)
	tokens, table, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	res.Tokens, res.Symbols = tokens, table

	stage(StageParse)
	parsed, err := parser.Parse(tokens, table, cfg)
	if err != nil {
		return nil, err
	}
	res.Stream, res.Markers, res.Root = parsed.Stream, parsed.Markers, parsed.Root

	stage(StageGenerate)
	prog, err := codegen.Generate(parsed.Root, cfg)
	if err != nil {
		return nil, err
	}
	res.Program = prog
	res.Lines = prog.Lines()
	return res, nil
}
