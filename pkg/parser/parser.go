package parser

import (
	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/symtab"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/util"
)

// Result is everything a successful analysis produces.
type Result struct {
	// Stream holds every consumed token in order, interleaved with markers.
	Stream  []token.Token
	Root    *ast.Node
	Markers int
	Symbols *symtab.Table
}

// Parser holds the state for the parsing process
type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	previous token.Token
	prevPos  int

	cfg       *config.Config
	table     *symtab.Table
	scopes    *symtab.Scopes
	declSites []int

	stream    []token.Token
	markers   int
	loopDepth int
	fn        *symtab.Slot
}

// bailout carries the first error up to Parse.
type bailout struct{ err *util.CompileError }

// NewParser creates and initializes a new Parser from a token stream and
// the symbol table the lexer built for it.
func NewParser(tokens []token.Token, table *symtab.Table, cfg *config.Config) *Parser {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if table == nil {
		table = symtab.NewTable()
		for i, tok := range tokens {
			if tok.Kind == token.Identifier {
				table.Add(i, tok)
			}
		}
	}
	p := &Parser{
		tokens: tokens,
		cfg:    cfg,
		table:  table,
		scopes: symtab.NewScopes(table),
	}
	p.current = p.at(0)
	p.collectDeclSites()
	return p
}

// Parse analyzes the whole token list. The first error aborts the run and no
// partial result is returned.
func Parse(tokens []token.Token, table *symtab.Table, cfg *config.Config) (*Result, error) {
	return NewParser(tokens, table, cfg).Parse()
}

func (p *Parser) Parse() (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			res, err = nil, b.err
		}
	}()

	var stmts []*ast.Node
	for !p.check(token.EOF) {
		stmts = append(stmts, p.parseTopLevel())
	}
	p.warnUnreachable(stmts)
	return &Result{
		Stream:  p.stream,
		Root:    ast.NewProgram(stmts),
		Markers: p.markers,
		Symbols: p.table,
	}, nil
}

// Parser helpers

func (p *Parser) at(i int) token.Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	if len(p.tokens) == 0 {
		return token.Token{Kind: token.EOF, Line: 1, Column: 1}
	}
	last := p.tokens[len(p.tokens)-1]
	return token.Token{Kind: token.EOF, Line: last.Line, Column: last.Column + len(last.Text)}
}

func (p *Parser) advance() {
	if p.pos >= len(p.tokens) {
		return
	}
	p.stream = append(p.stream, p.current)
	p.previous = p.current
	p.prevPos = p.pos
	p.pos++
	p.current = p.at(p.pos)
}

func (p *Parser) peek() token.Token { return p.at(p.pos + 1) }

func (p *Parser) check(kind token.Kind) bool { return p.current.Kind == kind }

func (p *Parser) match(kind token.Kind) bool {
	if !p.check(kind) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(kind token.Kind) {
	if p.check(kind) {
		p.advance()
		return
	}
	p.syntaxError("expected %s, found %s", kind, p.current)
}

func (p *Parser) mark(kind token.Kind, line int) {
	p.stream = append(p.stream, token.NewMarker(kind, line))
	p.markers++
}

func (p *Parser) syntaxError(format string, args ...interface{}) {
	panic(bailout{util.SyntaxErrorf(p.current, format, args...)})
}

func (p *Parser) semanticError(tok token.Token, format string, args ...interface{}) {
	panic(bailout{util.SemanticErrorf(tok, format, args...)})
}

// Statement Parsing

func (p *Parser) parseTopLevel() *ast.Node {
	if p.check(token.Function) || p.check(token.Procedure) {
		return p.parseFuncDecl()
	}
	return p.parseStmt()
}

func (p *Parser) parseStmt() *ast.Node {
	switch p.current.Kind {
	case token.Int, token.Bool:
		return p.parseVarDecl()
	case token.Identifier:
		switch p.peek().Kind {
		case token.Assign:
			return p.parseAssign()
		case token.LParen:
			return p.parseCallStmt()
		}
		p.advance()
		p.syntaxError("expected ASSIGN or LPAREN after '%s', found %s", p.previous.Text, p.current)
	case token.Print:
		return p.parsePrint()
	case token.Return:
		return p.parseReturn()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.Break, token.Continue:
		return p.parseJump()
	case token.Function, token.Procedure:
		p.syntaxError("%s definitions are only allowed at program level", p.current.Text)
	case token.EOF:
		p.syntaxError("expected statement, found end of input")
	}
	p.syntaxError("unexpected %s", p.current)
	return nil
}

func (p *Parser) parseVarDecl() *ast.Node {
	typ := ast.TypeOf(p.current.Kind)
	p.advance()

	nameTok := p.current
	p.expect(token.Identifier)
	slot := p.prevPos

	var init *ast.Node
	var text string
	if p.match(token.Assign) {
		start := len(p.stream)
		init = p.parseExpr()
		text = p.streamText(start)
		if init.Typ != typ {
			p.semanticError(nameTok, "type mismatch in declaration of '%s': expected %s, found %s", nameTok.Text, typ, init.Typ)
		}
	} else {
		util.Warn(p.cfg, config.WarnUninitialized, nameTok, "'%s' declared without an initializer", nameTok.Text)
	}
	p.expect(token.Semicolon)

	s := p.declare(slot, nameTok, symtab.SlotVar, typ)
	s.Value, s.HasValue = text, init != nil
	return ast.NewVarDecl(nameTok, typ, init)
}

func (p *Parser) parseAssign() *ast.Node {
	nameTok := p.current
	p.advance()
	target := p.resolve(nameTok, p.prevPos)
	if target.IsCallable() {
		p.semanticError(nameTok, "cannot assign to %s '%s'", target.Kind, nameTok.Text)
	}
	p.expect(token.Assign)
	value := p.parseExpr()
	if value.Typ != target.Type {
		p.semanticError(nameTok, "type mismatch in assignment to '%s': expected %s, found %s", nameTok.Text, target.Type, value.Typ)
	}
	p.expect(token.Semicolon)
	return ast.NewAssign(nameTok, value)
}

func (p *Parser) parseCallStmt() *ast.Node {
	nameTok := p.current
	p.advance()
	call := p.parseCall(nameTok, p.prevPos)
	p.expect(token.Semicolon)
	return ast.NewCallStmt(nameTok, call)
}

func (p *Parser) parsePrint() *ast.Node {
	tok := p.current
	p.advance()
	p.expect(token.LParen)
	if p.check(token.RParen) {
		p.syntaxError("print requires at least one argument")
	}
	var args []*ast.Node
	for {
		args = append(args, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	p.expect(token.Semicolon)
	return ast.NewPrint(tok, args)
}

func (p *Parser) parseReturn() *ast.Node {
	tok := p.current
	if p.fn == nil {
		p.semanticError(tok, "'return' outside of a function")
	}
	if p.fn.Kind == symtab.SlotProc {
		p.semanticError(tok, "procedure '%s' cannot return a value", p.fn.Name)
	}
	p.advance()
	expr := p.parseExpr()
	if expr.Typ != p.fn.Type {
		p.semanticError(tok, "function '%s' returns %s, found %s", p.fn.Name, p.fn.Type, expr.Typ)
	}
	p.expect(token.Semicolon)
	return ast.NewReturn(tok, expr)
}

func (p *Parser) parseCondition(construct string) (*ast.Node, string) {
	p.expect(token.LParen)
	start := len(p.stream)
	cond := p.parseExpr()
	text := p.streamText(start)
	p.expect(token.RParen)
	if cond.Typ != ast.TypeBool {
		p.semanticError(cond.Tok, "condition of '%s' must be BOOL, found %s", construct, cond.Typ)
	}
	return cond, text
}

func (p *Parser) parseIf() *ast.Node {
	tok := p.current
	p.advance()
	cond, text := p.parseCondition("if")

	p.mark(token.BeginIf, p.current.Line)
	thenBody := p.parseBlock()
	p.mark(token.EndIf, p.previous.Line)

	var elseBody *ast.Node
	if p.match(token.Else) {
		p.mark(token.BeginElse, p.current.Line)
		elseBody = p.parseBlock()
		p.mark(token.EndElse, p.previous.Line)
	}
	return ast.NewIf(tok, cond, text, thenBody, elseBody)
}

func (p *Parser) parseWhile() *ast.Node {
	tok := p.current
	p.advance()
	cond, text := p.parseCondition("while")

	p.mark(token.BeginLoop, p.current.Line)
	p.loopDepth++
	body := p.parseBlock()
	p.loopDepth--
	p.mark(token.EndLoop, p.previous.Line)
	return ast.NewWhile(tok, cond, text, body)
}

func (p *Parser) parseJump() *ast.Node {
	tok := p.current
	if p.loopDepth == 0 {
		p.semanticError(tok, "'%s' outside of a loop", tok.Text)
	}
	p.advance()
	p.expect(token.Semicolon)
	if tok.Kind == token.Break {
		return ast.NewBreak(tok)
	}
	return ast.NewContinue(tok)
}

// parseBlock parses `{ stmt* }` inside a fresh scope frame.
func (p *Parser) parseBlock() *ast.Node {
	p.scopes.Push()
	defer p.scopes.Pop()
	return p.parseBraced()
}

// parseBraced parses `{ stmt* }` in the current frame.
func (p *Parser) parseBraced() *ast.Node {
	tok := p.current
	p.expect(token.LBrace)
	var stmts []*ast.Node
	for !p.check(token.RBrace) {
		if p.check(token.EOF) {
			p.syntaxError("expected RBRACE, found end of input")
		}
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(token.RBrace)
	p.warnUnreachable(stmts)
	return ast.NewBlock(tok, stmts)
}

func (p *Parser) parseFuncDecl() *ast.Node {
	kwTok := p.current
	isProc := kwTok.Kind == token.Procedure
	p.advance()

	nameTok := p.current
	p.expect(token.Identifier)
	kind, begin, end := symtab.SlotFunc, token.BeginFunction, token.EndFunction
	if isProc {
		kind, begin, end = symtab.SlotProc, token.BeginProcedure, token.EndProcedure
	}
	// Bound before the body so it can call itself.
	fn := p.declare(p.prevPos, nameTok, kind, ast.TypeNone)
	p.mark(begin, nameTok.Line)

	p.scopes.Push()
	defer p.scopes.Pop()

	p.expect(token.LParen)
	var params []ast.Param
	if !p.check(token.RParen) {
		for {
			if !p.current.Kind.IsTypeKeyword() {
				p.syntaxError("expected parameter type, found %s", p.current)
			}
			typ := ast.TypeOf(p.current.Kind)
			p.advance()
			pTok := p.current
			p.expect(token.Identifier)
			p.declare(p.prevPos, pTok, symtab.SlotParam, typ)
			params = append(params, ast.Param{Name: pTok.Text, Type: typ})
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen)

	ret := ast.TypeNone
	if !isProc {
		p.expect(token.Arrow)
		if !p.current.Kind.IsTypeKeyword() {
			p.syntaxError("expected return type, found %s", p.current)
		}
		ret = ast.TypeOf(p.current.Kind)
		p.advance()
	}

	fn.Type = ret
	fn.Params = make([]ast.Type, len(params))
	for i, param := range params {
		fn.Params[i] = param.Type
	}

	p.fn = fn
	body := p.parseBraced()
	p.fn = nil
	p.mark(end, p.previous.Line)

	if !isProc && p.cfg.IsFeatureEnabled(config.FeatStrictReturn) && !containsReturn(body) {
		p.semanticError(nameTok, "function '%s' has no return statement", nameTok.Text)
	}
	return ast.NewFuncDecl(nameTok, nameTok.Text, isProc, params, ret, body)
}
