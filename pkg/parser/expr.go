package parser

import (
	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/symtab"
	"github.com/xplshn/tacc/pkg/token"
)

// Expression Parsing
//
//	expression := arith (REL_OR_LOGIC arith)*
//	arith      := term (('+' | '-') term)*
//	term       := factor (('*' | '/' | '%') factor)*
//	factor     := '(' expression ')' | IDENT call? | INTEGER | TRUE | FALSE | NOT factor
//
// Every binary level associates to the left; `and`/`or` share the level of the
// relational operators.

func (p *Parser) parseExpr() *ast.Node {
	left := p.parseArith()
	for p.current.Kind.IsRelOrLogic() {
		opTok := p.current
		p.advance()
		right := p.parseArith()
		p.checkBinary(opTok, left, right)
		left = ast.NewBinaryOp(opTok, left, right, ast.TypeBool)
	}
	return left
}

func (p *Parser) parseArith() *ast.Node {
	left := p.parseTerm()
	for p.check(token.Plus) || p.check(token.Minus) {
		opTok := p.current
		p.advance()
		right := p.parseTerm()
		p.checkBinary(opTok, left, right)
		left = ast.NewBinaryOp(opTok, left, right, ast.TypeInt)
	}
	return left
}

func (p *Parser) parseTerm() *ast.Node {
	left := p.parseFactor()
	for p.check(token.Multiply) || p.check(token.Divide) || p.check(token.Module) {
		opTok := p.current
		p.advance()
		right := p.parseFactor()
		p.checkBinary(opTok, left, right)
		left = ast.NewBinaryOp(opTok, left, right, ast.TypeInt)
	}
	return left
}

func (p *Parser) parseFactor() *ast.Node {
	tok := p.current
	switch tok.Kind {
	case token.LParen:
		p.advance()
		expr := p.parseExpr()
		p.expect(token.RParen)
		return expr
	case token.Integer:
		p.advance()
		return ast.NewNumber(tok)
	case token.True, token.False:
		p.advance()
		return ast.NewBoolean(tok)
	case token.Not:
		p.advance()
		operand := p.parseFactor()
		if operand.Typ != ast.TypeBool {
			p.semanticError(tok, "operator 'not' requires a BOOL operand, found %s", operand.Typ)
		}
		return ast.NewUnaryOp(tok, operand)
	case token.Identifier:
		p.advance()
		idx := p.prevPos
		if p.check(token.LParen) {
			call := p.parseCall(tok, idx)
			if call.Typ == ast.TypeNone {
				p.semanticError(tok, "procedure '%s' does not return a value", tok.Text)
			}
			return call
		}
		slot := p.resolve(tok, idx)
		if slot.IsCallable() {
			p.semanticError(tok, "%s '%s' used as a value without a call", slot.Kind, tok.Text)
		}
		p.table.Slot(p.table.At(idx)).Type = slot.Type
		return ast.NewIdent(tok, slot.Type)
	case token.EOF:
		p.syntaxError("expected expression, found end of input")
	}
	p.syntaxError("expected expression, found %s", tok)
	return nil
}

// parseCall parses `( args )` after the callee name and checks the arguments
// against the callee's parameter list.
func (p *Parser) parseCall(nameTok token.Token, idx int) *ast.Node {
	callee := p.resolve(nameTok, idx)
	if !callee.IsCallable() {
		p.semanticError(nameTok, "%s '%s' is not callable", callee.Kind, nameTok.Text)
	}
	p.expect(token.LParen)
	var args []*ast.Node
	if !p.check(token.RParen) {
		for {
			args = append(args, p.parseExpr())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen)
	p.checkArgs(nameTok, callee, args)
	return ast.NewFuncCall(nameTok, args, callee.Type)
}

func (p *Parser) checkArgs(nameTok token.Token, callee *symtab.Slot, args []*ast.Node) {
	if len(args) != len(callee.Params) {
		p.semanticError(nameTok, "'%s' expects %d argument(s), found %d", nameTok.Text, len(callee.Params), len(args))
	}
	found := make([]ast.Type, len(args))
	mismatch := -1
	for i, arg := range args {
		found[i] = arg.Typ
		if arg.Typ != callee.Params[i] && mismatch < 0 {
			mismatch = i
		}
	}
	if mismatch >= 0 {
		p.semanticError(args[mismatch].Tok, "argument %d of '%s': expected %s, found %s",
			mismatch+1, nameTok.Text, ast.FormatTypes(callee.Params), ast.FormatTypes(found))
	}
}
