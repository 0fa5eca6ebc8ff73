package parser

import (
	"strings"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/symtab"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/util"
)

// collectDeclSites records the slots of identifiers that sit in a declaring
// position. An unresolved name with an unbound declaring slot is a use before
// declaration rather than an unknown name.
func (p *Parser) collectDeclSites() {
	for i := 1; i < len(p.tokens); i++ {
		if p.tokens[i].Kind != token.Identifier {
			continue
		}
		switch p.tokens[i-1].Kind {
		case token.Int, token.Bool, token.Function, token.Procedure:
			if s := p.table.At(i); s >= 0 {
				p.declSites = append(p.declSites, s)
			}
		}
	}
}

func (p *Parser) shadowing() bool { return p.cfg.IsFeatureEnabled(config.FeatShadowing) }

// declare binds the slot owned by the token at tokIndex in the innermost frame.
func (p *Parser) declare(tokIndex int, tok token.Token, kind symtab.SlotKind, typ ast.Type) *symtab.Slot {
	if prev, ok := p.scopes.Collision(tok.Text, p.shadowing()); ok {
		p.semanticError(tok, "'%s' already declared at line %d", tok.Text, prev.Line)
	}
	i := p.table.At(tokIndex)
	if i < 0 {
		p.semanticError(tok, "no symbol slot for '%s'", tok.Text)
	}
	p.scopes.Bind(i)
	slot := p.table.Slot(i)
	slot.Kind, slot.Type = kind, typ
	return slot
}

// resolve finds the declaration a use of tok refers to.
func (p *Parser) resolve(tok token.Token, tokIndex int) *symtab.Slot {
	order := symtab.OuterFirst
	if p.shadowing() {
		order = symtab.InnerFirst
	}
	if slot, ok := p.scopes.Lookup(tok.Text, order); ok {
		return slot
	}
	for _, s := range p.declSites {
		if slot := p.table.Slot(s); slot.Name == tok.Text && !slot.Bound() && slot.Tok != tokIndex {
			p.semanticError(tok, "'%s' used before declaration (declared at line %d)", tok.Text, slot.Line)
		}
	}
	p.semanticError(tok, "undeclared identifier '%s'", tok.Text)
	return nil
}

func (p *Parser) checkBinary(opTok token.Token, left, right *ast.Node) {
	op := opTok.Kind
	switch {
	case op.IsArith():
		if left.Typ != ast.TypeInt || right.Typ != ast.TypeInt {
			p.semanticError(opTok, "operator '%s' requires INT operands, found %s and %s", opTok.Text, left.Typ, right.Typ)
		}
	case op.IsLogic():
		if left.Typ != ast.TypeBool || right.Typ != ast.TypeBool {
			p.semanticError(opTok, "operator '%s' requires BOOL operands, found %s and %s", opTok.Text, left.Typ, right.Typ)
		}
	default:
		if left.Typ != right.Typ {
			p.semanticError(opTok, "operator '%s' requires operands of the same type, found %s and %s", opTok.Text, left.Typ, right.Typ)
		}
	}
}

// streamText renders the stream tokens appended since start as source-like
// text: `f(a, b) > (c + 1)`.
func (p *Parser) streamText(start int) string {
	return JoinTokens(p.stream[start:])
}

func JoinTokens(toks []token.Token) string {
	var sb strings.Builder
	for i, tok := range toks {
		if i > 0 && needsSpace(toks[i-1], tok) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Text)
	}
	return sb.String()
}

func needsSpace(prev, cur token.Token) bool {
	switch {
	case prev.Kind == token.LParen:
		return false
	case cur.Kind == token.RParen, cur.Kind == token.Comma:
		return false
	case cur.Kind == token.LParen && prev.Kind == token.Identifier:
		return false
	}
	return true
}

func containsReturn(body *ast.Node) bool {
	found := false
	ast.Inspect(body, func(n *ast.Node) bool {
		if n.Type == ast.Return {
			found = true
		}
		return !found
	})
	return found
}

func (p *Parser) warnUnreachable(stmts []*ast.Node) {
	for i, stmt := range stmts[:max(len(stmts)-1, 0)] {
		switch stmt.Type {
		case ast.Return, ast.Break, ast.Continue:
			next := stmts[i+1]
			util.Warn(p.cfg, config.WarnUnreachableCode, next.Tok, "unreachable code after '%s'", stmt.Tok.Text)
			return
		}
	}
}
