package codegen

import (
	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/tac"
	"github.com/xplshn/tacc/pkg/token"
)

var operatorText = map[token.Kind]string{
	token.Plus: "+", token.Minus: "-", token.Multiply: "*", token.Divide: "/", token.Module: "%",
	token.Equal: "==", token.Different: "!=", token.Greater: ">", token.GreaterOrEqual: ">=",
	token.Less: "<", token.LessOrEqual: "<=", token.And: "and", token.Or: "or",
}

func isLeaf(node *ast.Node) bool {
	switch node.Type {
	case ast.Number, ast.Boolean, ast.Ident:
		return true
	}
	return false
}

func leafValue(node *ast.Node) tac.Value {
	return &tac.Name{Text: node.Tok.Text}
}

// codegenValue produces the right-hand side of `dst = ...`. Single operands and
// calls are used as they are; anything else is decomposed into temporaries and
// the last temporary is returned.
func (ctx *Context) codegenValue(node *ast.Node) tac.Value {
	switch {
	case isLeaf(node):
		return leafValue(node)
	case node.Type == ast.FuncCall:
		return ctx.codegenCall(node)
	case ctx.treeTAC:
		return ctx.codegenTree(node)
	}
	return ctx.codegenChain(node)
}

// codegenOperand is codegenValue for positions that cannot hold a call:
// call arguments, print arguments and chain operands.
func (ctx *Context) codegenOperand(node *ast.Node) tac.Value {
	v := ctx.codegenValue(node)
	if _, ok := v.(*tac.Call); ok {
		t := ctx.newTemp()
		ctx.emitAssign(t, v)
		return t
	}
	return v
}

func (ctx *Context) codegenCall(node *ast.Node) *tac.Call {
	if node.Type != ast.FuncCall {
		ctx.fail(node.Tok, "expected a call, found %s", node.Type)
	}
	d := node.Data.(ast.FuncCallNode)
	args := make([]tac.Value, len(d.Args))
	for i, arg := range d.Args {
		args[i] = ctx.codegenOperand(arg)
	}
	return &tac.Call{Callee: d.Name, Args: args}
}

func (ctx *Context) codegenUnary(node *ast.Node, operand tac.Value) tac.Value {
	d := node.Data.(ast.UnaryOpNode)
	if d.Op != token.Not {
		ctx.fail(node.Tok, "unsupported unary operator %s", d.Op)
	}
	t := ctx.newTemp()
	ctx.addInstr(&tac.Instruction{Op: tac.OpUnary, Dst: t, Operator: "not", Args: []tac.Value{operand}})
	return t
}

// flatten lists the operands and operators of the binary chain rooted at node
// in source order, ignoring grouping. Operands that are not leaves are lowered
// first.
func (ctx *Context) flatten(node *ast.Node, terms *[]tac.Value, ops *[]string) {
	switch node.Type {
	case ast.BinaryOp:
		d := node.Data.(ast.BinaryOpNode)
		ctx.flatten(d.Left, terms, ops)
		op, ok := operatorText[d.Op]
		if !ok {
			ctx.fail(node.Tok, "unsupported binary operator %s", d.Op)
		}
		*ops = append(*ops, op)
		ctx.flatten(d.Right, terms, ops)
	case ast.UnaryOp:
		*terms = append(*terms, ctx.codegenUnary(node, ctx.codegenOperand(node.Data.(ast.UnaryOpNode).Expr)))
	default:
		*terms = append(*terms, ctx.codegenOperand(node))
	}
}

// codegenChain decomposes an expression left to right:
//
//	t0 = a op0 b
//	t1 = t0 op1 c
//	...
func (ctx *Context) codegenChain(node *ast.Node) tac.Value {
	var terms []tac.Value
	var ops []string
	ctx.flatten(node, &terms, &ops)
	if len(terms) != len(ops)+1 {
		ctx.fail(node.Tok, "malformed operator chain")
	}
	acc := terms[0]
	for i, op := range ops {
		t := ctx.newTemp()
		ctx.addInstr(&tac.Instruction{Op: tac.OpBinary, Dst: t, Operator: op, Args: []tac.Value{acc, terms[i+1]}})
		acc = t
	}
	return acc
}

// codegenTree decomposes an expression following the shape of the tree, so
// precedence and grouping are kept.
func (ctx *Context) codegenTree(node *ast.Node) tac.Value {
	switch node.Type {
	case ast.BinaryOp:
		d := node.Data.(ast.BinaryOpNode)
		left := ctx.codegenTreeOperand(d.Left)
		right := ctx.codegenTreeOperand(d.Right)
		op, ok := operatorText[d.Op]
		if !ok {
			ctx.fail(node.Tok, "unsupported binary operator %s", d.Op)
		}
		t := ctx.newTemp()
		ctx.addInstr(&tac.Instruction{Op: tac.OpBinary, Dst: t, Operator: op, Args: []tac.Value{left, right}})
		return t
	case ast.UnaryOp:
		return ctx.codegenUnary(node, ctx.codegenTreeOperand(node.Data.(ast.UnaryOpNode).Expr))
	}
	return ctx.codegenOperand(node)
}

func (ctx *Context) codegenTreeOperand(node *ast.Node) tac.Value {
	if isLeaf(node) || node.Type == ast.FuncCall {
		return ctx.codegenOperand(node)
	}
	return ctx.codegenTree(node)
}

// codegenCond evaluates an if/while condition into a temporary. The default
// form assigns the condition text, as written, to t0.
func (ctx *Context) codegenCond(cond *ast.Node, text string) tac.Value {
	if !ctx.treeTAC {
		t := ctx.newTemp()
		ctx.emitAssign(t, &tac.Raw{Text: text})
		return t
	}
	v := ctx.codegenValue(cond)
	if t, ok := v.(*tac.Temp); ok {
		return t
	}
	t := ctx.newTemp()
	ctx.emitAssign(t, v)
	return t
}
