// Package ast defines the tree the parser builds while it checks a program.
package ast

import (
	"strings"

	"github.com/xplshn/tacc/pkg/token"
)

// Type is the static type of a value. TypeNone marks "no type yet" on symbol slots
// and "returns nothing" on procedures.
type Type int

const (
	TypeNone Type = iota
	TypeInt
	TypeBool
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "INT"
	case TypeBool:
		return "BOOL"
	}
	return "NONE"
}

// TypeOf maps a type keyword token to its Type.
func TypeOf(k token.Kind) Type {
	switch k {
	case token.Int:
		return TypeInt
	case token.Bool:
		return TypeBool
	}
	return TypeNone
}

// FormatTypes renders a parameter list as "(INT, BOOL)".
func FormatTypes(types []Type) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type NodeType int

const (
	// Expressions
	Number NodeType = iota
	Boolean
	Ident
	BinaryOp
	UnaryOp
	FuncCall

	// Statements
	Program
	FuncDecl
	VarDecl
	Assign
	CallStmt
	Print
	Return
	If
	While
	Break
	Continue
	Block
)

var nodeTypeNames = [...]string{
	Number: "Number", Boolean: "Boolean", Ident: "Ident", BinaryOp: "BinaryOp",
	UnaryOp: "UnaryOp", FuncCall: "FuncCall", Program: "Program", FuncDecl: "FuncDecl",
	VarDecl: "VarDecl", Assign: "Assign", CallStmt: "CallStmt", Print: "Print",
	Return: "Return", If: "If", While: "While", Break: "Break", Continue: "Continue",
	Block: "Block",
}

func (n NodeType) String() string {
	if n >= 0 && int(n) < len(nodeTypeNames) {
		return nodeTypeNames[n]
	}
	return "Unknown"
}

// Node represents a node in the tree. Typ is set on expressions once checked.
type Node struct {
	Type NodeType
	Tok  token.Token
	Data interface{}
	Typ  Type
}

// --- Node Data Structs ---
type NumberNode struct{ Text string }
type BooleanNode struct{ Value bool }
type IdentNode struct{ Name string }
type BinaryOpNode struct {
	Op          token.Kind
	Left, Right *Node
}
type UnaryOpNode struct {
	Op   token.Kind
	Expr *Node
}
type FuncCallNode struct {
	Name string
	Args []*Node
}
type ProgramNode struct{ Stmts []*Node }
type Param struct {
	Name string
	Type Type
}
type FuncDeclNode struct {
	Name        string
	IsProcedure bool
	Params      []Param
	ReturnType  Type
	Body        *Node
}
type VarDeclNode struct {
	Name string
	Type Type
	Init *Node
}
type AssignNode struct {
	Name  string
	Value *Node
}
type CallStmtNode struct{ Call *Node }
type PrintNode struct{ Args []*Node }
type ReturnNode struct{ Expr *Node }
// CondText is the condition as written, without the enclosing parentheses.
type IfNode struct {
	Cond, ThenBody, ElseBody *Node
	CondText                 string
}
type WhileNode struct {
	Cond, Body *Node
	CondText   string
}
type BlockNode struct{ Stmts []*Node }

// --- Node Constructors ---

func newNode(tok token.Token, nodeType NodeType, data interface{}) *Node {
	return &Node{Type: nodeType, Tok: tok, Data: data}
}

func NewNumber(tok token.Token) *Node {
	n := newNode(tok, Number, NumberNode{Text: tok.Text})
	n.Typ = TypeInt
	return n
}
func NewBoolean(tok token.Token) *Node {
	n := newNode(tok, Boolean, BooleanNode{Value: tok.Kind == token.True})
	n.Typ = TypeBool
	return n
}
func NewIdent(tok token.Token, typ Type) *Node {
	n := newNode(tok, Ident, IdentNode{Name: tok.Text})
	n.Typ = typ
	return n
}
func NewBinaryOp(tok token.Token, left, right *Node, typ Type) *Node {
	n := newNode(tok, BinaryOp, BinaryOpNode{Op: tok.Kind, Left: left, Right: right})
	n.Typ = typ
	return n
}
func NewUnaryOp(tok token.Token, expr *Node) *Node {
	n := newNode(tok, UnaryOp, UnaryOpNode{Op: tok.Kind, Expr: expr})
	n.Typ = TypeBool
	return n
}
func NewFuncCall(tok token.Token, args []*Node, typ Type) *Node {
	n := newNode(tok, FuncCall, FuncCallNode{Name: tok.Text, Args: args})
	n.Typ = typ
	return n
}
func NewProgram(stmts []*Node) *Node {
	return newNode(token.Token{Line: 1}, Program, ProgramNode{Stmts: stmts})
}
func NewFuncDecl(tok token.Token, name string, isProc bool, params []Param, ret Type, body *Node) *Node {
	return newNode(tok, FuncDecl, FuncDeclNode{Name: name, IsProcedure: isProc, Params: params, ReturnType: ret, Body: body})
}
func NewVarDecl(tok token.Token, typ Type, init *Node) *Node {
	return newNode(tok, VarDecl, VarDeclNode{Name: tok.Text, Type: typ, Init: init})
}
func NewAssign(tok token.Token, value *Node) *Node {
	return newNode(tok, Assign, AssignNode{Name: tok.Text, Value: value})
}
func NewCallStmt(tok token.Token, call *Node) *Node {
	return newNode(tok, CallStmt, CallStmtNode{Call: call})
}
func NewPrint(tok token.Token, args []*Node) *Node {
	return newNode(tok, Print, PrintNode{Args: args})
}
func NewReturn(tok token.Token, expr *Node) *Node {
	return newNode(tok, Return, ReturnNode{Expr: expr})
}
func NewIf(tok token.Token, cond *Node, condText string, thenBody, elseBody *Node) *Node {
	return newNode(tok, If, IfNode{Cond: cond, CondText: condText, ThenBody: thenBody, ElseBody: elseBody})
}
func NewWhile(tok token.Token, cond *Node, condText string, body *Node) *Node {
	return newNode(tok, While, WhileNode{Cond: cond, CondText: condText, Body: body})
}
func NewBreak(tok token.Token) *Node    { return newNode(tok, Break, nil) }
func NewContinue(tok token.Token) *Node { return newNode(tok, Continue, nil) }
func NewBlock(tok token.Token, stmts []*Node) *Node {
	return newNode(tok, Block, BlockNode{Stmts: stmts})
}
