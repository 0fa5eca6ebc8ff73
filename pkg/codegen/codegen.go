package codegen

import (
	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/tac"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/util"
)

// Context is the state of one generation run. Temporaries restart at t0 for
// every statement; labels only ever grow.
type Context struct {
	prog          *tac.Program
	tempCount     int
	labelCount    int
	breakLabel    *tac.Label
	continueLabel *tac.Label
	line          int
	treeTAC       bool
	cfg           *config.Config
}

type genFailure struct{ err *util.CompileError }

func NewContext(cfg *config.Config) *Context {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Context{
		prog:    &tac.Program{},
		treeTAC: cfg.IsFeatureEnabled(config.FeatTreeTAC),
		cfg:     cfg,
	}
}

// Generate is a shorthand for NewContext(cfg).GenerateTAC(root).
func Generate(root *ast.Node, cfg *config.Config) (*tac.Program, error) {
	return NewContext(cfg).GenerateTAC(root)
}

// GenerateTAC lowers a checked program into three-address code.
func (ctx *Context) GenerateTAC(root *ast.Node) (prog *tac.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(genFailure)
			if !ok {
				panic(r)
			}
			prog, err = nil, f.err
		}
	}()

	if root == nil || root.Type != ast.Program {
		var tok token.Token
		if root != nil {
			tok = root.Tok
		}
		return nil, util.GenerationErrorf(tok, "expected a program node")
	}
	for _, stmt := range root.Data.(ast.ProgramNode).Stmts {
		ctx.codegenStmt(stmt)
	}
	ctx.prog.Labels = ctx.labelCount
	return ctx.prog, nil
}

func (ctx *Context) fail(tok token.Token, format string, args ...interface{}) {
	panic(genFailure{util.GenerationErrorf(tok, format, args...)})
}

func (ctx *Context) newTemp() *tac.Temp {
	t := &tac.Temp{ID: ctx.tempCount}
	ctx.tempCount++
	return t
}

func (ctx *Context) newLabel() *tac.Label {
	l := &tac.Label{ID: ctx.labelCount}
	ctx.labelCount++
	return l
}

// startStmt resets the temporaries and records the line for emitted code.
func (ctx *Context) startStmt(node *ast.Node) {
	ctx.tempCount = 0
	ctx.line = node.Tok.Line
}

func (ctx *Context) addInstr(instr *tac.Instruction) {
	instr.Line = ctx.line
	ctx.prog.Emit(instr)
}

func (ctx *Context) emitLabel(l *tac.Label) { ctx.addInstr(&tac.Instruction{Op: tac.OpLabel, Target: l}) }
func (ctx *Context) emitGoto(l *tac.Label)  { ctx.addInstr(&tac.Instruction{Op: tac.OpGoto, Target: l}) }

func (ctx *Context) emitAssign(dst, v tac.Value) {
	ctx.addInstr(&tac.Instruction{Op: tac.OpAssign, Dst: dst, Args: []tac.Value{v}})
}

func (ctx *Context) codegenStmt(node *ast.Node) {
	if node == nil {
		return
	}
	switch node.Type {
	case ast.Block:
		for _, stmt := range node.Data.(ast.BlockNode).Stmts {
			ctx.codegenStmt(stmt)
		}

	case ast.FuncDecl:
		ctx.codegenFuncDecl(node)

	case ast.VarDecl:
		ctx.startStmt(node)
		d := node.Data.(ast.VarDeclNode)
		dst := &tac.Name{Text: d.Name}
		if d.Init == nil {
			ctx.emitAssign(dst, &tac.Undefined{})
			return
		}
		ctx.emitAssign(dst, ctx.codegenValue(d.Init))

	case ast.Assign:
		ctx.startStmt(node)
		d := node.Data.(ast.AssignNode)
		ctx.emitAssign(&tac.Name{Text: d.Name}, ctx.codegenValue(d.Value))

	case ast.CallStmt:
		ctx.startStmt(node)
		call := ctx.codegenCall(node.Data.(ast.CallStmtNode).Call)
		ctx.addInstr(&tac.Instruction{Op: tac.OpCall, Args: []tac.Value{call}})

	case ast.Print:
		ctx.startStmt(node)
		args := node.Data.(ast.PrintNode).Args
		vals := make([]tac.Value, len(args))
		for i, arg := range args {
			vals[i] = ctx.codegenOperand(arg)
		}
		ctx.addInstr(&tac.Instruction{Op: tac.OpPrint, Args: vals})

	case ast.Return:
		ctx.startStmt(node)
		v := ctx.codegenValue(node.Data.(ast.ReturnNode).Expr)
		ctx.addInstr(&tac.Instruction{Op: tac.OpReturn, Args: []tac.Value{v}})

	case ast.If:
		ctx.codegenIf(node)

	case ast.While:
		ctx.codegenWhile(node)

	case ast.Break:
		ctx.startStmt(node)
		if ctx.breakLabel == nil {
			ctx.fail(node.Tok, "'break' not in a loop")
		}
		ctx.emitGoto(ctx.breakLabel)

	case ast.Continue:
		ctx.startStmt(node)
		if ctx.continueLabel == nil {
			ctx.fail(node.Tok, "'continue' not in a loop")
		}
		ctx.emitGoto(ctx.continueLabel)

	default:
		ctx.fail(node.Tok, "unexpected %s node in statement position", node.Type)
	}
}

func (ctx *Context) codegenFuncDecl(node *ast.Node) {
	d := node.Data.(ast.FuncDeclNode)
	ctx.startStmt(node)

	kind := "function"
	if d.IsProcedure {
		kind = "procedure"
	}
	params := make([]tac.Value, len(d.Params))
	for i, p := range d.Params {
		params[i] = &tac.Raw{Text: typeName(p.Type) + " " + p.Name}
	}
	ctx.addInstr(&tac.Instruction{Op: tac.OpFuncBegin, Operator: kind, Dst: &tac.Name{Text: d.Name}, Args: params})
	ctx.codegenStmt(d.Body)

	ctx.line = lastLine(node)
	ctx.addInstr(&tac.Instruction{Op: tac.OpFuncEnd, Operator: kind})
}

// codegenIf emits:
//
//	t0 = cond
//	ifFalse t0 goto Lelse|Lend
//	then...
//	goto Lend        (with else)
//	Lelse:           (with else)
//	else...
//	Lend:
func (ctx *Context) codegenIf(node *ast.Node) {
	d := node.Data.(ast.IfNode)

	var elseLabel *tac.Label
	if d.ElseBody != nil {
		elseLabel = ctx.newLabel()
	}
	endLabel := ctx.newLabel()

	ctx.startStmt(node)
	cond := ctx.codegenCond(d.Cond, d.CondText)
	falseTarget := endLabel
	if elseLabel != nil {
		falseTarget = elseLabel
	}
	ctx.addInstr(&tac.Instruction{Op: tac.OpIfFalse, Args: []tac.Value{cond}, Target: falseTarget})

	ctx.codegenStmt(d.ThenBody)

	if elseLabel != nil {
		ctx.line = lastLine(d.ThenBody)
		ctx.emitGoto(endLabel)
		ctx.line = d.ElseBody.Tok.Line
		ctx.emitLabel(elseLabel)
		ctx.codegenStmt(d.ElseBody)
	}
	ctx.line = lastLine(node)
	ctx.emitLabel(endLabel)
}

// codegenWhile emits:
//
//	Lstart:
//	t0 = cond
//	ifFalse t0 goto Lend
//	body...          (break: goto Lend, continue: goto Lstart)
//	goto Lstart
//	Lend:
func (ctx *Context) codegenWhile(node *ast.Node) {
	d := node.Data.(ast.WhileNode)
	startLabel := ctx.newLabel()
	endLabel := ctx.newLabel()

	oldBreak, oldContinue := ctx.breakLabel, ctx.continueLabel
	ctx.breakLabel, ctx.continueLabel = endLabel, startLabel
	defer func() { ctx.breakLabel, ctx.continueLabel = oldBreak, oldContinue }()

	ctx.startStmt(node)
	ctx.emitLabel(startLabel)
	cond := ctx.codegenCond(d.Cond, d.CondText)
	ctx.addInstr(&tac.Instruction{Op: tac.OpIfFalse, Args: []tac.Value{cond}, Target: endLabel})

	ctx.codegenStmt(d.Body)

	ctx.line = lastLine(node)
	ctx.emitGoto(startLabel)
	ctx.emitLabel(endLabel)
}

func typeName(t ast.Type) string {
	switch t {
	case ast.TypeInt:
		return "int"
	case ast.TypeBool:
		return "bool"
	}
	return "none"
}

// lastLine is the highest source line covered by node.
func lastLine(node *ast.Node) int {
	line := 0
	ast.Inspect(node, func(n *ast.Node) bool {
		if n.Tok.Line > line {
			line = n.Tok.Line
		}
		return true
	})
	return line
}
