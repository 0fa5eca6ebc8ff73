// Package tac defines the three-address instruction form produced by codegen.
package tac

import (
	"fmt"
	"strings"
)

type Op int

const (
	OpAssign Op = iota
	OpBinary
	OpUnary
	OpCall
	OpLabel
	OpGoto
	OpIfFalse
	OpReturn
	OpPrint
	OpFuncBegin
	OpFuncEnd
)

type Value interface {
	isValue()
	String() string
}

// Name is a source-level variable, parameter or literal.
type Name struct{ Text string }
type Temp struct{ ID int }
type Label struct{ ID int }

// Raw is pre-rendered operand text, used for flattened conditions.
type Raw struct{ Text string }
type Call struct {
	Callee string
	Args   []Value
}
type Undefined struct{}

func (n *Name) isValue()      {}
func (t *Temp) isValue()      {}
func (l *Label) isValue()     {}
func (r *Raw) isValue()       {}
func (c *Call) isValue()      {}
func (u *Undefined) isValue() {}

func (n *Name) String() string      { return n.Text }
func (t *Temp) String() string      { return fmt.Sprintf("t%d", t.ID) }
func (l *Label) String() string     { return fmt.Sprintf("L%d", l.ID) }
func (r *Raw) String() string       { return r.Text }
func (u *Undefined) String() string { return "undefined" }
func (c *Call) String() string {
	return fmt.Sprintf("call %s(%s)", c.Callee, joinValues(c.Args))
}

type Instruction struct {
	Op       Op
	Dst      Value
	Args     []Value
	Operator string
	Target   *Label
	// Line is the source line the instruction was generated for.
	Line int
}

func (in *Instruction) String() string {
	switch in.Op {
	case OpAssign:
		return fmt.Sprintf("%s = %s", in.Dst, in.Args[0])
	case OpBinary:
		return fmt.Sprintf("%s = %s %s %s", in.Dst, in.Args[0], in.Operator, in.Args[1])
	case OpUnary:
		return fmt.Sprintf("%s = %s %s", in.Dst, in.Operator, in.Args[0])
	case OpCall:
		return in.Args[0].String()
	case OpLabel:
		return in.Target.String() + ":"
	case OpGoto:
		return "goto " + in.Target.String()
	case OpIfFalse:
		return fmt.Sprintf("ifFalse %s goto %s", in.Args[0], in.Target)
	case OpReturn:
		return "return " + in.Args[0].String()
	case OpPrint:
		return "print " + joinValues(in.Args)
	case OpFuncBegin:
		return fmt.Sprintf("%s %s(%s):", in.Operator, in.Dst, joinValues(in.Args))
	case OpFuncEnd:
		return "end_" + in.Operator
	}
	return fmt.Sprintf("<op %d>", int(in.Op))
}

func joinValues(vals []Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

type Program struct {
	Instrs []*Instruction
	// Labels is the number of labels allocated.
	Labels int
}

func (p *Program) Emit(in *Instruction) { p.Instrs = append(p.Instrs, in) }

// Lines renders every instruction, one per line.
func (p *Program) Lines() []string {
	out := make([]string, len(p.Instrs))
	for i, in := range p.Instrs {
		out[i] = in.String()
	}
	return out
}
