package tac

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInstructionString(t *testing.T) {
	a, b := &Name{Text: "a"}, &Name{Text: "b"}
	t0, t1 := &Temp{ID: 0}, &Temp{ID: 1}
	l3 := &Label{ID: 3}

	prog := &Program{}
	prog.Emit(&Instruction{Op: OpFuncBegin, Operator: "function", Dst: &Name{Text: "f"}, Args: []Value{&Raw{Text: "int a"}, &Raw{Text: "bool b"}}})
	prog.Emit(&Instruction{Op: OpAssign, Dst: a, Args: []Value{&Undefined{}}})
	prog.Emit(&Instruction{Op: OpBinary, Dst: t0, Operator: "+", Args: []Value{a, b}})
	prog.Emit(&Instruction{Op: OpUnary, Dst: t1, Operator: "not", Args: []Value{b}})
	prog.Emit(&Instruction{Op: OpAssign, Dst: t0, Args: []Value{&Call{Callee: "g", Args: []Value{a, t1}}}})
	prog.Emit(&Instruction{Op: OpCall, Args: []Value{&Call{Callee: "h"}}})
	prog.Emit(&Instruction{Op: OpIfFalse, Args: []Value{t0}, Target: l3})
	prog.Emit(&Instruction{Op: OpGoto, Target: l3})
	prog.Emit(&Instruction{Op: OpLabel, Target: l3})
	prog.Emit(&Instruction{Op: OpPrint, Args: []Value{t0, a}})
	prog.Emit(&Instruction{Op: OpReturn, Args: []Value{t0}})
	prog.Emit(&Instruction{Op: OpFuncEnd, Operator: "function"})

	want := []string{
		"function f(int a, bool b):",
		"a = undefined",
		"t0 = a + b",
		"t1 = not b",
		"t0 = call g(a, t1)",
		"call h()",
		"ifFalse t0 goto L3",
		"goto L3",
		"L3:",
		"print t0, a",
		"return t0",
		"end_function",
	}
	if diff := cmp.Diff(want, prog.Lines()); diff != "" {
		t.Errorf("rendering mismatch (-want +got):\n%s", diff)
	}
}
