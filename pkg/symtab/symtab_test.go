package symtab

import (
	"testing"

	"github.com/xplshn/tacc/pkg/token"
)

func ident(name string, line int) token.Token {
	return token.Token{Kind: token.Identifier, Text: name, Line: line}
}

// newTable builds a table with one slot per name at token indices 0, 2, 4...
func newTable(names ...string) *Table {
	t := NewTable()
	for i, name := range names {
		t.Add(i*2, ident(name, i+1))
	}
	return t
}

func TestTableAt(t *testing.T) {
	tab := newTable("x", "y", "x")
	if tab.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tab.Len())
	}
	if got := tab.At(4); got != 2 {
		t.Errorf("At(4) = %d, want 2", got)
	}
	if got := tab.At(1); got != -1 {
		t.Errorf("At(1) = %d, want -1", got)
	}
	s := tab.Slot(2)
	if s.Name != "x" || s.Line != 3 || s.Tok != 4 || s.Bound() {
		t.Errorf("Slot(2) = %+v", *s)
	}
}

func TestBindAndPop(t *testing.T) {
	tab := newTable("x", "y")
	sc := NewScopes(tab)
	sc.Bind(0)
	sc.Push()
	sc.Bind(1)

	if tab.Slot(0).Scope != 0 || tab.Slot(1).Scope != 1 {
		t.Fatalf("scopes = %d, %d; want 0, 1", tab.Slot(0).Scope, tab.Slot(1).Scope)
	}
	if _, ok := sc.Lookup("y", OuterFirst); !ok {
		t.Error("y not visible inside its frame")
	}
	sc.Pop()
	if _, ok := sc.Lookup("y", OuterFirst); ok {
		t.Error("y still visible after its frame was popped")
	}
	// The slot keeps the frame it was declared in.
	if !tab.Slot(1).Bound() {
		t.Error("popping a frame unbound its slots")
	}
	sc.Pop()
	if sc.Depth() != 0 {
		t.Errorf("root frame was popped, depth %d", sc.Depth())
	}
}

func TestCollision(t *testing.T) {
	tab := newTable("x", "x")
	sc := NewScopes(tab)
	sc.Bind(0)
	sc.Push()

	if _, ok := sc.Collision("x", false); !ok {
		t.Error("outer x does not collide across frames")
	}
	if _, ok := sc.Collision("x", true); ok {
		t.Error("outer x collides with the current frame only")
	}
	sc.Bind(1)
	if s, ok := sc.Collision("x", true); !ok || s.Tok != 2 {
		t.Errorf("Collision(x, current) = %v, %v", s, ok)
	}
}

func TestLookupOrder(t *testing.T) {
	tab := newTable("x", "x")
	tab.Slot(0).Kind = SlotVar
	tab.Slot(1).Kind = SlotParam
	sc := NewScopes(tab)
	sc.Bind(0)
	sc.Push()
	sc.Bind(1)

	outer, _ := sc.Lookup("x", OuterFirst)
	inner, _ := sc.Lookup("x", InnerFirst)
	if outer.Tok != 0 {
		t.Errorf("OuterFirst found slot at token %d, want 0", outer.Tok)
	}
	if inner.Tok != 2 {
		t.Errorf("InnerFirst found slot at token %d, want 2", inner.Tok)
	}
	if _, ok := sc.Lookup("z", InnerFirst); ok {
		t.Error("found an undeclared name")
	}
}

func TestSlotKind(t *testing.T) {
	tests := map[SlotKind]string{
		SlotUnknown: "identifier",
		SlotVar:     "variable",
		SlotParam:   "parameter",
		SlotFunc:    "function",
		SlotProc:    "procedure",
	}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(k), k.String(), want)
		}
		s := Slot{Kind: k}
		if got := s.IsCallable(); got != (k == SlotFunc || k == SlotProc) {
			t.Errorf("IsCallable for %s = %v", want, got)
		}
	}
}
