// Package symtab holds one symbol slot per identifier occurrence and the
// stack of scope frames the parser binds them into.
//
// Slots are keyed by token position, never by name: three occurrences of `x`
// are three slots. Resolution is always an explicit scan over the frames.
package symtab

import (
	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/token"
)

type SlotKind int

const (
	SlotUnknown SlotKind = iota
	SlotVar
	SlotParam
	SlotFunc
	SlotProc
)

func (k SlotKind) String() string {
	switch k {
	case SlotVar:
		return "variable"
	case SlotParam:
		return "parameter"
	case SlotFunc:
		return "function"
	case SlotProc:
		return "procedure"
	}
	return "identifier"
}

// Unbound is the Scope of a slot that has been seen but not declared.
const Unbound = -1

type Slot struct {
	Tok   int // index of the owning token in the token list
	Name  string
	Line  int
	Kind  SlotKind
	Type  ast.Type
	Value string
	// HasValue distinguishes `int x;` from `int x = 0;`.
	HasValue bool
	Scope    int
	Params   []ast.Type
}

func (s *Slot) Bound() bool { return s.Scope != Unbound }

func (s *Slot) IsCallable() bool { return s.Kind == SlotFunc || s.Kind == SlotProc }

// Table is the per-occurrence symbol table produced by the lexer.
type Table struct {
	Slots []Slot
	byTok map[int]int
}

func NewTable() *Table {
	return &Table{byTok: make(map[int]int)}
}

// Add registers an empty slot for the identifier at token index tokIndex.
func (t *Table) Add(tokIndex int, tok token.Token) {
	t.byTok[tokIndex] = len(t.Slots)
	t.Slots = append(t.Slots, Slot{Tok: tokIndex, Name: tok.Text, Line: tok.Line, Scope: Unbound})
}

// At returns the slot index owned by the token at tokIndex, or -1.
func (t *Table) At(tokIndex int) int {
	if i, ok := t.byTok[tokIndex]; ok {
		return i
	}
	return -1
}

func (t *Table) Slot(i int) *Slot { return &t.Slots[i] }

func (t *Table) Len() int { return len(t.Slots) }

// Order selects how Lookup walks the active frames.
type Order int

const (
	OuterFirst Order = iota
	InnerFirst
)

// Scopes is the frame stack. Frame 0 is the program root.
type Scopes struct {
	table  *Table
	frames [][]int
}

func NewScopes(t *Table) *Scopes {
	return &Scopes{table: t, frames: [][]int{{}}}
}

func (s *Scopes) Push() { s.frames = append(s.frames, nil) }

func (s *Scopes) Pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Depth is the index of the innermost active frame.
func (s *Scopes) Depth() int { return len(s.frames) - 1 }

// Bind marks slot i as declared in the innermost frame.
func (s *Scopes) Bind(i int) {
	slot := s.table.Slot(i)
	slot.Scope = s.Depth()
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], i)
}

// Collision returns the bound slot that would clash with declaring name.
// With currentOnly false every active frame is searched.
func (s *Scopes) Collision(name string, currentOnly bool) (*Slot, bool) {
	start := 0
	if currentOnly {
		start = len(s.frames) - 1
	}
	for f := start; f < len(s.frames); f++ {
		for _, i := range s.frames[f] {
			if slot := s.table.Slot(i); slot.Name == name {
				return slot, true
			}
		}
	}
	return nil, false
}

// Lookup resolves name against the active frames and returns the first match
// in the requested order.
func (s *Scopes) Lookup(name string, order Order) (*Slot, bool) {
	n := len(s.frames)
	for k := 0; k < n; k++ {
		f := k
		if order == InnerFirst {
			f = n - 1 - k
		}
		for _, i := range s.frames[f] {
			if slot := s.table.Slot(i); slot.Name == name {
				return slot, true
			}
		}
	}
	return nil, false
}
