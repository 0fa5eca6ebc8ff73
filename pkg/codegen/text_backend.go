package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/tac"
)

// textBackend writes one instruction per line, exactly as Program.Lines renders them.
type textBackend struct{}

func NewTextBackend() Backend { return &textBackend{} }

func (b *textBackend) Generate(prog *tac.Program, cfg *config.Config) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	for _, line := range prog.Lines() {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return &buf, nil
}

// listingBackend interleaves the source lines with the code generated for them.
// Labels and function headers stay flush left, everything else is indented.
type listingBackend struct {
	out    *strings.Builder
	source []string
}

func NewListingBackend(source string) Backend {
	return &listingBackend{source: strings.Split(source, "\n")}
}

func (b *listingBackend) Generate(prog *tac.Program, cfg *config.Config) (*bytes.Buffer, error) {
	var sb strings.Builder
	b.out = &sb

	lastLine := 0
	for _, instr := range prog.Instrs {
		if instr.Line != lastLine && instr.Line > 0 {
			b.genSourceLine(instr.Line)
			lastLine = instr.Line
		}
		b.genInstr(instr)
	}
	return bytes.NewBufferString(sb.String()), nil
}

func (b *listingBackend) genSourceLine(line int) {
	text := ""
	if line <= len(b.source) {
		text = strings.TrimSpace(b.source[line-1])
	}
	fmt.Fprintf(b.out, "# %d: %s\n", line, text)
}

func (b *listingBackend) genInstr(instr *tac.Instruction) {
	switch instr.Op {
	case tac.OpLabel, tac.OpFuncBegin, tac.OpFuncEnd:
		fmt.Fprintf(b.out, "%s\n", instr)
	default:
		fmt.Fprintf(b.out, "    %s\n", instr)
	}
}
