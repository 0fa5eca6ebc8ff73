package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xplshn/tacc/pkg/token"
)

// LineGroup is the part of the instruction stream produced by one source line.
type LineGroup struct {
	Line   int
	Tokens []token.Token
}

// GroupByLine partitions the stream by source line, in ascending line order.
// Tokens keep their stream order inside a group.
func GroupByLine(stream []token.Token) []LineGroup {
	byLine := make(map[int][]token.Token)
	for _, tok := range stream {
		byLine[tok.Line] = append(byLine[tok.Line], tok)
	}
	lines := make([]int, 0, len(byLine))
	for line := range byLine {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	groups := make([]LineGroup, len(lines))
	for i, line := range lines {
		groups[i] = LineGroup{Line: line, Tokens: byLine[line]}
	}
	return groups
}

// FormatStream renders the line groups as `N: KIND text, ...`, one group per line.
func FormatStream(stream []token.Token) string {
	var sb strings.Builder
	for _, g := range GroupByLine(stream) {
		parts := make([]string, len(g.Tokens))
		for i, tok := range g.Tokens {
			parts[i] = fmt.Sprintf("%s %s", tok.Kind, tok.Text)
		}
		fmt.Fprintf(&sb, "%d: %s\n", g.Line, strings.Join(parts, ", "))
	}
	return sb.String()
}
