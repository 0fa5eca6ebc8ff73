package codegen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/tac"
)

// Backend is the interface that all output backends must implement.
type Backend interface {
	// Generate takes a TAC program and a configuration, and renders it.
	Generate(prog *tac.Program, cfg *config.Config) (*bytes.Buffer, error)
}

var backends = map[string]func(source string) Backend{
	"tac":     func(string) Backend { return NewTextBackend() },
	"listing": func(source string) Backend { return NewListingBackend(source) },
}

// Formats lists the names accepted by SelectBackend.
func Formats() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectBackend returns the backend registered under name. source is the
// program text, used by backends that annotate their output.
func SelectBackend(name, source string) (Backend, error) {
	mk, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format '%s' (available: %s)", name, strings.Join(Formats(), ", "))
	}
	return mk(source), nil
}
