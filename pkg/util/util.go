package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/token"
)

var (
	ErrorColorFG = pterm.FgRed
	WarnColorFG  = pterm.FgYellow
	CaretColorFG = pterm.FgGreen
	InfoStyleBG  = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
)

// SourceFileRecord tracks the name and content of the file being compiled.
type SourceFileRecord struct {
	Name  string
	Lines []string
}

var (
	source   SourceFileRecord
	output   io.Writer = os.Stderr
	useColor           = true
)

// SetSource stores the source code for rich error messages.
func SetSource(name, content string) {
	source = SourceFileRecord{Name: name, Lines: strings.Split(content, "\n")}
}

// SetOutput redirects diagnostics; tests use it to capture warnings.
func SetOutput(w io.Writer) { output = w }

func SetColor(enabled bool) { useColor = enabled }

func paint(c pterm.Color, s string) string {
	if !useColor {
		return s
	}
	return c.Sprint(s)
}

func fileName() string {
	if source.Name == "" {
		return "<input>"
	}
	return source.Name
}

// printErrorLine prints the source line and a caret under the offending token.
func printErrorLine(w io.Writer, tok token.Token) {
	if tok.Line <= 0 || tok.Line > len(source.Lines) {
		return
	}
	line := strings.TrimRight(source.Lines[tok.Line-1], "\r")
	fmt.Fprintf(w, "  %s\n", line)
	if tok.Column <= 0 {
		return
	}
	width := len(tok.Text)
	if width < 1 {
		width = 1
	}
	caret := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", tok.Column-1), paint(CaretColorFG, caret))
}

// Report prints err in the file:line:col form. Errors that are not
// CompileErrors are printed as-is.
func Report(err error) {
	var ce *CompileError
	if !errors.As(err, &ce) {
		fmt.Fprintf(output, "%s: %s %v\n", fileName(), paint(ErrorColorFG, "error:"), err)
		return
	}
	fmt.Fprintf(output, "%s:%d:%d: %s %s\n", fileName(), ce.Tok.Line, ce.Tok.Column,
		paint(ErrorColorFG, ce.Kind.String()+" error:"), ce.Msg)
	printErrorLine(output, ce.Tok)
}

// Warn prints a formatted warning if the corresponding warning is enabled.
func Warn(cfg *config.Config, wt config.Warning, tok token.Token, format string, args ...interface{}) {
	if cfg == nil || !cfg.IsWarningEnabled(wt) {
		return
	}
	fmt.Fprintf(output, "%s:%d:%d: %s ", fileName(), tok.Line, tok.Column, paint(WarnColorFG, "warning:"))
	fmt.Fprintf(output, format, args...)
	fmt.Fprintf(output, " [-W%s]\n", cfg.Warnings[wt].Name)
	printErrorLine(output, tok)
}

// WarnGlobal is Warn for problems that have no source position, such as
// configuration issues.
func WarnGlobal(cfg *config.Config, wt config.Warning, format string, args ...interface{}) {
	if cfg == nil || !cfg.IsWarningEnabled(wt) {
		return
	}
	fmt.Fprintf(output, "%s %s [-W%s]\n", paint(WarnColorFG, "warning:"), fmt.Sprintf(format, args...), cfg.Warnings[wt].Name)
}

// Info prints a tagged progress message.
func Info(tag, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if useColor {
		fmt.Fprintln(output, InfoStyleBG.Sprint(" "+tag+" ")+" "+msg)
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", tag, msg)
}
