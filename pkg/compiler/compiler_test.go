package compiler

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/util"
)

func TestMain(m *testing.M) {
	util.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestExamples(t *testing.T) {
	failures := map[string]struct {
		kind util.ErrorKind
		msg  string
		line int
	}{
		"bad_lexical.mini":   {util.KindLexical, "invalid token '#'", 2},
		"bad_redeclare.mini": {util.KindSemantic, "'x' already declared at line 1", 3},
		"bad_types.mini":     {util.KindSemantic, "expected BOOL, found INT", 4},
	}

	files, err := filepath.Glob(filepath.Join("..", "..", "examples", "*.mini"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Skip("no example programs found")
	}
	for _, file := range files {
		name := filepath.Base(file)
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			res, err := Compile(name, string(src), Options{})

			want, bad := failures[name]
			if !bad {
				if err != nil {
					t.Fatalf("Compile: %v", err)
				}
				if len(res.Lines) == 0 {
					t.Error("no code generated")
				}
				return
			}
			if err == nil {
				t.Fatalf("Compile succeeded, want %s error", want.kind)
			}
			if res != nil {
				t.Error("partial result returned alongside an error")
			}
			ce, ok := err.(*util.CompileError)
			if !ok {
				t.Fatalf("error is %T, want *util.CompileError", err)
			}
			if ce.Kind != want.kind || ce.Line() != want.line || !strings.Contains(ce.Msg, want.msg) {
				t.Errorf("got %v, want %s error at line %d containing %q", err, want.kind, want.line, want.msg)
			}
		})
	}
}

func TestCompileResult(t *testing.T) {
	src := "int a = 1;\nif (a > 0) {\n    print(a);\n}\n"
	var stages []Stage
	res, err := Compile("a.mini", src, Options{OnStage: func(s Stage) { stages = append(stages, s) }})
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]Stage{StageLex, StageParse, StageGenerate}, stages); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
	want := "a = 1\nt0 = a > 0\nifFalse t0 goto L0\nprint a\nL0:\n"
	if got := res.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if len(res.Tokens) != 18 {
		t.Errorf("got %d tokens, want 18", len(res.Tokens))
	}
	if res.Markers != 2 || len(res.Stream) != len(res.Tokens)+res.Markers {
		t.Errorf("stream has %d entries and %d markers", len(res.Stream), res.Markers)
	}
	if res.Symbols.Len() != 3 {
		t.Errorf("symbol table has %d slots, want 3", res.Symbols.Len())
	}
}

func TestFingerprint(t *testing.T) {
	src := "int i = 0;\nwhile (i < 3) {\n    i = i + 1;\n}\n"
	first, err := Compile("loop.mini", src, Options{})
	if err != nil {
		t.Fatal(err)
	}
	again, err := Compile("other-name.mini", src, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Fingerprint() != again.Fingerprint() {
		t.Error("same program produced different fingerprints")
	}

	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatTreeTAC, true)
	changed, err := Compile("loop.mini", src+"i = i * 2 + 1;\n", Options{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if changed.Fingerprint() == first.Fingerprint() {
		t.Error("different programs share a fingerprint")
	}

	empty, err := Compile("empty.mini", "", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if empty.Text() != "" || len(empty.Lines) != 0 {
		t.Errorf("empty program generated %q", empty.Text())
	}
}
