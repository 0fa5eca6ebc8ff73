package parser

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xplshn/tacc/pkg/ast"
	"github.com/xplshn/tacc/pkg/config"
	"github.com/xplshn/tacc/pkg/lexer"
	"github.com/xplshn/tacc/pkg/symtab"
	"github.com/xplshn/tacc/pkg/token"
	"github.com/xplshn/tacc/pkg/util"
)

const sumDecl = "function sum(int a, int b) -> int {\n    return a + b;\n}\n"

func parse(t *testing.T, src string, cfg *config.Config) (*Result, []token.Token, error) {
	t.Helper()
	toks, table, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex %q: %v", src, err)
	}
	res, err := Parse(toks, table, cfg)
	return res, toks, err
}

func mustParse(t *testing.T, src string, cfg *config.Config) (*Result, []token.Token) {
	t.Helper()
	res, toks, err := parse(t, src, cfg)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return res, toks
}

func captureWarnings(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	util.SetOutput(&buf)
	util.SetColor(false)
	t.Cleanup(func() {
		util.SetOutput(os.Stderr)
		util.SetColor(true)
	})
	return &buf
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestStreamHoldsEveryTokenPlusMarkers(t *testing.T) {
	captureWarnings(t)
	programs := map[string]string{
		"declarations": "int a = 1; int b = 2; int c = a + b;",
		"if-else":      "bool x = true; if (x) { print(1); } else { print(0); }",
		"loops": `int i = 0;
while (i < 10) {
    int j = 0;
    while (j < i) {
        if (j == 3) { break; }
        j = j + 1;
    }
    i = i + 1;
}`,
		"functions": sumDecl + "procedure show(bool f) { print(f); }\nshow(sum(1, 2) > 2);",
		"empty":     "",
	}
	for name, src := range programs {
		t.Run(name, func(t *testing.T) {
			res, toks := mustParse(t, src, nil)
			if got, want := len(res.Stream), len(toks)+res.Markers; got != want {
				t.Errorf("len(stream) = %d, want %d (%d tokens + %d markers)", got, want, len(toks), res.Markers)
			}
			markers := 0
			for _, tok := range res.Stream {
				if tok.Kind.IsMarker() {
					markers++
					if tok.Text != token.MarkerText[tok.Kind] {
						t.Errorf("marker %s has text %q", tok.Kind, tok.Text)
					}
				}
			}
			if markers != res.Markers {
				t.Errorf("counted %d markers in stream, result reports %d", markers, res.Markers)
			}
		})
	}
}

func TestMarkerPlacement(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "if-else",
			src:  "if (true) { } else { }",
			want: []token.Kind{
				token.If, token.LParen, token.True, token.RParen, token.BeginIf, token.LBrace, token.RBrace, token.EndIf,
				token.Else, token.BeginElse, token.LBrace, token.RBrace, token.EndElse,
			},
		},
		{
			name: "while",
			src:  "while (false) { }",
			want: []token.Kind{
				token.While, token.LParen, token.False, token.RParen, token.BeginLoop, token.LBrace, token.RBrace, token.EndLoop,
			},
		},
		{
			name: "procedure",
			src:  "procedure p(int v) { print(v); }",
			want: []token.Kind{
				token.Procedure, token.Identifier, token.BeginProcedure, token.LParen, token.Int, token.Identifier, token.RParen,
				token.LBrace, token.Print, token.LParen, token.Identifier, token.RParen, token.Semicolon, token.RBrace,
				token.EndProcedure,
			},
		},
		{
			name: "function",
			src:  "function one() -> int { return 1; }",
			want: []token.Kind{
				token.Function, token.Identifier, token.BeginFunction, token.LParen, token.RParen, token.Arrow, token.Int,
				token.LBrace, token.Return, token.Integer, token.Semicolon, token.RBrace, token.EndFunction,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := mustParse(t, tt.src, nil)
			if diff := cmp.Diff(tt.want, kinds(res.Stream)); diff != "" {
				t.Errorf("stream kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarkerLines(t *testing.T) {
	src := "bool x = true;\nif (x) {\n    print(1);\n} else {\n    print(0);\n}\n"
	res, _ := mustParse(t, src, nil)
	want := map[token.Kind]int{token.BeginIf: 2, token.EndIf: 4, token.BeginElse: 4, token.EndElse: 6}
	for _, tok := range res.Stream {
		if line, ok := want[tok.Kind]; ok && tok.Line != line {
			t.Errorf("%s on line %d, want %d", tok.Kind, tok.Line, line)
		}
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind util.ErrorKind
		msg  string
		line int
	}{
		{"redeclare same scope", "int x = 1;\nint x = 2;", util.KindSemantic, "'x' already declared at line 1", 2},
		{"redeclare in inner scope", "int x = 1;\nif (x > 0) {\n    bool x = true;\n}", util.KindSemantic, "already declared at line 1", 3},
		{"redeclare with another type", "bool x = true;\nwhile (x) {\n    int x = 1;\n}", util.KindSemantic, "already declared", 3},
		{"param collides with global", "int a = 1;\nfunction f(int a) -> int { return a; }", util.KindSemantic, "'a' already declared at line 1", 2},
		{"use before declaration", "x = 1;\nint x = 2;", util.KindSemantic, "'x' used before declaration (declared at line 2)", 1},
		{"self reference in initializer", "int x = x;", util.KindSemantic, "used before declaration", 1},
		{"undeclared", "y = 1;", util.KindSemantic, "undeclared identifier 'y'", 1},
		{"out of scope", "if (true) {\n    int y = 1;\n}\ny = 2;", util.KindSemantic, "undeclared identifier 'y'", 4},
		{"bool into int", "int x = true;", util.KindSemantic, "expected INT, found BOOL", 1},
		{"int into bool", "bool b = 1 + 2;", util.KindSemantic, "expected BOOL, found INT", 1},
		{"assignment mismatch", "int x = 1;\nx = 1 < 2;", util.KindSemantic, "type mismatch in assignment to 'x': expected INT, found BOOL", 2},
		{"int condition in if", "int x = 1;\nif (x) { }", util.KindSemantic, "condition of 'if' must be BOOL, found INT", 2},
		{"int condition in while", "while (1) { }", util.KindSemantic, "condition of 'while' must be BOOL, found INT", 1},
		{"arith on bool", "int a = 1 + true;", util.KindSemantic, "operator '+' requires INT operands, found INT and BOOL", 1},
		{"logic on int", "bool b = true and 1;", util.KindSemantic, "operator 'and' requires BOOL operands", 1},
		{"compare mixed", "bool b = 1 == true;", util.KindSemantic, "operator '==' requires operands of the same type, found INT and BOOL", 1},
		{"chained comparison", "int a = 1;\nbool b = a > 1 and a < 3;", util.KindSemantic, "operator 'and' requires BOOL operands, found BOOL and INT", 2},
		{"not on int", "bool b = not 1;", util.KindSemantic, "operator 'not' requires a BOOL operand, found INT", 1},
		{"too few arguments", sumDecl + "int r = sum(1);", util.KindSemantic, "'sum' expects 2 argument(s), found 1", 4},
		{"too many arguments", sumDecl + "sum(1, 2, 3);", util.KindSemantic, "expects 2 argument(s), found 3", 4},
		{"argument type", sumDecl + "int r = sum(1, true);", util.KindSemantic, "argument 2 of 'sum': expected (INT, INT), found (INT, BOOL)", 4},
		{"call result where bool expected", sumDecl + "bool ok = sum(1, 2);", util.KindSemantic, "type mismatch in declaration of 'ok': expected BOOL, found INT", 4},
		{"call result as condition", sumDecl + "if (sum(1, 2)) { }", util.KindSemantic, "condition of 'if' must be BOOL", 4},
		{"break outside loop", "break;", util.KindSemantic, "'break' outside of a loop", 1},
		{"continue outside loop", "if (true) { continue; }", util.KindSemantic, "'continue' outside of a loop", 1},
		{"return outside function", "return 1;", util.KindSemantic, "'return' outside of a function", 1},
		{"return in procedure", "procedure p() {\n    return 1;\n}", util.KindSemantic, "procedure 'p' cannot return a value", 2},
		{"wrong return type", "function f() -> bool {\n    return 1;\n}", util.KindSemantic, "function 'f' returns BOOL, found INT", 2},
		{"missing return", "function f() -> int {\n    int x = 1;\n}", util.KindSemantic, "function 'f' has no return statement", 1},
		{"procedure as value", "procedure p() { }\nint x = p();", util.KindSemantic, "procedure 'p' does not return a value", 2},
		{"call a variable", "int x = 1;\nx();", util.KindSemantic, "variable 'x' is not callable", 2},
		{"assign to function", "function f() -> int { return 1; }\nf = 2;", util.KindSemantic, "cannot assign to function 'f'", 2},
		{"function as value", "function f() -> int { return 1; }\nint y = f;", util.KindSemantic, "function 'f' used as a value without a call", 2},
		{"nested function", "if (true) {\n    function f() -> int { return 1; }\n}", util.KindSyntax, "function definitions are only allowed at program level", 2},
		{"missing semicolon at end", "int x = 1", util.KindSyntax, "expected SEMICOLON, found end of input", 1},
		{"missing name", "int = 1;", util.KindSyntax, "expected IDENTIFIER, found ASSIGN '='", 1},
		{"empty print", "print();", util.KindSyntax, "print requires at least one argument", 1},
		{"unclosed paren", "int x = (1 + 2;", util.KindSyntax, "expected RPAREN, found SEMICOLON ';'", 1},
		{"bare identifier", "int x = 1;\nx;", util.KindSyntax, "expected ASSIGN or LPAREN after 'x'", 2},
		{"unclosed block", "while (true) {\n    print(1);", util.KindSyntax, "expected RBRACE, found end of input", 2},
		{"missing expression", "int x = ;", util.KindSyntax, "expected expression, found SEMICOLON ';'", 1},
		{"procedure with return type", "procedure p() -> int { }", util.KindSyntax, "expected LBRACE, found ARROW '->'", 1},
		{"function without return type", "function f() { return 1; }", util.KindSyntax, "expected ARROW, found LBRACE '{'", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			captureWarnings(t)
			res, _, err := parse(t, tt.src, nil)
			if err == nil {
				t.Fatalf("Parse succeeded, want %s error %q", tt.kind, tt.msg)
			}
			if res != nil {
				t.Errorf("Parse returned a partial result alongside %v", err)
			}
			if !util.IsKind(err, tt.kind) {
				t.Fatalf("error kind mismatch: got %v, want %s error", err, tt.kind)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not contain %q", err, tt.msg)
			}
			if line := err.(*util.CompileError).Line(); line != tt.line {
				t.Errorf("error reported at line %d, want %d", line, tt.line)
			}
		})
	}
}

func TestShadowingFeature(t *testing.T) {
	src := "int x = 1;\nif (true) {\n    bool x = true;\n    bool y = x;\n}\nint z = x;"

	if _, _, err := parse(t, src, nil); !util.IsKind(err, util.KindSemantic) {
		t.Fatalf("default scoping: got %v, want a semantic error", err)
	}

	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatShadowing, true)
	res, _ := mustParse(t, src, cfg)

	// Inner `x` is BOOL, the outer one is visible again after the block.
	var decls []ast.Type
	ast.Inspect(res.Root, func(n *ast.Node) bool {
		if n.Type == ast.VarDecl {
			if init := n.Data.(ast.VarDeclNode).Init; init != nil && init.Type == ast.Ident {
				decls = append(decls, init.Typ)
			}
		}
		return true
	})
	if diff := cmp.Diff([]ast.Type{ast.TypeBool, ast.TypeInt}, decls); diff != "" {
		t.Errorf("resolved identifier types mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := parse(t, "int x = 1;\nint x = 2;", cfg); !util.IsKind(err, util.KindSemantic) {
		t.Errorf("same-frame redeclaration with shadowing: got %v, want a semantic error", err)
	}
}

func TestStrictReturnFeature(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetFeature(config.FeatStrictReturn, false)
	if _, _, err := parse(t, "function f() -> int { int x = 1; }", cfg); err != nil {
		t.Errorf("with strict-return off: %v", err)
	}
}

func TestRecursionAndParameters(t *testing.T) {
	src := `function fact(int n) -> int {
    int r = 1;
    if (n > 1) {
        r = n * fact(n - 1);
    }
    return r;
}
function twice(int n) -> int {
    return fact(n) + fact(n);
}
int v = twice(3);`
	res, _ := mustParse(t, src, nil)

	fns := map[string]*symtab.Slot{}
	for i := range res.Symbols.Slots {
		slot := &res.Symbols.Slots[i]
		if slot.IsCallable() {
			fns[slot.Name] = slot
		}
	}
	fact, ok := fns["fact"]
	if !ok {
		t.Fatal("no bound slot for 'fact'")
	}
	if fact.Type != ast.TypeInt || fact.Scope != 0 {
		t.Errorf("fact slot = %+v, want INT function at scope 0", *fact)
	}
	if diff := cmp.Diff([]ast.Type{ast.TypeInt}, fact.Params); diff != "" {
		t.Errorf("fact params mismatch (-want +got):\n%s", diff)
	}
}

func TestSlotsAreKeyedByOccurrence(t *testing.T) {
	captureWarnings(t)
	src := "int x = 1 + 2;\nx = x + 1;\nbool y;"
	res, toks := mustParse(t, src, nil)

	occurrences := 0
	for _, tok := range toks {
		if tok.Kind == token.Identifier && tok.Text == "x" {
			occurrences++
		}
	}
	if occurrences != 3 {
		t.Fatalf("expected 3 occurrences of x, got %d", occurrences)
	}

	var bound []symtab.Slot
	for _, slot := range res.Symbols.Slots {
		if slot.Bound() {
			bound = append(bound, slot)
		}
	}
	want := []symtab.Slot{
		{Tok: 1, Name: "x", Line: 1, Kind: symtab.SlotVar, Type: ast.TypeInt, Value: "1 + 2", HasValue: true, Scope: 0},
		{Tok: 14, Name: "y", Line: 3, Kind: symtab.SlotVar, Type: ast.TypeBool, Scope: 0},
	}
	if diff := cmp.Diff(want, bound); diff != "" {
		t.Errorf("bound slots mismatch (-want +got):\n%s", diff)
	}
	if len(res.Symbols.Slots) != 4 {
		t.Errorf("got %d slots, want one per identifier occurrence (4)", len(res.Symbols.Slots))
	}
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		disable config.Warning
		want    string
	}{
		{"uninitialized", "int x;", config.WarnUninitialized, "'x' declared without an initializer [-Wuninitialized]"},
		{"unreachable", "int i = 0;\nwhile (i < 1) {\n    break;\n    i = 1;\n}", config.WarnUnreachableCode, "unreachable code after 'break' [-Wunreachable-code]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureWarnings(t)
			mustParse(t, tt.src, nil)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("warnings %q do not contain %q", buf.String(), tt.want)
			}

			buf.Reset()
			cfg := config.NewConfig()
			cfg.SetWarning(tt.disable, false)
			mustParse(t, tt.src, cfg)
			if buf.Len() != 0 {
				t.Errorf("disabled warning still printed: %q", buf.String())
			}
		})
	}
}

func TestJoinTokens(t *testing.T) {
	tests := map[string]string{
		"f ( a , b ) > ( c + 1 )": "f(a, b) > (c + 1)",
		"not ( x and y )":         "not (x and y)",
		"a":                       "a",
	}
	for src, want := range tests {
		toks, _, err := lexer.Lex(src)
		if err != nil {
			t.Fatal(err)
		}
		if got := JoinTokens(toks); got != want {
			t.Errorf("JoinTokens(%q) = %q, want %q", src, got, want)
		}
	}
}
