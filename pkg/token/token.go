package token

import "fmt"

type Kind int

const (
	EOF Kind = iota
	If
	Else
	While
	Int
	Bool
	True
	False
	Not
	And
	Or
	Print
	Return
	Function
	Procedure
	Break
	Continue
	Arrow
	Equal
	Different
	Greater
	GreaterOrEqual
	Less
	LessOrEqual
	Plus
	Minus
	Multiply
	Divide
	Module
	Assign
	Semicolon
	Comma
	LParen
	RParen
	LBrace
	RBrace
	Identifier
	Integer
	// Structural markers, only ever produced by the parser
	BeginFunction
	EndFunction
	BeginProcedure
	EndProcedure
	BeginIf
	EndIf
	BeginElse
	EndElse
	BeginLoop
	EndLoop
)

var kindNames = [...]string{
	EOF:            "EOF",
	If:             "IF",
	Else:           "ELSE",
	While:          "WHILE",
	Int:            "INT",
	Bool:           "BOOL",
	True:           "TRUE",
	False:          "FALSE",
	Not:            "NOT",
	And:            "AND",
	Or:             "OR",
	Print:          "PRINT",
	Return:         "RETURN",
	Function:       "FUNCTION",
	Procedure:      "PROCEDURE",
	Break:          "BREAK",
	Continue:       "CONTINUE",
	Arrow:          "ARROW",
	Equal:          "EQUAL",
	Different:      "DIFFERENT",
	Greater:        "GREATER",
	GreaterOrEqual: "GREATER_OR_EQUAL",
	Less:           "LESS",
	LessOrEqual:    "LESS_OR_EQUAL",
	Plus:           "PLUS",
	Minus:          "MINUS",
	Multiply:       "MULTIPLY",
	Divide:         "DIVIDE",
	Module:         "MODULE",
	Assign:         "ASSIGN",
	Semicolon:      "SEMICOLON",
	Comma:          "COMMA",
	LParen:         "LPAREN",
	RParen:         "RPAREN",
	LBrace:         "LBRACE",
	RBrace:         "RBRACE",
	Identifier:     "IDENTIFIER",
	Integer:        "INTEGER",
	BeginFunction:  "BEGINFUNCTION",
	EndFunction:    "ENDFUNCTION",
	BeginProcedure: "BEGINPROCEDURE",
	EndProcedure:   "ENDPROCEDURE",
	BeginIf:        "BEGINIF",
	EndIf:          "ENDIF",
	BeginElse:      "BEGINELSE",
	EndElse:        "ENDELSE",
	BeginLoop:      "BEGINLOOP",
	EndLoop:        "ENDLOOP",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var KeywordMap = map[string]Kind{
	"if":        If,
	"else":      Else,
	"while":     While,
	"int":       Int,
	"bool":      Bool,
	"true":      True,
	"false":     False,
	"not":       Not,
	"and":       And,
	"or":        Or,
	"print":     Print,
	"return":    Return,
	"function":  Function,
	"procedure": Procedure,
	"break":     Break,
	"continue":  Continue,
}

// MarkerText holds the fixed literal carried by each structural marker.
var MarkerText = map[Kind]string{
	BeginFunction:  "begin_function",
	EndFunction:    "end_function",
	BeginProcedure: "begin_procedure",
	EndProcedure:   "end_procedure",
	BeginIf:        "begin_if",
	EndIf:          "end_if",
	BeginElse:      "begin_else",
	EndElse:        "end_else",
	BeginLoop:      "begin_loop",
	EndLoop:        "end_loop",
}

func (k Kind) IsMarker() bool { return k >= BeginFunction && k <= EndLoop }

func (k Kind) IsTypeKeyword() bool { return k == Int || k == Bool }

// IsRelOrLogic reports operators of the boolean_expr level of the grammar.
func (k Kind) IsRelOrLogic() bool {
	switch k {
	case Equal, Different, Greater, GreaterOrEqual, Less, LessOrEqual, And, Or:
		return true
	}
	return false
}

func (k Kind) IsArith() bool { return k >= Plus && k <= Module }

func (k Kind) IsLogic() bool { return k == And || k == Or }

type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
}

func (t Token) String() string {
	if t.Kind == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s '%s'", t.Kind, t.Text)
}

// NewMarker builds the synthetic token for a structural event.
func NewMarker(kind Kind, line int) Token {
	return Token{Kind: kind, Text: MarkerText[kind], Line: line}
}
