package enkellang

type Token struct {
	Kind TokenKind
	Text string
	Num  float32
	Pos  Pos
}

type TokenKind uint8

const (
	TokenInvalid TokenKind = iota
	TokenEOF
	TokenIdentifier
	TokenKeyword
	TokenString
	TokenNumber
	TokenSymbol
)

func (t TokenKind) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenIdentifier:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenSymbol:
		return "symbol"
	}
	return "invalid"
}

func (t Token) Is(kind TokenKind, text string) bool {
	return t.Kind == kind && t.Text == text
}

var keywords = map[string]bool{
	"and":      true,
	"break":    true,
	"class":    true,
	"const":    true,
	"continue": true,
	"else":     true,
	"extends":  true,
	"false":    true,
	"for":      true,
	"func":     true,
	"global":   true,
	"if":       true,
	"import":   true,
	"in":       true,
	"is":       true,
	"new":      true,
	"not":      true,
	"null":     true,
	"or":       true,
	"return":   true,
	"this":     true,
	"true":     true,
	"var":      true,
	"while":    true,
}

// longest first
var symbols = []string{
	"==", "!=", "<=", ">=", "+=", "-=", "*=", "/=", "++", "--",
	"+", "-", "*", "/", "<", ">", "=", "!",
	"(", ")", "{", "}", "[", "]", ",", ";", ".",
}
