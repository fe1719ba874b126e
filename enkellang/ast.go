package enkellang

type Node interface {
	Pos() Pos
	node()
}

type base struct {
	At Pos
}

func (b base) Pos() Pos {
	return b.At
}

func (base) node() {}

type LiteralKind uint8

const (
	LiteralNumber LiteralKind = iota
	LiteralBool
)

type Literal struct {
	base
	Kind LiteralKind
	Num  float32
	Bool bool
}

type StringLit struct {
	base
	Value string
}

type NullLit struct {
	base
}

type UnaryOp uint8

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryPlus
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
)

var unaryOpNames = [...]string{
	UnaryNot:     "!",
	UnaryNeg:     "-",
	UnaryPlus:    "+",
	UnaryPreInc:  "++",
	UnaryPreDec:  "--",
	UnaryPostInc: "++",
	UnaryPostDec: "--",
}

func (u UnaryOp) String() string {
	if int(u) < len(unaryOpNames) {
		return unaryOpNames[u]
	}
	return "?"
}

type Unary struct {
	base
	Op   UnaryOp
	Expr Node
}

type BinaryOp uint8

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryEq
	BinaryNeq
	BinaryLt
	BinaryGt
	BinaryLte
	BinaryGte
	BinaryAnd
	BinaryOr
	BinaryAssign
	BinaryAddAssign
	BinarySubAssign
	BinaryMulAssign
	BinaryDivAssign
	BinaryDot
	BinaryIs
)

var binaryOpNames = [...]string{
	BinaryAdd:       "+",
	BinarySub:       "-",
	BinaryMul:       "*",
	BinaryDiv:       "/",
	BinaryEq:        "==",
	BinaryNeq:       "!=",
	BinaryLt:        "<",
	BinaryGt:        ">",
	BinaryLte:       "<=",
	BinaryGte:       ">=",
	BinaryAnd:       "and",
	BinaryOr:        "or",
	BinaryAssign:    "=",
	BinaryAddAssign: "+=",
	BinarySubAssign: "-=",
	BinaryMulAssign: "*=",
	BinaryDivAssign: "/=",
	BinaryDot:       ".",
	BinaryIs:        "is",
}

func (b BinaryOp) String() string {
	if int(b) < len(binaryOpNames) {
		return binaryOpNames[b]
	}
	return "?"
}

// IsAssign reports whether the operator writes through its left operand.
func (b BinaryOp) IsAssign() bool {
	switch b {
	case BinaryAssign, BinaryAddAssign, BinarySubAssign, BinaryMulAssign, BinaryDivAssign:
		return true
	}
	return false
}

// Arith returns the arithmetic operator of a compound assignment.
func (b BinaryOp) Arith() (BinaryOp, bool) {
	switch b {
	case BinaryAddAssign:
		return BinaryAdd, true
	case BinarySubAssign:
		return BinarySub, true
	case BinaryMulAssign:
		return BinaryMul, true
	case BinaryDivAssign:
		return BinaryDiv, true
	}
	return 0, false
}

type Binary struct {
	base
	Op    BinaryOp
	Left  Node
	Right Node
}

// Block is a statement list. Scoped blocks are free-standing braces and
// open a child scope when evaluated.
type Block struct {
	base
	Stmts  []Node
	Scoped bool
}

type VarDecl struct {
	base
	Name  string
	Init  Node
	Const bool
}

type MultiVarDecl struct {
	base
	Decls []*VarDecl
}

type Ident struct {
	base
	Name string
}

type FuncDecl struct {
	base
	Name   string
	Params []string
	Body   *Block
	Global bool
}

type Return struct {
	base
	Expr Node
}

type Call struct {
	base
	Callee Node
	Args   []Node
}

type If struct {
	base
	Cond Node
	Then Node
	Else Node
}

type While struct {
	base
	Cond Node
	Body Node
}

type For struct {
	base
	Var  string
	Iter Node
	Body Node
}

type Break struct {
	base
}

type Continue struct {
	base
}

type ArrayLit struct {
	base
	Items []Node
}

type Subscript struct {
	base
	Expr  Node
	Index Node
}

type ClassDecl struct {
	base
	Name    string
	Parent  string
	Members []Node
}

type This struct {
	base
}

type New struct {
	base
	Class string
	Args  []Node
}
