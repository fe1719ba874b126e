package enkellang

type parser struct {
	tokens []Token
	pos    int
}

func Parse(tokens []Token) (*Block, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != TokenEOF {
		var at Pos
		if len(tokens) > 0 {
			at = tokens[len(tokens)-1].Pos
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Kind: TokenEOF, Pos: at})
	}
	p := &parser{
		tokens: tokens,
	}
	root := &Block{
		base: base{At: tokens[0].Pos},
	}
	for !p.at(TokenEOF, "") {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		root.Stmts = append(root.Stmts, stmt)
	}
	return root, nil
}

func ParseSource(source *Source) (*Block, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) at(kind TokenKind, text string) bool {
	tok := p.peek()
	if tok.Kind != kind {
		return false
	}
	return text == "" || tok.Text == text
}

func (p *parser) accept(kind TokenKind, text string) bool {
	if p.at(kind, text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(kind TokenKind, text string) (Token, error) {
	tok := p.peek()
	if !p.at(kind, text) {
		want := text
		if want == "" {
			want = kind.String()
		}
		return tok, syntaxError(tok.Pos, "expected %s, got %s", want, describe(tok))
	}
	return p.next(), nil
}

func describe(tok Token) string {
	switch tok.Kind {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return "string literal"
	}
	return "'" + tok.Text + "'"
}

func (p *parser) statement() (Node, error) {
	tok := p.peek()
	switch {
	case tok.Is(TokenSymbol, "{"):
		block, err := p.block()
		if err != nil {
			return nil, err
		}
		block.Scoped = true
		return block, nil
	case tok.Is(TokenSymbol, ";"):
		p.next()
		return &Block{base: base{At: tok.Pos}}, nil
	case tok.Is(TokenKeyword, "var"), tok.Is(TokenKeyword, "const"):
		return p.varDecl(true)
	case tok.Is(TokenKeyword, "func"):
		return p.funcDecl(true)
	case tok.Is(TokenKeyword, "global"):
		p.next()
		if !p.at(TokenKeyword, "func") {
			return nil, syntaxError(p.peek().Pos, "expected func after global")
		}
		return p.funcDecl(true)
	case tok.Is(TokenKeyword, "class"):
		return p.classDecl()
	case tok.Is(TokenKeyword, "if"):
		return p.ifStmt()
	case tok.Is(TokenKeyword, "while"):
		return p.whileStmt()
	case tok.Is(TokenKeyword, "for"):
		return p.forStmt()
	case tok.Is(TokenKeyword, "return"):
		p.next()
		ret := &Return{base: base{At: tok.Pos}}
		if !p.at(TokenSymbol, ";") {
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			ret.Expr = expr
		}
		if _, err := p.expect(TokenSymbol, ";"); err != nil {
			return nil, err
		}
		return ret, nil
	case tok.Is(TokenKeyword, "break"):
		p.next()
		if _, err := p.expect(TokenSymbol, ";"); err != nil {
			return nil, err
		}
		return &Break{base: base{At: tok.Pos}}, nil
	case tok.Is(TokenKeyword, "continue"):
		p.next()
		if _, err := p.expect(TokenSymbol, ";"); err != nil {
			return nil, err
		}
		return &Continue{base: base{At: tok.Pos}}, nil
	case tok.Is(TokenKeyword, "import"):
		return nil, WithPos(ErrImport, tok.Pos)
	}

	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSymbol, ";"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *parser) block() (*Block, error) {
	open, err := p.expect(TokenSymbol, "{")
	if err != nil {
		return nil, err
	}
	block := &Block{base: base{At: open.Pos}}
	for !p.at(TokenSymbol, "}") {
		if p.at(TokenEOF, "") {
			return nil, syntaxError(open.Pos, "unclosed block")
		}
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	p.next()
	return block, nil
}

func (p *parser) varDecl(semicolon bool) (Node, error) {
	kw := p.next()
	isConst := kw.Text == "const"
	var decls []*VarDecl
	for {
		name, err := p.expect(TokenIdentifier, "")
		if err != nil {
			return nil, err
		}
		decl := &VarDecl{
			base:  base{At: name.Pos},
			Name:  name.Text,
			Const: isConst,
		}
		if p.accept(TokenSymbol, "=") {
			init, err := p.expression()
			if err != nil {
				return nil, err
			}
			decl.Init = init
		} else if isConst {
			return nil, syntaxError(name.Pos, "const %s needs an initializer", name.Text)
		}
		decls = append(decls, decl)
		if !p.accept(TokenSymbol, ",") {
			break
		}
	}
	if semicolon {
		if _, err := p.expect(TokenSymbol, ";"); err != nil {
			return nil, err
		}
	}
	if len(decls) == 1 {
		return decls[0], nil
	}
	return &MultiVarDecl{
		base:  base{At: kw.Pos},
		Decls: decls,
	}, nil
}

func (p *parser) funcDecl(global bool) (*FuncDecl, error) {
	kw := p.next()
	name, err := p.expect(TokenIdentifier, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSymbol, "("); err != nil {
		return nil, err
	}
	var params []string
	seen := make(map[string]bool)
	for !p.at(TokenSymbol, ")") {
		if len(params) > 0 {
			if _, err := p.expect(TokenSymbol, ","); err != nil {
				return nil, err
			}
		}
		param, err := p.expect(TokenIdentifier, "")
		if err != nil {
			return nil, err
		}
		if seen[param.Text] {
			return nil, syntaxError(param.Pos, "duplicated parameter %s", param.Text)
		}
		seen[param.Text] = true
		params = append(params, param.Text)
	}
	p.next()
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{
		base:   base{At: kw.Pos},
		Name:   name.Text,
		Params: params,
		Body:   body,
		Global: global,
	}, nil
}

func (p *parser) classDecl() (Node, error) {
	kw := p.next()
	name, err := p.expect(TokenIdentifier, "")
	if err != nil {
		return nil, err
	}
	decl := &ClassDecl{
		base: base{At: kw.Pos},
		Name: name.Text,
	}
	if p.accept(TokenKeyword, "extends") {
		parent, err := p.expect(TokenIdentifier, "")
		if err != nil {
			return nil, err
		}
		decl.Parent = parent.Text
	}
	if _, err := p.expect(TokenSymbol, "{"); err != nil {
		return nil, err
	}
	for !p.accept(TokenSymbol, "}") {
		tok := p.peek()
		switch {
		case tok.Is(TokenKeyword, "var"), tok.Is(TokenKeyword, "const"):
			member, err := p.varDecl(true)
			if err != nil {
				return nil, err
			}
			decl.Members = append(decl.Members, member)
		case tok.Is(TokenKeyword, "func"):
			member, err := p.funcDecl(false)
			if err != nil {
				return nil, err
			}
			decl.Members = append(decl.Members, member)
		case tok.Is(TokenKeyword, "global"):
			p.next()
			if !p.at(TokenKeyword, "func") {
				return nil, syntaxError(p.peek().Pos, "expected func after global")
			}
			member, err := p.funcDecl(true)
			if err != nil {
				return nil, err
			}
			decl.Members = append(decl.Members, member)
		default:
			return nil, syntaxError(tok.Pos, "expected class member, got %s", describe(tok))
		}
	}
	return decl, nil
}

func (p *parser) condition() (Node, error) {
	if _, err := p.expect(TokenSymbol, "("); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSymbol, ")"); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *parser) ifStmt() (Node, error) {
	kw := p.next()
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	then, err := p.body()
	if err != nil {
		return nil, err
	}
	stmt := &If{
		base: base{At: kw.Pos},
		Cond: cond,
		Then: then,
	}
	if p.accept(TokenKeyword, "else") {
		if p.at(TokenKeyword, "if") {
			stmt.Else, err = p.ifStmt()
		} else {
			stmt.Else, err = p.body()
		}
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// body parses a branch or loop body. Braces here do not open an extra scope.
func (p *parser) body() (Node, error) {
	if p.at(TokenSymbol, "{") {
		return p.block()
	}
	return p.statement()
}

func (p *parser) whileStmt() (Node, error) {
	kw := p.next()
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	body, err := p.body()
	if err != nil {
		return nil, err
	}
	return &While{
		base: base{At: kw.Pos},
		Cond: cond,
		Body: body,
	}, nil
}

func (p *parser) forStmt() (Node, error) {
	kw := p.next()
	if _, err := p.expect(TokenSymbol, "("); err != nil {
		return nil, err
	}
	p.accept(TokenKeyword, "var")
	name, err := p.expect(TokenIdentifier, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenKeyword, "in"); err != nil {
		return nil, err
	}
	iter, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSymbol, ")"); err != nil {
		return nil, err
	}
	body, err := p.body()
	if err != nil {
		return nil, err
	}
	return &For{
		base: base{At: kw.Pos},
		Var:  name.Text,
		Iter: iter,
		Body: body,
	}, nil
}

type infixOp struct {
	op         BinaryOp
	precedence int
	rightAssoc bool
}

var infixOps = map[string]infixOp{
	"=":   {BinaryAssign, 1, true},
	"+=":  {BinaryAddAssign, 1, true},
	"-=":  {BinarySubAssign, 1, true},
	"*=":  {BinaryMulAssign, 1, true},
	"/=":  {BinaryDivAssign, 1, true},
	"or":  {BinaryOr, 2, false},
	"and": {BinaryAnd, 3, false},
	"==":  {BinaryEq, 4, false},
	"!=":  {BinaryNeq, 4, false},
	"<":   {BinaryLt, 5, false},
	">":   {BinaryGt, 5, false},
	"<=":  {BinaryLte, 5, false},
	">=":  {BinaryGte, 5, false},
	"+":   {BinaryAdd, 6, false},
	"-":   {BinarySub, 6, false},
	"*":   {BinaryMul, 7, false},
	"/":   {BinaryDiv, 7, false},
	"is":  {BinaryIs, 8, false},
}

func (p *parser) infix() (infixOp, bool) {
	tok := p.peek()
	if tok.Kind != TokenSymbol && tok.Kind != TokenKeyword {
		return infixOp{}, false
	}
	op, ok := infixOps[tok.Text]
	return op, ok
}

func (p *parser) expression() (Node, error) {
	return p.binary(1)
}

func (p *parser) binary(minPrecedence int) (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.infix()
		if !ok || op.precedence < minPrecedence {
			return left, nil
		}
		tok := p.next()
		nextMin := op.precedence + 1
		if op.rightAssoc {
			nextMin = op.precedence
		}
		right, err := p.binary(nextMin)
		if err != nil {
			return nil, err
		}
		if op.op.IsAssign() && !isLvalue(left) {
			return nil, syntaxError(tok.Pos, "cannot assign to this expression")
		}
		if op.op == BinaryIs {
			if _, ok := right.(*Ident); !ok {
				return nil, syntaxError(tok.Pos, "right side of is must be a class name")
			}
		}
		left = &Binary{
			base:  base{At: tok.Pos},
			Op:    op.op,
			Left:  left,
			Right: right,
		}
	}
}

func isLvalue(node Node) bool {
	switch node := node.(type) {
	case *Ident, *Subscript, *This:
		return true
	case *Binary:
		return node.Op == BinaryDot && isLvalue(node.Right)
	}
	return false
}

func (p *parser) unary() (Node, error) {
	tok := p.peek()
	var op UnaryOp
	switch {
	case tok.Is(TokenSymbol, "!"), tok.Is(TokenKeyword, "not"):
		op = UnaryNot
	case tok.Is(TokenSymbol, "-"):
		op = UnaryNeg
	case tok.Is(TokenSymbol, "+"):
		op = UnaryPlus
	case tok.Is(TokenSymbol, "++"):
		op = UnaryPreInc
	case tok.Is(TokenSymbol, "--"):
		op = UnaryPreDec
	default:
		return p.member()
	}
	p.next()
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}
	if (op == UnaryPreInc || op == UnaryPreDec) && !isLvalue(expr) {
		return nil, syntaxError(tok.Pos, "cannot apply %s to this expression", tok.Text)
	}
	return &Unary{
		base: base{At: tok.Pos},
		Op:   op,
		Expr: expr,
	}, nil
}

// member parses a postfix expression followed by any number of dotted members.
// Each member keeps its own postfix operators, so a.b(1) is Dot(a, Call(b)).
func (p *parser) member() (Node, error) {
	left, err := p.postfix()
	if err != nil {
		return nil, err
	}
	for p.at(TokenSymbol, ".") {
		dot := p.next()
		name, err := p.expect(TokenIdentifier, "")
		if err != nil {
			return nil, err
		}
		right, err := p.postfixOps(&Ident{
			base: base{At: name.Pos},
			Name: name.Text,
		})
		if err != nil {
			return nil, err
		}
		left = &Binary{
			base:  base{At: dot.Pos},
			Op:    BinaryDot,
			Left:  left,
			Right: right,
		}
	}
	return left, nil
}

func (p *parser) postfix() (Node, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	return p.postfixOps(expr)
}

func (p *parser) postfixOps(expr Node) (Node, error) {
	for {
		tok := p.peek()
		switch {
		case tok.Is(TokenSymbol, "("):
			p.next()
			args, err := p.list(")")
			if err != nil {
				return nil, err
			}
			expr = &Call{
				base:   base{At: tok.Pos},
				Callee: expr,
				Args:   args,
			}
		case tok.Is(TokenSymbol, "["):
			p.next()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenSymbol, "]"); err != nil {
				return nil, err
			}
			expr = &Subscript{
				base:  base{At: tok.Pos},
				Expr:  expr,
				Index: index,
			}
		case tok.Is(TokenSymbol, "++"), tok.Is(TokenSymbol, "--"):
			if !isLvalue(expr) {
				return nil, syntaxError(tok.Pos, "cannot apply %s to this expression", tok.Text)
			}
			p.next()
			op := UnaryPostInc
			if tok.Text == "--" {
				op = UnaryPostDec
			}
			expr = &Unary{
				base: base{At: tok.Pos},
				Op:   op,
				Expr: expr,
			}
		default:
			return expr, nil
		}
	}
}

func (p *parser) list(closing string) ([]Node, error) {
	var items []Node
	for !p.accept(TokenSymbol, closing) {
		if len(items) > 0 {
			if _, err := p.expect(TokenSymbol, ","); err != nil {
				return nil, err
			}
			if p.accept(TokenSymbol, closing) {
				break
			}
		}
		item, err := p.expression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *parser) primary() (Node, error) {
	tok := p.next()
	at := base{At: tok.Pos}
	switch tok.Kind {
	case TokenNumber:
		return &Literal{
			base: at,
			Kind: LiteralNumber,
			Num:  tok.Num,
		}, nil
	case TokenString:
		return &StringLit{
			base:  at,
			Value: tok.Text,
		}, nil
	case TokenIdentifier:
		return &Ident{
			base: at,
			Name: tok.Text,
		}, nil
	case TokenKeyword:
		switch tok.Text {
		case "true", "false":
			return &Literal{
				base: at,
				Kind: LiteralBool,
				Bool: tok.Text == "true",
			}, nil
		case "null":
			return &NullLit{base: at}, nil
		case "this":
			return &This{base: at}, nil
		case "new":
			name, err := p.expect(TokenIdentifier, "")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenSymbol, "("); err != nil {
				return nil, err
			}
			args, err := p.list(")")
			if err != nil {
				return nil, err
			}
			return &New{
				base:  at,
				Class: name.Text,
				Args:  args,
			}, nil
		}
	case TokenSymbol:
		switch tok.Text {
		case "(":
			expr, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenSymbol, ")"); err != nil {
				return nil, err
			}
			return expr, nil
		case "[":
			items, err := p.list("]")
			if err != nil {
				return nil, err
			}
			return &ArrayLit{
				base:  at,
				Items: items,
			}, nil
		}
	}
	return nil, syntaxError(tok.Pos, "unexpected %s", describe(tok))
}
