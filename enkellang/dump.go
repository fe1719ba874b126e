package enkellang

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented tree of the node.
func Dump(w io.Writer, node Node) error {
	d := &dumper{w: w}
	d.dump(node, 0, "")
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) line(depth int, label string, format string, args ...any) {
	if d.err != nil {
		return
	}
	text := fmt.Sprintf(format, args...)
	if label != "" {
		text = label + ": " + text
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), text)
}

func (d *dumper) dump(node Node, depth int, label string) {
	switch node := node.(type) {
	case nil:
		d.line(depth, label, "<nil>")
	case *Literal:
		if node.Kind == LiteralBool {
			d.line(depth, label, "Literal %v", node.Bool)
		} else {
			d.line(depth, label, "Literal %v", node.Num)
		}
	case *StringLit:
		d.line(depth, label, "String %q", node.Value)
	case *NullLit:
		d.line(depth, label, "Null")
	case *Ident:
		d.line(depth, label, "Ident %s", node.Name)
	case *This:
		d.line(depth, label, "This")
	case *Unary:
		d.line(depth, label, "Unary %s", node.Op)
		d.dump(node.Expr, depth+1, "")
	case *Binary:
		d.line(depth, label, "Binary %s", node.Op)
		d.dump(node.Left, depth+1, "")
		d.dump(node.Right, depth+1, "")
	case *Block:
		if node.Scoped {
			d.line(depth, label, "Block scoped")
		} else {
			d.line(depth, label, "Block")
		}
		for _, stmt := range node.Stmts {
			d.dump(stmt, depth+1, "")
		}
	case *VarDecl:
		kind := "Var"
		if node.Const {
			kind = "Const"
		}
		d.line(depth, label, "%s %s", kind, node.Name)
		if node.Init != nil {
			d.dump(node.Init, depth+1, "init")
		}
	case *MultiVarDecl:
		d.line(depth, label, "MultiVar")
		for _, decl := range node.Decls {
			d.dump(decl, depth+1, "")
		}
	case *FuncDecl:
		prefix := ""
		if node.Global {
			prefix = "global "
		}
		d.line(depth, label, "%sFunc %s(%s)", prefix, node.Name, strings.Join(node.Params, ", "))
		d.dump(node.Body, depth+1, "")
	case *Return:
		d.line(depth, label, "Return")
		if node.Expr != nil {
			d.dump(node.Expr, depth+1, "")
		}
	case *Call:
		d.line(depth, label, "Call")
		d.dump(node.Callee, depth+1, "callee")
		for _, arg := range node.Args {
			d.dump(arg, depth+1, "arg")
		}
	case *If:
		d.line(depth, label, "If")
		d.dump(node.Cond, depth+1, "cond")
		d.dump(node.Then, depth+1, "then")
		if node.Else != nil {
			d.dump(node.Else, depth+1, "else")
		}
	case *While:
		d.line(depth, label, "While")
		d.dump(node.Cond, depth+1, "cond")
		d.dump(node.Body, depth+1, "body")
	case *For:
		d.line(depth, label, "For %s", node.Var)
		d.dump(node.Iter, depth+1, "in")
		d.dump(node.Body, depth+1, "body")
	case *Break:
		d.line(depth, label, "Break")
	case *Continue:
		d.line(depth, label, "Continue")
	case *ArrayLit:
		d.line(depth, label, "Array")
		for _, item := range node.Items {
			d.dump(item, depth+1, "")
		}
	case *Subscript:
		d.line(depth, label, "Subscript")
		d.dump(node.Expr, depth+1, "")
		d.dump(node.Index, depth+1, "index")
	case *ClassDecl:
		if node.Parent != "" {
			d.line(depth, label, "Class %s extends %s", node.Name, node.Parent)
		} else {
			d.line(depth, label, "Class %s", node.Name)
		}
		for _, member := range node.Members {
			d.dump(member, depth+1, "")
		}
	case *New:
		d.line(depth, label, "New %s", node.Class)
		for _, arg := range node.Args {
			d.dump(arg, depth+1, "arg")
		}
	default:
		d.line(depth, label, "%T", node)
	}
}
