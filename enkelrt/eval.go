package enkelrt

import (
	"github.com/reusee/enkel/enkellang"
)

type ControlFlow uint8

const (
	FlowNone ControlFlow = iota
	FlowReturn
	FlowBreak
	FlowContinue
)

func (c ControlFlow) String() string {
	switch c {
	case FlowReturn:
		return "return"
	case FlowBreak:
		return "break"
	case FlowContinue:
		return "continue"
	}
	return "none"
}

// Result is the outcome of evaluating a node. Ref is set when the node
// names a writable location.
type Result struct {
	Value Value
	Flow  ControlFlow
	Ref   *Value
}

func (in *Interpreter) evalNode(node enkellang.Node, scope *Scope, selected Handle) (Result, error) {
	if !selected.IsZero() {
		switch node.(type) {
		case *enkellang.Ident, *enkellang.Call, *enkellang.Subscript, *enkellang.Unary:
		default:
			return Result{}, newError(ErrType, node.Pos(), "expected member name")
		}
	}

	switch node := node.(type) {

	case *enkellang.Literal:
		if node.Kind == enkellang.LiteralBool {
			return Result{Value: Bool(node.Bool)}, nil
		}
		return Result{Value: Number(node.Num)}, nil

	case *enkellang.StringLit:
		return Result{Value: in.NewString(node.Value)}, nil

	case *enkellang.NullLit:
		return Result{}, nil

	case *enkellang.Ident:
		return in.evalIdent(node, scope, selected)

	case *enkellang.This:
		if scope.This.IsZero() {
			return Result{}, newError(ErrMisuse, node.Pos(), "not in a class")
		}
		return Result{Value: ObjectRef(scope.This)}, nil

	case *enkellang.ArrayLit:
		arr := &Array{
			Items: make([]Value, 0, len(node.Items)),
		}
		ret := ObjectRef(in.heap.Add(arr))
		for _, item := range node.Items {
			res, err := in.evalNode(item, scope, Handle{})
			if err != nil {
				return Result{}, err
			}
			arr.Items = append(arr.Items, res.Value)
		}
		return Result{Value: ret}, nil

	case *enkellang.Unary:
		return in.evalUnary(node, scope, selected)

	case *enkellang.Binary:
		return in.evalBinary(node, scope)

	case *enkellang.Subscript:
		return in.evalSubscript(node, scope, selected)

	case *enkellang.Call:
		return in.evalCall(node, scope, selected)

	case *enkellang.Block:
		return in.evalBlock(node, scope)

	case *enkellang.VarDecl:
		return Result{}, in.declareVar(node, scope)

	case *enkellang.MultiVarDecl:
		for _, decl := range node.Decls {
			if err := in.declareVar(decl, scope); err != nil {
				return Result{}, err
			}
		}
		return Result{}, nil

	case *enkellang.FuncDecl:
		if scope.FindDef(node.Name, false) != nil {
			return Result{}, newError(ErrName, node.Pos(), "%s already defined", node.Name)
		}
		scope.SetDef(node.Name, FuncRef(node), DefFunc)
		return Result{}, nil

	case *enkellang.Return:
		if node.Expr == nil {
			return Result{Flow: FlowReturn}, nil
		}
		res, err := in.evalNode(node.Expr, scope, Handle{})
		if err != nil {
			return Result{}, err
		}
		return Result{Value: res.Value, Flow: FlowReturn}, nil

	case *enkellang.Break:
		return Result{Flow: FlowBreak}, nil

	case *enkellang.Continue:
		return Result{Flow: FlowContinue}, nil

	case *enkellang.If:
		return in.evalIf(node, scope)

	case *enkellang.While:
		return in.evalWhile(node, scope)

	case *enkellang.For:
		return in.evalFor(node, scope)

	case *enkellang.ClassDecl:
		return Result{}, in.declareClass(node, scope)

	case *enkellang.New:
		return in.evalNew(node, scope)

	}

	return Result{}, newError(ErrMisuse, node.Pos(), "cannot evaluate %T", node)
}

func (in *Interpreter) evalIdent(node *enkellang.Ident, scope *Scope, selected Handle) (Result, error) {
	var def *Definition

	if !selected.IsZero() {
		obj, err := in.object(ObjectRef(selected), node.Pos())
		if err != nil {
			return Result{}, err
		}
		switch obj := obj.(type) {
		case *Instance:
			def = obj.Scope.FindDef(node.Name, false)
		case *Table:
			def = obj.Scope.FindDef(node.Name, false)
			if def == nil {
				def = obj.Scope.SetDef(node.Name, Null(), 0)
			}
		}
		if def == nil {
			return Result{}, newError(ErrName, node.Pos(), "no such member: %s", node.Name)
		}

	} else {
		def = scope.FindDef(node.Name, true)
		if def == nil {
			return Result{}, newError(ErrName, node.Pos(), "no such variable: %s", node.Name)
		}
	}

	res := Result{
		Value: def.Value,
	}
	if def.Modifiable() {
		res.Ref = &def.Value
	}
	return res, nil
}

func (in *Interpreter) declareVar(node *enkellang.VarDecl, scope *Scope) error {
	if scope.FindDef(node.Name, false) != nil {
		return newError(ErrName, node.Pos(), "%s already defined", node.Name)
	}
	var value Value
	if node.Init != nil {
		res, err := in.evalNode(node.Init, scope, Handle{})
		if err != nil {
			return err
		}
		value = res.Value
	}
	var flags DefFlags
	if node.Const {
		flags |= DefConst
	}
	scope.SetDef(node.Name, value, flags)
	return nil
}
