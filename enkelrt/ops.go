package enkelrt

import (
	"unicode/utf8"

	"github.com/reusee/enkel/enkellang"
)

func (in *Interpreter) evalUnary(node *enkellang.Unary, scope *Scope, selected Handle) (Result, error) {
	res, err := in.evalNode(node.Expr, scope, selected)
	if err != nil {
		return Result{}, err
	}
	v := res.Value

	switch node.Op {
	case enkellang.UnaryNot:
		if v.kind != KindBool {
			return Result{}, newError(ErrType, node.Pos(), "expected boolean operand of %s, got %s", node.Op, v.kind)
		}
		return Result{Value: Bool(!v.Bool())}, nil
	}

	if v.kind != KindNumber {
		return Result{}, newError(ErrType, node.Pos(), "expected number operand of %s, got %s", node.Op, v.kind)
	}

	switch node.Op {
	case enkellang.UnaryNeg:
		return Result{Value: Number(-v.num)}, nil
	case enkellang.UnaryPlus:
		return Result{Value: v}, nil
	}

	if res.Ref == nil {
		return Result{}, newError(ErrMisuse, node.Pos(), "operand of %s is not assignable", node.Op)
	}
	delta := float32(1)
	if node.Op == enkellang.UnaryPreDec || node.Op == enkellang.UnaryPostDec {
		delta = -1
	}
	updated := Number(v.num + delta)
	*res.Ref = updated
	if node.Op == enkellang.UnaryPostInc || node.Op == enkellang.UnaryPostDec {
		return Result{Value: v}, nil
	}
	return Result{Value: updated, Ref: res.Ref}, nil
}

func (in *Interpreter) evalBinary(node *enkellang.Binary, scope *Scope) (Result, error) {
	switch node.Op {
	case enkellang.BinaryDot:
		return in.evalDot(node, scope)
	case enkellang.BinaryIs:
		return in.evalIs(node, scope)
	case enkellang.BinaryAnd, enkellang.BinaryOr:
		return in.evalLogic(node, scope)
	}
	if node.Op.IsAssign() {
		return in.evalAssign(node, scope)
	}

	left, err := in.evalNode(node.Left, scope, Handle{})
	if err != nil {
		return Result{}, err
	}
	right, err := in.evalNode(node.Right, scope, Handle{})
	if err != nil {
		return Result{}, err
	}
	v, err := in.binaryOp(node.Op, left.Value, right.Value, node.Pos())
	if err != nil {
		return Result{}, err
	}
	return Result{Value: v}, nil
}

func (in *Interpreter) binaryOp(op enkellang.BinaryOp, a, b Value, pos enkellang.Pos) (Value, error) {
	if a.kind == KindNumber && b.kind == KindNumber {
		x, y := a.num, b.num
		switch op {
		case enkellang.BinaryAdd:
			return Number(x + y), nil
		case enkellang.BinarySub:
			return Number(x - y), nil
		case enkellang.BinaryMul:
			return Number(x * y), nil
		case enkellang.BinaryDiv:
			return Number(x / y), nil
		case enkellang.BinaryLt:
			return Bool(x < y), nil
		case enkellang.BinaryGt:
			return Bool(x > y), nil
		case enkellang.BinaryLte:
			return Bool(x <= y), nil
		case enkellang.BinaryGte:
			return Bool(x >= y), nil
		case enkellang.BinaryEq:
			return Bool(x == y), nil
		case enkellang.BinaryNeq:
			return Bool(x != y), nil
		}
	}

	if s1, ok := in.str(a); ok {
		if s2, ok := in.str(b); ok {
			switch op {
			case enkellang.BinaryAdd:
				return in.NewString(s1 + s2), nil
			case enkellang.BinaryEq:
				return Bool(s1 == s2), nil
			case enkellang.BinaryNeq:
				return Bool(s1 != s2), nil
			}
		}
	}

	switch op {
	case enkellang.BinaryEq:
		return Bool(Equal(a, b)), nil
	case enkellang.BinaryNeq:
		return Bool(!Equal(a, b)), nil
	}

	return Null(), newError(ErrType, pos, "unhandled binary operator %s for %s and %s", op, in.TypeOf(a), in.TypeOf(b))
}

func (in *Interpreter) str(v Value) (string, bool) {
	if v.kind != KindObject {
		return "", false
	}
	obj, ok := in.heap.Get(v.handle)
	if !ok {
		return "", false
	}
	s, ok := obj.(*String)
	if !ok {
		return "", false
	}
	return s.Str, true
}

func (in *Interpreter) evalLogic(node *enkellang.Binary, scope *Scope) (Result, error) {
	left, err := in.evalNode(node.Left, scope, Handle{})
	if err != nil {
		return Result{}, err
	}
	if left.Value.kind != KindBool {
		return Result{}, newError(ErrType, node.Pos(), "expected boolean operand of %s, got %s", node.Op, left.Value.kind)
	}
	l := left.Value.Bool()
	if !in.options.EagerLogic {
		if node.Op == enkellang.BinaryAnd && !l {
			return Result{Value: Bool(false)}, nil
		}
		if node.Op == enkellang.BinaryOr && l {
			return Result{Value: Bool(true)}, nil
		}
	}
	right, err := in.evalNode(node.Right, scope, Handle{})
	if err != nil {
		return Result{}, err
	}
	if right.Value.kind != KindBool {
		return Result{}, newError(ErrType, node.Pos(), "expected boolean operand of %s, got %s", node.Op, right.Value.kind)
	}
	r := right.Value.Bool()
	if node.Op == enkellang.BinaryAnd {
		return Result{Value: Bool(l && r)}, nil
	}
	return Result{Value: Bool(l || r)}, nil
}

// evalAssign evaluates the right side before the left, so a reference
// obtained from the left side is not invalidated by the right side.
func (in *Interpreter) evalAssign(node *enkellang.Binary, scope *Scope) (Result, error) {
	right, err := in.evalNode(node.Right, scope, Handle{})
	if err != nil {
		return Result{}, err
	}
	left, err := in.evalNode(node.Left, scope, Handle{})
	if err != nil {
		return Result{}, err
	}
	if left.Ref == nil {
		return Result{}, newError(ErrMisuse, node.Pos(), "left side of %s is not assignable", node.Op)
	}

	value := right.Value
	if op, ok := node.Op.Arith(); ok {
		if left.Value.kind != KindNumber || value.kind != KindNumber {
			return Result{}, newError(ErrType, node.Pos(), "%s expects numbers, got %s and %s", node.Op, left.Value.kind, value.kind)
		}
		value, err = in.binaryOp(op, left.Value, value, node.Pos())
		if err != nil {
			return Result{}, err
		}
	}

	*left.Ref = value
	return Result{Value: value, Ref: left.Ref}, nil
}

func (in *Interpreter) evalDot(node *enkellang.Binary, scope *Scope) (Result, error) {
	left, err := in.evalNode(node.Left, scope, Handle{})
	if err != nil {
		return Result{}, err
	}
	obj, err := in.object(left.Value, node.Pos())
	if err != nil {
		return Result{}, err
	}

	switch obj := obj.(type) {
	case *Array:
		return in.arrayMember(obj, node.Right, scope)
	case *String:
		if ident, ok := node.Right.(*enkellang.Ident); ok && ident.Name == "length" {
			return Result{Value: Number(float32(utf8.RuneCountInString(obj.Str)))}, nil
		}
		return Result{}, newError(ErrName, node.Right.Pos(), "no such string member")
	}

	return in.evalNode(node.Right, scope, left.Value.handle)
}

func (in *Interpreter) arrayMember(arr *Array, member enkellang.Node, scope *Scope) (Result, error) {
	switch member := member.(type) {
	case *enkellang.Ident:
		if member.Name == "length" {
			return Result{Value: Number(float32(len(arr.Items)))}, nil
		}

	case *enkellang.Call:
		ident, ok := member.Callee.(*enkellang.Ident)
		if !ok {
			break
		}
		args, err := in.evalArgs(member.Args, scope)
		if err != nil {
			return Result{}, err
		}
		switch ident.Name {

		case "push":
			if len(args) != 1 {
				return Result{}, newError(ErrArity, member.Pos(), "push expects 1 argument, got %d", len(args))
			}
			arr.Items = append(arr.Items, args[0])
			return Result{}, nil

		case "pop":
			if len(args) != 0 {
				return Result{}, newError(ErrArity, member.Pos(), "pop expects no arguments, got %d", len(args))
			}
			n := len(arr.Items)
			if n == 0 {
				return Result{}, newError(ErrBounds, member.Pos(), "pop from empty array")
			}
			last := arr.Items[n-1]
			arr.Items = arr.Items[:n-1]
			return Result{Value: last}, nil

		case "remove_at":
			if len(args) != 1 {
				return Result{}, newError(ErrArity, member.Pos(), "remove_at expects 1 argument, got %d", len(args))
			}
			i, err := in.index(args[0], len(arr.Items), member.Pos())
			if err != nil {
				return Result{}, err
			}
			removed := arr.Items[i]
			arr.Items = append(arr.Items[:i], arr.Items[i+1:]...)
			return Result{Value: removed}, nil
		}
	}

	return Result{}, newError(ErrName, member.Pos(), "no such array member")
}

func (in *Interpreter) index(v Value, length int, pos enkellang.Pos) (int, error) {
	if v.kind != KindNumber {
		return 0, newError(ErrType, pos, "index must be a number, got %s", v.kind)
	}
	if !(v.num >= 0 && v.num < float32(length)) {
		return 0, newError(ErrBounds, pos, "index %v out of range [0, %d)", v.num, length)
	}
	return int(v.num), nil
}

func (in *Interpreter) evalIs(node *enkellang.Binary, scope *Scope) (Result, error) {
	left, err := in.evalNode(node.Left, scope, Handle{})
	if err != nil {
		return Result{}, err
	}
	ident, ok := node.Right.(*enkellang.Ident)
	if !ok {
		return Result{}, newError(ErrType, node.Pos(), "right side of is must be a class name")
	}
	if left.Value.kind != KindObject {
		return Result{Value: Bool(false)}, nil
	}
	obj, ok := in.heap.Get(left.Value.handle)
	if !ok {
		return Result{Value: Bool(false)}, nil
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return Result{Value: Bool(false)}, nil
	}
	if inst.Class == ident.Name {
		return Result{Value: Bool(true)}, nil
	}
	if in.options.IsMatchesParents {
		seen := make(map[string]bool)
		for class := in.classes[inst.Class]; class != nil && !seen[class.Name]; class = in.classes[class.Parent] {
			seen[class.Name] = true
			if class.Parent == ident.Name {
				return Result{Value: Bool(true)}, nil
			}
		}
	}
	return Result{Value: Bool(false)}, nil
}

func (in *Interpreter) evalSubscript(node *enkellang.Subscript, scope *Scope, selected Handle) (Result, error) {
	target, err := in.evalNode(node.Expr, scope, selected)
	if err != nil {
		return Result{}, err
	}
	idx, err := in.evalNode(node.Index, scope, Handle{})
	if err != nil {
		return Result{}, err
	}
	obj, err := in.object(target.Value, node.Pos())
	if err != nil {
		return Result{}, err
	}

	switch obj := obj.(type) {
	case *Array:
		i, err := in.index(idx.Value, len(obj.Items), node.Pos())
		if err != nil {
			return Result{}, err
		}
		return Result{Value: obj.Items[i], Ref: &obj.Items[i]}, nil
	case *String:
		runes := []rune(obj.Str)
		i, err := in.index(idx.Value, len(runes), node.Pos())
		if err != nil {
			return Result{}, err
		}
		return Result{Value: in.NewString(string(runes[i]))}, nil
	}

	return Result{}, newError(ErrType, node.Pos(), "cannot subscript %s", in.TypeOf(target.Value))
}
