package enkelrt

import (
	"errors"

	"github.com/reusee/enkel/enkellang"
)

func (in *Interpreter) evalArgs(nodes []enkellang.Node, scope *Scope) ([]Value, error) {
	args := make([]Value, 0, len(nodes))
	for _, node := range nodes {
		res, err := in.evalNode(node, scope, Handle{})
		if err != nil {
			return nil, err
		}
		args = append(args, res.Value)
	}
	return args, nil
}

func (in *Interpreter) evalCall(node *enkellang.Call, scope *Scope, selected Handle) (Result, error) {
	callee, err := in.evalNode(node.Callee, scope, selected)
	if err != nil {
		return Result{}, err
	}
	args, err := in.evalArgs(node.Args, scope)
	if err != nil {
		return Result{}, err
	}
	receiver := selected
	if receiver.IsZero() {
		receiver = scope.This
	}
	ret, err := in.callValue(callee.Value, args, receiver, node.Pos())
	if err != nil {
		return Result{}, err
	}
	return Result{Value: ret}, nil
}

func (in *Interpreter) callValue(fn Value, args []Value, receiver Handle, pos enkellang.Pos) (Value, error) {
	switch fn.kind {

	case KindNative:
		native, ok := in.Native(int(fn.index))
		if !ok {
			return Null(), newError(ErrMisuse, pos, "bad native function index %d", fn.index)
		}
		if len(args) < native.MinArgs {
			return Null(), newError(ErrArity, pos, "%s expects at least %d arguments, got %d", native.Name, native.MinArgs, len(args))
		}
		prevPos := in.callPos
		in.callPos = pos
		ret, err := native.Func(in, args)
		in.callPos = prevPos
		if err != nil {
			var e *Error
			if !errors.As(err, &e) {
				err = newError(ErrMisuse, pos, "%s: %v", native.Name, err)
			}
			return Null(), err
		}
		return ret, nil

	case KindFunc:
		decl := fn.fn
		if len(args) != len(decl.Params) {
			return Null(), newError(ErrArity, pos, "%s expects %d arguments, got %d", decl.Name, len(decl.Params), len(args))
		}
		if in.options.MaxCallDepth > 0 && in.depth >= in.options.MaxCallDepth {
			return Null(), newError(ErrMisuse, pos, "call depth exceeds %d", in.options.MaxCallDepth)
		}

		parent := in.global
		var this Handle
		if !decl.Global && !receiver.IsZero() {
			obj, err := in.object(ObjectRef(receiver), pos)
			if err != nil {
				return Null(), err
			}
			this = receiver
			if inst, ok := obj.(*Instance); ok {
				parent = inst.Scope
			}
		}

		scope := NewScope(parent, this)
		for i, param := range decl.Params {
			scope.SetDef(param, args[i], 0)
		}

		in.depth++
		in.enter(scope)
		res, err := in.evalNode(decl.Body, scope, Handle{})
		in.leave()
		in.depth--
		if err != nil {
			return Null(), err
		}
		switch res.Flow {
		case FlowReturn:
			return res.Value, nil
		case FlowBreak, FlowContinue:
			return Null(), newError(ErrMisuse, pos, "%s outside of loop in %s", res.Flow, decl.Name)
		}
		return Null(), nil

	}

	return Null(), newError(ErrType, pos, "%s is not callable", in.TypeOf(fn))
}
