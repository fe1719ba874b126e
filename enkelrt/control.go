package enkelrt

import (
	"math"

	"github.com/reusee/enkel/enkellang"
)

func (in *Interpreter) enter(scope *Scope) {
	in.frames = append(in.frames, scope)
}

func (in *Interpreter) leave() {
	in.frames = in.frames[:len(in.frames)-1]
}

func (in *Interpreter) evalBlock(node *enkellang.Block, scope *Scope) (Result, error) {
	if node.Scoped {
		scope = NewScope(scope, scope.This)
		in.enter(scope)
		defer in.leave()
	}
	for _, stmt := range node.Stmts {
		res, err := in.evalNode(stmt, scope, Handle{})
		if err != nil {
			return Result{}, err
		}
		if res.Flow != FlowNone {
			return res, nil
		}
	}
	return Result{}, nil
}

func (in *Interpreter) condition(node enkellang.Node, scope *Scope) (bool, error) {
	res, err := in.evalNode(node, scope, Handle{})
	if err != nil {
		return false, err
	}
	if res.Value.kind != KindBool {
		return false, newError(ErrType, node.Pos(), "condition must be boolean, got %s", res.Value.kind)
	}
	return res.Value.Bool(), nil
}

// branch evaluates a statement in a fresh child scope.
func (in *Interpreter) branch(node enkellang.Node, scope *Scope) (Result, error) {
	child := NewScope(scope, scope.This)
	in.enter(child)
	defer in.leave()
	return in.evalNode(node, child, Handle{})
}

func (in *Interpreter) evalIf(node *enkellang.If, scope *Scope) (Result, error) {
	ok, err := in.condition(node.Cond, scope)
	if err != nil {
		return Result{}, err
	}
	if ok {
		return in.branch(node.Then, scope)
	}
	if node.Else != nil {
		return in.branch(node.Else, scope)
	}
	return Result{}, nil
}

func (in *Interpreter) evalWhile(node *enkellang.While, scope *Scope) (Result, error) {
	for {
		ok, err := in.condition(node.Cond, scope)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, nil
		}
		res, err := in.branch(node.Body, scope)
		if err != nil {
			return Result{}, err
		}
		switch res.Flow {
		case FlowBreak:
			return Result{}, nil
		case FlowReturn:
			return res, nil
		}
	}
}

func (in *Interpreter) evalFor(node *enkellang.For, scope *Scope) (Result, error) {
	iter, err := in.evalNode(node.Iter, scope, Handle{})
	if err != nil {
		return Result{}, err
	}

	loopScope := NewScope(scope, scope.This)
	in.enter(loopScope)
	defer in.leave()

	step := func(v Value) (stop bool, res Result, err error) {
		loopScope.SetDef(node.Var, v, 0)
		res, err = in.branch(node.Body, loopScope)
		if err != nil {
			return true, Result{}, err
		}
		switch res.Flow {
		case FlowBreak:
			return true, Result{}, nil
		case FlowReturn:
			return true, res, nil
		}
		return false, Result{}, nil
	}

	switch iter.Value.kind {
	case KindNumber:
		n := iter.Value.num
		if math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
			return Result{}, newError(ErrType, node.Iter.Pos(), "cannot iterate %v times", n)
		}
		count := int(n)
		for i := 0; i < count; i++ {
			if stop, res, err := step(Number(float32(i))); stop {
				return res, err
			}
		}
		return Result{}, nil

	case KindObject:
		obj, err := in.object(iter.Value, node.Iter.Pos())
		if err != nil {
			return Result{}, err
		}
		if arr, ok := obj.(*Array); ok {
			for i := 0; i < len(arr.Items); i++ {
				if stop, res, err := step(arr.Items[i]); stop {
					return res, err
				}
			}
			return Result{}, nil
		}
	}

	return Result{}, newError(ErrType, node.Iter.Pos(), "cannot iterate over %s", in.TypeOf(iter.Value))
}
