package debugs

import (
	"fmt"

	"github.com/reusee/enkel/enkelrt"
	"go.starlark.net/starlark"
)

// toStarlarkValue converts a script value for inspection. Objects are
// copied; functions become callables running in the interpreter.
func toStarlarkValue(in *enkelrt.Interpreter, v enkelrt.Value) starlark.Value {
	return convert(in, v, make(map[enkelrt.Handle]bool))
}

func convert(in *enkelrt.Interpreter, v enkelrt.Value, visiting map[enkelrt.Handle]bool) starlark.Value {
	switch v.Kind() {

	case enkelrt.KindNull:
		return starlark.None

	case enkelrt.KindBool:
		return starlark.Bool(v.Bool())

	case enkelrt.KindNumber:
		n := v.Num()
		if n == float32(int64(n)) {
			return starlark.MakeInt64(int64(n))
		}
		return starlark.Float(n)

	case enkelrt.KindFunc, enkelrt.KindNative:
		return starlark.NewBuiltin(in.Stringify(v), func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			if len(kwargs) > 0 {
				return nil, fmt.Errorf("%s: keyword arguments not supported", b.Name())
			}
			scriptArgs := make([]enkelrt.Value, 0, len(args))
			for _, arg := range args {
				value, err := fromStarlarkValue(in, arg)
				if err != nil {
					return nil, err
				}
				scriptArgs = append(scriptArgs, value)
			}
			ret, err := in.Call(v, scriptArgs...)
			if err != nil {
				return nil, err
			}
			return toStarlarkValue(in, ret), nil
		})

	case enkelrt.KindObject:
		handle := v.Handle()
		obj, ok := in.Heap().Get(handle)
		if !ok {
			return starlark.None
		}
		if visiting[handle] {
			return starlark.String("...")
		}
		visiting[handle] = true
		defer delete(visiting, handle)

		switch obj := obj.(type) {
		case *enkelrt.String:
			return starlark.String(obj.Str)
		case *enkelrt.Array:
			elems := make([]starlark.Value, len(obj.Items))
			for i, item := range obj.Items {
				elems[i] = convert(in, item, visiting)
			}
			return starlark.NewList(elems)
		case *enkelrt.Table:
			return scopeDict(in, obj.Scope, visiting)
		case *enkelrt.Instance:
			d := scopeDict(in, obj.Scope, visiting)
			_ = d.SetKey(starlark.String("__class__"), starlark.String(obj.Class))
			return d
		}
	}

	return starlark.String(in.Stringify(v))
}

func scopeDict(in *enkelrt.Interpreter, scope *enkelrt.Scope, visiting map[enkelrt.Handle]bool) *starlark.Dict {
	d := starlark.NewDict(scope.Len())
	for name, def := range scope.Defs() {
		_ = d.SetKey(starlark.String(name), convert(in, def.Value, visiting))
	}
	return d
}

func fromStarlarkValue(in *enkelrt.Interpreter, v starlark.Value) (enkelrt.Value, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return enkelrt.Null(), nil
	case starlark.Bool:
		return enkelrt.Bool(bool(v)), nil
	case starlark.Int:
		n, ok := v.Int64()
		if !ok {
			return enkelrt.Null(), fmt.Errorf("integer out of range: %s", v)
		}
		return enkelrt.Number(float32(n)), nil
	case starlark.Float:
		return enkelrt.Number(float32(v)), nil
	case starlark.String:
		return in.NewString(string(v)), nil
	case *starlark.List:
		items := make([]enkelrt.Value, 0, v.Len())
		for i := range v.Len() {
			item, err := fromStarlarkValue(in, v.Index(i))
			if err != nil {
				return enkelrt.Null(), err
			}
			items = append(items, item)
		}
		return in.NewArray(items), nil
	}
	return enkelrt.Null(), fmt.Errorf("cannot pass %s to a script", v.Type())
}
