package configs

import (
	"fmt"
	"reflect"

	"github.com/reusee/dscope"
	"github.com/reusee/enkel/enkelrt"
)

// EnkelFork forks scope with the configurable values defined as globals of
// an evaluated configuration script.
func EnkelFork(scope dscope.Scope, in *enkelrt.Interpreter) (dscope.Scope, error) {
	var defs []any
	for t := range scope.AllTypes() {
		if !t.Implements(configurableType) {
			continue
		}
		value, ok := in.Global(t.Name())
		if !ok {
			continue
		}
		v, err := fromScript(in, value, t)
		if err != nil {
			return scope, fmt.Errorf("config %s: %w", t.Name(), err)
		}
		defs = append(defs, v.Interface())
	}
	if len(defs) == 0 {
		return scope, nil
	}
	return scope.Fork(defs...), nil
}

func fromScript(in *enkelrt.Interpreter, value enkelrt.Value, t reflect.Type) (reflect.Value, error) {
	ret := reflect.New(t).Elem()
	switch t.Kind() {

	case reflect.Bool:
		if value.Kind() != enkelrt.KindBool {
			break
		}
		ret.SetBool(value.Bool())
		return ret, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if value.Kind() != enkelrt.KindNumber {
			break
		}
		n := value.Num()
		if n != float32(int64(n)) {
			return ret, fmt.Errorf("expecting integer, got %s", in.Stringify(value))
		}
		ret.SetInt(int64(n))
		return ret, nil

	case reflect.Float32, reflect.Float64:
		if value.Kind() != enkelrt.KindNumber {
			break
		}
		ret.SetFloat(float64(value.Num()))
		return ret, nil

	case reflect.String:
		if value.Kind() != enkelrt.KindObject {
			break
		}
		obj, ok := in.Heap().Get(value.Handle())
		if !ok {
			break
		}
		str, ok := obj.(*enkelrt.String)
		if !ok {
			break
		}
		ret.SetString(str.Str)
		return ret, nil

	}
	return ret, fmt.Errorf("cannot use %s value as %v", in.TypeOf(value), t)
}
