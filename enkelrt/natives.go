package enkelrt

import (
	"fmt"
	"math"
	"strings"
)

func numberArgs(host Host, name string, args []Value) ([]float32, error) {
	nums := make([]float32, len(args))
	for i, arg := range args {
		if arg.Kind() != KindNumber {
			return nil, host.Errorf(ErrType, "%s expects number arguments, got %s", name, host.TypeOf(arg))
		}
		nums[i] = arg.Num()
	}
	return nums, nil
}

func mathFunc(name string, fn func(float64) float64) NativeFunc {
	return func(host Host, args []Value) (Value, error) {
		nums, err := numberArgs(host, name, args[:1])
		if err != nil {
			return Null(), err
		}
		return Number(float32(fn(float64(nums[0])))), nil
	}
}

func (in *Interpreter) registerBuiltins() {

	in.RegisterNative("print", 1, func(host Host, args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, arg := range args {
			parts[i] = host.Stringify(arg)
		}
		if _, err := fmt.Fprintln(host.Stdout(), strings.Join(parts, " ")); err != nil {
			return Null(), err
		}
		return Null(), nil
	})

	in.RegisterNative("str", 1, func(host Host, args []Value) (Value, error) {
		return host.NewString(host.Stringify(args[0])), nil
	})

	in.RegisterNative("typeof", 1, func(host Host, args []Value) (Value, error) {
		return host.NewString(host.TypeOf(args[0])), nil
	})

	runGC := func(host Host, args []Value) (Value, error) {
		stats := host.CollectGarbage()
		return Number(float32(stats.Freed)), nil
	}
	in.RegisterNative("run_gc", 0, runGC)
	in.RegisterNative("_run_gc", 0, runGC)

	in.RegisterNative("heap_count", 0, func(host Host, args []Value) (Value, error) {
		return Number(float32(host.Heap().Len())), nil
	})

	in.RegisterNative("table", 0, func(host Host, args []Value) (Value, error) {
		return ObjectRef(host.Heap().Add(NewTable())), nil
	})

	in.RegisterNative("min", 2, func(host Host, args []Value) (Value, error) {
		nums, err := numberArgs(host, "min", args)
		if err != nil {
			return Null(), err
		}
		ret := nums[0]
		for _, n := range nums[1:] {
			ret = min(ret, n)
		}
		return Number(ret), nil
	})

	in.RegisterNative("max", 2, func(host Host, args []Value) (Value, error) {
		nums, err := numberArgs(host, "max", args)
		if err != nil {
			return Null(), err
		}
		ret := nums[0]
		for _, n := range nums[1:] {
			ret = max(ret, n)
		}
		return Number(ret), nil
	})

	in.RegisterNative("abs", 1, mathFunc("abs", math.Abs))
	in.RegisterNative("floor", 1, mathFunc("floor", math.Floor))
	in.RegisterNative("ceil", 1, mathFunc("ceil", math.Ceil))
	in.RegisterNative("sqrt", 1, mathFunc("sqrt", math.Sqrt))
	in.RegisterNative("sin", 1, mathFunc("sin", math.Sin))
	in.RegisterNative("cos", 1, mathFunc("cos", math.Cos))
	in.RegisterNative("tan", 1, mathFunc("tan", math.Tan))

	in.RegisterNative("lerp", 3, func(host Host, args []Value) (Value, error) {
		nums, err := numberArgs(host, "lerp", args[:3])
		if err != nil {
			return Null(), err
		}
		a, b, t := nums[0], nums[1], nums[2]
		return Number(a + (b-a)*t), nil
	})

	// clamp(x, hi) or clamp(x, lo, hi)
	in.RegisterNative("clamp", 2, func(host Host, args []Value) (Value, error) {
		if len(args) > 3 {
			return Null(), host.Errorf(ErrArity, "clamp expects 2 or 3 arguments, got %d", len(args))
		}
		nums, err := numberArgs(host, "clamp", args)
		if err != nil {
			return Null(), err
		}
		lo, hi := float32(0), nums[1]
		if len(nums) == 3 {
			lo, hi = nums[1], nums[2]
		}
		return Number(max(lo, min(nums[0], hi))), nil
	})

	// wrap(x, hi) or wrap(x, lo, hi) wraps x into [lo, hi)
	in.RegisterNative("wrap", 2, func(host Host, args []Value) (Value, error) {
		if len(args) > 3 {
			return Null(), host.Errorf(ErrArity, "wrap expects 2 or 3 arguments, got %d", len(args))
		}
		nums, err := numberArgs(host, "wrap", args)
		if err != nil {
			return Null(), err
		}
		lo, hi := float64(0), float64(nums[1])
		if len(nums) == 3 {
			lo, hi = float64(nums[1]), float64(nums[2])
		}
		span := hi - lo
		if span == 0 {
			return Number(float32(lo)), nil
		}
		x := math.Mod(float64(nums[0])-lo, span)
		if x < 0 {
			x += span
		}
		return Number(float32(x + lo)), nil
	})

	// rand() in [0, 1), rand(hi) in [0, hi), rand(lo, hi) in [lo, hi)
	in.RegisterNative("rand", 0, func(host Host, args []Value) (Value, error) {
		nums, err := numberArgs(host, "rand", args)
		if err != nil {
			return Null(), err
		}
		lo, hi := float32(0), float32(1)
		switch len(nums) {
		case 0:
		case 1:
			hi = nums[0]
		case 2:
			lo, hi = nums[0], nums[1]
		default:
			return Null(), host.Errorf(ErrArity, "rand expects at most 2 arguments, got %d", len(args))
		}
		return Number(lo + host.Rand().Float32()*(hi-lo)), nil
	})

}
