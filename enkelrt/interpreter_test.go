package enkelrt

import (
	"errors"
	"strings"
	"testing"
)

func newTestInterpreter(options *Options) (*Interpreter, *strings.Builder) {
	out := new(strings.Builder)
	if options == nil {
		options = new(Options)
	}
	options.Stdout = out
	return New(options), out
}

func mustEval(t *testing.T, in *Interpreter, src string) Value {
	t.Helper()
	v, err := in.EvalString("test", src)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func global(t *testing.T, in *Interpreter, name string) string {
	t.Helper()
	v, ok := in.Global(name)
	if !ok {
		t.Fatalf("%s not defined", name)
	}
	return in.Stringify(v)
}

func TestPrintFunctionResult(t *testing.T) {
	in, out := newTestInterpreter(nil)
	mustEval(t, in, `
	func test(x, y) { return x - y; }
	if (1 < 100) print(test(2, 1));
	`)
	if out.String() != "1\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestArrayMethods(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	var a = [1,2,3];
	a.push(4);
	a.remove_at(0);
	var n = a.length;
	var b = [1];
	b.push("x");
	var popped = b.pop();
	var blen = b.length;
	`)
	if got := global(t, in, "a"); got != "[2, 3, 4]" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "n"); got != "3" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "popped"); got != "x" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "blen"); got != "1" {
		t.Fatalf("got %s", got)
	}

	for src, kind := range map[string]error{
		`[].pop();`:          ErrBounds,
		`[1].remove_at(1);`:  ErrBounds,
		`[1].remove_at(-1);`: ErrBounds,
		`[1].push(1, 2);`:    ErrArity,
		`[1].nope();`:        ErrName,
		`[1]["a"];`:          ErrType,
	} {
		_, err := in.EvalString("test", src)
		if !errors.Is(err, kind) {
			t.Fatalf("%s: got %v", src, err)
		}
	}
}

func TestArraySubscript(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	var a = [1, 2, 3];
	a[1] = 5;
	a[2] += 1;
	a[0]++;
	var grid = [[0, 0], [0, 0]];
	grid[1][0] = 7;
	var i = 0;
	while (i < a.length) { a[i] = a[i] * 10; i++; }
	`)
	if got := global(t, in, "a"); got != "[20, 50, 40]" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "grid"); got != "[[0, 0], [7, 0]]" {
		t.Fatalf("got %s", got)
	}
}

func TestAssignEvaluatesRightFirst(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	var a = [0];
	func grow() { a.push(1); a.push(2); a.push(3); return 9; }
	a[0] = grow();
	`)
	if got := global(t, in, "a"); got != "[9, 1, 2, 3]" {
		t.Fatalf("got %s", got)
	}
}

func TestStrings(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	var s = "héllo";
	var n = s.length;
	var c = s[1];
	var joined = "a" + "b" + c;
	var eq = "ab" == "a" + "b";
	var neq = "a" != "a";
	`)
	for name, expected := range map[string]string{
		"n":      "5",
		"c":      "é",
		"joined": "abé",
		"eq":     "true",
		"neq":    "false",
	} {
		if got := global(t, in, name); got != expected {
			t.Fatalf("%s: got %s, expected %s", name, got, expected)
		}
	}

	_, err := in.EvalString("test", `s[5];`)
	if !errors.Is(err, ErrBounds) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `"a" + 1;`)
	if !errors.Is(err, ErrType) {
		t.Fatalf("got %v", err)
	}
}

func TestArithmetic(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	for src, expected := range map[string]string{
		"1 + 2 * 3":       "7",
		"(1 + 2) * 3":     "9",
		"10 - 4 - 3":      "3",
		"7 / 2":           "3.5",
		"-3 + 1":          "-2",
		"1 / 0":           "+Inf",
		"0.1 + 0.2":       "0.3",
		"2 >= 2":          "true",
		"2 < 1":           "false",
		"null == null":    "true",
		"1 == null":       "false",
		"true != false":   "true",
		"!(1 < 2)":        "false",
		"not true or 1>0": "true",
	} {
		v := mustEval(t, in, "return "+src+";")
		if got := in.Stringify(v); got != expected {
			t.Fatalf("%s: got %s, expected %s", src, got, expected)
		}
	}

	for _, src := range []string{
		"1 + true;",
		"null < 1;",
		"-true;",
		"!1;",
		"1 and true;",
		"if (1) {}",
	} {
		_, err := in.EvalString("test", src)
		if !errors.Is(err, ErrType) {
			t.Fatalf("%s: got %v", src, err)
		}
	}
}

func TestLogicShortCircuit(t *testing.T) {
	src := `
	var calls = 0;
	func hit() { calls++; return true; }
	var a = false and hit();
	var b = true or hit();
	var c = true and hit();
	`
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, src)
	if got := global(t, in, "calls"); got != "1" {
		t.Fatalf("got %s", got)
	}

	in, _ = newTestInterpreter(&Options{
		EagerLogic: true,
	})
	mustEval(t, in, src)
	if got := global(t, in, "calls"); got != "3" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "a"); got != "false" {
		t.Fatalf("got %s", got)
	}
}

func TestScoping(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	var a = 1;
	{ var a = 2; a = 3; }
	if (true) { var inner = 1; }
	var i = 0;
	while (i < 2) { var t = i; i++; }
	`)
	if got := global(t, in, "a"); got != "1" {
		t.Fatalf("got %s", got)
	}

	_, err := in.EvalString("test", `inner;`)
	if !errors.Is(err, ErrName) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `t;`)
	if !errors.Is(err, ErrName) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `var a = 5;`)
	if !errors.Is(err, ErrName) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `{ var x; var x; }`)
	if !errors.Is(err, ErrName) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `func f() {} func f() {}`)
	if !errors.Is(err, ErrName) {
		t.Fatalf("got %v", err)
	}
}

func TestControlFlow(t *testing.T) {
	in, out := newTestInterpreter(nil)
	mustEval(t, in, `
	func find(arr, x) {
		for (var i in arr.length) {
			if (arr[i] == x) {
				return i;
			}
		}
		print("unreachable");
		return -1;
	}
	var found = find([5, 6, 7], 6);

	var pairs = 0;
	for (var i in 3) {
		for (var j in 3) {
			if (j == 1) break;
			pairs++;
		}
	}

	var odd = 0;
	var n = 0;
	while (n < 10) {
		n++;
		if (n / 2 == floor(n / 2)) continue;
		odd += n;
	}

	func early() {
		var k = 0;
		while (true) {
			k++;
			if (k == 3) return k;
		}
	}
	var k = early();
	`)
	for name, expected := range map[string]string{
		"found": "1",
		"pairs": "3",
		"odd":   "25",
		"k":     "3",
	} {
		if got := global(t, in, name); got != expected {
			t.Fatalf("%s: got %s, expected %s", name, got, expected)
		}
	}
	if out.Len() != 0 {
		t.Fatalf("got output %q", out.String())
	}

	_, err := in.EvalString("test", `break;`)
	if !errors.Is(err, ErrMisuse) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `for (var x in "abc") {}`)
	if !errors.Is(err, ErrType) {
		t.Fatalf("got %v", err)
	}
}

func TestForArray(t *testing.T) {
	in, out := newTestInterpreter(nil)
	mustEval(t, in, `
	for (var x in [1, "two", null]) print(x);
	`)
	if out.String() != "1\ntwo\nnull\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestConst(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	const limit = 3;
	func f() { return 1; }
	`)
	for _, src := range []string{
		`limit = 4;`,
		`limit++;`,
		`f = 1;`,
		`1 + 2 = 3;`,
	} {
		_, err := in.EvalString("test", src)
		if err == nil {
			t.Fatalf("%s: expected error", src)
		}
	}
	_, err := in.EvalString("test", `limit += 1;`)
	if !errors.Is(err, ErrMisuse) {
		t.Fatalf("got %v", err)
	}
	if got := global(t, in, "limit"); got != "3" {
		t.Fatalf("got %s", got)
	}
}

func TestFunctionArity(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `func f(a, b) { return a; }`)
	_, err := in.EvalString("test", `f(1);`)
	if !errors.Is(err, ErrArity) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `sqrt();`)
	if !errors.Is(err, ErrArity) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `var x = 1; x();`)
	if !errors.Is(err, ErrType) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `nope();`)
	if !errors.Is(err, ErrName) {
		t.Fatalf("got %v", err)
	}
}

func TestRecursion(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	v := mustEval(t, in, `
	func fib(n) {
		if (n < 2) return n;
		return fib(n - 1) + fib(n - 2);
	}
	return fib(15);
	`)
	if v.Num() != 610 {
		t.Fatalf("got %v", v.Num())
	}
}

func TestMaxCallDepth(t *testing.T) {
	in, _ := newTestInterpreter(&Options{
		MaxCallDepth: 50,
	})
	_, err := in.EvalString("test", `
	func forever(n) { return forever(n + 1); }
	forever(0);
	`)
	if !errors.Is(err, ErrMisuse) {
		t.Fatalf("got %v", err)
	}
	v := mustEval(t, in, `
	func down(n) { if (n == 0) return 0; return down(n - 1); }
	return down(40);
	`)
	if v.Num() != 0 {
		t.Fatalf("got %v", v.Num())
	}
}

func TestErrorHook(t *testing.T) {
	var reported []*Error
	in, _ := newTestInterpreter(&Options{
		OnError: func(err *Error) {
			reported = append(reported, err)
		},
	})
	_, err := in.EvalString("test", "var a = 1;\nvar b = a + missing;")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(reported) != 1 {
		t.Fatalf("got %d", len(reported))
	}
	if !errors.Is(reported[0], ErrName) {
		t.Fatalf("got %v", reported[0])
	}
	if reported[0].Pos.Line != 2 {
		t.Fatalf("got line %d", reported[0].Pos.Line)
	}
	if !strings.Contains(reported[0].Error(), "missing") {
		t.Fatalf("got %s", reported[0].Error())
	}

	_, err = in.EvalString("test", "var = 1;")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(reported) != 2 || !errors.Is(reported[1], ErrParse) {
		t.Fatalf("got %v", reported)
	}
}

func TestHostCall(t *testing.T) {
	in, out := newTestInterpreter(nil)
	mustEval(t, in, `
	var frames = 0;
	func update(dt) { frames++; print(dt); return frames; }
	`)
	update, ok := in.Global("update")
	if !ok {
		t.Fatal("update not defined")
	}
	for range 3 {
		if _, err := in.Call(update, Number(0.5)); err != nil {
			t.Fatal(err)
		}
	}
	ret, err := in.Call(update, Number(1))
	if err != nil {
		t.Fatal(err)
	}
	if ret.Num() != 4 {
		t.Fatalf("got %v", ret.Num())
	}
	if out.String() != "0.5\n0.5\n0.5\n1\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestRegisterNative(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	var got []float32
	in.RegisterNative("record", 1, func(host Host, args []Value) (Value, error) {
		if args[0].Kind() != KindNumber {
			return Null(), host.Errorf(ErrType, "record expects a number")
		}
		got = append(got, args[0].Num())
		return Bool(true), nil
	})
	mustEval(t, in, `record(1); record(2, 3);`)
	if len(got) != 2 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}
	_, err := in.EvalString("test", "\nrecord(null);")
	var e *Error
	if !errors.As(err, &e) || !errors.Is(err, ErrType) {
		t.Fatalf("got %v", err)
	}
	if e.Pos.Line != 2 {
		t.Fatalf("got %v", e.Pos)
	}
}

func TestNativesAreGlobals(t *testing.T) {
	in, out := newTestInterpreter(nil)
	v, ok := in.Global("print")
	if !ok {
		t.Fatal("print not defined")
	}
	if v.Kind() != KindNative {
		t.Fatalf("got %s", v.Kind())
	}

	for _, src := range []string{
		`var print = 1;`,
		`func max(a, b) { return a; }`,
	} {
		if _, err := in.EvalString("test", src); !errors.Is(err, ErrName) {
			t.Fatalf("%s: got %v", src, err)
		}
	}
	if _, err := in.EvalString("test", `print = 1;`); !errors.Is(err, ErrMisuse) {
		t.Fatalf("got %v", err)
	}

	mustEval(t, in, `
	var p = print;
	p(1);
	func f() {
		var max = 2;
		return max + 1;
	}
	print(f());
	`)
	if out.String() != "1\n3\n" {
		t.Fatalf("got %q", out.String())
	}

	index := in.RegisterNative("answer", 0, func(host Host, args []Value) (Value, error) {
		return Number(42), nil
	})
	v, ok = in.Global("answer")
	if !ok || v.Kind() != KindNative || v.index != uint32(index) {
		t.Fatalf("got %v %v", v, ok)
	}
}

func TestNativeReentersCall(t *testing.T) {
	var reported []*Error
	in, out := newTestInterpreter(&Options{
		MaxCallDepth: 100,
		OnError: func(err *Error) {
			reported = append(reported, err)
		},
	})
	in.RegisterNative("callback", 1, func(host Host, args []Value) (Value, error) {
		return in.Call(args[0])
	})

	_, err := in.EvalString("test", `
	func bad() { return undefined_name; }
	func f() {
		if (true) {
			callback(bad);
		}
	}
	f();
	`)
	if !errors.Is(err, ErrName) {
		t.Fatalf("got %v", err)
	}
	if len(reported) != 1 {
		t.Fatalf("got %d reports", len(reported))
	}
	if len(in.frames) != 0 {
		t.Fatalf("got %d frames", len(in.frames))
	}
	if in.depth != 0 {
		t.Fatalf("got depth %d", in.depth)
	}

	mustEval(t, in, `
	func good() { return 7; }
	func g() {
		if (true) {
			print(callback(good));
		}
	}
	g();
	`)
	if out.String() != "7\n" {
		t.Fatalf("got %q", out.String())
	}
}

func TestThisNotAssignable(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	_, err := in.EvalString("test", `
	class A {
		func reset() { this = null; }
	}
	var a = new A();
	a.reset();
	`)
	if !errors.Is(err, ErrMisuse) {
		t.Fatalf("got %v", err)
	}
}

func TestForNonFiniteCount(t *testing.T) {
	in, out := newTestInterpreter(nil)
	for _, src := range []string{
		`var inf = 0; for (var i in 1 / inf) { print(i); }`,
		`var nan = 0; for (var i in nan / nan) { print(i); }`,
	} {
		if _, err := in.EvalString("test", src); !errors.Is(err, ErrType) {
			t.Fatalf("%s: got %v", src, err)
		}
	}
	if out.Len() != 0 {
		t.Fatalf("got output %q", out.String())
	}
}
