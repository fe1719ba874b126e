package enkelrt

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestMathNatives(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	for src, expected := range map[string]string{
		"min(3, 1, 2)":      "1",
		"max(3, 1, 2)":      "3",
		"abs(-2.5)":         "2.5",
		"floor(1.7)":        "1",
		"ceil(1.2)":         "2",
		"sqrt(16)":          "4",
		"lerp(0, 10, 0.25)": "2.5",
		"clamp(5, 3)":       "3",
		"clamp(-1, 0, 3)":   "0",
		"clamp(2, 0, 3)":    "2",
		"wrap(7, 5)":        "2",
		"wrap(-1, 5)":       "4",
		"wrap(12, 10, 12)":  "10",
		"sin(0)":            "0",
		"cos(0)":            "1",
		"str(1.5) + \"!\"":  "1.5!",
	} {
		v := mustEval(t, in, "return "+src+";")
		if got := in.Stringify(v); got != expected {
			t.Fatalf("%s: got %s, expected %s", src, got, expected)
		}
	}

	_, err := in.EvalString("test", `min(1, "a");`)
	if !errors.Is(err, ErrType) {
		t.Fatalf("got %v", err)
	}
	_, err = in.EvalString("test", `clamp(1, 2, 3, 4);`)
	if !errors.Is(err, ErrArity) {
		t.Fatalf("got %v", err)
	}
}

func TestRandNative(t *testing.T) {
	in, _ := newTestInterpreter(&Options{
		Rand: rand.New(rand.NewPCG(1, 2)),
	})
	for range 100 {
		v := mustEval(t, in, `return rand(2, 4);`)
		if v.Num() < 2 || v.Num() >= 4 {
			t.Fatalf("got %v", v.Num())
		}
	}
	v := mustEval(t, in, `return rand();`)
	if v.Num() < 0 || v.Num() >= 1 {
		t.Fatalf("got %v", v.Num())
	}
}

func TestPrintFormats(t *testing.T) {
	in, out := newTestInterpreter(nil)
	mustEval(t, in, `
	class P { var x = 1; func m() {} }
	var a = [1];
	a.push(a);
	print(1, true, null, "s", [1, [2]], new P(), a, print);
	`)
	expected := "1 true null s [1, [2]] P{x: 1} [1, ...] <native print>\n"
	if out.String() != expected {
		t.Fatalf("got %q", out.String())
	}
}

func TestNoBuiltins(t *testing.T) {
	in, _ := newTestInterpreter(&Options{
		NoBuiltins: true,
	})
	_, err := in.EvalString("test", `print(1);`)
	if !errors.Is(err, ErrName) {
		t.Fatalf("got %v", err)
	}
	if len(in.Natives()) != 0 {
		t.Fatal()
	}
}
