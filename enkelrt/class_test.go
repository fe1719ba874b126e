package enkelrt

import (
	"errors"
	"testing"
)

func TestInheritance(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	class A { var x = 1; }
	class B extends A { var y = 2; }
	var b = new B();
	var x = b.x;
	var y = b.y;
	`)
	if got := global(t, in, "x"); got != "1" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "y"); got != "2" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "b"); got != "B{x: 1, y: 2}" {
		t.Fatalf("got %s", got)
	}
}

func TestMethods(t *testing.T) {
	in, out := newTestInterpreter(nil)
	mustEval(t, in, `
	class Shape {
		var name = "shape";
		func area() { return 0; }
		func describe() { print(name, area()); }
	}
	class Rect extends Shape {
		var w = 0;
		var h = 0;
		func init(w_, h_) {
			w = w_;
			this.h = h_;
			name = "rect";
		}
		func area() { return w * h; }
	}
	var r = new Rect(2, 3);
	r.describe();
	r.w += 1;
	var area = r.area();
	var s = new Shape();
	s.describe();
	`)
	if out.String() != "rect 6\nshape 0\n" {
		t.Fatalf("got %q", out.String())
	}
	if got := global(t, in, "area"); got != "9" {
		t.Fatalf("got %s", got)
	}
}

func TestInstanceFieldsAreIndependent(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	class Counter {
		var n = 0;
		func inc() { n++; return n; }
	}
	var a = new Counter();
	var b = new Counter();
	a.inc();
	a.inc();
	b.inc();
	var an = a.n;
	var bn = b.n;
	`)
	if got := global(t, in, "an"); got != "2" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "bn"); got != "1" {
		t.Fatalf("got %s", got)
	}
}

func TestMemberChains(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	class Node {
		var next = null;
		var items = null;
		func init() { items = [1, 2]; }
		func self() { return this; }
	}
	var a = new Node();
	a.next = new Node();
	a.next.items[1] = 5;
	a.next.items.push(6);
	var got = a.self().next.items;
	var count = a.next.items.length;
	`)
	if got := global(t, in, "got"); got != "[1, 5, 6]" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "count"); got != "3" {
		t.Fatalf("got %s", got)
	}
}

func TestClassErrors(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	class A { var x = 1; }
	class C { func init(v) {} }
	class Orphan extends Missing {}
	class Loop1 extends Loop2 {}
	class Loop2 extends Loop1 {}
	`)
	for src, kind := range map[string]error{
		`new A(1);`:           ErrArity,
		`new Nope();`:         ErrName,
		`new C();`:            ErrArity,
		`class A {}`:          ErrName,
		`new A().y;`:          ErrName,
		`this;`:               ErrMisuse,
		`new Orphan();`:       ErrName,
		`new Loop1();`:        ErrMisuse,
		`var n = 1; n.x;`:     ErrType,
		`new A().x = "s"; 1;`: nil,
	} {
		_, err := in.EvalString("test", src)
		if kind == nil {
			if err != nil {
				t.Fatalf("%s: %v", src, err)
			}
			continue
		}
		if !errors.Is(err, kind) {
			t.Fatalf("%s: got %v", src, err)
		}
	}
}

func TestIs(t *testing.T) {
	src := `
	class A {}
	class B extends A {}
	var b = new B();
	var exact = b is B;
	var parent = b is A;
	var number = 1 is A;
	var array = [] is A;
	`
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, src)
	for name, expected := range map[string]string{
		"exact":  "true",
		"parent": "false",
		"number": "false",
		"array":  "false",
	} {
		if got := global(t, in, name); got != expected {
			t.Fatalf("%s: got %s", name, got)
		}
	}

	in, _ = newTestInterpreter(&Options{
		IsMatchesParents: true,
	})
	mustEval(t, in, src)
	if got := global(t, in, "parent"); got != "true" {
		t.Fatalf("got %s", got)
	}
}

func TestGlobalFuncInClass(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	var x = "global";
	class A {
		var x = "field";
		func get() { return x; }
		global func getGlobal() { return x; }
	}
	var a = new A();
	var field = a.get();
	var glob = a.getGlobal();
	`)
	if got := global(t, in, "field"); got != "field" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "glob"); got != "global" {
		t.Fatalf("got %s", got)
	}
}

func TestTypeOf(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	class A {}
	func f() {}
	var types = [typeof(null), typeof(1), typeof(true), typeof(f), typeof(print),
		typeof([]), typeof("s"), typeof(new A()), typeof(table())];
	`)
	expected := "[null, number, boolean, function, function, array, string, A, table]"
	if got := global(t, in, "types"); got != expected {
		t.Fatalf("got %s", got)
	}
}

func TestTables(t *testing.T) {
	in, _ := newTestInterpreter(nil)
	mustEval(t, in, `
	var t = table();
	t.hp = 10;
	t.hp -= 3;
	var missing = t.nothing;
	t.items = [1];
	t.items.push(2);
	`)
	if got := global(t, in, "t"); got != "{hp: 7, items: [1, 2], nothing: null}" {
		t.Fatalf("got %s", got)
	}
	if got := global(t, in, "missing"); got != "null" {
		t.Fatalf("got %s", got)
	}
}
