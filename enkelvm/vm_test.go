package enkelvm

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/reusee/enkel/enkellang"
	"github.com/reusee/enkel/enkelrt"
	"gopkg.in/yaml.v3"
)

type parityCase struct {
	Name    string            `yaml:"name"`
	Source  string            `yaml:"source"`
	Output  string            `yaml:"output"`
	Globals map[string]string `yaml:"globals"`
	// Rejected cases must fail on both backends
	Rejected bool `yaml:"rejected"`
}

func parse(t *testing.T, src string) *enkellang.Block {
	t.Helper()
	block, err := enkellang.ParseSource(enkellang.NewSource(0, "test", src))
	if err != nil {
		t.Fatal(err)
	}
	return block
}

func compileAndRun(t *testing.T, src string) (*VM, *enkelrt.Interpreter, string) {
	t.Helper()
	out := new(strings.Builder)
	in := enkelrt.New(&enkelrt.Options{
		Stdout: out,
	})
	program, err := Compile(parse(t, src), in)
	if err != nil {
		t.Fatal(err)
	}
	vm, err := NewVM(program, in)
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.Exec(); err != nil {
		t.Fatal(err)
	}
	return vm, in, out.String()
}

func TestParity(t *testing.T) {
	content, err := os.ReadFile("testdata/parity.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var cases []parityCase
	if err := yaml.Unmarshal(content, &cases); err != nil {
		t.Fatal(err)
	}
	if len(cases) == 0 {
		t.Fatal("no cases")
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			treeOut := new(strings.Builder)
			in := enkelrt.New(&enkelrt.Options{
				Stdout: treeOut,
			})

			if c.Rejected {
				if _, err := in.Eval(parse(t, c.Source)); !errors.Is(err, enkelrt.ErrName) {
					t.Fatalf("tree walker: got %v", err)
				}
				if _, err := Compile(parse(t, c.Source), in); !errors.Is(err, ErrCompile) {
					t.Fatalf("compiler: got %v", err)
				}
				return
			}

			if _, err := in.Eval(parse(t, c.Source)); err != nil {
				t.Fatal(err)
			}

			vm, vmIn, vmOut := compileAndRun(t, c.Source)

			if treeOut.String() != c.Output {
				t.Fatalf("tree walker printed %q, expected %q", treeOut.String(), c.Output)
			}
			if vmOut != c.Output {
				t.Fatalf("vm printed %q, expected %q", vmOut, c.Output)
			}
			for name, expected := range c.Globals {
				v, ok := in.Global(name)
				if !ok {
					t.Fatalf("tree walker: %s not defined", name)
				}
				if got := in.Stringify(v); got != expected {
					t.Fatalf("tree walker: %s = %s, expected %s", name, got, expected)
				}
				v, ok = vm.Global(name)
				if !ok {
					t.Fatalf("vm: %s not defined", name)
				}
				if got := vmIn.Stringify(v); got != expected {
					t.Fatalf("vm: %s = %s, expected %s", name, got, expected)
				}
			}
		})
	}
}

func TestVMStacksBalanced(t *testing.T) {
	vm, _, _ := compileAndRun(t, `
	func add(a, b) { var c = a + b; return c; }
	var i = 0;
	while (i < 100) { add(i, 1); i++; }
	`)
	if len(vm.Operands) != 0 {
		t.Fatalf("operand stack holds %d values", len(vm.Operands))
	}
	if len(vm.Calls) != 0 {
		t.Fatalf("call stack holds %d entries", len(vm.Calls))
	}
	if len(vm.Frames) != 1 {
		t.Fatalf("got %d frames", len(vm.Frames))
	}
	if len(vm.Vars) != vm.Frames[0].NumVars {
		t.Fatalf("got %d vars", len(vm.Vars))
	}
}

func TestCompileUnsupported(t *testing.T) {
	in := enkelrt.New(nil)
	for _, src := range []string{
		`var a = 1; if (a > 0) a = 2; else a = 3;`,
		`var s = "str";`,
		`class A {}`,
		`var a = [1];`,
		`for (var i in 3) {}`,
		`var a = [1]; a[0] = 1;`,
		`print(1, 2);`,
		`var p = print;`,
		`var a = 1 is A;`,
		`return 1;`,
	} {
		_, err := Compile(parse(t, src), in)
		if !errors.Is(err, ErrUnsupported) {
			t.Fatalf("%s: got %v", src, err)
		}
		var posErr enkellang.PosError
		if !errors.As(err, &posErr) {
			t.Fatalf("%s: missing position", src)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	in := enkelrt.New(nil)
	for _, src := range []string{
		`x = 1;`,
		`var a; var a;`,
		`func f(a) {} f(1, 2);`,
		`func f() {} func f() {}`,
		`break;`,
		`var g = 1; func f() { return g; }`,
	} {
		_, err := Compile(parse(t, src), in)
		if !errors.Is(err, ErrCompile) {
			t.Fatalf("%s: got %v", src, err)
		}
	}
}

func TestCompileFunctionTable(t *testing.T) {
	in := enkelrt.New(nil)
	program, err := Compile(parse(t, `
	func a(x) { func inner() { return 1; } return inner(); }
	func b() { return a(1); }
	var r = b();
	`), in)
	if err != nil {
		t.Fatal(err)
	}
	if len(program.Funcs) != 3 {
		t.Fatalf("got %d funcs", len(program.Funcs))
	}
	names := []string{program.Funcs[0].Name, program.Funcs[1].Name, program.Funcs[2].Name}
	if strings.Join(names, ",") != "a,b,inner" {
		t.Fatalf("got %v", names)
	}
	for _, fn := range program.Funcs {
		if OpCode(program.Code[fn.Entry]) != OpAllocFrameU8 {
			t.Fatalf("%s does not start with a frame", fn.Name)
		}
	}
	if OpCode(program.Code[0]) != OpAllocFrameU8 || program.Code[1] != 1 {
		t.Fatalf("got main frame %v", program.Code[:2])
	}
	if err := program.Validate(); err != nil {
		t.Fatal(err)
	}

	vm, err := NewVM(program, in)
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.Exec(); err != nil {
		t.Fatal(err)
	}
	r, _ := vm.Global("r")
	if r.Num() != 1 {
		t.Fatalf("got %v", r.Num())
	}
}

func TestVMFaults(t *testing.T) {
	in := enkelrt.New(nil)
	for _, src := range []string{
		`var a = 1 + true;`,
		`var a = null; if (a) a = 1;`,
		`var a = 1; a();`,
		`var a = null < 1;`,
	} {
		program, err := Compile(parse(t, src), in)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		vm, err := NewVM(program, in)
		if err != nil {
			t.Fatal(err)
		}
		var faults []error
		for err := range vm.Run {
			faults = append(faults, err)
		}
		if len(faults) != 1 || !errors.Is(faults[0], ErrFault) {
			t.Fatalf("%s: got %v", src, faults)
		}
	}
}

func TestVMNativeError(t *testing.T) {
	in := enkelrt.New(nil)
	in.RegisterNative("fail", 1, func(host enkelrt.Host, args []enkelrt.Value) (enkelrt.Value, error) {
		return enkelrt.Null(), host.Errorf(enkelrt.ErrType, "nope")
	})
	program, err := Compile(parse(t, `fail(1);`), in)
	if err != nil {
		t.Fatal(err)
	}
	vm, err := NewVM(program, in)
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.Exec(); !errors.Is(err, enkelrt.ErrType) {
		t.Fatalf("got %v", err)
	}
}

func TestVMMissingNative(t *testing.T) {
	in := enkelrt.New(nil)
	program, err := Compile(parse(t, `print(1);`), in)
	if err != nil {
		t.Fatal(err)
	}
	bare := enkelrt.New(&enkelrt.Options{
		NoBuiltins: true,
	})
	if _, err := NewVM(program, bare); !errors.Is(err, ErrBadProgram) {
		t.Fatalf("got %v", err)
	}
}

func TestValidate(t *testing.T) {
	for _, program := range []*Program{
		{Code: []byte{byte(numOpCodes)}},
		{Code: []byte{byte(OpPushF32), 0, 0}},
		{Code: []byte{byte(OpJumpU32), 2, 0, 0, 0, byte(OpExit)}},
		{Code: []byte{byte(OpPushFuncRefU32), 0, 0, 0, 0}},
		{Code: []byte{byte(OpExit)}, Funcs: []Func{{Name: "f", Entry: 4}}},
	} {
		if err := program.Validate(); !errors.Is(err, ErrBadProgram) {
			t.Fatalf("%v: got %v", program.Code, err)
		}
	}
}
