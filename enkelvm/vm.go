package enkelvm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/reusee/enkel/enkelrt"
)

var (
	ErrBadProgram = errors.New("bad program")
	ErrFault      = errors.New("vm fault")
)

// Runtime supplies native functions and the host context they run in.
type Runtime interface {
	enkelrt.Host
	LookupNative(name string) (index int, minArgs int, ok bool)
	Native(index int) (enkelrt.Native, bool)
}

type Frame struct {
	Start   int
	NumVars int
}

type VM struct {
	program  *Program
	runtime  Runtime
	externs  []enkelrt.Native
	PC       int
	Operands []enkelrt.Value
	Calls    []int
	Frames   []Frame
	Vars     []enkelrt.Value
	exited   bool
}

func NewVM(program *Program, runtime Runtime) (*VM, error) {
	if err := program.Validate(); err != nil {
		return nil, err
	}
	vm := &VM{
		program:  program,
		runtime:  runtime,
		Operands: make([]enkelrt.Value, 0, 64),
		Calls:    make([]int, 0, 16),
		Frames:   make([]Frame, 0, 16),
		Vars:     make([]enkelrt.Value, 0, 64),
	}
	for _, extern := range program.Externs {
		index, minArgs, ok := runtime.LookupNative(extern.Name)
		if !ok {
			return nil, fmt.Errorf("%w: native function %s not registered", ErrBadProgram, extern.Name)
		}
		if minArgs != extern.MinArgs {
			return nil, fmt.Errorf("%w: native function %s takes %d arguments, program expects %d", ErrBadProgram, extern.Name, minArgs, extern.MinArgs)
		}
		native, _ := runtime.Native(index)
		vm.externs = append(vm.externs, native)
	}
	return vm, nil
}

func (v *VM) fault(format string, args ...any) error {
	return fmt.Errorf("%w at %d: %s", ErrFault, v.PC, fmt.Sprintf(format, args...))
}

func (v *VM) push(val enkelrt.Value) {
	v.Operands = append(v.Operands, val)
}

func (v *VM) pop() (enkelrt.Value, bool) {
	n := len(v.Operands)
	if n == 0 {
		return enkelrt.Null(), false
	}
	val := v.Operands[n-1]
	v.Operands = v.Operands[:n-1]
	return val, true
}

func (v *VM) slot(index uint8) (*enkelrt.Value, bool) {
	if len(v.Frames) == 0 {
		return nil, false
	}
	frame := v.Frames[len(v.Frames)-1]
	if int(index) >= frame.NumVars {
		return nil, false
	}
	return &v.Vars[frame.Start+int(index)], true
}

// Run executes until exit. A fault is yielded once and stops execution.
func (v *VM) Run(yield func(error) bool) {
	code := v.program.Code
	for !v.exited {
		if v.PC < 0 || v.PC >= len(code) {
			yield(v.fault("pc out of range"))
			return
		}
		op := OpCode(code[v.PC])
		if !op.Valid() || v.PC+op.Len() > len(code) {
			yield(v.fault("cannot decode opcode %d", op))
			return
		}
		operand := code[v.PC+1 : v.PC+op.Len()]
		next := v.PC + op.Len()

		switch op {

		case OpExit:
			v.exited = true

		case OpAllocFrameU8:
			n := int(operand[0])
			v.Frames = append(v.Frames, Frame{
				Start:   len(v.Vars),
				NumVars: n,
			})
			for range n {
				v.Vars = append(v.Vars, enkelrt.Null())
			}

		case OpPushVarU8:
			ptr, ok := v.slot(operand[0])
			if !ok {
				yield(v.fault("bad variable slot %d", operand[0]))
				return
			}
			v.push(*ptr)

		case OpPopVarU8:
			ptr, ok := v.slot(operand[0])
			if !ok {
				yield(v.fault("bad variable slot %d", operand[0]))
				return
			}
			val, ok := v.pop()
			if !ok {
				yield(v.fault("operand stack underflow"))
				return
			}
			*ptr = val

		case OpPushU8:
			v.push(enkelrt.Number(float32(operand[0])))

		case OpPushF32:
			v.push(enkelrt.Number(math.Float32frombits(binary.LittleEndian.Uint32(operand))))

		case OpPushTrue:
			v.push(enkelrt.Bool(true))

		case OpPushFalse:
			v.push(enkelrt.Bool(false))

		case OpPushNull:
			v.push(enkelrt.Null())

		case OpPushFuncRefU32:
			v.push(enkelrt.BytecodeFuncRef(binary.LittleEndian.Uint32(operand)))

		case OpPopDispose:
			if _, ok := v.pop(); !ok {
				yield(v.fault("operand stack underflow"))
				return
			}

		case OpCall:
			fn, ok := v.pop()
			if !ok {
				yield(v.fault("operand stack underflow"))
				return
			}
			if fn.Kind() != enkelrt.KindBytecodeFunc || int(fn.Index()) >= len(v.program.Funcs) {
				yield(v.fault("cannot call %s", fn.Kind()))
				return
			}
			v.Calls = append(v.Calls, next)
			next = int(v.program.Funcs[fn.Index()].Entry)

		case OpCallExternU16:
			native := v.externs[binary.LittleEndian.Uint16(operand)]
			n := native.MinArgs
			if len(v.Operands) < n {
				yield(v.fault("operand stack underflow"))
				return
			}
			args := make([]enkelrt.Value, n)
			copy(args, v.Operands[len(v.Operands)-n:])
			v.Operands = v.Operands[:len(v.Operands)-n]
			ret, err := native.Func(v.runtime, args)
			if err != nil {
				yield(fmt.Errorf("%s at %d: %w", native.Name, v.PC, err))
				return
			}
			v.push(ret)

		case OpRet:
			if len(v.Calls) == 0 || len(v.Frames) == 0 {
				yield(v.fault("return without caller"))
				return
			}
			next = v.Calls[len(v.Calls)-1]
			v.Calls = v.Calls[:len(v.Calls)-1]
			frame := v.Frames[len(v.Frames)-1]
			clear(v.Vars[frame.Start:])
			v.Vars = v.Vars[:frame.Start]
			v.Frames = v.Frames[:len(v.Frames)-1]

		case OpAdd, OpSub, OpMul, OpDiv, OpGt, OpLt, OpGte, OpLte:
			if len(v.Operands) < 2 {
				yield(v.fault("operand stack underflow"))
				return
			}
			b, _ := v.pop()
			a, _ := v.pop()
			if a.Kind() != enkelrt.KindNumber || b.Kind() != enkelrt.KindNumber {
				yield(v.fault("%s on %s and %s", op, a.Kind(), b.Kind()))
				return
			}
			v.push(arith(op, a.Num(), b.Num()))

		case OpEq, OpNeq:
			if len(v.Operands) < 2 {
				yield(v.fault("operand stack underflow"))
				return
			}
			b, _ := v.pop()
			a, _ := v.pop()
			eq := enkelrt.Equal(a, b)
			if op == OpNeq {
				eq = !eq
			}
			v.push(enkelrt.Bool(eq))

		case OpJumpU32:
			next = int(binary.LittleEndian.Uint32(operand))

		case OpJumpIfTrueU32, OpJumpIfFalseU32:
			cond, ok := v.pop()
			if !ok {
				yield(v.fault("operand stack underflow"))
				return
			}
			if cond.Kind() != enkelrt.KindBool {
				yield(v.fault("condition must be boolean, got %s", cond.Kind()))
				return
			}
			if cond.Bool() == (op == OpJumpIfTrueU32) {
				next = int(binary.LittleEndian.Uint32(operand))
			}

		}

		v.PC = next
	}
}

func arith(op OpCode, a, b float32) enkelrt.Value {
	switch op {
	case OpAdd:
		return enkelrt.Number(a + b)
	case OpSub:
		return enkelrt.Number(a - b)
	case OpMul:
		return enkelrt.Number(a * b)
	case OpDiv:
		return enkelrt.Number(a / b)
	case OpGt:
		return enkelrt.Bool(a > b)
	case OpLt:
		return enkelrt.Bool(a < b)
	case OpGte:
		return enkelrt.Bool(a >= b)
	}
	return enkelrt.Bool(a <= b)
}

// Exec runs to completion and returns the first fault.
func (v *VM) Exec() error {
	for err := range v.Run {
		if err != nil {
			return err
		}
	}
	return nil
}

// Global reads a main frame variable after execution.
func (v *VM) Global(name string) (enkelrt.Value, bool) {
	if len(v.Frames) == 0 {
		return enkelrt.Null(), false
	}
	main := v.Frames[0]
	for i := range v.program.Globals {
		if v.program.Globals[i] == name && i < main.NumVars {
			return v.Vars[main.Start+i], true
		}
	}
	return enkelrt.Null(), false
}
