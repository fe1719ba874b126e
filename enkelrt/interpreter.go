package enkelrt

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/reusee/enkel/enkellang"
)

type Options struct {
	Stdout  io.Writer // if nil, default to os.Stdout
	Logger  *slog.Logger
	OnError func(*Error)

	// EagerLogic evaluates both operands of and/or
	EagerLogic bool
	// FrameRoots adds active call and block scopes to the collector roots
	FrameRoots bool
	// IsMatchesParents makes `is` accept ancestor classes
	IsMatchesParents bool
	// MaxCallDepth limits nested script calls, 0 means unlimited
	MaxCallDepth int

	Rand       *rand.Rand
	NoBuiltins bool
}

type NativeFunc func(host Host, args []Value) (Value, error)

type Native struct {
	Name    string
	MinArgs int
	Func    NativeFunc
}

// Host is what native functions see of the runtime.
type Host interface {
	Heap() *Heap
	NewString(s string) Value
	NewArray(items []Value) Value
	Stringify(v Value) string
	TypeOf(v Value) string
	Errorf(kind error, format string, args ...any) error
	CollectGarbage() CollectStats
	Stdout() io.Writer
	Rand() *rand.Rand
}

type Class struct {
	Name   string
	Parent string
	Scope  *Scope
	Decl   *enkellang.ClassDecl
}

type Interpreter struct {
	options     Options
	heap        *Heap
	global      *Scope
	classes     map[string]*Class
	natives     []Native
	nativeIndex map[string]int
	frames      []*Scope
	depth       int
	entered     int
	callPos     enkellang.Pos
	loader      *enkellang.Loader
	stdout      io.Writer
	logger      *slog.Logger
	rand        *rand.Rand
}

var _ Host = new(Interpreter)

func New(options *Options) *Interpreter {
	if options == nil {
		options = new(Options)
	}
	in := &Interpreter{
		options:     *options,
		global:      NewScope(nil, Handle{}),
		classes:     make(map[string]*Class),
		nativeIndex: make(map[string]int),
		loader:      enkellang.NewLoader(),
		stdout:      options.Stdout,
		logger:      options.Logger,
		rand:        options.Rand,
	}
	if in.stdout == nil {
		in.stdout = os.Stdout
	}
	if in.logger == nil {
		in.logger = slog.New(slog.DiscardHandler)
	}
	if in.rand == nil {
		in.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	in.heap = NewHeap(in.logger)
	if !options.NoBuiltins {
		in.registerBuiltins()
	}
	return in
}

func (in *Interpreter) Heap() *Heap {
	return in.heap
}

func (in *Interpreter) Globals() *Scope {
	return in.global
}

func (in *Interpreter) Loader() *enkellang.Loader {
	return in.loader
}

func (in *Interpreter) Stdout() io.Writer {
	return in.stdout
}

func (in *Interpreter) Rand() *rand.Rand {
	return in.rand
}

func (in *Interpreter) Class(name string) (*Class, bool) {
	class, ok := in.classes[name]
	return class, ok
}

// RegisterNative adds a native function or replaces one with the same name.
// The function is bound in the global scope under its name.
func (in *Interpreter) RegisterNative(name string, minArgs int, fn NativeFunc) int {
	native := Native{
		Name:    name,
		MinArgs: minArgs,
		Func:    fn,
	}
	index, ok := in.nativeIndex[name]
	if ok {
		in.natives[index] = native
	} else {
		index = len(in.natives)
		in.natives = append(in.natives, native)
		in.nativeIndex[name] = index
		in.logger.Debug("native registered", "name", name, "min-args", minArgs)
	}
	in.global.SetDef(name, NativeRef(index), DefFunc)
	return index
}

func (in *Interpreter) LookupNative(name string) (index int, minArgs int, ok bool) {
	index, ok = in.nativeIndex[name]
	if !ok {
		return 0, 0, false
	}
	return index, in.natives[index].MinArgs, true
}

func (in *Interpreter) Native(index int) (Native, bool) {
	if index < 0 || index >= len(in.natives) {
		return Native{}, false
	}
	return in.natives[index], true
}

func (in *Interpreter) Natives() []Native {
	return in.natives
}

// entry records the call state of a host entry. The returned function
// restores it, so a nested entry from a native unwinds only its own frames.
func (in *Interpreter) entry() (restore func()) {
	frames := len(in.frames)
	depth := in.depth
	in.entered++
	return func() {
		in.entered--
		clear(in.frames[frames:])
		in.frames = in.frames[:frames]
		in.depth = depth
	}
}

// Eval evaluates a node in the global scope.
func (in *Interpreter) Eval(node enkellang.Node) (Value, error) {
	restore := in.entry()
	res, err := in.evalNode(node, in.global, Handle{})
	restore()
	if err == nil && (res.Flow == FlowBreak || res.Flow == FlowContinue) {
		err = newError(ErrMisuse, node.Pos(), "%s outside of loop", res.Flow)
	}
	if err != nil {
		return Null(), in.report(err)
	}
	return res.Value, nil
}

func (in *Interpreter) EvalString(name string, src string) (Value, error) {
	block, err := in.loader.LoadString(name, src)
	if err != nil {
		return Null(), in.report(err)
	}
	return in.Eval(block)
}

func (in *Interpreter) EvalFile(path string) (Value, error) {
	block, err := in.loader.LoadFile(path)
	if err != nil {
		return Null(), in.report(err)
	}
	return in.Eval(block)
}

// Call invokes a script or native function value from the host.
func (in *Interpreter) Call(fn Value, args ...Value) (Value, error) {
	restore := in.entry()
	ret, err := in.callValue(fn, args, Handle{}, enkellang.Pos{})
	restore()
	if err != nil {
		return Null(), in.report(err)
	}
	return ret, nil
}

func (in *Interpreter) Global(name string) (Value, bool) {
	def := in.global.FindDef(name, false)
	if def == nil {
		return Null(), false
	}
	return def.Value, true
}

// report passes err to the error hook. Errors inside a nested entry are
// reported by the outermost one.
func (in *Interpreter) report(err error) error {
	if in.entered > 0 || in.options.OnError == nil {
		return err
	}
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{
			Kind: ErrMisuse,
			Msg:  err.Error(),
		}
		var posErr enkellang.PosError
		if errors.As(err, &posErr) {
			e.Kind = ErrParse
			e.Msg = posErr.Err.Error()
			e.Pos = posErr.Pos
		}
	}
	in.options.OnError(e)
	return err
}

func (in *Interpreter) Errorf(kind error, format string, args ...any) error {
	return newError(kind, in.callPos, format, args...)
}

func (in *Interpreter) NewString(s string) Value {
	return ObjectRef(in.heap.Add(&String{Str: s}))
}

func (in *Interpreter) NewArray(items []Value) Value {
	return ObjectRef(in.heap.Add(&Array{Items: items}))
}

func (in *Interpreter) roots() []*Scope {
	roots := make([]*Scope, 0, 1+len(in.classes)+len(in.frames))
	roots = append(roots, in.global)
	for _, class := range in.classes {
		roots = append(roots, class.Scope)
	}
	if in.options.FrameRoots {
		roots = append(roots, in.frames...)
	}
	return roots
}

func (in *Interpreter) CollectGarbage() CollectStats {
	return in.heap.Collect(in.roots()...)
}

func (in *Interpreter) object(v Value, pos enkellang.Pos) (Object, error) {
	if v.kind != KindObject {
		return nil, newError(ErrType, pos, "expected object, got %s", v.kind)
	}
	obj, ok := in.heap.Get(v.handle)
	if !ok {
		return nil, newError(ErrMisuse, pos, "use of collected object %s", v.handle)
	}
	return obj, nil
}
