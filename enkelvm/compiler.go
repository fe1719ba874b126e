package enkelvm

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/reusee/enkel/enkellang"
)

var (
	ErrCompile     = errors.New("compile error")
	ErrUnsupported = errors.New("not supported by the bytecode compiler")
)

const maxSlots = math.MaxUint8 + 1

type NativeLookup interface {
	LookupNative(name string) (index int, minArgs int, ok bool)
}

type frame struct {
	blocks  []map[string]uint8
	names   []string
	allocAt uint32
}

func (f *frame) lookup(name string) (uint8, bool) {
	for i := len(f.blocks) - 1; i >= 0; i-- {
		if slot, ok := f.blocks[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

type loop struct {
	start  uint32
	breaks []uint32
}

type pendingFunc struct {
	decl  *enkellang.FuncDecl
	index uint32
}

type compiler struct {
	program     *Program
	natives     NativeLookup
	externIndex map[string]uint16
	globalFuncs map[string]uint32
	declared    map[*enkellang.FuncDecl]uint32
	pending     []pendingFunc
	inMain      bool
	frame       *frame
	loops       []*loop
	logger      *slog.Logger
}

type CompileOption func(*compiler)

func WithLogger(logger *slog.Logger) CompileOption {
	return func(c *compiler) {
		c.logger = logger
	}
}

// Compile lowers a program to bytecode. Functions are emitted after the
// main code, each reachable through the function table.
func Compile(root *enkellang.Block, natives NativeLookup, options ...CompileOption) (*Program, error) {
	c := &compiler{
		program:     new(Program),
		natives:     natives,
		externIndex: make(map[string]uint16),
		globalFuncs: make(map[string]uint32),
		declared:    make(map[*enkellang.FuncDecl]uint32),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(c)
	}

	for _, stmt := range root.Stmts {
		if decl, ok := stmt.(*enkellang.FuncDecl); ok {
			if _, ok := c.globalFuncs[decl.Name]; ok {
				return nil, c.errorf(ErrCompile, decl, "%s already defined", decl.Name)
			}
			if _, _, ok := c.lookupNative(decl.Name); ok {
				return nil, c.errorf(ErrCompile, decl, "%s already defined", decl.Name)
			}
			index := c.addFunc(decl)
			c.globalFuncs[decl.Name] = index
			c.declared[decl] = index
		}
	}

	c.inMain = true
	c.beginFrame()
	for _, stmt := range root.Stmts {
		if err := c.stmt(stmt); err != nil {
			return nil, err
		}
	}
	c.program.emit(OpExit)
	c.program.Globals = c.frame.names
	c.endFrame()
	c.inMain = false

	for len(c.pending) > 0 {
		fn := c.pending[0]
		c.pending = c.pending[1:]
		if err := c.function(fn); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("bytecode compiled",
		"bytes", len(c.program.Code),
		"funcs", len(c.program.Funcs),
		"externs", len(c.program.Externs),
		"globals", len(c.program.Globals),
	)
	return c.program, nil
}

func (c *compiler) errorf(kind error, node enkellang.Node, format string, args ...any) error {
	return enkellang.WithPos(
		fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
		node.Pos(),
	)
}

func (c *compiler) addFunc(decl *enkellang.FuncDecl) uint32 {
	index := uint32(len(c.program.Funcs))
	c.program.Funcs = append(c.program.Funcs, Func{
		Name:      decl.Name,
		NumParams: len(decl.Params),
	})
	c.pending = append(c.pending, pendingFunc{
		decl:  decl,
		index: index,
	})
	return index
}

func (c *compiler) beginFrame() {
	c.frame = &frame{
		blocks: []map[string]uint8{{}},
	}
	c.frame.allocAt = c.program.emitU8(OpAllocFrameU8, 0)
}

func (c *compiler) endFrame() {
	c.program.patchU8(c.frame.allocAt, uint8(len(c.frame.names)))
	c.frame = nil
}

func (c *compiler) pushBlock() {
	c.frame.blocks = append(c.frame.blocks, map[string]uint8{})
}

func (c *compiler) popBlock() {
	c.frame.blocks = c.frame.blocks[:len(c.frame.blocks)-1]
}

func (c *compiler) declare(node enkellang.Node, name string) (uint8, error) {
	block := c.frame.blocks[len(c.frame.blocks)-1]
	if _, ok := block[name]; ok {
		return 0, c.errorf(ErrCompile, node, "%s already defined", name)
	}
	if c.inMain && len(c.frame.blocks) == 1 {
		// natives are globals
		if _, _, ok := c.lookupNative(name); ok {
			return 0, c.errorf(ErrCompile, node, "%s already defined", name)
		}
	}
	if len(c.frame.names) >= maxSlots {
		return 0, c.errorf(ErrCompile, node, "too many variables in one frame")
	}
	slot := uint8(len(c.frame.names))
	c.frame.names = append(c.frame.names, name)
	block[name] = slot
	return slot, nil
}

func (c *compiler) function(fn pendingFunc) error {
	c.program.Funcs[fn.index].Entry = c.program.here()
	c.beginFrame()
	defer func() {
		c.frame = nil
	}()
	slots := make([]uint8, 0, len(fn.decl.Params))
	for _, param := range fn.decl.Params {
		slot, err := c.declare(fn.decl, param)
		if err != nil {
			return err
		}
		slots = append(slots, slot)
	}
	// arguments were pushed in order
	for i := len(slots) - 1; i >= 0; i-- {
		c.program.emitU8(OpPopVarU8, slots[i])
	}
	outerLoops := c.loops
	c.loops = nil
	for _, stmt := range fn.decl.Body.Stmts {
		if err := c.stmt(stmt); err != nil {
			return err
		}
	}
	c.loops = outerLoops
	c.program.emit(OpPushNull)
	c.program.emit(OpRet)
	c.endFrame()
	return nil
}

func (c *compiler) stmt(node enkellang.Node) error {
	switch node := node.(type) {

	case *enkellang.Block:
		if node.Scoped {
			c.pushBlock()
			defer c.popBlock()
		}
		for _, stmt := range node.Stmts {
			if err := c.stmt(stmt); err != nil {
				return err
			}
		}
		return nil

	case *enkellang.VarDecl:
		return c.varDecl(node)

	case *enkellang.MultiVarDecl:
		for _, decl := range node.Decls {
			if err := c.varDecl(decl); err != nil {
				return err
			}
		}
		return nil

	case *enkellang.FuncDecl:
		if _, ok := c.declared[node]; ok {
			// top-level functions are referenced through the function table
			return nil
		}
		index := c.addFunc(node)
		slot, err := c.declare(node, node.Name)
		if err != nil {
			return err
		}
		c.program.emitU32(OpPushFuncRefU32, index)
		c.program.emitU8(OpPopVarU8, slot)
		return nil

	case *enkellang.Return:
		if c.inMain {
			return c.errorf(ErrUnsupported, node, "return outside of function")
		}
		if node.Expr == nil {
			c.program.emit(OpPushNull)
		} else if err := c.expr(node.Expr); err != nil {
			return err
		}
		c.program.emit(OpRet)
		return nil

	case *enkellang.If:
		if node.Else != nil {
			return c.errorf(ErrUnsupported, node, "else branch")
		}
		if err := c.expr(node.Cond); err != nil {
			return err
		}
		skip := c.program.emitU32(OpJumpIfFalseU32, 0)
		c.pushBlock()
		err := c.stmt(node.Then)
		c.popBlock()
		if err != nil {
			return err
		}
		c.program.patchU32(skip, c.program.here())
		return nil

	case *enkellang.While:
		l := &loop{
			start: c.program.here(),
		}
		if err := c.expr(node.Cond); err != nil {
			return err
		}
		exit := c.program.emitU32(OpJumpIfFalseU32, 0)
		c.loops = append(c.loops, l)
		c.pushBlock()
		err := c.stmt(node.Body)
		c.popBlock()
		c.loops = c.loops[:len(c.loops)-1]
		if err != nil {
			return err
		}
		c.program.emitU32(OpJumpU32, l.start)
		end := c.program.here()
		c.program.patchU32(exit, end)
		for _, at := range l.breaks {
			c.program.patchU32(at, end)
		}
		return nil

	case *enkellang.Break:
		if len(c.loops) == 0 {
			return c.errorf(ErrCompile, node, "break outside of loop")
		}
		l := c.loops[len(c.loops)-1]
		l.breaks = append(l.breaks, c.program.emitU32(OpJumpU32, 0))
		return nil

	case *enkellang.Continue:
		if len(c.loops) == 0 {
			return c.errorf(ErrCompile, node, "continue outside of loop")
		}
		c.program.emitU32(OpJumpU32, c.loops[len(c.loops)-1].start)
		return nil

	case *enkellang.For:
		return c.errorf(ErrUnsupported, node, "for loop")
	case *enkellang.ClassDecl:
		return c.errorf(ErrUnsupported, node, "class declaration")

	case *enkellang.Binary:
		if node.Op.IsAssign() {
			return c.assign(node, false)
		}

	case *enkellang.Unary:
		switch node.Op {
		case enkellang.UnaryPreInc, enkellang.UnaryPreDec, enkellang.UnaryPostInc, enkellang.UnaryPostDec:
			return c.incDec(node, false)
		}
	}

	if err := c.expr(node); err != nil {
		return err
	}
	c.program.emit(OpPopDispose)
	return nil
}

func (c *compiler) varDecl(node *enkellang.VarDecl) error {
	if node.Init != nil {
		if err := c.expr(node.Init); err != nil {
			return err
		}
	}
	slot, err := c.declare(node, node.Name)
	if err != nil {
		return err
	}
	if node.Init != nil {
		c.program.emitU8(OpPopVarU8, slot)
	} else {
		c.program.emit(OpPushNull)
		c.program.emitU8(OpPopVarU8, slot)
	}
	return nil
}

func (c *compiler) variable(node enkellang.Node) (uint8, error) {
	ident, ok := node.(*enkellang.Ident)
	if !ok {
		return 0, c.errorf(ErrUnsupported, node, "assignment to non-variable")
	}
	slot, ok := c.frame.lookup(ident.Name)
	if !ok {
		return 0, c.errorf(ErrCompile, node, "no such variable in this frame: %s", ident.Name)
	}
	return slot, nil
}

func (c *compiler) assign(node *enkellang.Binary, keep bool) error {
	slot, err := c.variable(node.Left)
	if err != nil {
		return err
	}
	if op, ok := node.Op.Arith(); ok {
		c.program.emitU8(OpPushVarU8, slot)
		if err := c.expr(node.Right); err != nil {
			return err
		}
		c.program.emit(arithOps[op])
	} else if err := c.expr(node.Right); err != nil {
		return err
	}
	c.program.emitU8(OpPopVarU8, slot)
	if keep {
		c.program.emitU8(OpPushVarU8, slot)
	}
	return nil
}

func (c *compiler) incDec(node *enkellang.Unary, keep bool) error {
	slot, err := c.variable(node.Expr)
	if err != nil {
		return err
	}
	post := node.Op == enkellang.UnaryPostInc || node.Op == enkellang.UnaryPostDec
	if keep && post {
		c.program.emitU8(OpPushVarU8, slot)
	}
	c.program.emitU8(OpPushVarU8, slot)
	c.program.emitU8(OpPushU8, 1)
	if node.Op == enkellang.UnaryPreInc || node.Op == enkellang.UnaryPostInc {
		c.program.emit(OpAdd)
	} else {
		c.program.emit(OpSub)
	}
	c.program.emitU8(OpPopVarU8, slot)
	if keep && !post {
		c.program.emitU8(OpPushVarU8, slot)
	}
	return nil
}

var arithOps = map[enkellang.BinaryOp]OpCode{
	enkellang.BinaryAdd: OpAdd,
	enkellang.BinarySub: OpSub,
	enkellang.BinaryMul: OpMul,
	enkellang.BinaryDiv: OpDiv,
	enkellang.BinaryGt:  OpGt,
	enkellang.BinaryLt:  OpLt,
	enkellang.BinaryGte: OpGte,
	enkellang.BinaryLte: OpLte,
	enkellang.BinaryEq:  OpEq,
	enkellang.BinaryNeq: OpNeq,
}

// expr emits code that leaves exactly one value on the operand stack.
func (c *compiler) expr(node enkellang.Node) error {
	switch node := node.(type) {

	case *enkellang.Literal:
		if node.Kind == enkellang.LiteralBool {
			if node.Bool {
				c.program.emit(OpPushTrue)
			} else {
				c.program.emit(OpPushFalse)
			}
			return nil
		}
		if n := node.Num; n >= 0 && n <= math.MaxUint8 && n == float32(uint8(n)) && !math.Signbit(float64(n)) {
			c.program.emitU8(OpPushU8, uint8(n))
		} else {
			c.program.emitF32(OpPushF32, n)
		}
		return nil

	case *enkellang.NullLit:
		c.program.emit(OpPushNull)
		return nil

	case *enkellang.Ident:
		if slot, ok := c.frame.lookup(node.Name); ok {
			c.program.emitU8(OpPushVarU8, slot)
			return nil
		}
		if index, ok := c.globalFuncs[node.Name]; ok {
			c.program.emitU32(OpPushFuncRefU32, index)
			return nil
		}
		if _, _, ok := c.lookupNative(node.Name); ok {
			return c.errorf(ErrUnsupported, node, "native function %s as a value", node.Name)
		}
		return c.errorf(ErrCompile, node, "no such variable: %s", node.Name)

	case *enkellang.Unary:
		switch node.Op {
		case enkellang.UnaryPreInc, enkellang.UnaryPreDec, enkellang.UnaryPostInc, enkellang.UnaryPostDec:
			return c.incDec(node, true)
		}
		if err := c.expr(node.Expr); err != nil {
			return err
		}
		switch node.Op {
		case enkellang.UnaryNeg:
			c.program.emitF32(OpPushF32, -1)
			c.program.emit(OpMul)
		case enkellang.UnaryNot:
			c.program.emit(OpPushFalse)
			c.program.emit(OpEq)
		}
		return nil

	case *enkellang.Binary:
		if node.Op.IsAssign() {
			return c.assign(node, true)
		}
		switch node.Op {
		case enkellang.BinaryAnd, enkellang.BinaryOr:
			return c.logic(node)
		}
		op, ok := arithOps[node.Op]
		if !ok {
			return c.errorf(ErrUnsupported, node, "operator %s", node.Op)
		}
		if err := c.expr(node.Left); err != nil {
			return err
		}
		if err := c.expr(node.Right); err != nil {
			return err
		}
		c.program.emit(op)
		return nil

	case *enkellang.Call:
		return c.call(node)

	case *enkellang.StringLit:
		return c.errorf(ErrUnsupported, node, "string literal")
	case *enkellang.ArrayLit:
		return c.errorf(ErrUnsupported, node, "array literal")
	case *enkellang.Subscript:
		return c.errorf(ErrUnsupported, node, "subscript")
	case *enkellang.New:
		return c.errorf(ErrUnsupported, node, "new")
	case *enkellang.This:
		return c.errorf(ErrUnsupported, node, "this")
	}

	return c.errorf(ErrUnsupported, node, "%T in expression", node)
}

// logic short-circuits: the right operand is skipped when the left decides.
func (c *compiler) logic(node *enkellang.Binary) error {
	if err := c.expr(node.Left); err != nil {
		return err
	}
	decide := OpJumpIfFalseU32
	decided := OpPushFalse
	if node.Op == enkellang.BinaryOr {
		decide = OpJumpIfTrueU32
		decided = OpPushTrue
	}
	short := c.program.emitU32(decide, 0)
	if err := c.expr(node.Right); err != nil {
		return err
	}
	end := c.program.emitU32(OpJumpU32, 0)
	c.program.patchU32(short, c.program.here())
	c.program.emit(decided)
	c.program.patchU32(end, c.program.here())
	return nil
}

func (c *compiler) lookupNative(name string) (int, int, bool) {
	if c.natives == nil {
		return 0, 0, false
	}
	return c.natives.LookupNative(name)
}

func (c *compiler) call(node *enkellang.Call) error {
	if ident, ok := node.Callee.(*enkellang.Ident); ok {
		_, isLocal := c.frame.lookup(ident.Name)
		if !isLocal {
			if _, minArgs, ok := c.lookupNative(ident.Name); ok {
				if len(node.Args) != minArgs {
					return c.errorf(ErrUnsupported, node, "%s called with %d arguments, bytecode calls pass exactly %d", ident.Name, len(node.Args), minArgs)
				}
				for _, arg := range node.Args {
					if err := c.expr(arg); err != nil {
						return err
					}
				}
				index, ok := c.externIndex[ident.Name]
				if !ok {
					if len(c.program.Externs) > math.MaxUint16 {
						return c.errorf(ErrCompile, node, "too many native functions")
					}
					index = uint16(len(c.program.Externs))
					c.program.Externs = append(c.program.Externs, Extern{
						Name:    ident.Name,
						MinArgs: minArgs,
					})
					c.externIndex[ident.Name] = index
				}
				c.program.emitU16(OpCallExternU16, index)
				return nil
			}
			if fn, ok := c.globalFuncs[ident.Name]; ok {
				if want := c.program.Funcs[fn].NumParams; want != len(node.Args) {
					return c.errorf(ErrCompile, node, "%s expects %d arguments, got %d", ident.Name, want, len(node.Args))
				}
			}
		}
	}

	for _, arg := range node.Args {
		if err := c.expr(arg); err != nil {
			return err
		}
	}
	if err := c.expr(node.Callee); err != nil {
		return err
	}
	c.program.emit(OpCall)
	return nil
}
