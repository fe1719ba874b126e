package enkelrt

import (
	"github.com/reusee/enkel/enkellang"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindObject
	KindFunc
	KindNative
	KindBytecodeFunc
)

var kindNames = [...]string{
	KindNull:         "null",
	KindNumber:       "number",
	KindBool:         "boolean",
	KindObject:       "object",
	KindFunc:         "function",
	KindNative:       "native function",
	KindBytecodeFunc: "bytecode function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a small copyable tagged union. Heap objects are referenced by handle.
type Value struct {
	kind   Kind
	num    float32
	index  uint32
	handle Handle
	fn     *enkellang.FuncDecl
}

func Null() Value {
	return Value{}
}

func Number(n float32) Value {
	return Value{kind: KindNumber, num: n}
}

func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.index = 1
	}
	return v
}

func ObjectRef(h Handle) Value {
	return Value{kind: KindObject, handle: h}
}

func FuncRef(decl *enkellang.FuncDecl) Value {
	return Value{kind: KindFunc, fn: decl}
}

func NativeRef(index int) Value {
	return Value{kind: KindNative, index: uint32(index)}
}

func BytecodeFuncRef(index uint32) Value {
	return Value{kind: KindBytecodeFunc, index: index}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) Num() float32 {
	return v.num
}

func (v Value) Bool() bool {
	return v.kind == KindBool && v.index != 0
}

func (v Value) Handle() Handle {
	return v.handle
}

func (v Value) Func() *enkellang.FuncDecl {
	return v.fn
}

func (v Value) Index() uint32 {
	return v.index
}

// Equal compares by kind and payload. Heap objects compare by identity.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindNumber:
		return a.num == b.num
	case KindObject:
		return a.handle == b.handle
	case KindFunc:
		return a.fn == b.fn
	}
	return a.index == b.index
}
