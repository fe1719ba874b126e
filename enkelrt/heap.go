package enkelrt

import (
	"fmt"
	"log/slog"
)

// Handle addresses a heap slot. The generation detects use after free.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("#%d.%d", h.index, h.gen)
}

type ObjectKind uint8

const (
	ObjectString ObjectKind = iota + 1
	ObjectArray
	ObjectTable
	ObjectInstance
)

type Object interface {
	ObjectKind() ObjectKind
	// refs yields every value the object holds
	refs(yield func(Value) bool)
}

type String struct {
	Str string
}

func (*String) ObjectKind() ObjectKind {
	return ObjectString
}

func (*String) refs(func(Value) bool) {}

type Array struct {
	Items []Value
}

func (*Array) ObjectKind() ObjectKind {
	return ObjectArray
}

func (a *Array) refs(yield func(Value) bool) {
	for _, item := range a.Items {
		if !yield(item) {
			return
		}
	}
}

type Table struct {
	Scope *Scope
}

func NewTable() *Table {
	return &Table{
		Scope: NewScope(nil, Handle{}),
	}
}

func (*Table) ObjectKind() ObjectKind {
	return ObjectTable
}

func (t *Table) refs(yield func(Value) bool) {
	t.Scope.refs(yield)
}

type Instance struct {
	Class string
	Scope *Scope
}

func (*Instance) ObjectKind() ObjectKind {
	return ObjectInstance
}

func (i *Instance) refs(yield func(Value) bool) {
	i.Scope.refs(yield)
}

type heapSlot struct {
	gen    uint32
	obj    Object
	marked bool
}

type Heap struct {
	slots  []heapSlot
	free   []uint32
	live   int
	logger *slog.Logger
}

func NewHeap(logger *slog.Logger) *Heap {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Heap{
		logger: logger,
	}
}

func (h *Heap) Add(obj Object) Handle {
	var index uint32
	if n := len(h.free); n > 0 {
		index = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		index = uint32(len(h.slots))
		h.slots = append(h.slots, heapSlot{})
	}
	slot := &h.slots[index]
	slot.gen++
	slot.obj = obj
	slot.marked = false
	h.live++
	return Handle{
		index: index,
		gen:   slot.gen,
	}
}

func (h *Heap) Get(handle Handle) (Object, bool) {
	if handle.IsZero() || int(handle.index) >= len(h.slots) {
		return nil, false
	}
	slot := &h.slots[handle.index]
	if slot.gen != handle.gen || slot.obj == nil {
		return nil, false
	}
	return slot.obj, true
}

func (h *Heap) Len() int {
	return h.live
}

type CollectStats struct {
	Before int
	Live   int
	Freed  int
}

// Collect marks everything reachable from the roots and frees the rest.
func (h *Heap) Collect(roots ...*Scope) CollectStats {
	stats := CollectStats{
		Before: h.live,
	}

	var stack []Handle
	push := func(v Value) bool {
		if v.kind == KindObject {
			stack = append(stack, v.handle)
		}
		return true
	}
	for _, root := range roots {
		if root == nil {
			continue
		}
		root.refs(push)
		if !root.This.IsZero() {
			stack = append(stack, root.This)
		}
	}
	for len(stack) > 0 {
		handle := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if handle.IsZero() || int(handle.index) >= len(h.slots) {
			continue
		}
		slot := &h.slots[handle.index]
		if slot.gen != handle.gen || slot.obj == nil || slot.marked {
			continue
		}
		slot.marked = true
		slot.obj.refs(push)
	}

	for i := range h.slots {
		slot := &h.slots[i]
		if slot.obj == nil {
			continue
		}
		if slot.marked {
			slot.marked = false
			continue
		}
		slot.obj = nil
		h.free = append(h.free, uint32(i))
		h.live--
		stats.Freed++
	}
	stats.Live = h.live

	h.logger.Debug("garbage collected",
		"before", stats.Before,
		"live", stats.Live,
		"freed", stats.Freed,
	)
	return stats
}
