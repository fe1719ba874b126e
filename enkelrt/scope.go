package enkelrt

import (
	"iter"
	"maps"
	"slices"
)

type DefFlags uint8

const (
	DefConst DefFlags = 1 << iota
	DefFunc
)

type Definition struct {
	Name  string
	Value Value
	Scope *Scope
	Flags DefFlags
}

// Modifiable reports whether the definition can be written through a reference.
func (d *Definition) Modifiable() bool {
	return d.Flags&(DefConst|DefFunc) == 0
}

type Scope struct {
	Parent *Scope
	This   Handle
	defs   map[string]*Definition
}

func NewScope(parent *Scope, this Handle) *Scope {
	return &Scope{
		Parent: parent,
		This:   this,
		defs:   make(map[string]*Definition),
	}
}

func (s *Scope) FindDef(name string, recursive bool) *Definition {
	for scope := s; scope != nil; scope = scope.Parent {
		if def, ok := scope.defs[name]; ok {
			return def
		}
		if !recursive {
			break
		}
	}
	return nil
}

// SetDef defines name in this scope. An existing local definition is updated
// in place so outstanding pointers to it stay valid.
func (s *Scope) SetDef(name string, value Value, flags DefFlags) *Definition {
	if def, ok := s.defs[name]; ok {
		def.Value = value
		def.Flags = flags
		return def
	}
	def := &Definition{
		Name:  name,
		Value: value,
		Scope: s,
		Flags: flags,
	}
	s.defs[name] = def
	return def
}

func (s *Scope) Len() int {
	return len(s.defs)
}

// Defs iterates local definitions in name order.
func (s *Scope) Defs() iter.Seq2[string, *Definition] {
	return func(yield func(string, *Definition) bool) {
		for _, name := range slices.Sorted(maps.Keys(s.defs)) {
			if !yield(name, s.defs[name]) {
				return
			}
		}
	}
}

func (s *Scope) refs(yield func(Value) bool) {
	for _, def := range s.defs {
		if !yield(def.Value) {
			return
		}
	}
}
