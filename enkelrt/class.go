package enkelrt

import (
	"github.com/reusee/enkel/enkellang"
)

func (in *Interpreter) declareClass(node *enkellang.ClassDecl, scope *Scope) error {
	if _, ok := in.classes[node.Name]; ok {
		return newError(ErrName, node.Pos(), "class %s already defined", node.Name)
	}
	classScope := NewScope(scope, Handle{})
	in.enter(classScope)
	defer in.leave()
	for _, member := range node.Members {
		if _, err := in.evalNode(member, classScope, Handle{}); err != nil {
			return err
		}
	}
	in.classes[node.Name] = &Class{
		Name:   node.Name,
		Parent: node.Parent,
		Scope:  classScope,
		Decl:   node,
	}
	in.logger.Debug("class declared",
		"name", node.Name,
		"parent", node.Parent,
		"members", classScope.Len(),
	)
	return nil
}

// instantiate copies the members of the class and its ancestors into a new
// instance scope. Members of derived classes shadow inherited ones.
func (in *Interpreter) instantiate(name string, pos enkellang.Pos) (Handle, *Instance, error) {
	class, ok := in.classes[name]
	if !ok {
		return Handle{}, nil, newError(ErrName, pos, "class not found: %s", name)
	}
	inst := &Instance{
		Class: name,
		Scope: NewScope(in.global, Handle{}),
	}
	handle := in.heap.Add(inst)
	inst.Scope.This = handle

	seen := make(map[string]bool)
	for {
		if seen[class.Name] {
			return Handle{}, nil, newError(ErrMisuse, pos, "inheritance cycle through %s", class.Name)
		}
		seen[class.Name] = true
		for memberName, def := range class.Scope.Defs() {
			if inst.Scope.FindDef(memberName, false) != nil {
				continue
			}
			inst.Scope.SetDef(memberName, def.Value, def.Flags)
		}
		if class.Parent == "" {
			break
		}
		parent, ok := in.classes[class.Parent]
		if !ok {
			return Handle{}, nil, newError(ErrName, pos, "parent class not found: %s", class.Parent)
		}
		class = parent
	}

	return handle, inst, nil
}

func (in *Interpreter) evalNew(node *enkellang.New, scope *Scope) (Result, error) {
	handle, inst, err := in.instantiate(node.Class, node.Pos())
	if err != nil {
		return Result{}, err
	}
	ret := ObjectRef(handle)

	init := inst.Scope.FindDef("init", false)
	if init == nil {
		if len(node.Args) > 0 {
			return Result{}, newError(ErrArity, node.Pos(), "default constructor of %s takes no arguments", node.Class)
		}
		return Result{Value: ret}, nil
	}

	// keep the instance reachable while the constructor runs
	in.enter(inst.Scope)
	defer in.leave()
	args, err := in.evalArgs(node.Args, scope)
	if err != nil {
		return Result{}, err
	}
	if _, err := in.callValue(init.Value, args, handle, node.Pos()); err != nil {
		return Result{}, err
	}
	return Result{Value: ret}, nil
}
