package enkelrt

import (
	"fmt"
	"strconv"
	"strings"
)

func formatNumber(n float32) string {
	return strconv.FormatFloat(float64(n), 'g', -1, 32)
}

func (in *Interpreter) TypeOf(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindFunc, KindNative, KindBytecodeFunc:
		return "function"
	case KindObject:
		obj, ok := in.heap.Get(v.handle)
		if !ok {
			return "collected"
		}
		switch obj := obj.(type) {
		case *String:
			return "string"
		case *Array:
			return "array"
		case *Table:
			return "table"
		case *Instance:
			return obj.Class
		}
	}
	return "unknown"
}

func (in *Interpreter) Stringify(v Value) string {
	var sb strings.Builder
	in.stringify(&sb, v, make(map[Handle]bool))
	return sb.String()
}

func (in *Interpreter) stringify(sb *strings.Builder, v Value, visiting map[Handle]bool) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindNumber:
		sb.WriteString(formatNumber(v.num))
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case KindFunc:
		fmt.Fprintf(sb, "<function %s>", v.fn.Name)
	case KindNative:
		name := "?"
		if native, ok := in.Native(int(v.index)); ok {
			name = native.Name
		}
		fmt.Fprintf(sb, "<native %s>", name)
	case KindBytecodeFunc:
		fmt.Fprintf(sb, "<bytecode function %d>", v.index)
	case KindObject:
		obj, ok := in.heap.Get(v.handle)
		if !ok {
			sb.WriteString("<collected>")
			return
		}
		if visiting[v.handle] {
			sb.WriteString("...")
			return
		}
		visiting[v.handle] = true
		defer delete(visiting, v.handle)

		switch obj := obj.(type) {
		case *String:
			sb.WriteString(obj.Str)
		case *Array:
			sb.WriteString("[")
			for i, item := range obj.Items {
				if i > 0 {
					sb.WriteString(", ")
				}
				in.stringify(sb, item, visiting)
			}
			sb.WriteString("]")
		case *Table:
			in.stringifyScope(sb, "", obj.Scope, visiting)
		case *Instance:
			in.stringifyScope(sb, obj.Class, obj.Scope, visiting)
		}
	}
}

func (in *Interpreter) stringifyScope(sb *strings.Builder, prefix string, scope *Scope, visiting map[Handle]bool) {
	sb.WriteString(prefix)
	sb.WriteString("{")
	first := true
	for name, def := range scope.Defs() {
		if def.Flags&DefFunc != 0 {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(name)
		sb.WriteString(": ")
		in.stringify(sb, def.Value, visiting)
	}
	sb.WriteString("}")
}
