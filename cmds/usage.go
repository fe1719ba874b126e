package cmds

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
)

func (p *Executor) PrintUsage(w io.Writer) {
	printCommands(w, p.commands, 0)
}

func printCommands(w io.Writer, commands map[string]*Command, depth int) {
	// aliases share the command pointer, print each command once
	names := make(map[*Command][]string)
	var order []*Command
	for name, command := range commands {
		if command == nil {
			continue
		}
		if _, ok := names[command]; !ok {
			order = append(order, command)
		}
		names[command] = append(names[command], name)
	}
	for _, command := range order {
		slices.Sort(names[command])
	}
	slices.SortFunc(order, func(a, b *Command) int {
		return strings.Compare(names[a][0], names[b][0])
	})

	indent := strings.Repeat("  ", depth)
	for _, command := range order {
		line := indent + strings.Join(names[command], ", ")
		if params := paramsOf(command); params != "" {
			line += " " + params
		}
		if command.Description != "" {
			line += "\t" + command.Description
		}
		fmt.Fprintln(w, line)
		if len(command.Subs) > 0 {
			printCommands(w, command.Subs, depth+1)
		}
	}
}

func paramsOf(command *Command) string {
	if !command.Func.IsValid() {
		return ""
	}
	fnType := command.Func.Type()
	var params []string
	for i := range fnType.NumIn() {
		t := fnType.In(i)
		switch t.Kind() {
		case reflect.Pointer:
			params = append(params, "["+t.Elem().Kind().String()+"]")
		case reflect.Slice:
			params = append(params, t.Elem().Kind().String()+"...")
		default:
			params = append(params, "<"+t.Kind().String()+">")
		}
	}
	return strings.Join(params, " ")
}
