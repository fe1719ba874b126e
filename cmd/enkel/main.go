package main

import (
	"context"
	"fmt"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/enkel/cmds"
	"github.com/reusee/enkel/debugs"
	"github.com/reusee/enkel/enkelconfigs"
	"github.com/reusee/enkel/modes"
)

var actions []action

func init() {
	cmds.Define("run", cmds.Func(func(path string) {
		actions = append(actions, runAction(path))
	}).Desc("run a script or a compiled program"))

	cmds.Define("ast", cmds.Func(func(path string) {
		actions = append(actions, astAction(path))
	}).Desc("print the syntax tree of a script"))

	cmds.Define("disasm", cmds.Func(func(path string) {
		actions = append(actions, disasmAction(path))
	}).Desc("print the bytecode of a script or a compiled program"))

	cmds.Define("compile", cmds.Func(func(path string, out *string) {
		actions = append(actions, compileAction(path, out))
	}).Desc("compile a script to a .ekb program"))

	cmds.Define("batch", cmds.Func(func(paths []string) {
		actions = append(actions, batchAction(paths, *jobsFlag))
	}).Desc("run scripts concurrently, see -jobs"))

	cmds.Define("repl", cmds.Func(func() {
		actions = append(actions, replAction())
	}).Desc("evaluate statements interactively"))
}

var tapScript = cmds.Var[string]("-tap-script")

func newScope() (dscope.Scope, error) {
	scope := dscope.New(
		new(Module),
		modes.ForProduction(),
	)
	if *tapScript != "" {
		content, err := os.ReadFile(*tapScript)
		if err != nil {
			return scope, err
		}
		scope = scope.Fork(func() debugs.TapSource {
			return debugs.TapSource(content)
		})
	}
	return enkelconfigs.ScriptFork(scope)
}

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope, err := newScope()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(actions) == 0 {
		// enkel.toml names the entry script
		scope.Call(func(
			manifest *enkelconfigs.Manifest,
		) {
			if manifest != nil && manifest.Main != "" {
				actions = append(actions, runAction(manifest.MainPath()))
			}
		})
	}
	if len(actions) == 0 {
		printUsage(os.Stderr)
		cmds.GlobalExecutor.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	for _, action := range actions {
		if err := action(ctx, scope); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
