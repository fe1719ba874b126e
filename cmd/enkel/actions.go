package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/reusee/dscope"
	"github.com/reusee/enkel/enkellang"
	"github.com/reusee/enkel/enkelvm"
	"github.com/reusee/enkel/logs"
)

type action func(ctx context.Context, scope dscope.Scope) error

func runAction(path string) action {
	return func(ctx context.Context, scope dscope.Scope) (err error) {
		scope.Call(func(
			run RunScript,
		) {
			err = run(ctx, path)
		})
		return
	}
}

func astAction(path string) action {
	return func(ctx context.Context, scope dscope.Scope) (err error) {
		scope.Call(func(
			newInterpreter NewInterpreter,
			stdout Stdout,
		) {
			var block *enkellang.Block
			block, err = newInterpreter(ctx).Loader().LoadFile(path)
			if err != nil {
				return
			}
			err = enkellang.Dump(stdout, block)
		})
		return
	}
}

// loadProgram compiles a source file or reads a compiled one.
func loadProgram(ctx context.Context, scope dscope.Scope, path string) (program *enkelvm.Program, err error) {
	if filepath.Ext(path) == bytecodeExt {
		return readProgram(path)
	}
	scope.Call(func(
		newInterpreter NewInterpreter,
		logger logs.Logger,
	) {
		program, err = compileFile(path, newInterpreter(ctx), logger)
	})
	return
}

func disasmAction(path string) action {
	return func(ctx context.Context, scope dscope.Scope) error {
		program, err := loadProgram(ctx, scope, path)
		if err != nil {
			return err
		}
		return enkelvm.Disassemble(dscope.Get[Stdout](scope), program)
	}
}

func compileAction(path string, out *string) action {
	return func(ctx context.Context, scope dscope.Scope) error {
		program, err := loadProgram(ctx, scope, path)
		if err != nil {
			return err
		}
		target := *out
		if target == "" {
			target = bytecodePath(path)
		}
		if target == path {
			return fmt.Errorf("refusing to overwrite %s", path)
		}
		if err := writeProgram(target, program); err != nil {
			return err
		}
		scope.Call(func(
			logger logs.Logger,
		) {
			logger.InfoContext(ctx, "program written",
				"path", target,
				"bytes", len(program.Code),
			)
		})
		return nil
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: enkel [options] <command> [args]")
	fmt.Fprintln(w)
}
