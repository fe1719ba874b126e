package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reusee/enkel/enkelconfigs"
	"github.com/reusee/enkel/enkelrt"
	"github.com/reusee/enkel/enkelvm"
	"github.com/reusee/enkel/logs"
)

const bytecodeExt = ".ekb"

// RunScript runs a source file on the configured backend, or a compiled
// program on the VM.
type RunScript func(ctx context.Context, path string) error

func (Module) RunScript(
	newInterpreter NewInterpreter,
	backend enkelconfigs.Backend,
	newSpan logs.NewSpan,
	logger logs.Logger,
) RunScript {
	return func(ctx context.Context, path string) (err error) {
		ctx, _ = newSpan(ctx, "", "script", path, "backend", backend)
		in := newInterpreter(ctx)
		start := time.Now()
		defer func() {
			logger.DebugContext(ctx, "script done",
				"duration", time.Since(start),
				"heap", in.Heap().Len(),
			)
			if err != nil && logger.Enabled(ctx, slog.LevelDebug) {
				err = logs.WrapSpan(ctx, err)
			}
		}()

		if filepath.Ext(path) == bytecodeExt {
			program, err := readProgram(path)
			if err != nil {
				return err
			}
			return execProgram(program, in)
		}

		switch backend {
		case enkelconfigs.BackendVM:
			program, err := compileFile(path, in, logger)
			if err != nil {
				return err
			}
			return execProgram(program, in)
		case enkelconfigs.BackendTree:
			_, err := in.EvalFile(path)
			return err
		}
		return fmt.Errorf("unknown backend %q", backend)
	}
}

func compileFile(path string, in *enkelrt.Interpreter, logger logs.Logger) (*enkelvm.Program, error) {
	block, err := in.Loader().LoadFile(path)
	if err != nil {
		return nil, err
	}
	return enkelvm.Compile(block, in, enkelvm.WithLogger(logger))
}

func execProgram(program *enkelvm.Program, in *enkelrt.Interpreter) error {
	vm, err := enkelvm.NewVM(program, in)
	if err != nil {
		return err
	}
	for err := range vm.Run {
		if err != nil {
			return err
		}
	}
	return nil
}

func readProgram(path string) (*enkelvm.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	program, err := enkelvm.ReadProgram(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

func writeProgram(path string, program *enkelvm.Program) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return enkelvm.WriteProgram(f, program)
}

func bytecodePath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + bytecodeExt
}
