package debugs

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/reusee/enkel/enkelrt"
	"github.com/reusee/enkel/logs"
	"github.com/reusee/starlarkutil"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Tap opens a starlark session over the interpreter's globals.
type Tap func(ctx context.Context, what string, in *enkelrt.Interpreter) error

// TapSource is run instead of an interactive session when not empty.
type TapSource string

func (Module) TapSource() TapSource {
	return ""
}

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

func (Module) Tap(
	logger logs.Logger,
	source TapSource,
) Tap {
	return func(ctx context.Context, what string, in *enkelrt.Interpreter) error {
		globals := make(starlark.StringDict)
		for name, def := range in.Globals().Defs() {
			if _, ok := starlark.Universe[name]; ok && def.Value.Kind() == enkelrt.KindNative {
				continue
			}
			globals[name] = toStarlarkValue(in, def.Value)
		}
		globals["heap_len"] = starlarkutil.MakeFunc("heap_len", func() int {
			return in.Heap().Len()
		})
		globals["gc"] = starlarkutil.MakeFunc("gc", func() int {
			return in.CollectGarbage().Freed
		})

		logger.InfoContext(ctx, "tap: "+what,
			"globals", slices.Sorted(maps.Keys(globals)),
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		thread := &starlark.Thread{
			Name: "tap " + what,
			Print: func(_ *starlark.Thread, msg string) {
				io.WriteString(in.Stdout(), msg+"\n")
			},
		}
		if source == "" {
			repl.REPLOptions(fileOptions, thread, globals)
			return nil
		}
		if _, err := starlark.ExecFileOptions(fileOptions, thread, what, string(source), globals); err != nil {
			return fmt.Errorf("tap %s: %w", what, err)
		}
		return nil
	}
}

// InstallTap registers the `tap(label)` native, which pauses the script
// in a tap session.
type InstallTap func(ctx context.Context, in *enkelrt.Interpreter)

func (Module) InstallTap(
	tap Tap,
) InstallTap {
	return func(ctx context.Context, in *enkelrt.Interpreter) {
		in.RegisterNative("tap", 1, func(host enkelrt.Host, args []enkelrt.Value) (enkelrt.Value, error) {
			if err := tap(ctx, host.Stringify(args[0]), in); err != nil {
				return enkelrt.Null(), host.Errorf(enkelrt.ErrMisuse, "%v", err)
			}
			return enkelrt.Null(), nil
		})
	}
}
