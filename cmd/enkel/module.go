package main

import (
	"context"
	"io"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/enkel/debugs"
	"github.com/reusee/enkel/enkelconfigs"
	"github.com/reusee/enkel/enkelrt"
	"github.com/reusee/enkel/logs"
)

type Module struct {
	dscope.Module
	Configs enkelconfigs.Module
	Debugs  debugs.Module
}

// Stdout receives script output.
type Stdout io.Writer

func (Module) Stdout() Stdout {
	return os.Stdout
}

type NewInterpreter func(ctx context.Context) *enkelrt.Interpreter

func (Module) NewInterpreter(
	options *enkelrt.Options,
	stdout Stdout,
	importDirs enkelconfigs.ImportDirs,
	installTap debugs.InstallTap,
	logger logs.Logger,
) NewInterpreter {
	return func(ctx context.Context) *enkelrt.Interpreter {
		opts := *options
		opts.Stdout = stdout
		opts.OnError = func(err *enkelrt.Error) {
			logger.DebugContext(ctx, "script error",
				"kind", err.Kind,
				"msg", err.Msg,
				"pos", err.Pos.String(),
			)
		}
		in := enkelrt.New(&opts)
		in.Loader().SearchDirs = importDirs
		installTap(ctx, in)
		return in
	}
}
