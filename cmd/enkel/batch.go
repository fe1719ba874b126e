package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/reusee/dscope"
	"github.com/reusee/enkel/cmds"
	"github.com/reusee/enkel/syncs"
)

var jobsFlag = cmds.Var[int]("-jobs")

// batchAction runs scripts concurrently, each in its own interpreter, and
// writes their outputs in argument order.
func batchAction(paths []string, jobs int) action {
	return func(ctx context.Context, scope dscope.Scope) error {
		if jobs <= 0 {
			jobs = runtime.NumCPU()
		}
		sem := syncs.NewSemaphore(jobs)
		outputs := make([]bytes.Buffer, len(paths))
		errs := make([]error, len(paths))

		var wg sync.WaitGroup
		for i, path := range paths {
			wg.Go(func() {
				if err := sem.Acquire(ctx); err != nil {
					errs[i] = err
					return
				}
				defer sem.Release()
				scope.Fork(func() Stdout {
					return &outputs[i]
				}).Call(func(
					run RunScript,
				) {
					errs[i] = run(ctx, path)
				})
			})
		}
		wg.Wait()

		stdout := dscope.Get[Stdout](scope)
		failed := 0
		for i, path := range paths {
			fmt.Fprintf(stdout, "== %s\n", path)
			if _, err := io.Copy(stdout, &outputs[i]); err != nil {
				return err
			}
			if errs[i] != nil {
				failed++
				fmt.Fprintf(stdout, "error: %v\n", errs[i])
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d scripts failed", failed, len(paths))
		}
		return nil
	}
}
