package benchmark

import (
	"context"

	"imagebench/store"
	"imagebench/workload"
)

// Results holds the summary of every pass of a run.
type Results struct {
	Write  Summary
	Read   Summary
	Delete Summary
}

// RunMixedBenchmark runs the write pass, then the read pass over the same
// items, then a delete pass when cleanup is set. A failing pass stops the
// run; summaries of passes that finished are still returned.
func RunMixedBenchmark(ctx context.Context, exec *Executor, items []workload.Item, st store.Store, cleanup bool) (Results, error) {
	var res Results
	var err error

	res.Write, err = exec.Run(ctx, OpWrite, items, WriteOp{Store: st})
	if err != nil {
		return res, err
	}

	res.Read, err = exec.Run(ctx, OpRead, items, ReadOp{Store: st})
	if err != nil {
		return res, err
	}

	if cleanup {
		res.Delete, err = exec.Run(ctx, OpDelete, items, DeleteOp{Store: st})
	}
	return res, err
}
