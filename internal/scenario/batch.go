package scenario

import (
	"context"
	"io"
	"sync"

	"github.com/san-kum/bombprop/internal/config"
)

// Outcome is the result of one scenario in a batch. Err holds either the run
// error or the failed expectations.
type Outcome struct {
	Scenario *Scenario
	Result   *Result
	Err      error
}

// RunBatch plays every scenario concurrently, each against its own prop and
// clock. cfg is shared and must not be modified while the batch runs.
// Outcomes are returned in the order of scs.
func RunBatch(ctx context.Context, scs []*Scenario, cfg *config.Config, logs io.Writer) []Outcome {
	outcomes := make([]Outcome, len(scs))

	var wg sync.WaitGroup
	for i, sc := range scs {
		wg.Add(1)
		go func(idx int, sc *Scenario) {
			defer wg.Done()

			out := Outcome{Scenario: sc}
			out.Result, out.Err = Run(ctx, sc, cfg, logs)
			if out.Err == nil {
				out.Err = out.Result.Check(sc.Expect)
			}
			outcomes[idx] = out
		}(i, sc)
	}

	wg.Wait()
	return outcomes
}

// Failed counts the outcomes with an error.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}
