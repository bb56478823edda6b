package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// fifo dispatches payloads one at a time, in the order they arrive on the
// stage input. Suited for stages whose output order matters.
type fifo struct {
	proc Processor
}

// NewFIFO returns a StageRunner that processes payloads one at a time in
// arrival order.
func NewFIFO(proc Processor) StageRunner {
	return fifo{proc: proc}
}

// Run reads payloads from params.Input(), hands each one to the processor
// and forwards the result to params.Output().
// A processor error is wrapped with the stage index and reported on
// params.Error(); the runner then exits.
// Run blocks until the context is cancelled, the input channel is closed or
// the processor fails.
func (r fifo) Run(ctx context.Context, params StageParams) {
	for {
		select {
		case <-ctx.Done():
			return // cancelled or timed out.
		case in, ok := <-params.Input():
			if !ok {
				return // upstream closed the input.
			}

			out, err := r.proc.Process(ctx, in)
			if err != nil {
				emitError(fmt.Errorf("pipeline stage %d: %w", params.StageIndex(), err), params.Error())

				return
			}

			// A nil payload is dropped here and never reaches the
			// next stage.
			if out == nil {
				in.MarkAsProcessed()

				continue
			}

			select {
			case <-ctx.Done():
				return
			case params.Output() <- out:
			}
		}
	}
}

// fixedWorkerPool spreads the payloads of a stage over a constant number of
// fifo workers.
type fixedWorkerPool struct {
	workers []StageRunner
}

// NewFixedWorkerPool returns a StageRunner that shares its input among
// numOfWorkers FIFO workers. Output order is not preserved.
func NewFixedWorkerPool(proc Processor, numOfWorkers int) StageRunner {
	if numOfWorkers <= 0 {
		panic("pipeline: NewFixedWorkerPool requires numOfWorkers > 0")
	}

	workers := make([]StageRunner, numOfWorkers)
	for i := range workers {
		workers[i] = NewFIFO(proc)
	}

	return fixedWorkerPool{workers: workers}
}

// Run starts one goroutine per worker and waits for all of them to exit.
func (r fixedWorkerPool) Run(ctx context.Context, params StageParams) {
	var wg sync.WaitGroup

	// Every worker reads the same input channel and writes the same output
	// channel. Whichever worker is idle picks up the next payload.
	for _, worker := range r.workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			worker.Run(ctx, params)
		}()
	}

	wg.Wait()
}
