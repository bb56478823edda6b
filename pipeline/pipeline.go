/*
	pipeline package runs payloads from a Source through a chain of stages
	into a Sink. Stages run concurrently and are connected by unbuffered
	channels; Execute hides that behind a blocking call.
		Usage:
			- Provide an input that satisfies [pipeline.Source] and an output
			  that satisfies [pipeline.Sink].
			- Build stages from the runners of this package (NewFIFO,
			  NewFixedWorkerPool) wrapping a [pipeline.Processor], or supply
			  a custom [pipeline.StageRunner].
*/

package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Pipeline is an ordered list of stages. The output of stage i feeds the
// input of stage i+1.
type Pipeline struct {
	stages []StageRunner
}

// New returns a pipeline made of the given stages. A pipeline without
// stages forwards source payloads straight to the sink.
func New(stages ...StageRunner) *Pipeline {
	return &Pipeline{stages: stages}
}

// Execute pumps every payload of src through the stages into sink. It
// returns once the source is drained, ctx is cancelled or any component
// fails. The first failure cancels the remaining work and all collected
// errors are returned together.
func (p *Pipeline) Execute(ctx context.Context, src Source, sink Sink) error {
	var wg sync.WaitGroup
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// links[i] feeds stage i; the last link feeds the sink. With no stages
	// the single link connects the source straight to the sink.
	links := make([]chan Payload, len(p.stages)+1)
	for i := range links {
		links[i] = make(chan Payload)
	}

	// One slot per stage plus the source and the sink, so every component
	// can report its failure without blocking.
	errChan := make(chan error, len(p.stages)+2)

	for i, stage := range p.stages {
		wg.Add(1)

		go func() {
			defer wg.Done()

			stage.Run(runCtx, &stageParams{
				index:   i,
				input:   links[i],
				output:  links[i+1],
				errChan: errChan,
			})

			close(links[i+1])
		}()
	}

	wg.Add(2)

	go func() {
		defer wg.Done()

		pumpSource(runCtx, src, links[0], errChan)
		close(links[0])
	}()

	go func() {
		defer wg.Done()

		drainToSink(runCtx, sink, links[len(links)-1], errChan)
	}()

	// Close the error channel once every component has returned, which
	// ends the collection loop below.
	go func() {
		wg.Wait()
		close(errChan)
	}()

	// Any error cancels the rest of the pipeline.
	var err error
	for stageErr := range errChan {
		err = multierror.Append(err, stageErr)
		cancel()
	}

	return err
}

// pumpSource copies payloads from src into the first link until the source
// is exhausted or the context is cancelled. A source failure is reported
// on errChan.
func pumpSource(ctx context.Context, src Source, out chan<- Payload, errChan chan<- error) {
	for src.Next(ctx) {
		select {
		case <-ctx.Done():
			return
		case out <- src.Payload():
		}
	}

	if err := src.Error(); err != nil {
		emitError(fmt.Errorf("pipeline source: %w", err), errChan)
	}
}

// drainToSink hands every payload leaving the last link to the sink and
// marks it as processed once consumed.
func drainToSink(ctx context.Context, sink Sink, in <-chan Payload, errChan chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-in:
			if !ok {
				return
			}

			if err := sink.Consume(ctx, payload); err != nil {
				emitError(fmt.Errorf("pipeline sink: %w", err), errChan)

				return
			}

			payload.MarkAsProcessed()
		}
	}
}

// emitError never blocks; errors beyond the channel capacity are dropped.
func emitError(err error, errChan chan<- error) {
	select {
	case errChan <- err:
	default:
	}
}
