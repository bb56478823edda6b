package pipeline

import "context"

// Source emits the payloads that enter a pipeline.
type Source interface {
	// Next advances to the next payload. It returns false once the source
	// is exhausted or has failed.
	Next(context.Context) bool

	// Payload returns the payload Next advanced to.
	Payload() Payload

	// Error reports the failure that stopped the source, if any.
	Error() error
}

// Payload is a unit of work flowing through the pipeline.
type Payload interface {
	// Clone returns an independent copy of the payload.
	Clone() Payload

	// MarkAsProcessed is called once the payload has either been consumed
	// by the sink or dropped by a stage.
	MarkAsProcessed()
}

// Processor transforms payloads for a stage. Returning a nil payload drops
// it; returning an error stops the whole pipeline.
type Processor interface {
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts an ordinary function to the Processor interface.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// StageRunner drives a Processor for one stage of the pipeline. Run blocks
// until its input is closed, the context is cancelled or processing fails.
type StageRunner interface {
	Run(context.Context, StageParams)
}

// StageParams holds the channels wiring a stage to its neighbours.
type StageParams interface {
	// StageIndex is the position of the stage in the pipeline.
	StageIndex() int

	Input() <-chan Payload
	Output() chan<- Payload
	Error() chan<- error
}

// Sink receives the payloads leaving the last stage.
type Sink interface {
	Consume(context.Context, Payload) error
}
