package pipeline

var _ StageParams = (*stageParams)(nil)

type stageParams struct {
	index   int
	input   <-chan Payload
	output  chan<- Payload
	errChan chan<- error
}

func (p *stageParams) StageIndex() int        { return p.index }
func (p *stageParams) Input() <-chan Payload  { return p.input }
func (p *stageParams) Output() chan<- Payload { return p.output }
func (p *stageParams) Error() chan<- error    { return p.errChan }
