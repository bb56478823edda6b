package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesync/pipeline"
)

var _ = check.Suite(new(pipelineTestSuite))

// Test registers the [check] library with the go testing library.
func Test(t *testing.T) {
	check.TestingT(t)
}

type pipelineTestSuite struct{}

func (s *pipelineTestSuite) TestPassThroughWithoutStages(c *check.C) {
	src := &sliceSource{payloads: makePayloads(3)}
	sink := new(collectingSink)

	err := pipeline.New().Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)
	c.Assert(sink.values(), check.DeepEquals, []string{"p0", "p1", "p2"})
	assertProcessed(c, src.payloads)
}

func (s *pipelineTestSuite) TestFIFOChainPreservesOrder(c *check.C) {
	stages := make([]pipeline.StageRunner, 5)
	for i := range stages {
		stages[i] = pipeline.NewFIFO(suffixProcessor("+"))
	}

	src := &sliceSource{payloads: makePayloads(4)}
	sink := new(collectingSink)

	err := pipeline.New(stages...).Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)
	c.Assert(sink.values(), check.DeepEquals, []string{"p0+++++", "p1+++++", "p2+++++", "p3+++++"})
}

func (s *pipelineTestSuite) TestDroppedPayloadsAreMarkedProcessed(c *check.C) {
	drop := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		return nil, nil
	})

	src := &sliceSource{payloads: makePayloads(2)}
	sink := new(collectingSink)

	err := pipeline.New(pipeline.NewFIFO(drop)).Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)
	c.Assert(sink.values(), check.HasLen, 0)
	assertProcessed(c, src.payloads)
}

func (s *pipelineTestSuite) TestProcessorErrorStopsPipeline(c *check.C) {
	fail := pipeline.ProcessorFunc(func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
		return nil, errors.New("boom")
	})

	src := &sliceSource{payloads: makePayloads(3)}
	err := pipeline.New(pipeline.NewFIFO(fail)).Execute(context.TODO(), src, new(collectingSink))
	c.Assert(err, check.ErrorMatches, "(?s).*pipeline stage 0: boom.*")
}

func (s *pipelineTestSuite) TestSourceError(c *check.C) {
	src := &sliceSource{err: errors.New("exhausted badly")}
	err := pipeline.New().Execute(context.TODO(), src, new(collectingSink))
	c.Assert(err, check.ErrorMatches, "(?s).*pipeline source: exhausted badly.*")
}

func (s *pipelineTestSuite) TestSinkError(c *check.C) {
	src := &sliceSource{payloads: makePayloads(3)}
	sink := &collectingSink{err: errors.New("disk full")}

	err := pipeline.New().Execute(context.TODO(), src, sink)
	c.Assert(err, check.ErrorMatches, "(?s).*pipeline sink: disk full.*")
}

func (s *pipelineTestSuite) TestFixedWorkerPoolRunsWorkersConcurrently(c *check.C) {
	const numOfWorkers = 4
	arrived := make(chan struct{})
	release := make(chan struct{})

	proc := pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		arrived <- struct{}{}
		<-release

		return p, nil
	})

	src := &sliceSource{payloads: makePayloads(numOfWorkers)}
	sink := new(collectingSink)
	done := make(chan error)

	go func() {
		done <- pipeline.New(pipeline.NewFixedWorkerPool(proc, numOfWorkers)).Execute(context.TODO(), src, sink)
	}()

	// Every worker must hold a payload at the same time before any of them
	// is released.
	for i := 0; i < numOfWorkers; i++ {
		<-arrived
	}
	close(release)

	c.Assert(<-done, check.IsNil)

	got := sink.values()
	sort.Strings(got)
	c.Assert(got, check.DeepEquals, []string{"p0", "p1", "p2", "p3"})
}

func (s *pipelineTestSuite) TestFixedWorkerPoolRejectsZeroWorkers(c *check.C) {
	c.Assert(func() { pipeline.NewFixedWorkerPool(suffixProcessor(""), 0) }, check.PanicMatches, ".*numOfWorkers > 0")
}

type stringPayload struct {
	mu        sync.Mutex
	value     string
	processed bool
}

func (p *stringPayload) Clone() pipeline.Payload {
	return &stringPayload{value: p.value}
}

func (p *stringPayload) MarkAsProcessed() {
	p.mu.Lock()
	p.processed = true
	p.mu.Unlock()
}

func makePayloads(n int) []*stringPayload {
	payloads := make([]*stringPayload, n)
	for i := range payloads {
		payloads[i] = &stringPayload{value: fmt.Sprintf("p%d", i)}
	}

	return payloads
}

func assertProcessed(c *check.C, payloads []*stringPayload) {
	for _, p := range payloads {
		p.mu.Lock()
		c.Assert(p.processed, check.Equals, true, check.Commentf("payload %q", p.value))
		p.mu.Unlock()
	}
}

func suffixProcessor(suffix string) pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		payload := p.(*stringPayload)
		payload.value += suffix

		return payload, nil
	})
}

type sliceSource struct {
	payloads []*stringPayload
	index    int
	err      error
}

func (s *sliceSource) Next(context.Context) bool {
	if s.err != nil || s.index >= len(s.payloads) {
		return false
	}

	s.index++

	return true
}

func (s *sliceSource) Payload() pipeline.Payload { return s.payloads[s.index-1] }
func (s *sliceSource) Error() error              { return s.err }

type collectingSink struct {
	mu   sync.Mutex
	data []string
	err  error
}

func (s *collectingSink) Consume(_ context.Context, p pipeline.Payload) error {
	if s.err != nil {
		return s.err
	}

	s.mu.Lock()
	s.data = append(s.data, p.(*stringPayload).value)
	s.mu.Unlock()

	return nil
}

func (s *collectingSink) values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.data...)
}
