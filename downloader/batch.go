package downloader

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/pipeline"
)

// Result pairs a file with the outcome of its download.
type Result struct {
	File      *course.File
	LocalPath string
	Err       error
}

// DownloadAll downloads files concurrently on a fixed pool of workers. A
// failing file does not affect its siblings; its error is reported in its
// Result. Results are returned in the order of files once every download
// has settled. The returned error is only set when the batch itself could
// not run.
func (d *Downloader) DownloadAll(ctx context.Context, files []*course.File) ([]Result, error) {
	results := make([]Result, len(files))
	if len(files) == 0 {
		return results, nil
	}

	p := pipeline.New(
		pipeline.NewFixedWorkerPool(pipeline.ProcessorFunc(d.process), d.config.NumOfWorkers),
	)

	err := p.Execute(ctx, &fileSource{files: files}, &resultSink{results: results})
	if err != nil {
		return nil, fmt.Errorf("downloader: %w", err)
	}

	var failed int
	for i, res := range results {
		// Files never handed to a worker were skipped by cancellation.
		if res.File == nil {
			results[i] = Result{File: files[i], Err: fmt.Errorf("download %q: %w", files[i].URL, ctx.Err())}
		}

		if results[i].Err != nil {
			failed++
		}
	}

	d.config.Logger.WithFields(logrus.Fields{
		"files":  len(files),
		"failed": failed,
	}).Info("download batch complete")

	return results, nil
}

// process never fails the pipeline; download errors travel in the payload.
func (d *Downloader) process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*filePayload)

	payload.LocalPath, payload.Err = d.Download(ctx, payload.File)
	if payload.Err != nil {
		d.config.Logger.WithFields(logrus.Fields{
			"url": payload.File.URL,
			"err": payload.Err,
		}).Warn("download failed")
	}

	return payload, nil
}

var _ pipeline.Payload = (*filePayload)(nil)

type filePayload struct {
	index int
	Result
}

func (p *filePayload) Clone() pipeline.Payload {
	clone := *p

	return &clone
}

func (p *filePayload) MarkAsProcessed() {}

type fileSource struct {
	files []*course.File
	next  int
}

func (s *fileSource) Next(ctx context.Context) bool {
	if ctx.Err() != nil || s.next >= len(s.files) {
		return false
	}

	s.next++

	return true
}

func (s *fileSource) Payload() pipeline.Payload {
	index := s.next - 1

	return &filePayload{index: index, Result: Result{File: s.files[index]}}
}

func (s *fileSource) Error() error { return nil }

// resultSink stores each result at the index of its file. Indexes are
// unique so no locking is needed.
type resultSink struct {
	results []Result
}

func (s *resultSink) Consume(_ context.Context, p pipeline.Payload) error {
	payload := p.(*filePayload)
	s.results[payload.index] = payload.Result

	return nil
}
