package crawler

import (
	"context"
	"fmt"
	"net/url"
	"path"

	"cloudeng.io/errors"
	"cloudeng.io/sync/errgroup"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/markup"
)

// expand fetches the folder and assignment pages collected by the scanner.
// Each task writes only to its own folder or assignment; folder files are
// appended to their sections once every task has settled.
func (cr *Crawler) expand(ctx context.Context, sc *scanner, logger *logrus.Entry) []error {
	var g errgroup.T
	sem := semaphore.NewWeighted(int64(cr.config.MaxConcurrentFetches))

	run := func(entityURL string, task func() error) {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			if err := task(); err != nil {
				logger.WithFields(logrus.Fields{
					"url": entityURL,
					"err": err,
				}).Warn("nested page fetch failed")

				return err
			}

			return nil
		})
	}

	for _, task := range sc.folders {
		run(task.folder.URL, func() error { return cr.expandFolder(ctx, task) })
	}

	for _, assignment := range sc.assignments {
		run(assignment.URL, func() error { return cr.expandAssignment(ctx, assignment) })
	}

	err := g.Wait()

	for _, task := range sc.folders {
		task.section.Files = append(task.section.Files, task.folder.Files...)
	}

	return flatten(err)
}

func (cr *Crawler) expandFolder(ctx context.Context, task folderTask) error {
	links, base, err := cr.fetchLinks(ctx, task.folder.URL, markup.ExtractFolderFiles)
	if err != nil {
		return fmt.Errorf("folder %q: %w", task.folder.Name, err)
	}

	dir := task.section.Name + "/" + task.folder.Name
	for _, link := range links {
		href := resolve(base, link.Href)
		name := link.DisplayText
		if name == "" {
			name = lastSegment(href)
		}

		task.folder.Files = append(task.folder.Files, course.NewFile(course.KindFile, href, name, dir))
	}

	return nil
}

func (cr *Crawler) expandAssignment(ctx context.Context, assignment *course.Assignment) error {
	resp, err := cr.config.Fetcher.Fetch(ctx, assignment.URL)
	if err != nil {
		return fmt.Errorf("assignment %q: %w", assignment.Name, err)
	}
	defer resp.Body.Close()

	status, err := markup.ParseAssignment(resp.Body, cr.config.Location)
	if err != nil {
		return fmt.Errorf("assignment %q: %w", assignment.Name, err)
	}

	assignment.Submitted = status.Submitted
	assignment.DueDate = status.DueDate
	assignment.Description = status.Description

	return nil
}

func lastSegment(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	return path.Base(parsed.Path)
}

// flatten splits an aggregated error into its parts.
func flatten(err error) []error {
	if err == nil {
		return nil
	}

	var multi *errors.M
	if errors.As(err, &multi) {
		return multi.Unwrap()
	}

	return []error{err}
}
