/*
	crawler package discovers the content tree of a course. Crawling a
	course happens in two phases:
		1. The course page is fetched and its links are scanned strictly in
		   document order. Section links open a new section; file, url,
		   folder and assignment links are attached to the open section.
		2. Folder and assignment pages found during the scan are fetched
		   concurrently. A failing page only leaves its own entity partially
		   populated.
	Courses share no mutable state, so several courses can be crawled at
	the same time.
*/

package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"cloudeng.io/sync/errgroup"
	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/markup"
)

// Report summarizes the crawl of a single course.
type Report struct {
	Course *course.Course

	// Issues lists orphaned links and failed folder or assignment pages.
	// None of them prevented the rest of the course from being crawled.
	Issues []error
}

// Crawler populates course entity trees.
type Crawler struct {
	config Config
}

// New returns a fully configured crawler.
func New(config Config) (*Crawler, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("crawler: config validation failed: %w", err)
	}

	return &Crawler{config: config}, nil
}

// Crawl fetches the course page and fills crs with its sections and their
// content. An error is returned only when the course page itself can't be
// fetched or parsed.
func (cr *Crawler) Crawl(ctx context.Context, crs *course.Course) (*Report, error) {
	logger := cr.config.Logger.WithField("course", crs.Name)

	links, base, err := cr.fetchLinks(ctx, crs.URL, markup.ExtractLinks)
	if err != nil {
		return nil, fmt.Errorf("crawl course %q: %w", crs.Name, err)
	}

	sc := newScanner(crs, base, cr.config.IncludeFiles, cr.config.IncludeAssignments)
	for _, link := range links {
		sc.visit(link)
	}

	report := &Report{Course: crs, Issues: sc.issues}
	for _, issue := range sc.issues {
		logger.WithField("err", issue).Warn("skipping link")
	}

	report.Issues = append(report.Issues, cr.expand(ctx, sc, logger)...)

	logger.WithFields(logrus.Fields{
		"sections": len(crs.Sections),
		"files":    len(crs.Files()),
		"issues":   len(report.Issues),
	}).Info("crawled course")

	return report, nil
}

// CrawlAll crawls every course concurrently and returns the reports of the
// courses whose page could be crawled, in input order. Errors of the
// remaining courses are aggregated in the returned error.
func (cr *Crawler) CrawlAll(ctx context.Context, courses []*course.Course) ([]*Report, error) {
	var g errgroup.T
	reports := make([]*Report, len(courses))

	for i, crs := range courses {
		g.Go(func() error {
			report, err := cr.Crawl(ctx, crs)
			reports[i] = report

			return err
		})
	}

	err := g.Wait()

	crawled := make([]*Report, 0, len(reports))
	for _, report := range reports {
		if report != nil {
			crawled = append(crawled, report)
		}
	}

	return crawled, err
}

// fetchLinks fetches a page and extracts its links with parse. It also
// returns the final page URL relative links resolve against.
func (cr *Crawler) fetchLinks(
	ctx context.Context, pageURL string,
	parse func(io.Reader) ([]markup.LinkRef, error),
) ([]markup.LinkRef, *url.URL, error) {

	resp, err := cr.config.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	links, err := parse(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	base, err := finalURL(resp, pageURL)
	if err != nil {
		return nil, nil, err
	}

	return links, base, nil
}

func finalURL(resp *http.Response, requested string) (*url.URL, error) {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL, nil
	}

	return url.Parse(requested)
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}

	return base.ResolveReference(ref).String()
}
