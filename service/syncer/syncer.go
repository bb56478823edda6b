package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesync/config"
	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/crawler"
	"github.com/mycok/coursesync/downloader"
	"github.com/mycok/coursesync/markup"
	"github.com/mycok/coursesync/reconcile"
	"github.com/mycok/coursesync/session"
)

// Summary describes the outcome of a single sync run.
type Summary struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time

	// Courses is the number of crawled courses.
	Courses int

	// Downloaded lists the files recorded in the ledger by this run, with
	// their download path set.
	Downloaded []*course.File

	// Failed lists the files that could not be downloaded. They are
	// retried by the next run.
	Failed []downloader.Result

	// Assignments of every crawled course.
	Assignments []*course.Assignment

	// Issues collects the problems that did not stop the run.
	Issues []error

	// Err is the error that aborted the run, if any.
	Err error
}

// Status is a snapshot of the service state.
type Status struct {
	// Phase is a short description of what the service is doing.
	Phase string

	// LastRun is the summary of the most recent completed run.
	LastRun *Summary
}

// Service synchronizes the selected portal courses into the download
// directory. It satisfies the service.Service interface.
type Service struct {
	config     Config
	crawler    *crawler.Crawler
	downloader *downloader.Downloader

	mu      sync.RWMutex
	phase   string
	lastRun *Summary
}

// New creates and returns a fully configured sync service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("sync service: config validation failed: %w", err)
	}

	cr, err := crawler.New(crawler.Config{
		Fetcher:              config.Portal,
		IncludeFiles:         config.IncludeFiles,
		IncludeAssignments:   config.IncludeAssignments,
		MaxConcurrentFetches: config.NumOfCrawlWorkers,
		Location:             config.Location,
		Logger:               config.Logger.WithField("component", "crawler"),
	})
	if err != nil {
		return nil, fmt.Errorf("sync service: %w", err)
	}

	dl, err := downloader.New(downloader.Config{
		Fetcher:      config.Portal,
		Root:         config.DownloadRoot,
		NumOfWorkers: config.NumOfDownloadWorkers,
		Logger:       config.Logger.WithField("component", "downloader"),
	})
	if err != nil {
		return nil, fmt.Errorf("sync service: %w", err)
	}

	return &Service{
		config:     config,
		crawler:    cr,
		downloader: dl,
		phase:      "Idle",
	}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "syncer" }

// Run syncs immediately and then once per sync interval until the context
// gets cancelled. Failed runs are retried on the next tick, except for
// authentication failures which stop the service.
func (svc *Service) Run(ctx context.Context) error {
	if svc.config.SyncInterval <= 0 {
		return fmt.Errorf("sync service: sync interval not set")
	}

	svc.config.Logger.WithField(
		"sync_interval", svc.config.SyncInterval.String(),
	).Info("starting service")
	defer svc.config.Logger.Info("stopped service")

	for {
		if _, err := svc.SyncOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			if errors.Is(err, session.ErrAuthentication) {
				return err
			}

			svc.config.Logger.WithField("err", err).Warn("sync run failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-svc.config.Clock.After(svc.config.SyncInterval):
		}
	}
}

// Status returns the current phase and the summary of the last run.
func (svc *Service) Status() Status {
	svc.mu.RLock()
	defer svc.mu.RUnlock()

	return Status{Phase: svc.phase, LastRun: svc.lastRun}
}

// SyncOnce performs a single run: login, course discovery, crawl,
// reconciliation against the ledger, download and ledger update. The
// ledger is only appended to after every download has settled, and only
// with the files that were stored successfully.
func (svc *Service) SyncOnce(ctx context.Context) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.New(),
		StartedAt: svc.config.Clock.Now(),
	}
	logger := svc.config.Logger.WithField("run_id", summary.RunID.String())

	err := svc.sync(ctx, summary, logger)
	summary.FinishedAt = svc.config.Clock.Now()

	if err != nil {
		summary.Err = err
		svc.finish(summary, StatusMessage(err))
		logger.WithField("err", err).Error("sync run aborted")

		return summary, err
	}

	svc.finish(summary, fmt.Sprintf("%d files downloaded", len(summary.Downloaded)))
	logger.WithFields(logrus.Fields{
		"courses":    summary.Courses,
		"downloaded": len(summary.Downloaded),
		"failed":     len(summary.Failed),
		"issues":     len(summary.Issues),
		"elapsed":    summary.FinishedAt.Sub(summary.StartedAt).String(),
	}).Info("sync run complete")

	return summary, nil
}

func (svc *Service) sync(ctx context.Context, summary *Summary, logger *logrus.Entry) error {
	svc.setPhase("Logging in...")
	if err := svc.config.Portal.Login(ctx, svc.config.Credentials); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	courses, err := svc.config.Portal.Courses(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if courses, err = svc.selectCourses(courses, logger); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	svc.setPhase("Gathering course content...")
	reports, err := svc.crawler.CrawlAll(ctx, courses)
	if err != nil {
		if isFatal(err) || ctx.Err() != nil {
			return fmt.Errorf("sync: %w", err)
		}

		logger.WithField("err", err).Warn("some courses could not be crawled")
		summary.Issues = append(summary.Issues, err)
	}

	crawled := make([]*course.Course, 0, len(reports))
	for _, report := range reports {
		crawled = append(crawled, report.Course)
		summary.Issues = append(summary.Issues, report.Issues...)

		for _, section := range report.Course.Sections {
			summary.Assignments = append(summary.Assignments, section.Assignments...)
		}
	}
	summary.Courses = len(crawled)

	svc.setPhase("Comparing files...")
	known, err := svc.config.Ledger.All()
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	toFetch := reconcile.FilesToFetch(reconcile.NewURLSet(known...), crawled)

	svc.setPhase(fmt.Sprintf("Downloading files... (%d files)", len(toFetch)))
	results, err := svc.downloader.DownloadAll(ctx, toFetch)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	for _, res := range results {
		if res.Err != nil {
			summary.Failed = append(summary.Failed, res)

			continue
		}

		file := res.File.Clone()
		file.DownloadPath = res.LocalPath
		summary.Downloaded = append(summary.Downloaded, file)
	}

	if err := svc.config.Ledger.Append(summary.Downloaded...); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	return nil
}

// selectCourses merges the portal courses into the selection file and
// returns the checked ones.
func (svc *Service) selectCourses(courses []*course.Course, logger *logrus.Entry) ([]*course.Course, error) {
	if svc.config.SelectionPath == "" {
		return courses, nil
	}

	sel, err := config.LoadSelection(svc.config.SelectionPath)
	if err != nil {
		return nil, err
	}

	merged, added := sel.Merge(courses)
	if added > 0 {
		if err := config.SaveSelection(svc.config.SelectionPath, merged); err != nil {
			return nil, err
		}

		logger.WithField("added", added).Info("new courses added to the selection unchecked")
	}

	return merged.Filter(courses), nil
}

func (svc *Service) setPhase(phase string) {
	svc.mu.Lock()
	svc.phase = phase
	svc.mu.Unlock()
}

func (svc *Service) finish(summary *Summary, phase string) {
	svc.mu.Lock()
	svc.phase = phase
	svc.lastRun = summary
	svc.mu.Unlock()
}

func isFatal(err error) bool {
	return errors.Is(err, session.ErrAuthentication) || errors.Is(err, session.ErrConnectivity)
}

// StatusMessage maps an error returned by SyncOnce to a short message for
// the user.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return "Finished"
	case errors.Is(err, session.ErrAuthentication):
		return "Incorrect login data"
	case errors.Is(err, session.ErrTimeout):
		return "Bad network connection"
	case errors.Is(err, session.ErrConnectivity):
		return "No internet connection"
	case errors.Is(err, markup.ErrMalformedMarkup):
		return "Unexpected page structure"
	default:
		return "Error"
	}
}
