package syncer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger"
	"github.com/mycok/coursesync/session"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/coursesync/service/syncer PortalAPI

// PortalAPI defines the set of portal operations required by the sync
// service.
type PortalAPI interface {
	// Login authenticates the session used by every other call.
	Login(ctx context.Context, creds session.Credentials) error

	// Courses lists the courses of the logged-in user.
	Courses(ctx context.Context) ([]*course.Course, error)

	// Fetch performs an authenticated GET request.
	Fetch(ctx context.Context, url string) (*http.Response, error)
}

// Config defines configurations for the sync service.
type Config struct {
	// API for the learning portal.
	Portal PortalAPI

	// Login data posted to the portal at the start of every run.
	Credentials session.Credentials

	// The ledger of already downloaded files.
	Ledger ledger.Ledger

	// Path of the course selection file. New portal courses are added to it
	// unchecked. If empty, every course is synced.
	SelectionPath string

	// The directory files are downloaded to.
	DownloadRoot string

	// Whether files, urls and folders are collected.
	IncludeFiles bool

	// Whether assignment pages are fetched.
	IncludeAssignments bool

	// The number of folder and assignment pages fetched concurrently per
	// course. Defaults to the number of CPUs.
	NumOfCrawlWorkers int

	// The number of files downloaded concurrently. Defaults to the
	// number of CPUs.
	NumOfDownloadWorkers int

	// The time zone assignment due dates are rendered in.
	Location *time.Location

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The duration between two runs in watch mode.
	SyncInterval time.Duration

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Portal == nil {
		err = multierror.Append(err, fmt.Errorf("portal API not provided"))
	}

	if config.Ledger == nil {
		err = multierror.Append(err, fmt.Errorf("ledger not provided"))
	}

	if config.DownloadRoot == "" {
		err = multierror.Append(err, fmt.Errorf("download root not provided"))
	}

	if config.SyncInterval < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for sync interval, must be >= 0"))
	}

	if config.NumOfCrawlWorkers <= 0 {
		config.NumOfCrawlWorkers = runtime.NumCPU()
	}

	if config.NumOfDownloadWorkers <= 0 {
		config.NumOfDownloadWorkers = runtime.NumCPU()
	}

	if config.Location == nil {
		config.Location = time.Local
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
