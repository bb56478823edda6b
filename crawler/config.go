package crawler

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Config serves as a configuration object for the crawler.
type Config struct {
	// API for fetching portal pages with an authenticated session.
	Fetcher Fetcher

	// Whether files, urls and folders are collected.
	IncludeFiles bool

	// Whether assignments are collected and their detail pages fetched.
	IncludeAssignments bool

	// The maximum number of folder and assignment pages fetched
	// concurrently for a single course.
	MaxConcurrentFetches int

	// The time zone assignment due dates are rendered in. If not
	// specified, UTC will be used instead.
	Location *time.Location

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Fetcher == nil {
		err = multierror.Append(err, fmt.Errorf("fetcher not provided"))
	}

	if config.MaxConcurrentFetches <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max concurrent fetches, must be > 0"))
	}

	if config.Location == nil {
		config.Location = time.UTC
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
