package frontend

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesync/catalog"
	"github.com/mycok/coursesync/ledger"
	"github.com/mycok/coursesync/service/syncer"
)

const (
	defaultRecentCount = 10
	defaultSearchLimit = catalog.DefaultLimit
)

// StatusReporter exposes the state of the sync service.
type StatusReporter interface {
	Status() syncer.Status
}

// Config defines configurations for the frontend service.
type Config struct {
	// The address to listen on for incoming requests.
	ListenAddr string

	// The ledger of downloaded files.
	Ledger ledger.Ledger

	// Source of the sync status. Optional.
	Status StatusReporter

	// The catalog used for searching downloaded files. It is refreshed
	// from the ledger before every search.
	Catalog *catalog.Catalog

	// Default number of entries returned by the recent endpoint.
	RecentCount int

	// Default maximum number of search results.
	SearchLimit int

	// Origins allowed to issue cross-origin requests. No CORS headers are
	// sent when empty.
	AllowedOrigins []string

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.ListenAddr == "" {
		err = multierror.Append(err, fmt.Errorf("listen address not provided"))
	}

	if config.Ledger == nil {
		err = multierror.Append(err, fmt.Errorf("ledger not provided"))
	}

	if config.Catalog == nil {
		err = multierror.Append(err, fmt.Errorf("catalog not provided"))
	}

	if config.RecentCount <= 0 {
		config.RecentCount = defaultRecentCount
	}

	if config.SearchLimit <= 0 {
		config.SearchLimit = defaultSearchLimit
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
