package downloader

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Config serves as a configuration object for the downloader.
type Config struct {
	// API for fetching file contents and url landing pages.
	Fetcher Fetcher

	// The directory every file path is resolved against.
	Root string

	// The number of files downloaded concurrently by DownloadAll.
	NumOfWorkers int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Fetcher == nil {
		err = multierror.Append(err, fmt.Errorf("fetcher not provided"))
	}

	if config.Root == "" {
		err = multierror.Append(err, fmt.Errorf("download root not provided"))
	}

	if config.NumOfWorkers <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for number of workers, must be > 0"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
