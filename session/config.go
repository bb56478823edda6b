package session

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
)

// Config defines configurations for an authenticated portal session.
type Config struct {
	// The page a successful login lands on. It also lists the courses
	// of the authenticated user.
	HomeURL string

	// The login form URL.
	LoginURL string

	// Total time allowed for a single request, including reading the
	// response body. Zero disables the timeout.
	Timeout time.Duration

	// The number of attempts made for a request that times out before
	// giving up with ErrConnectivity. Defaults to 3.
	MaxAttempts int

	// Delay between two attempts of the same request.
	RetryDelay time.Duration

	// The transport used for all requests. If not specified,
	// http.DefaultTransport will be used instead.
	Transport http.RoundTripper

	// A clock instance used for retry delays. If not specified, the
	// default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if _, parseErr := url.ParseRequestURI(config.HomeURL); parseErr != nil {
		err = multierror.Append(err, fmt.Errorf("invalid home URL: %w", parseErr))
	}

	if _, parseErr := url.ParseRequestURI(config.LoginURL); parseErr != nil {
		err = multierror.Append(err, fmt.Errorf("invalid login URL: %w", parseErr))
	}

	if config.Timeout < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for request timeout, must be >= 0"))
	}

	if config.MaxAttempts == 0 {
		config.MaxAttempts = 3
	} else if config.MaxAttempts < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max attempts, must be > 0"))
	}

	if config.Transport == nil {
		config.Transport = http.DefaultTransport
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
