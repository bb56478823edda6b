/*
	session package maintains an authenticated HTTP session with the
	learning portal. A Session is shared by every crawl and download
	goroutine of a sync run; the underlying http.Client and cookie jar are
	safe for concurrent use.
*/

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/markup"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Credentials holds the login form data.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Session performs requests on behalf of a logged-in portal user.
type Session struct {
	config Config
	client *http.Client

	// noRedirect shares the cookie jar of client but returns redirect
	// responses as-is, which the login form post relies on.
	noRedirect *http.Client
}

// New returns a session that is not logged in yet.
func New(config Config) (*Session, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("session: config validation failed: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Session{
		config: config,
		client: &http.Client{
			Transport: config.Transport,
			Jar:       jar,
			Timeout:   config.Timeout,
		},
		noRedirect: &http.Client{
			Transport: config.Transport,
			Jar:       jar,
			Timeout:   config.Timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Login authenticates the session. It fails with ErrAuthentication when the
// home page redirects anywhere else after the form has been posted.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	token, err := s.loginToken(ctx)
	if err != nil {
		return err
	}

	form := url.Values{
		"username":   {creds.Username},
		"password":   {creds.Password},
		"logintoken": {token},
	}

	resp, err := s.do(ctx, s.noRedirect, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, s.config.LoginURL, strings.NewReader(form.Encode()),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		return req, nil
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	drain(resp)

	home, err := s.Fetch(ctx, s.config.HomeURL)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	drain(home)

	if landed := home.Request.URL.String(); landed != s.config.HomeURL {
		s.config.Logger.WithField("landed_on", landed).Warn("login did not reach the home page")

		return fmt.Errorf("login: %w", ErrAuthentication)
	}

	s.config.Logger.WithField("user", creds.Username).Info("logged in")

	return nil
}

func (s *Session) loginToken(ctx context.Context) (string, error) {
	resp, err := s.Fetch(ctx, s.config.LoginURL)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer drain(resp)

	token, err := markup.ParseLoginToken(resp.Body)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	return token, nil
}

// Courses lists the courses of the logged-in user. The returned courses
// carry a URL and name only.
func (s *Session) Courses(ctx context.Context) ([]*course.Course, error) {
	resp, err := s.Fetch(ctx, s.config.HomeURL)
	if err != nil {
		return nil, fmt.Errorf("courses: %w", err)
	}
	defer drain(resp)

	refs, err := markup.ParseCourseList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("courses: %w", err)
	}

	courses := make([]*course.Course, 0, len(refs))
	for _, ref := range refs {
		courses = append(courses, course.NewCourse(resolve(resp.Request.URL, ref.URL), ref.Name))
	}

	return courses, nil
}

// Fetch performs a GET request for the provided URL. Redirects are followed
// and the final URL is available through resp.Request.URL. Callers must
// close the response body.
func (s *Session) Fetch(ctx context.Context, rawURL string) (*http.Response, error) {
	return s.do(ctx, s.client, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	})
}

// do executes the request built by newReq, retrying it while it times out.
func (s *Session) do(
	ctx context.Context, client *http.Client,
	newReq func(context.Context) (*http.Request, error),
) (*http.Response, error) {

	for attempt := 1; ; attempt++ {
		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err == nil {
			if resp.StatusCode < 200 || resp.StatusCode > 399 {
				drain(resp)

				return nil, fmt.Errorf("%w %d fetching %s", ErrUnexpectedStatus, resp.StatusCode, req.URL)
			}

			return resp, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if !isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrConnectivity, err)
		}

		logger := s.config.Logger.WithField("url", req.URL.String()).WithField("attempt", attempt)
		if attempt >= s.config.MaxAttempts {
			logger.Warn("giving up on timed out request")

			return nil, fmt.Errorf("%w: %w after %d attempts: %s", ErrConnectivity, ErrTimeout, attempt, req.URL)
		}

		logger.Debug("retrying timed out request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.config.Clock.After(s.config.RetryDelay):
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func resolve(base *url.URL, ref string) string {
	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}

	return base.ResolveReference(parsed).String()
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
