package crawler

import (
	"context"
	"net/http"
)

//go:generate mockgen -package mock_crawler -destination mocks/mock.go github.com/mycok/coursesync/crawler Fetcher

// Fetcher should be implemented by objects that perform authenticated
// HTTP GET requests against the portal. Implementations follow redirects
// and expose the final URL through resp.Request.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*http.Response, error)
}
