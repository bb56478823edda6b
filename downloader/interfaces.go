package downloader

import (
	"context"
	"net/http"
)

// Fetcher is implemented by objects that perform authenticated GET requests
// against the portal and follow redirects. Only successful responses are
// returned without an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*http.Response, error)
}
