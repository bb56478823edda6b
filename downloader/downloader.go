/*
	downloader package stores crawled files below a root directory. Binary
	files are written byte for byte under the name the portal serves them
	with. Url resources are written as internet shortcut records pointing at
	their external target.
*/

package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/markup"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Downloader writes course files to the local file system.
type Downloader struct {
	config Config
}

// New returns a fully configured downloader.
func New(config Config) (*Downloader, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("downloader: config validation failed: %w", err)
	}

	return &Downloader{config: config}, nil
}

// Download stores a single file and returns the local path it was written
// to. The file itself is not modified.
func (d *Downloader) Download(ctx context.Context, file *course.File) (string, error) {
	var (
		localPath string
		err       error
	)

	switch file.Kind {
	case course.KindFile:
		localPath, err = d.downloadBinary(ctx, file)
	case course.KindURL:
		localPath, err = d.downloadShortcut(ctx, file)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedKind, file.Kind)
	}

	if err != nil {
		return "", fmt.Errorf("download %q: %w", file.URL, err)
	}

	d.config.Logger.WithFields(logrus.Fields{
		"url":  file.URL,
		"path": localPath,
	}).Debug("stored file")

	return localPath, nil
}

func (d *Downloader) downloadBinary(ctx context.Context, file *course.File) (string, error) {
	resp, err := d.config.Fetcher.Fetch(ctx, file.URL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	name := fileName(finalURL(resp, file.URL), file.Name)

	return d.write(file.Path, name, content)
}

func (d *Downloader) downloadShortcut(ctx context.Context, file *course.File) (string, error) {
	resp, err := d.config.Fetcher.Fetch(ctx, file.URL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	landing := finalURL(resp, file.URL)

	target, err := markup.ExtractWorkaroundTarget(resp.Body)
	switch {
	case err == nil:
		target = resolve(landing, target)
	case landing.String() != file.URL:
		// The portal redirected straight to the external target.
		target = landing.String()
	default:
		return "", err
	}

	return d.write(file.Path, course.SanitizeName(file.Name)+".url", shortcut(target))
}

// write creates the directory for dir below the root and stores content in
// name.
func (d *Downloader) write(dir, name string, content []byte) (string, error) {
	targetDir := filepath.Join(d.config.Root, filepath.FromSlash(dir))
	target := filepath.Join(targetDir, name)

	// Ledger entries are not sanitized on reload, so their paths are
	// checked here as well.
	rel, err := filepath.Rel(d.config.Root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, path.Join(dir, name))
	}

	if err := os.MkdirAll(targetDir, dirPerm); err != nil {
		return "", err
	}

	if err := os.WriteFile(target, content, filePerm); err != nil {
		return "", err
	}

	return target, nil
}

func shortcut(target string) []byte {
	return []byte("[InternetShortcut]\r\nURL=" + target + "\r\n")
}

// fileName derives the local name from the last segment of the served URL,
// percent-decoded after splitting so an encoded slash stays in the name.
// The crawled display name is used when the URL has no usable segment.
func fileName(served *url.URL, fallback string) string {
	escaped := served.EscapedPath()
	segment := escaped[strings.LastIndex(escaped, "/")+1:]

	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}

	switch segment {
	case "", ".", "..":
	default:
		if name := course.SanitizeName(segment); name != "" {
			return name
		}
	}

	return course.SanitizeName(fallback)
}

func finalURL(resp *http.Response, requested string) *url.URL {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL
	}

	parsed, err := url.Parse(requested)
	if err != nil {
		return &url.URL{Path: requested}
	}

	return parsed
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}
