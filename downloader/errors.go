package downloader

import "errors"

var (
	// ErrUnsupportedKind is returned for files whose kind is neither a
	// binary file nor a url.
	ErrUnsupportedKind = errors.New("unsupported file kind")

	// ErrOutsideRoot is returned when the path of a file would place it
	// outside the download root.
	ErrOutsideRoot = errors.New("path escapes download root")
)
