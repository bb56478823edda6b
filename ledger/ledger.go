/*
	ledger package defines the behavior of download ledgers. A ledger is
	the persisted, append-only record of every file and url that has been
	stored locally, keyed by URL. It is read in full before a sync run and
	appended to once all downloads of the run have settled.
*/

package ledger

import "github.com/mycok/coursesync/course"

// Ledger should be implemented by download ledger stores.
type Ledger interface {
	// Append records files in the given order after the existing entries.
	Append(files ...*course.File) error

	// All returns every recorded file in the order it was appended.
	All() ([]*course.File, error)

	// Close releases the resources held by the ledger.
	Close() error
}

// Recent returns up to n of the most recently appended files, newest
// first.
func Recent(l Ledger, n int) ([]*course.File, error) {
	files, err := l.All()
	if err != nil {
		return nil, err
	}

	if n < 0 || n > len(files) {
		n = len(files)
	}

	recent := make([]*course.File, 0, n)
	for i := len(files) - 1; i >= len(files)-n; i-- {
		recent = append(recent, files[i])
	}

	return recent, nil
}

// Validate checks that files can be recorded.
func Validate(files ...*course.File) error {
	for _, file := range files {
		if file == nil || file.URL == "" {
			return ErrInvalidFile
		}

		if file.Kind != course.KindFile && file.Kind != course.KindURL {
			return ErrInvalidFile
		}
	}

	return nil
}
