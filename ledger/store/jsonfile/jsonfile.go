/*
	jsonfile package stores the ledger as a JSON array of flat file and url
	records. The whole file is read on every call to All and rewritten on
	every Append through a temporary file that replaces the original, so a
	crash never leaves a truncated ledger behind.
*/

package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger"
)

var _ ledger.Ledger = (*FileLedger)(nil)

// FileLedger is a ledger persisted in a single JSON file.
type FileLedger struct {
	mu   sync.Mutex
	path string
}

// NewFileLedger returns a ledger stored at path. The file is created on the
// first append; its directory must exist.
func NewFileLedger(path string) (*FileLedger, error) {
	info, err := os.Stat(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("jsonfile: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("jsonfile: %q is not a directory", filepath.Dir(path))
	}

	return &FileLedger{path: path}, nil
}

// Append records files after the existing entries.
func (l *FileLedger) Append(files ...*course.File) error {
	if err := ledger.Validate(files...); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.read()
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	for _, file := range files {
		records = append(records, course.ToRecord(file))
	}

	if err := l.write(records); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	return nil
}

// All decodes every record of the ledger file. A missing file is an empty
// ledger.
func (l *FileLedger) All() ([]*course.File, error) {
	l.mu.Lock()
	records, err := l.read()
	l.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("all: %w", err)
	}

	files := make([]*course.File, 0, len(records))
	for i, rec := range records {
		file, err := course.FileFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("all: %w: entry %d: %w", ledger.ErrCorrupted, i, err)
		}

		files = append(files, file)
	}

	return files, nil
}

// Close is a no-op; the file is not held open between calls.
func (l *FileLedger) Close() error {
	return nil
}

func (l *FileLedger) read() ([]course.Record, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make([]course.Record, 0), nil
	}
	if err != nil {
		return nil, err
	}

	var records []course.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrCorrupted, err)
	}

	return records, nil
}

func (l *FileLedger) write(records []course.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return err
	}

	return os.Rename(tmp.Name(), l.path)
}
