package memory

import (
	"fmt"
	"sync"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger"
)

// Static and compile-time check to ensure InMemoryLedger implements
// Ledger interface.
var _ ledger.Ledger = (*InMemoryLedger)(nil)

// InMemoryLedger keeps the ledger in memory. It is used for dry runs and
// tests and can be accessed concurrently.
type InMemoryLedger struct {
	mu    sync.RWMutex
	files []*course.File
}

// NewInMemoryLedger returns an empty in-memory ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{files: make([]*course.File, 0)}
}

// Append records copies of files.
func (l *InMemoryLedger) Append(files ...*course.File) error {
	if err := ledger.Validate(files...); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, file := range files {
		l.files = append(l.files, file.Clone())
	}

	return nil
}

// All returns copies of every recorded file.
func (l *InMemoryLedger) All() ([]*course.File, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	files := make([]*course.File, len(l.files))
	for i, file := range l.files {
		files[i] = file.Clone()
	}

	return files, nil
}

// Close is a no-op.
func (l *InMemoryLedger) Close() error {
	return nil
}
