/*
	catalog package keeps a full-text index of the files recorded in the
	download ledger, so previously downloaded material can be found by
	course, section or file name.
*/

package catalog

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger"
)

// DefaultLimit is the number of matches returned when Search is called
// with a non-positive limit.
const DefaultLimit = 20

type bleveDoc struct {
	Name   string
	Path   string
	Course string
	Kind   string
}

// Catalog is a bleve in-memory index over ledger entries. It is safe for
// concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	idx   bleve.Index
	files []*course.File
}

// New returns an empty catalog.
func New() (*Catalog, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	return &Catalog{idx: idx}, nil
}

// Close releases the index.
func (c *Catalog) Close() error {
	return c.idx.Close()
}

// Len returns the number of indexed entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.files)
}

// Add indexes files after the entries already present.
func (c *Catalog) Add(files ...*course.File) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.add(files)
}

// Refresh indexes the ledger entries appended since the previous refresh.
// Ledgers only grow, so entries are matched by position.
func (c *Catalog) Refresh(l ledger.Ledger) (int, error) {
	files, err := l.All()
	if err != nil {
		return 0, fmt.Errorf("catalog: refresh: %w", err)
	}

	// The position check and the add must share one critical section or
	// concurrent refreshes would index the same entries twice.
	c.mu.Lock()
	defer c.mu.Unlock()

	known := len(c.files)
	if len(files) <= known {
		return 0, nil
	}

	if err := c.add(files[known:]); err != nil {
		return 0, err
	}

	return len(files) - known, nil
}

// add expects the caller to hold c.mu for writing.
func (c *Catalog) add(files []*course.File) error {
	batch := c.idx.NewBatch()
	for i, file := range files {
		id := strconv.Itoa(len(c.files) + i)
		if err := batch.Index(id, makeBleveDoc(file)); err != nil {
			return fmt.Errorf("catalog: add: %w", err)
		}
	}

	if err := c.idx.Batch(batch); err != nil {
		return fmt.Errorf("catalog: add: %w", err)
	}

	for _, file := range files {
		c.files = append(c.files, file.Clone())
	}

	return nil
}

// Search returns up to limit entries matching expr, best match first.
func (c *Catalog) Search(expr string, limit int) ([]*course.File, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(expr))
	req.Size = limit
	req.SortBy([]string{"-_score", "_id"})

	c.mu.RLock()
	defer c.mu.RUnlock()

	res, err := c.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}

	matches := make([]*course.File, 0, len(res.Hits))
	for _, hit := range res.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil || pos >= len(c.files) {
			return nil, fmt.Errorf("catalog: search: unknown document %q", hit.ID)
		}

		matches = append(matches, c.files[pos].Clone())
	}

	return matches, nil
}

func makeBleveDoc(file *course.File) bleveDoc {
	return bleveDoc{
		Name:   file.Name,
		Path:   file.Path,
		Course: file.CourseName(),
		Kind:   string(file.Kind),
	}
}
