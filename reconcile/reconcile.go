// Package reconcile decides which crawled files still need to be fetched.
package reconcile

import "github.com/mycok/coursesync/course"

// URLSet is the set of file URLs recorded in the download ledger.
type URLSet map[string]struct{}

// NewURLSet returns a set holding the URL of every given file.
func NewURLSet(files ...*course.File) URLSet {
	set := make(URLSet, len(files))
	for _, file := range files {
		set[file.URL] = struct{}{}
	}

	return set
}

// Contains reports whether url was recorded. Matching is exact.
func (s URLSet) Contains(url string) bool {
	_, found := s[url]

	return found
}

// FilesToFetch returns the files of courses that are not in known, in
// course and section order. The returned files are copies whose path is
// prefixed with the course name; the crawled tree is left untouched. A URL
// occurring more than once is returned for its first occurrence only.
func FilesToFetch(known URLSet, courses []*course.Course) []*course.File {
	seen := make(URLSet)
	toFetch := make([]*course.File, 0)

	for _, crs := range courses {
		for _, file := range crs.Files() {
			if known.Contains(file.URL) || seen.Contains(file.URL) {
				continue
			}
			seen[file.URL] = struct{}{}

			clone := file.Clone()
			clone.Path = crs.Name + "/" + file.Path
			toFetch = append(toFetch, clone)
		}
	}

	return toFetch
}
