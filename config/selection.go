package config

import (
	"fmt"

	"github.com/mycok/coursesync/course"
)

// CourseSelection marks whether a portal course is synced.
type CourseSelection struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}

// Selection is the ordered list of known courses.
type Selection []CourseSelection

// LoadSelection reads the selection at path. A missing file yields an
// empty selection.
func LoadSelection(path string) (Selection, error) {
	sel := make(Selection, 0)
	if err := readJSON(path, &sel); err != nil {
		return nil, fmt.Errorf("selection: %w", err)
	}

	return sel, nil
}

// SaveSelection writes sel to path.
func SaveSelection(path string, sel Selection) error {
	if err := writeJSON(path, sel, 0o644); err != nil {
		return fmt.Errorf("selection: %w", err)
	}

	return nil
}

// Merge appends the courses missing from the selection as unchecked
// entries. Existing entries keep their position and state, including
// those no longer offered by the portal. It returns the merged selection
// and the number of added entries.
func (s Selection) Merge(courses []*course.Course) (Selection, int) {
	merged := make(Selection, len(s), len(s)+len(courses))
	copy(merged, s)

	known := make(map[string]struct{}, len(s))
	for _, entry := range s {
		known[entry.URL] = struct{}{}
	}

	var added int
	for _, crs := range courses {
		if _, found := known[crs.URL]; found {
			continue
		}

		known[crs.URL] = struct{}{}
		merged = append(merged, CourseSelection{URL: crs.URL, Name: crs.Name})
		added++
	}

	return merged, added
}

// Filter returns the checked courses, in the order of courses.
func (s Selection) Filter(courses []*course.Course) []*course.Course {
	checked := make(map[string]struct{}, len(s))
	for _, entry := range s {
		if entry.Checked {
			checked[entry.URL] = struct{}{}
		}
	}

	selected := make([]*course.Course, 0, len(checked))
	for _, crs := range courses {
		if _, found := checked[crs.URL]; found {
			selected = append(selected, crs)
		}
	}

	return selected
}

// Set changes the checked state of the entries whose name or URL matches
// one of keys. It returns the number of changed entries.
func (s Selection) Set(checked bool, keys ...string) int {
	var changed int
	for i := range s {
		for _, key := range keys {
			if s[i].URL == key || s[i].Name == key {
				if s[i].Checked != checked {
					s[i].Checked = checked
					changed++
				}

				break
			}
		}
	}

	return changed
}
