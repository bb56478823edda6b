package crawler

import (
	"fmt"
	"net/url"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/markup"
)

// scanState tracks whether content links can be attached to a section.
type scanState int

const (
	noSectionOpen scanState = iota
	sectionOpen
)

type folderTask struct {
	section *course.Section
	folder  *course.Folder
}

// scanner walks the links of a course page in document order. It owns the
// current section cursor; nothing else reads or writes it.
type scanner struct {
	course             *course.Course
	base               *url.URL
	includeFiles       bool
	includeAssignments bool

	state   scanState
	section *course.Section

	folders     []folderTask
	assignments []*course.Assignment
	issues      []error
}

func newScanner(crs *course.Course, base *url.URL, includeFiles, includeAssignments bool) *scanner {
	return &scanner{
		course:             crs,
		base:               base,
		includeFiles:       includeFiles,
		includeAssignments: includeAssignments,
		state:              noSectionOpen,
	}
}

func (sc *scanner) visit(link markup.LinkRef) {
	kind := link.Kind()

	switch kind {
	case markup.KindNone:
		return
	case markup.KindSection:
		sc.openSection(link)

		return
	case markup.KindResource, markup.KindURL, markup.KindFolder:
		if !sc.includeFiles {
			return
		}
	case markup.KindAssignment:
		if !sc.includeAssignments {
			return
		}
	}

	if sc.state == noSectionOpen {
		sc.issues = append(sc.issues, fmt.Errorf(
			"%w: %s link %q appears before any section", ErrStructuralInconsistency, kind, link.Href,
		))

		return
	}

	href := resolve(sc.base, link.Href)

	switch kind {
	case markup.KindResource:
		sc.section.Files = append(sc.section.Files,
			course.NewFile(course.KindFile, href, link.DisplayText, sc.section.Name))
	case markup.KindURL:
		sc.section.Files = append(sc.section.Files,
			course.NewFile(course.KindURL, href, link.DisplayText, sc.section.Name))
	case markup.KindFolder:
		folder := course.NewFolder(href, link.DisplayText)
		sc.section.Folders = append(sc.section.Folders, folder)
		sc.folders = append(sc.folders, folderTask{section: sc.section, folder: folder})
	case markup.KindAssignment:
		assignment := course.NewAssignment(href, link.DisplayText)
		sc.section.Assignments = append(sc.section.Assignments, assignment)
		sc.assignments = append(sc.assignments, assignment)
	}
}

// openSection starts a new section. Sections without a name are dropped
// and leave the cursor untouched.
func (sc *scanner) openSection(link markup.LinkRef) {
	if link.DisplayText == "" {
		return
	}

	sc.section = course.NewSection(resolve(sc.base, link.Href), link.DisplayText)
	sc.course.Sections = append(sc.course.Sections, sc.section)
	sc.state = sectionOpen
}
