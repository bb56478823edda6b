/*
	course package defines the entity tree discovered by the crawler:
	courses contain sections, sections contain files, folders and
	assignments. Entities carry no network behavior; they are plain values
	that serialize to and from discriminated records.
*/

package course

import (
	"strings"
	"time"
)

// Kind distinguishes a downloadable binary file from a named hyperlink
// resource. Both share the File shape.
type Kind string

const (
	// KindFile is a binary resource that is downloaded byte for byte.
	KindFile Kind = "file"

	// KindURL is a named hyperlink that is stored as a shortcut record.
	KindURL Kind = "url"
)

// Course is the root of a crawled entity tree. It's identified by its URL.
type Course struct {
	URL      string
	Name     string
	Sections []*Section
}

// Section groups the content of a course page between two section markers.
type Section struct {
	URL         string
	Name        string
	Files       []*File
	Folders     []*Folder
	Assignments []*Assignment
}

// Folder is a named collection of files. Every file in a folder is also
// referenced by the owning section's Files list.
type Folder struct {
	URL        string
	Name       string
	Files      []*File
	Subfolders []*Folder
}

// File is a downloadable resource. URL is the identity key used for
// de-duplication against the ledger.
type File struct {
	Kind Kind
	URL  string
	Name string

	// Path is the directory (relative to the sync root) the file belongs
	// under, composed as Section[/Folder] and later prefixed with the
	// course name.
	Path string

	// DownloadPath is only set after a successful download.
	DownloadPath string
}

// Assignment is a graded task attached to a section.
type Assignment struct {
	URL         string
	Name        string
	Description string
	Submitted   bool
	DueDate     time.Time
}

// NewCourse returns a course with an empty section list. The name is
// sanitized for use as a directory name.
func NewCourse(url, name string) *Course {
	return &Course{
		URL:      url,
		Name:     SanitizeName(name),
		Sections: make([]*Section, 0),
	}
}

// NewSection returns a section with freshly allocated content lists.
func NewSection(url, name string) *Section {
	return &Section{
		URL:         url,
		Name:        SanitizeName(name),
		Files:       make([]*File, 0),
		Folders:     make([]*Folder, 0),
		Assignments: make([]*Assignment, 0),
	}
}

// NewFolder returns a folder with freshly allocated file and subfolder lists.
func NewFolder(url, name string) *Folder {
	return &Folder{
		URL:        url,
		Name:       SanitizeName(name),
		Files:      make([]*File, 0),
		Subfolders: make([]*Folder, 0),
	}
}

// NewFile returns a file of the given kind located under path.
func NewFile(kind Kind, url, name, path string) *File {
	return &File{
		Kind: kind,
		URL:  url,
		Name: SanitizeName(name),
		Path: path,
	}
}

// NewAssignment returns an assignment whose status has not been fetched yet.
func NewAssignment(url, name string) *Assignment {
	return &Assignment{
		URL:  url,
		Name: SanitizeName(name),
	}
}

// Files returns every file and url of the course in section order.
func (c *Course) Files() []*File {
	var files []*File
	for _, s := range c.Sections {
		files = append(files, s.Files...)
	}

	return files
}

// Clone returns a copy of the file that shares no state with the original.
func (f *File) Clone() *File {
	clone := *f

	return &clone
}

// CourseName returns the first segment of the file path. For files that
// went through reconciliation this is the name of the owning course.
func (f *File) CourseName() string {
	name, _, _ := strings.Cut(f.Path, "/")

	return name
}
