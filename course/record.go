package course

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Record type tags.
const (
	TypeCourse     = "course"
	TypeSection    = "section"
	TypeFolder     = "folder"
	TypeFile       = "file"
	TypeURL        = "url"
	TypeAssignment = "assignment"
)

// typeKey is the discriminator field present in every record.
const typeKey = "type"

// dueDateLayout is the layout used to store assignment due dates in records.
const dueDateLayout = time.RFC3339Nano

// Record is the flat mapping representation of an entity. It contains a
// "type" discriminator so heterogeneous record lists can be decoded without
// external type hints.
type Record map[string]interface{}

// Entity is implemented by every type of the entity tree.
type Entity interface {
	recordType() string
}

func (*Course) recordType() string     { return TypeCourse }
func (*Section) recordType() string    { return TypeSection }
func (*Folder) recordType() string     { return TypeFolder }
func (*Assignment) recordType() string { return TypeAssignment }

func (f *File) recordType() string {
	if f.Kind == KindURL {
		return TypeURL
	}

	return TypeFile
}

type decodeFunc func(Record) (Entity, error)

// decoders maps a record type tag to its decoder.
var decoders = make(map[string]decodeFunc)

func register(tag string, fn decodeFunc) {
	if _, exists := decoders[tag]; exists {
		panic(fmt.Sprintf("course: decoder for record type %q registered twice", tag))
	}

	decoders[tag] = fn
}

func init() {
	register(TypeCourse, decodeCourse)
	register(TypeSection, decodeSection)
	register(TypeFolder, decodeFolder)
	register(TypeFile, decodeFileOfKind(KindFile))
	register(TypeURL, decodeFileOfKind(KindURL))
	register(TypeAssignment, decodeAssignment)
}

// ToRecord converts an entity and all of its children into records.
func ToRecord(e Entity) Record {
	switch v := e.(type) {
	case *Course:
		sections := make([]Record, 0, len(v.Sections))
		for _, s := range v.Sections {
			sections = append(sections, ToRecord(s))
		}

		return Record{
			typeKey:    TypeCourse,
			"url":      v.URL,
			"name":     v.Name,
			"sections": sections,
		}
	case *Section:
		return Record{
			typeKey:       TypeSection,
			"url":         v.URL,
			"name":        v.Name,
			"files":       toRecords(v.Files),
			"folders":     toRecords(v.Folders),
			"assignments": toRecords(v.Assignments),
		}
	case *Folder:
		return Record{
			typeKey:      TypeFolder,
			"url":        v.URL,
			"name":       v.Name,
			"files":      toRecords(v.Files),
			"subfolders": toRecords(v.Subfolders),
		}
	case *File:
		rec := Record{
			typeKey: v.recordType(),
			"url":   v.URL,
			"name":  v.Name,
			"path":  v.Path,
		}
		if v.DownloadPath != "" {
			rec["download_path"] = v.DownloadPath
		}

		return rec
	case *Assignment:
		rec := Record{
			typeKey:       TypeAssignment,
			"url":         v.URL,
			"name":        v.Name,
			"description": v.Description,
			"submitted":   v.Submitted,
		}
		if !v.DueDate.IsZero() {
			rec["due_date"] = v.DueDate.UTC().Format(dueDateLayout)
		}

		return rec
	default:
		panic(fmt.Sprintf("course: unsupported entity type %T", e))
	}
}

func toRecords[T Entity](entities []T) []Record {
	records := make([]Record, 0, len(entities))
	for _, e := range entities {
		records = append(records, ToRecord(e))
	}

	return records
}

// FromRecord reconstructs an entity from its record. Unknown or missing type
// tags fail with ErrUnknownEntityType. Names are restored as stored, they are
// never sanitized again.
func FromRecord(rec Record) (Entity, error) {
	tag, _ := rec[typeKey].(string)
	decode, exists := decoders[tag]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, tag)
	}

	return decode(rec)
}

// FileFromRecord decodes a file or url record.
func FileFromRecord(rec Record) (*File, error) {
	e, err := FromRecord(rec)
	if err != nil {
		return nil, err
	}

	f, ok := e.(*File)
	if !ok {
		return nil, fmt.Errorf("%w: expected file or url, got %q", ErrUnexpectedEntity, e.recordType())
	}

	return f, nil
}

type scalarFields struct {
	URL          string    `mapstructure:"url"`
	Name         string    `mapstructure:"name"`
	Path         string    `mapstructure:"path"`
	DownloadPath string    `mapstructure:"download_path"`
	Description  string    `mapstructure:"description"`
	Submitted    bool      `mapstructure:"submitted"`
	DueDate      time.Time `mapstructure:"due_date"`
}

func decodeScalars(rec Record) (scalarFields, error) {
	var fields scalarFields

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeHookFunc(dueDateLayout),
		Result:     &fields,
	})
	if err != nil {
		return fields, err
	}

	// Child lists are decoded separately.
	flat := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		if k == typeKey {
			continue
		}
		if kind := reflect.ValueOf(v).Kind(); kind == reflect.Slice || kind == reflect.Map {
			continue
		}

		flat[k] = v
	}

	if err := decoder.Decode(flat); err != nil {
		return fields, fmt.Errorf("decode %v record: %w", rec[typeKey], err)
	}

	return fields, nil
}

func decodeCourse(rec Record) (Entity, error) {
	fields, err := decodeScalars(rec)
	if err != nil {
		return nil, err
	}

	sections, err := decodeChildren[*Section](rec, "sections")
	if err != nil {
		return nil, err
	}

	return &Course{URL: fields.URL, Name: fields.Name, Sections: sections}, nil
}

func decodeSection(rec Record) (Entity, error) {
	fields, err := decodeScalars(rec)
	if err != nil {
		return nil, err
	}

	s := &Section{URL: fields.URL, Name: fields.Name}
	if s.Files, err = decodeChildren[*File](rec, "files"); err != nil {
		return nil, err
	}
	if s.Folders, err = decodeChildren[*Folder](rec, "folders"); err != nil {
		return nil, err
	}
	if s.Assignments, err = decodeChildren[*Assignment](rec, "assignments"); err != nil {
		return nil, err
	}

	// Restore the shared references between folder and section files.
	byURL := make(map[string]*File, len(s.Files))
	for _, f := range s.Files {
		byURL[f.URL] = f
	}
	relinkFolderFiles(s.Folders, byURL)

	return s, nil
}

func relinkFolderFiles(folders []*Folder, byURL map[string]*File) {
	for _, folder := range folders {
		for i, f := range folder.Files {
			if shared, exists := byURL[f.URL]; exists && *shared == *f {
				folder.Files[i] = shared
			}
		}

		relinkFolderFiles(folder.Subfolders, byURL)
	}
}

func decodeFolder(rec Record) (Entity, error) {
	fields, err := decodeScalars(rec)
	if err != nil {
		return nil, err
	}

	folder := &Folder{URL: fields.URL, Name: fields.Name}
	if folder.Files, err = decodeChildren[*File](rec, "files"); err != nil {
		return nil, err
	}
	if folder.Subfolders, err = decodeChildren[*Folder](rec, "subfolders"); err != nil {
		return nil, err
	}

	return folder, nil
}

func decodeFileOfKind(kind Kind) decodeFunc {
	return func(rec Record) (Entity, error) {
		fields, err := decodeScalars(rec)
		if err != nil {
			return nil, err
		}

		return &File{
			Kind:         kind,
			URL:          fields.URL,
			Name:         fields.Name,
			Path:         fields.Path,
			DownloadPath: fields.DownloadPath,
		}, nil
	}
}

func decodeAssignment(rec Record) (Entity, error) {
	fields, err := decodeScalars(rec)
	if err != nil {
		return nil, err
	}

	return &Assignment{
		URL:         fields.URL,
		Name:        fields.Name,
		Description: fields.Description,
		Submitted:   fields.Submitted,
		DueDate:     fields.DueDate,
	}, nil
}

// decodeChildren decodes the child list stored under key. Lists built in
// memory are []Record while lists decoded from JSON are []interface{}.
func decodeChildren[T Entity](rec Record, key string) ([]T, error) {
	var children []Record

	switch v := rec[key].(type) {
	case nil:
	case []Record:
		children = v
	case []interface{}:
		children = make([]Record, 0, len(v))
		for _, item := range v {
			switch child := item.(type) {
			case Record:
				children = append(children, child)
			case map[string]interface{}:
				children = append(children, Record(child))
			default:
				return nil, fmt.Errorf("%w: %q contains a %T", ErrMalformedRecord, key, item)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q is a %T", ErrMalformedRecord, key, v)
	}

	out := make([]T, 0, len(children))
	for _, child := range children {
		e, err := FromRecord(child)
		if err != nil {
			return nil, err
		}

		typed, ok := e.(T)
		if !ok {
			return nil, fmt.Errorf("%w: %q contains a %q record", ErrUnexpectedEntity, key, e.recordType())
		}

		out = append(out, typed)
	}

	return out, nil
}
