package course

import "errors"

var (
	// ErrUnknownEntityType is returned when a record carries a missing or
	// unregistered type tag.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrUnexpectedEntity is returned when a record decodes to an entity of
	// a type that is not allowed at its position.
	ErrUnexpectedEntity = errors.New("unexpected entity type")

	// ErrMalformedRecord is returned when a record field has an unexpected shape.
	ErrMalformedRecord = errors.New("malformed record")
)
