package ledger

import "errors"

var (
	// ErrInvalidFile is returned when appending a file without a URL or
	// with an unknown kind.
	ErrInvalidFile = errors.New("invalid ledger file")

	// ErrCorrupted is returned when persisted ledger entries can't be
	// decoded.
	ErrCorrupted = errors.New("corrupted ledger")
)
