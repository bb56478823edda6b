package markup

import "errors"

// ErrMalformedMarkup is returned when a page can't be parsed or lacks the
// structure a parser expects.
var ErrMalformedMarkup = errors.New("malformed markup")
