package crawler

import "errors"

// ErrStructuralInconsistency is reported for content links found before
// the first section of a course page. Such links are skipped.
var ErrStructuralInconsistency = errors.New("structural inconsistency")
