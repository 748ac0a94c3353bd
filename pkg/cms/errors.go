package cms

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by slug lookups that match nothing. It is a
// normal outcome, not a transport failure; callers render it as a
// not-found page.
var ErrNotFound = errors.New("cms: not found")

// FetchError is a non-2xx response from the CMS. The body is kept
// verbatim so the failure can be logged with whatever the backend said.
type FetchError struct {
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("cms: unexpected status %d: %s", e.Status, e.Body)
}
