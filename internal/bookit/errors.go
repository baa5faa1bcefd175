package bookit

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when a fetch succeeds but the payload is unusable.
var ErrNoData = errors.New("bookit: no data")

// APIError is a non-2xx response from the API.
type APIError struct {
	Status int
	Body   string

	raw []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bookit API returned %d: %s", e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
