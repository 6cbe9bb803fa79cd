package gax

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPError describes a response received with a non-success status.
type HTTPError struct {
	StatusCode int
	// Headers holds every header received; lookups are case-insensitive.
	Headers http.Header
	// Body is a private copy of the raw response body, possibly empty.
	Body []byte
	// Details are the recognized records from the error envelope, in wire order.
	Details []Detail
	// Status and Message come from the envelope when the server sent one.
	Status  string
	Message string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	text := e.Message
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}

	if e.Status != "" {
		return fmt.Sprintf("http error %d (%s): %s", e.StatusCode, e.Status, text)
	}

	return fmt.Sprintf("http error %d: %s", e.StatusCode, text)
}

// RetryDelay returns the first RetryInfo delay, if the server sent one. The
// value is advice only; nothing in this package waits on it.
func (e *HTTPError) RetryDelay() (time.Duration, bool) {
	for _, info := range DetailsOf[RetryInfo](e.Details) {
		if info.RetryDelay != nil {
			return info.RetryDelay.Duration, true
		}
	}

	return 0, false
}

// ErrorInfo returns the first ErrorInfo detail.
func (e *HTTPError) ErrorInfo() (ErrorInfo, bool) {
	infos := DetailsOf[ErrorInfo](e.Details)
	if len(infos) == 0 {
		return ErrorInfo{}, false
	}

	return infos[0], true
}
