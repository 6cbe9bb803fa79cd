package gax

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind discriminates the variants of Error.
type ErrorKind int

// Error kinds. Consumers switching on Kind must handle KindUnknown, which is
// what any kind added in a later release looks like to older code.
const (
	KindUnknown ErrorKind = iota
	KindIO
	KindSerialization
	KindAuthentication
	KindHTTP
	KindOther
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindSerialization:
		return "serialization"
	case KindAuthentication:
		return "authentication"
	case KindHTTP:
		return "http"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Kind sentinels, matched by errors.Is against any *Error of that kind.
// Static errors for err113 compliance.
var (
	ErrIO             = errors.New("io error")
	ErrSerialization  = errors.New("serialization error")
	ErrAuthentication = errors.New("authentication error")
	ErrHTTP           = errors.New("http error")
	ErrOther          = errors.New("other error")
)

// Error is the single error type returned by the executor. Exactly one
// payload is meaningful: HTTP when Kind is KindHTTP, Err otherwise.
type Error struct {
	Kind ErrorKind
	HTTP *HTTPError
	Err  error
}

// NewIOError wraps a transport-level failure.
func NewIOError(err error) *Error {
	return &Error{Kind: KindIO, Err: err}
}

// NewSerializationError wraps a body encoding or decoding failure.
func NewSerializationError(err error) *Error {
	return &Error{Kind: KindSerialization, Err: err}
}

// NewAuthenticationError wraps a credential acquisition failure.
func NewAuthenticationError(err error) *Error {
	return &Error{Kind: KindAuthentication, Err: err}
}

// NewOtherError wraps any failure not otherwise classified.
func NewOtherError(err error) *Error {
	return &Error{Kind: KindOther, Err: err}
}

// NewHTTPErrorResult wraps a classified non-success response.
func NewHTTPErrorResult(httpErr *HTTPError) *Error {
	return &Error{Kind: KindHTTP, HTTP: httpErr}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindHTTP && e.HTTP != nil {
		return e.HTTP.Error()
	}

	if e.Err == nil {
		return e.Kind.String() + " error"
	}

	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

// Unwrap exposes the cause, or the HTTPError for the HTTP variant.
func (e *Error) Unwrap() error {
	if e.Kind == KindHTTP && e.HTTP != nil {
		return e.HTTP
	}

	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrIO:
		return e.Kind == KindIO
	case ErrSerialization:
		return e.Kind == KindSerialization
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrHTTP:
		return e.Kind == KindHTTP
	case ErrOther:
		return e.Kind == KindOther
	default:
		return false
	}
}

// KindOf reports the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	gaxErr := &Error{}
	if errors.As(err, &gaxErr) {
		return gaxErr.Kind
	}

	return KindUnknown
}

// AsHTTPError extracts the HTTPError carried by err.
func AsHTTPError(err error) (*HTTPError, bool) {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr, true
	}

	return nil, false
}

func hasStatus(err error, codes ...int) bool {
	httpErr, ok := AsHTTPError(err)
	if !ok {
		return false
	}

	for _, code := range codes {
		if httpErr.StatusCode == code {
			return true
		}
	}

	return false
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsPermissionDenied checks if the error is a 403 response.
func IsPermissionDenied(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsUnauthenticated checks if the error is a 401 response or a failure to
// obtain credentials.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrAuthentication) || hasStatus(err, http.StatusUnauthorized)
}

// IsRateLimited checks if the error is a 429 response.
func IsRateLimited(err error) bool {
	return hasStatus(err, http.StatusTooManyRequests)
}

// IsRetryable says whether a caller may reasonably try the call again.
// Backoff, including any RetryInfo advice, is still on the caller.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, ErrIO) {
		return true
	}

	return hasStatus(err,
		http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	)
}
