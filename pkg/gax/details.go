package gax

import "github.com/fivetwenty-io/cloudrest/pkg/wkt"

// DetailKind names one of the known structured error detail records.
type DetailKind int

// Detail kinds.
const (
	DetailErrorInfo DetailKind = iota + 1
	DetailRetryInfo
	DetailDebugInfo
	DetailQuotaFailure
	DetailPreconditionFailure
	DetailBadRequest
	DetailRequestInfo
	DetailResourceInfo
	DetailHelp
	DetailLocalizedMessage
)

// String returns the record name used in the wire type URL.
func (k DetailKind) String() string {
	switch k {
	case DetailErrorInfo:
		return "ErrorInfo"
	case DetailRetryInfo:
		return "RetryInfo"
	case DetailDebugInfo:
		return "DebugInfo"
	case DetailQuotaFailure:
		return "QuotaFailure"
	case DetailPreconditionFailure:
		return "PreconditionFailure"
	case DetailBadRequest:
		return "BadRequest"
	case DetailRequestInfo:
		return "RequestInfo"
	case DetailResourceInfo:
		return "ResourceInfo"
	case DetailHelp:
		return "Help"
	case DetailLocalizedMessage:
		return "LocalizedMessage"
	default:
		return "Unknown"
	}
}

// Detail is one typed record attached to an error response. The set of
// implementations is closed; switch on the concrete type or on Kind.
type Detail interface {
	Kind() DetailKind
	isDetail()
}

// ErrorInfo describes the cause of the error with structured details.
type ErrorInfo struct {
	// Reason is an UPPER_SNAKE_CASE constant unique within Domain.
	Reason string `json:"reason,omitempty"`
	// Domain is the logical grouping of Reason, typically a service name.
	Domain   string            `json:"domain,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RetryInfo advises how long to wait before retrying the same request.
type RetryInfo struct {
	RetryDelay *wkt.Duration `json:"retryDelay,omitempty"`
}

// DebugInfo carries server debugging data. Never base control flow on it.
type DebugInfo struct {
	StackEntries []string `json:"stackEntries,omitempty"`
	Detail       string   `json:"detail,omitempty"`
}

// QuotaFailure describes how a quota check failed.
type QuotaFailure struct {
	Violations []QuotaViolation `json:"violations,omitempty"`
}

// QuotaViolation is a single exceeded quota.
type QuotaViolation struct {
	// Subject is e.g. "project:<id>" or "clientip:<address>".
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
}

// PreconditionFailure describes what preconditions have failed.
type PreconditionFailure struct {
	Violations []PreconditionViolation `json:"violations,omitempty"`
}

// PreconditionViolation is a single failed precondition.
type PreconditionViolation struct {
	// Type is service specific, e.g. "TOS".
	Type        string `json:"type,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
}

// BadRequest describes syntactic violations in a client request.
type BadRequest struct {
	FieldViolations []FieldViolation `json:"fieldViolations,omitempty"`
}

// FieldViolation names one bad request field.
type FieldViolation struct {
	// Field is a dotted path such as "emailAddresses[1].email".
	Field       string `json:"field,omitempty"`
	Description string `json:"description,omitempty"`
}

// RequestInfo identifies the request for bug reports.
type RequestInfo struct {
	RequestID   string `json:"requestId,omitempty"`
	ServingData string `json:"servingData,omitempty"`
}

// ResourceInfo describes the resource being accessed.
type ResourceInfo struct {
	ResourceType string `json:"resourceType,omitempty"`
	ResourceName string `json:"resourceName,omitempty"`
	Owner        string `json:"owner,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Help links to documentation or out of band actions.
type Help struct {
	Links []HelpLink `json:"links,omitempty"`
}

// HelpLink is a described URL.
type HelpLink struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// LocalizedMessage is an error message safe to show the user.
type LocalizedMessage struct {
	// Locale is a BCP 47 tag such as "en-US".
	Locale  string `json:"locale,omitempty"`
	Message string `json:"message,omitempty"`
}

func (ErrorInfo) Kind() DetailKind           { return DetailErrorInfo }
func (RetryInfo) Kind() DetailKind           { return DetailRetryInfo }
func (DebugInfo) Kind() DetailKind           { return DetailDebugInfo }
func (QuotaFailure) Kind() DetailKind        { return DetailQuotaFailure }
func (PreconditionFailure) Kind() DetailKind { return DetailPreconditionFailure }
func (BadRequest) Kind() DetailKind          { return DetailBadRequest }
func (RequestInfo) Kind() DetailKind         { return DetailRequestInfo }
func (ResourceInfo) Kind() DetailKind        { return DetailResourceInfo }
func (Help) Kind() DetailKind                { return DetailHelp }
func (LocalizedMessage) Kind() DetailKind    { return DetailLocalizedMessage }

func (ErrorInfo) isDetail()           {}
func (RetryInfo) isDetail()           {}
func (DebugInfo) isDetail()           {}
func (QuotaFailure) isDetail()        {}
func (PreconditionFailure) isDetail() {}
func (BadRequest) isDetail()          {}
func (RequestInfo) isDetail()         {}
func (ResourceInfo) isDetail()        {}
func (Help) isDetail()                {}
func (LocalizedMessage) isDetail()    {}

// DetailsOf returns the details of type T, in their original order.
func DetailsOf[T Detail](details []Detail) []T {
	var matched []T

	for _, detail := range details {
		if typed, ok := detail.(T); ok {
			matched = append(matched, typed)
		}
	}

	return matched
}
