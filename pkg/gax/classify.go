package gax

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

const detailTypePrefix = "google.rpc."

type errorEnvelope struct {
	Error *struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Status  string            `json:"status"`
		Details []json.RawMessage `json:"details"`
	} `json:"error"`
}

type detailHeader struct {
	Type string `json:"@type"`
}

// Classify turns a non-success response into an HTTPError. It never fails:
// an empty or unparsable body yields an error without details, and detail
// elements of unknown type or malformed content are skipped.
func Classify(status int, headers http.Header, body []byte) *HTTPError {
	httpErr := &HTTPError{
		StatusCode: status,
		Headers:    headers.Clone(),
		Body:       bytes.Clone(body),
	}

	if httpErr.Headers == nil {
		httpErr.Headers = http.Header{}
	}

	if httpErr.Body == nil {
		httpErr.Body = []byte{}
	}

	var envelope errorEnvelope

	err := json.Unmarshal(body, &envelope)
	if err != nil || envelope.Error == nil {
		return httpErr
	}

	httpErr.Status = envelope.Error.Status
	httpErr.Message = envelope.Error.Message

	for _, raw := range envelope.Error.Details {
		detail, ok := parseDetail(raw)
		if ok {
			httpErr.Details = append(httpErr.Details, detail)
		}
	}

	return httpErr
}

func parseDetail(raw json.RawMessage) (Detail, bool) {
	var header detailHeader

	err := json.Unmarshal(raw, &header)
	if err != nil {
		return nil, false
	}

	switch detailKindFromType(header.Type) {
	case DetailErrorInfo:
		return decodeDetail[ErrorInfo](raw)
	case DetailRetryInfo:
		return decodeDetail[RetryInfo](raw)
	case DetailDebugInfo:
		return decodeDetail[DebugInfo](raw)
	case DetailQuotaFailure:
		return decodeDetail[QuotaFailure](raw)
	case DetailPreconditionFailure:
		return decodeDetail[PreconditionFailure](raw)
	case DetailBadRequest:
		return decodeDetail[BadRequest](raw)
	case DetailRequestInfo:
		return decodeDetail[RequestInfo](raw)
	case DetailResourceInfo:
		return decodeDetail[ResourceInfo](raw)
	case DetailHelp:
		return decodeDetail[Help](raw)
	case DetailLocalizedMessage:
		return decodeDetail[LocalizedMessage](raw)
	default:
		return nil, false
	}
}

func decodeDetail[T Detail](raw json.RawMessage) (Detail, bool) {
	var detail T

	err := json.Unmarshal(raw, &detail)
	if err != nil {
		return nil, false
	}

	return detail, true
}

// detailKindFromType maps "type.googleapis.com/google.rpc.QuotaFailure" (or
// the bare "google.rpc.QuotaFailure") to its kind; zero means unknown.
func detailKindFromType(typeURL string) DetailKind {
	name := typeURL
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	if !strings.HasPrefix(name, detailTypePrefix) {
		return 0
	}

	name = strings.TrimPrefix(name, detailTypePrefix)

	for kind := DetailErrorInfo; kind <= DetailLocalizedMessage; kind++ {
		if kind.String() == name {
			return kind
		}
	}

	return 0
}
