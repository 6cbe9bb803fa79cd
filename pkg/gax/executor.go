package gax

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

// Static errors for err113 compliance.
var (
	ErrNoCredentialProvider = errors.New("no credential provider configured")
	ErrNoTransport          = errors.New("no transport configured")
)

// Executor performs calls for generated service clients. It is safe for
// concurrent use; the only state shared between calls is the credential
// provider. It does not log, retry or cache.
type Executor struct {
	endpoint    string
	credentials CredentialProvider
	transport   Transport
}

// NewExecutor creates an executor bound to a service endpoint such as
// "https://secretmanager.googleapis.com".
func NewExecutor(endpoint string, credentials CredentialProvider, transport Transport) *Executor {
	return &Executor{
		endpoint:    endpoint,
		credentials: credentials,
		transport:   transport,
	}
}

// Endpoint returns the service endpoint.
func (e *Executor) Endpoint() string {
	return e.endpoint
}

// Execute sends req with an optional JSON body and decodes a 2xx response
// into O. Failures come back as *Error:
//   - KindAuthentication when no token could be obtained (nothing is sent),
//   - KindSerialization when the body cannot be encoded (nothing is sent) or
//     a 2xx response cannot be decoded,
//   - KindIO when no response was received, including cancellation,
//   - KindHTTP for any non-2xx status,
//   - KindOther for request descriptions that cannot be rendered.
func Execute[O any](ctx context.Context, exec *Executor, req Request, body any) (*O, error) {
	if exec.credentials == nil {
		return nil, NewAuthenticationError(ErrNoCredentialProvider)
	}

	if exec.transport == nil {
		return nil, NewOtherError(ErrNoTransport)
	}

	token, err := exec.credentials.AccessToken(ctx)
	if err != nil {
		return nil, NewAuthenticationError(err)
	}

	target, err := req.URL(exec.endpoint)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token.Value)
	headers.Set("Accept", "application/json")

	var payload []byte

	if !isAbsent(body) {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, NewSerializationError(fmt.Errorf("encoding request body: %w", err))
		}

		headers.Set("Content-Type", "application/json")
	}

	resp, err := exec.transport.Send(ctx, &TransportRequest{
		Method:  req.Method(),
		URL:     target,
		Headers: headers,
		Body:    payload,
	})
	if err != nil {
		return nil, NewIOError(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewHTTPErrorResult(Classify(resp.StatusCode, resp.Headers, resp.Body))
	}

	data := resp.Body
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	var out O

	err = json.Unmarshal(data, &out)
	if err != nil {
		return nil, NewSerializationError(fmt.Errorf("decoding response: %w", err))
	}

	return &out, nil
}

func isAbsent(body any) bool {
	if body == nil {
		return true
	}

	rv := reflect.ValueOf(body)

	//nolint:exhaustive // only nillable kinds matter here
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
