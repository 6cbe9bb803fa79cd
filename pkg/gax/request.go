package gax

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrMissingPathParameter  = errors.New("missing required path parameter")
	ErrMissingRequiredField  = errors.New("missing required field")
	ErrUnsupportedQueryValue = errors.New("unsupported query parameter value")
	ErrInvalidEndpoint       = errors.New("invalid endpoint")
)

var jsonMarshalerType = reflect.TypeFor[json.Marshaler]()

// Request describes one call before it is sent. It is a value: every With*
// method returns a new Request and leaves the receiver untouched.
type Request struct {
	method string
	path   string
	query  url.Values
}

// NewRequest starts a request description. Every request asks for JSON.
func NewRequest(method, path string) Request {
	return Request{
		method: method,
		path:   path,
		query:  url.Values{"alt": []string{"json"}},
	}
}

// Method returns the HTTP method.
func (r Request) Method() string {
	return r.method
}

// Path returns the path relative to the service endpoint.
func (r Request) Path() string {
	return r.path
}

// Query returns a copy of the encoded query parameters.
func (r Request) Query() url.Values {
	return cloneValues(r.query)
}

// WithQuery encodes value under name. Absent values (nil, nil pointers, and
// zero scalars) leave the request unchanged; pointers mark explicit presence,
// so a non-nil pointer to a zero scalar is sent. Structured values are first
// serialized to JSON: strings, numbers and booleans are sent as text, arrays
// as repeated parameters and objects as dotted names. Encoding the same name
// again replaces the earlier entries.
func (r Request) WithQuery(name string, value any) (Request, error) {
	encoded, err := encodeQueryValue(name, value)
	if err != nil {
		return r, err
	}

	if len(encoded) == 0 {
		return r, nil
	}

	next := r
	next.query = cloneValues(r.query)

	for key, values := range encoded {
		next.query[key] = values
	}

	return next, nil
}

// QueryParam is one name/value pair for WithQueryParams.
type QueryParam struct {
	Name  string
	Value any
}

// WithQueryParams applies WithQuery to each parameter in order and stops at
// the first failure.
func (r Request) WithQueryParams(params ...QueryParam) (Request, error) {
	next := r

	for _, param := range params {
		var err error

		next, err = next.WithQuery(param.Name, param.Value)
		if err != nil {
			return r, err
		}
	}

	return next, nil
}

// URL renders the request against endpoint. Query keys are sorted, so the
// same request always renders the same URL.
func (r Request) URL(endpoint string) (string, error) {
	base, err := url.Parse(endpoint)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", NewOtherError(fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint))
	}

	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(r.path, "/")
	base.RawPath = ""
	base.RawQuery = r.query.Encode()

	return base.String(), nil
}

// PathParam checks that a path parameter is set.
func PathParam(field, value string) (string, error) {
	if value == "" {
		return "", NewOtherError(fmt.Errorf("%w: %s", ErrMissingPathParameter, field))
	}

	return value, nil
}

// RequiredField checks that a nested message a path depends on is set.
func RequiredField[T any](value *T, field string) (*T, error) {
	if value == nil {
		return nil, NewOtherError(fmt.Errorf("%w: %s", ErrMissingRequiredField, field))
	}

	return value, nil
}

func encodeQueryValue(name string, value any) (url.Values, error) {
	encoded := url.Values{}

	if value == nil {
		return encoded, nil
	}

	rv := reflect.ValueOf(value)
	explicit := false

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return encoded, nil
		}

		rv = rv.Elem()
		explicit = true
	}

	if rv.Type().Implements(jsonMarshalerType) || reflect.PointerTo(rv.Type()).Implements(jsonMarshalerType) {
		return encodeStructured(name, rv, encoded)
	}

	//nolint:exhaustive // remaining kinds are structured or unsupported
	switch rv.Kind() {
	case reflect.String:
		if rv.String() != "" || explicit {
			encoded.Set(name, rv.String())
		}
	case reflect.Bool:
		if rv.Bool() || explicit {
			encoded.Set(name, strconv.FormatBool(rv.Bool()))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() != 0 || explicit {
			encoded.Set(name, strconv.FormatInt(rv.Int(), 10))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() != 0 || explicit {
			encoded.Set(name, strconv.FormatUint(rv.Uint(), 10))
		}
	case reflect.Float32, reflect.Float64:
		if rv.Float() != 0 || explicit {
			encoded.Set(name, strconv.FormatFloat(rv.Float(), 'g', -1, rv.Type().Bits()))
		}
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return encodeStructured(name, rv, encoded)
	default:
		return nil, NewOtherError(fmt.Errorf("%w: %s has type %s", ErrUnsupportedQueryValue, name, rv.Type()))
	}

	return encoded, nil
}

func encodeStructured(name string, rv reflect.Value, encoded url.Values) (url.Values, error) {
	data, err := json.Marshal(rv.Interface())
	if err != nil {
		return nil, NewSerializationError(fmt.Errorf("encoding query parameter %s: %w", name, err))
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var decoded any

	err = decoder.Decode(&decoded)
	if err != nil {
		return nil, NewSerializationError(fmt.Errorf("encoding query parameter %s: %w", name, err))
	}

	flattenJSON(encoded, name, decoded)

	return encoded, nil
}

func flattenJSON(encoded url.Values, name string, value any) {
	switch typed := value.(type) {
	case nil:
	case string:
		if typed != "" {
			encoded.Add(name, typed)
		}
	case json.Number:
		encoded.Add(name, typed.String())
	case bool:
		encoded.Add(name, strconv.FormatBool(typed))
	case []any:
		for _, element := range typed {
			switch element.(type) {
			case map[string]any, []any:
				data, _ := json.Marshal(element)
				encoded.Add(name, string(data))
			default:
				flattenJSON(encoded, name, element)
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			flattenJSON(encoded, name+"."+key, typed[key])
		}
	}
}

func cloneValues(values url.Values) url.Values {
	cloned := make(url.Values, len(values))
	for key, vals := range values {
		cloned[key] = append([]string(nil), vals...)
	}

	return cloned
}
