package wkt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrInvalidDuration = errors.New("invalid duration")
)

// Duration is a signed span of time encoded in JSON as decimal seconds with
// an "s" suffix, for example "3s" or "1.500s".
type Duration struct {
	time.Duration
}

// NewDuration wraps d.
func NewDuration(d time.Duration) *Duration {
	return &Duration{Duration: d}
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// String renders the duration in its wire form.
func (d Duration) String() string {
	nanos := int64(d.Duration)
	sign := ""

	if nanos < 0 {
		sign = "-"
		nanos = -nanos
	}

	seconds := nanos / int64(time.Second)
	frac := nanos % int64(time.Second)

	if frac == 0 {
		return fmt.Sprintf("%s%ds", sign, seconds)
	}

	fraction := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")

	return fmt.Sprintf("%s%d.%ss", sign, seconds, fraction)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw string

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDuration, string(data))
	}

	parsed, err := ParseDuration(raw)
	if err != nil {
		return err
	}

	d.Duration = parsed

	return nil
}

// ParseDuration parses the wire form of a duration.
func ParseDuration(raw string) (time.Duration, error) {
	if !strings.HasSuffix(raw, "s") {
		return 0, fmt.Errorf("%w: missing seconds suffix in %q", ErrInvalidDuration, raw)
	}

	number := strings.TrimSuffix(raw, "s")
	if _, err := strconv.ParseFloat(number, 64); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDuration, err)
	}

	return parsed, nil
}
