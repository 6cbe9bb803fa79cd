package wkt

import (
	"encoding/json"
	"strings"
)

// FieldMask lists the field paths an update operation should modify. Its
// JSON form is a single comma-separated string of camelCase paths.
type FieldMask struct {
	Paths []string
}

// NewFieldMask builds a mask from paths.
func NewFieldMask(paths ...string) *FieldMask {
	return &FieldMask{Paths: paths}
}

// MarshalJSON implements json.Marshaler.
func (m FieldMask) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.Join(m.Paths, ","))
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *FieldMask) UnmarshalJSON(data []byte) error {
	var joined string

	err := json.Unmarshal(data, &joined)
	if err != nil {
		return err
	}

	m.Paths = nil

	for _, path := range strings.Split(joined, ",") {
		if path = strings.TrimSpace(path); path != "" {
			m.Paths = append(m.Paths, path)
		}
	}

	return nil
}
