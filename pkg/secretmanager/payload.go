package secretmanager

import (
	"errors"
	"fmt"
	"hash/crc32"
)

// Static errors for err113 compliance.
var (
	ErrChecksumMismatch = errors.New("payload checksum mismatch")
	ErrNoPayload        = errors.New("response carries no payload")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// NewPayload wraps data with its CRC32C checksum so the server can verify
// what it stores.
func NewPayload(data []byte) *SecretPayload {
	checksum := int64(crc32.Checksum(data, castagnoli))

	return &SecretPayload{Data: data, DataCrc32c: &checksum}
}

// Verify checks Data against DataCrc32c. A payload without a checksum
// passes.
func (p *SecretPayload) Verify() error {
	if p.DataCrc32c == nil {
		return nil
	}

	got := int64(crc32.Checksum(p.Data, castagnoli))
	if got != *p.DataCrc32c {
		return fmt.Errorf("%w: got %d, want %d", ErrChecksumMismatch, got, *p.DataCrc32c)
	}

	return nil
}

// Data returns the verified payload bytes of an access response.
func (r *AccessSecretVersionResponse) Data() ([]byte, error) {
	if r.Payload == nil {
		return nil, ErrNoPayload
	}

	err := r.Payload.Verify()
	if err != nil {
		return nil, err
	}

	return r.Payload.Data, nil
}
