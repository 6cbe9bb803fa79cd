package secretmanager

import (
	"time"

	"github.com/fivetwenty-io/cloudrest/pkg/wkt"
)

// SecretVersionState is the lifecycle state of a version.
type SecretVersionState string

// SecretVersionState values.
const (
	StateUnspecified SecretVersionState = "STATE_UNSPECIFIED"
	StateEnabled     SecretVersionState = "ENABLED"
	StateDisabled    SecretVersionState = "DISABLED"
	StateDestroyed   SecretVersionState = "DESTROYED"
)

// Secret is a logical secret whose value and versions can be accessed.
type Secret struct {
	Name                      string                     `json:"name,omitempty"`
	Replication               *Replication               `json:"replication,omitempty"`
	CreateTime                time.Time                  `json:"createTime,omitzero"`
	Labels                    map[string]string          `json:"labels,omitempty"`
	Topics                    []Topic                    `json:"topics,omitempty"`
	ExpireTime                time.Time                  `json:"expireTime,omitzero"`
	TTL                       *wkt.Duration              `json:"ttl,omitempty"`
	Etag                      string                     `json:"etag,omitempty"`
	Rotation                  *Rotation                  `json:"rotation,omitempty"`
	VersionAliases            map[string]wkt.Int64       `json:"versionAliases,omitempty"`
	Annotations               map[string]string          `json:"annotations,omitempty"`
	VersionDestroyTTL         *wkt.Duration              `json:"versionDestroyTtl,omitempty"`
	CustomerManagedEncryption *CustomerManagedEncryption `json:"customerManagedEncryption,omitempty"`
}

// Replication sets where a secret's payloads are stored. Exactly one of
// Automatic and UserManaged is set.
type Replication struct {
	Automatic   *AutomaticReplication   `json:"automatic,omitempty"`
	UserManaged *UserManagedReplication `json:"userManaged,omitempty"`
}

// AutomaticReplication replicates payloads without location restrictions.
type AutomaticReplication struct {
	CustomerManagedEncryption *CustomerManagedEncryption `json:"customerManagedEncryption,omitempty"`
}

// UserManagedReplication replicates payloads to the listed locations only.
type UserManagedReplication struct {
	Replicas []Replica `json:"replicas,omitempty"`
}

// Replica is one replication location.
type Replica struct {
	Location                  string                     `json:"location,omitempty"`
	CustomerManagedEncryption *CustomerManagedEncryption `json:"customerManagedEncryption,omitempty"`
}

// CustomerManagedEncryption names the Cloud KMS key protecting payloads.
type CustomerManagedEncryption struct {
	KMSKeyName string `json:"kmsKeyName,omitempty"`
}

// Topic is a Pub/Sub topic receiving secret events.
type Topic struct {
	Name string `json:"name,omitempty"`
}

// Rotation schedules rotation notifications.
type Rotation struct {
	NextRotationTime time.Time     `json:"nextRotationTime,omitzero"`
	RotationPeriod   *wkt.Duration `json:"rotationPeriod,omitempty"`
}

// SecretVersion is one immutable payload of a secret.
type SecretVersion struct {
	Name                           string             `json:"name,omitempty"`
	CreateTime                     time.Time          `json:"createTime,omitzero"`
	DestroyTime                    time.Time          `json:"destroyTime,omitzero"`
	State                          SecretVersionState `json:"state,omitempty"`
	Etag                           string             `json:"etag,omitempty"`
	ClientSpecifiedPayloadChecksum bool               `json:"clientSpecifiedPayloadChecksum,omitempty"`
	ScheduledDestroyTime           time.Time          `json:"scheduledDestroyTime,omitzero"`
}

// SecretPayload is the secret data. Data travels base64 encoded; the
// optional CRC32C checksum travels as a decimal string.
type SecretPayload struct {
	Data       []byte `json:"data,omitempty"`
	DataCrc32c *int64 `json:"dataCrc32c,omitempty,string"`
}

// ListSecretsRequest lists secrets under Parent, "projects/{project}".
type ListSecretsRequest struct {
	Parent    string `json:"parent,omitempty"`
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
	Filter    string `json:"filter,omitempty"`
}

// ListSecretsResponse is one page of secrets.
type ListSecretsResponse struct {
	Secrets       []Secret `json:"secrets,omitempty"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
	TotalSize     int32    `json:"totalSize,omitempty"`
}

// CreateSecretRequest creates Secret under Parent with the id SecretID.
type CreateSecretRequest struct {
	Parent   string  `json:"parent,omitempty"`
	SecretID string  `json:"secretId,omitempty"`
	Secret   *Secret `json:"secret,omitempty"`
}

// AddSecretVersionRequest adds a version holding Payload to the secret Parent.
type AddSecretVersionRequest struct {
	Parent  string         `json:"parent,omitempty"`
	Payload *SecretPayload `json:"payload,omitempty"`
}

// GetSecretRequest names a secret.
type GetSecretRequest struct {
	Name string `json:"name,omitempty"`
}

// UpdateSecretRequest updates the fields of Secret listed in UpdateMask.
type UpdateSecretRequest struct {
	Secret     *Secret        `json:"secret,omitempty"`
	UpdateMask *wkt.FieldMask `json:"updateMask,omitempty"`
}

// DeleteSecretRequest deletes a secret. A non-empty Etag must match the
// current one.
type DeleteSecretRequest struct {
	Name string `json:"name,omitempty"`
	Etag string `json:"etag,omitempty"`
}

// ListSecretVersionsRequest lists the versions of the secret Parent.
type ListSecretVersionsRequest struct {
	Parent    string `json:"parent,omitempty"`
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
	Filter    string `json:"filter,omitempty"`
}

// ListSecretVersionsResponse is one page of versions, newest first.
type ListSecretVersionsResponse struct {
	Versions      []SecretVersion `json:"versions,omitempty"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
	TotalSize     int32           `json:"totalSize,omitempty"`
}

// GetSecretVersionRequest names a version. The "latest" alias is accepted.
type GetSecretVersionRequest struct {
	Name string `json:"name,omitempty"`
}

// AccessSecretVersionRequest names a version whose payload to read.
type AccessSecretVersionRequest struct {
	Name string `json:"name,omitempty"`
}

// AccessSecretVersionResponse carries the payload of a version.
type AccessSecretVersionResponse struct {
	Name    string         `json:"name,omitempty"`
	Payload *SecretPayload `json:"payload,omitempty"`
}

// DisableSecretVersionRequest disables a version.
type DisableSecretVersionRequest struct {
	Name string `json:"name,omitempty"`
	Etag string `json:"etag,omitempty"`
}

// EnableSecretVersionRequest enables a version.
type EnableSecretVersionRequest struct {
	Name string `json:"name,omitempty"`
	Etag string `json:"etag,omitempty"`
}

// DestroySecretVersionRequest irrevocably destroys a version's payload.
type DestroySecretVersionRequest struct {
	Name string `json:"name,omitempty"`
	Etag string `json:"etag,omitempty"`
}
