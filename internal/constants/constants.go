package constants

import "time"

// Version is the cloudrest release reported in the User-Agent and by the CLI.
const Version = "0.4.0"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Service endpoints and OAuth defaults.
const (
	// SecretManagerEndpoint is the default Secret Manager endpoint.
	SecretManagerEndpoint = "https://secretmanager.googleapis.com"

	// DefaultTokenURL is the OAuth2 token endpoint used when credentials do not name one.
	DefaultTokenURL = "https://oauth2.googleapis.com/token"

	// CloudPlatformScope is the default OAuth2 scope.
	CloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

	// UserAgentPrefix prefixes the User-Agent header.
	UserAgentPrefix = "cloudrest-go/"
)

// Credential file types.
const (
	// CredentialsTypeServiceAccount identifies a service account key file.
	CredentialsTypeServiceAccount = "service_account"

	// CredentialsTypeAuthorizedUser identifies a user refresh token file.
	CredentialsTypeAuthorizedUser = "authorized_user"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token exchange.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits.
const (
	// DefaultTransportRetryMax keeps the transport at a single attempt.
	DefaultTransportRetryMax = 0

	// DefaultCallAttempts is the CLI's default number of attempts per call.
	DefaultCallAttempts = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent operations.
	DefaultConcurrencyLimit = 3
)

// Pagination and display limits.
const (
	// DefaultPageSize is the page size the CLI asks for.
	DefaultPageSize = 50

	// DescribeVersionLimit caps the versions shown by describe.
	DescribeVersionLimit = 5
)

// Token and cache constants.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second

	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultTokenBucket is the NATS KV bucket holding shared tokens.
	DefaultTokenBucket = "cloudrest-tokens"

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024
)

// Format constants.
const (
	// FormatTable for table output format.
	FormatTable = "table"

	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)
