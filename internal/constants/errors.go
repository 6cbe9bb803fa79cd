package constants

import "errors"

// Configuration errors.
var (
	ErrNoProjectConfigured = errors.New("no project configured, use --project or 'cloudrest config set project <id>'")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrInvalidOutputFormat = errors.New("invalid output format")
)

// Credential errors.
var (
	ErrUnknownCredentialsType = errors.New("unknown credentials file type")
	ErrInvalidCredentialsFile = errors.New("invalid credentials file")
	ErrEmptyAccessToken       = errors.New("token source returned an empty access token")
)

// Input errors.
var (
	ErrEmptyPayload        = errors.New("secret payload is empty")
	ErrInvalidLabel        = errors.New("labels must be key=value")
	ErrPayloadNotTerminal  = errors.New("stdin is not a terminal, use --data-file")
	ErrMemberRequired      = errors.New("--member flag is required")
	ErrRoleRequired        = errors.New("--role flag is required")
	ErrPermissionsRequired = errors.New("at least one permission is required")
)

// File system errors.
var (
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
	ErrNotRegularFile             = errors.New("path is not a regular file")
)
