package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
)

// CredentialsFile is a JSON credentials file of type service_account or
// authorized_user.
type CredentialsFile struct {
	Type string `json:"type"`

	// service_account
	ProjectID    string `json:"project_id,omitempty"`
	PrivateKeyID string `json:"private_key_id,omitempty"`
	PrivateKey   string `json:"private_key,omitempty"`
	ClientEmail  string `json:"client_email,omitempty"`
	TokenURI     string `json:"token_uri,omitempty"`

	// authorized_user
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// LoadCredentialsFile reads and parses the credentials file at path.
func LoadCredentialsFile(path string) (*CredentialsFile, error) {
	cleaned := filepath.Clean(path)
	if strings.Contains(filepath.ToSlash(path), "../") {
		return nil, fmt.Errorf("%w: %s", constants.ErrDirectoryTraversalDetected, path)
	}

	info, err := os.Stat(cleaned)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, cleaned)
	}

	data, err := os.ReadFile(cleaned)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	return ParseCredentials(data)
}

// ParseCredentials decodes and validates credentials file content.
func ParseCredentials(data []byte) (*CredentialsFile, error) {
	var file CredentialsFile

	err := json.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidCredentialsFile, err)
	}

	switch file.Type {
	case constants.CredentialsTypeServiceAccount:
		if file.ClientEmail == "" || file.PrivateKey == "" {
			return nil, fmt.Errorf("%w: service account needs client_email and private_key", constants.ErrInvalidCredentialsFile)
		}
	case constants.CredentialsTypeAuthorizedUser:
		if file.RefreshToken == "" {
			return nil, fmt.Errorf("%w: authorized user needs refresh_token", constants.ErrInvalidCredentialsFile)
		}
	default:
		return nil, fmt.Errorf("%w: %q", constants.ErrUnknownCredentialsType, file.Type)
	}

	return &file, nil
}

// TokenSource builds the token source the file describes. tokenURL overrides
// the file's token_uri when set.
func (f *CredentialsFile) TokenSource(scopes []string, tokenURL string, httpClient *http.Client) TokenSource {
	if tokenURL == "" {
		tokenURL = f.TokenURI
	}

	if f.Type == constants.CredentialsTypeServiceAccount {
		return NewServiceAccountSource(&ServiceAccountConfig{
			Email:        f.ClientEmail,
			PrivateKey:   []byte(f.PrivateKey),
			PrivateKeyID: f.PrivateKeyID,
			TokenURL:     tokenURL,
			Scopes:       scopes,
			HTTPClient:   httpClient,
		})
	}

	return NewRefreshTokenSource(&OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     f.ClientID,
		ClientSecret: f.ClientSecret,
		RefreshToken: f.RefreshToken,
		Scopes:       scopes,
		HTTPClient:   httpClient,
	})
}
