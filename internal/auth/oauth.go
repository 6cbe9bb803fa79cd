package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/jwt"
)

// Static errors for err113 compliance.
var (
	ErrNoCredentials = errors.New("no valid credentials available")
)

// OAuth2Config holds the OAuth2 settings for a token source.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
	Scopes       []string

	// HTTPClient is used for token requests; nil means http.DefaultClient.
	HTTPClient *http.Client
}

// TokenSource fetches a new token on every call. Wrap it in a
// CachingProvider to reuse tokens until they expire.
type TokenSource interface {
	Token(ctx context.Context) (*Token, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (*Token, error)

// Token implements TokenSource.
func (f TokenSourceFunc) Token(ctx context.Context) (*Token, error) {
	return f(ctx)
}

// NewOAuth2TokenSource picks a grant from config: the refresh token grant
// when a refresh token is present, otherwise client credentials.
func NewOAuth2TokenSource(config *OAuth2Config) (TokenSource, error) {
	switch {
	case config.RefreshToken != "":
		return NewRefreshTokenSource(config), nil
	case config.ClientID != "" && config.ClientSecret != "":
		return NewClientCredentialsSource(config), nil
	default:
		return nil, ErrNoCredentials
	}
}

// NewClientCredentialsSource uses the client credentials grant.
func NewClientCredentialsSource(config *OAuth2Config) TokenSource {
	oauthConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     tokenURL(config.TokenURL),
		Scopes:       config.Scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return TokenSourceFunc(func(ctx context.Context) (*Token, error) {
		token, err := oauthConfig.Token(withHTTPClient(ctx, config.HTTPClient))
		if err != nil {
			return nil, fmt.Errorf("client credentials grant: %w", err)
		}

		return fromOAuth2(token), nil
	})
}

// NewRefreshTokenSource exchanges a long-lived refresh token for access tokens.
func NewRefreshTokenSource(config *OAuth2Config) TokenSource {
	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL(config.TokenURL),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: config.Scopes,
	}

	return TokenSourceFunc(func(ctx context.Context) (*Token, error) {
		source := oauthConfig.TokenSource(withHTTPClient(ctx, config.HTTPClient), &oauth2.Token{
			RefreshToken: config.RefreshToken,
		})

		token, err := source.Token()
		if err != nil {
			return nil, fmt.Errorf("refresh token grant: %w", err)
		}

		return fromOAuth2(token), nil
	})
}

// ServiceAccountConfig identifies a service account signing its own
// JWT assertions.
type ServiceAccountConfig struct {
	Email        string
	PrivateKey   []byte
	PrivateKeyID string
	TokenURL     string
	Scopes       []string
	HTTPClient   *http.Client
}

// NewServiceAccountSource uses the JWT bearer grant.
func NewServiceAccountSource(config *ServiceAccountConfig) TokenSource {
	jwtConfig := &jwt.Config{
		Email:        config.Email,
		PrivateKey:   config.PrivateKey,
		PrivateKeyID: config.PrivateKeyID,
		Scopes:       config.Scopes,
		TokenURL:     tokenURL(config.TokenURL),
	}

	return TokenSourceFunc(func(ctx context.Context) (*Token, error) {
		token, err := jwtConfig.TokenSource(withHTTPClient(ctx, config.HTTPClient)).Token()
		if err != nil {
			return nil, fmt.Errorf("service account %s: %w", config.Email, err)
		}

		return fromOAuth2(token), nil
	})
}

func tokenURL(configured string) string {
	if configured == "" {
		return constants.DefaultTokenURL
	}

	return configured
}

func withHTTPClient(ctx context.Context, client *http.Client) context.Context {
	if client == nil {
		return ctx
	}

	return context.WithValue(ctx, oauth2.HTTPClient, client)
}
