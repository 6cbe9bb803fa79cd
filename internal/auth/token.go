// Package auth obtains and caches OAuth2 access tokens for gax executors.
package auth

import (
	"sync"
	"time"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"golang.org/x/oauth2"
)

// Token represents an OAuth2 token.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the token can still be used. Tokens expiring within
// the next 30 seconds are treated as expired.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// Credential converts the token into the form executors send.
func (t *Token) Credential() gax.Token {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return gax.Token{
		Value:     t.AccessToken,
		Type:      tokenType,
		ExpiresAt: t.ExpiresAt,
	}
}

func fromOAuth2(token *oauth2.Token) *Token {
	converted := &Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
		ExpiresAt:    token.Expiry,
	}

	if !token.Expiry.IsZero() {
		converted.ExpiresIn = int(time.Until(token.Expiry).Seconds())
	}

	return converted
}

// TokenStore provides thread-safe token storage.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates a new token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set stores a token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}
