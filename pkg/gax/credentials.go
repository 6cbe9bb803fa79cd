package gax

import (
	"context"
	"time"
)

// Token is a bearer credential.
type Token struct {
	Value string
	// Type is informational; the executor always sends a Bearer header.
	Type      string
	ExpiresAt time.Time
}

// CredentialProvider supplies bearer tokens. Implementations are shared by
// every in-flight call and must be safe for concurrent use; refresh
// coordination is their own business.
type CredentialProvider interface {
	AccessToken(ctx context.Context) (Token, error)
}

// CredentialProviderFunc adapts a function to CredentialProvider.
type CredentialProviderFunc func(ctx context.Context) (Token, error)

// AccessToken implements CredentialProvider.
func (f CredentialProviderFunc) AccessToken(ctx context.Context) (Token, error) {
	return f(ctx)
}
