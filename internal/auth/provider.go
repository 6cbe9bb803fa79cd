package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/fivetwenty-io/cloudrest/pkg/cache"
	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"golang.org/x/sync/singleflight"
)

// StaticProvider hands out one fixed access token.
type StaticProvider struct {
	token gax.Token
}

// NewStaticProvider creates a provider for a token obtained elsewhere.
func NewStaticProvider(accessToken string) *StaticProvider {
	return &StaticProvider{token: gax.Token{Value: accessToken, Type: "Bearer"}}
}

// AccessToken implements gax.CredentialProvider.
func (p *StaticProvider) AccessToken(_ context.Context) (gax.Token, error) {
	if p.token.Value == "" {
		return gax.Token{}, constants.ErrEmptyAccessToken
	}

	return p.token, nil
}

// CachingProvider reuses tokens from a TokenSource until they expire. A valid
// token is looked up in memory first, then in the optional shared cache.
// Concurrent callers that find no valid token share a single refresh.
type CachingProvider struct {
	source   TokenSource
	store    *TokenStore
	shared   cache.Cache
	cacheKey string
	logger   gax.Logger
	group    singleflight.Group
}

// ProviderOption configures a CachingProvider.
type ProviderOption func(*CachingProvider)

// WithSharedCache stores refreshed tokens in c under key so that other
// processes can reuse them.
func WithSharedCache(c cache.Cache, key string) ProviderOption {
	return func(p *CachingProvider) {
		p.shared = c
		p.cacheKey = key
	}
}

// WithProviderLogger sets the logger.
func WithProviderLogger(logger gax.Logger) ProviderOption {
	return func(p *CachingProvider) {
		p.logger = logger
	}
}

// NewCachingProvider wraps source.
func NewCachingProvider(source TokenSource, opts ...ProviderOption) *CachingProvider {
	provider := &CachingProvider{
		source:   source,
		store:    NewTokenStore(),
		cacheKey: "token",
	}

	for _, opt := range opts {
		opt(provider)
	}

	return provider
}

// AccessToken implements gax.CredentialProvider.
func (p *CachingProvider) AccessToken(ctx context.Context) (gax.Token, error) {
	if token := p.store.Get(); token.Valid() {
		return token.Credential(), nil
	}

	// The refresh ignores the caller's cancellation; each caller still stops
	// waiting when its own ctx is done.
	results := p.group.DoChan(p.cacheKey, func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShortHTTPTimeout)
		defer cancel()

		return p.refresh(refreshCtx)
	})

	select {
	case <-ctx.Done():
		return gax.Token{}, ctx.Err()
	case result := <-results:
		if result.Err != nil {
			return gax.Token{}, result.Err
		}

		token, _ := result.Val.(*Token)

		return token.Credential(), nil
	}
}

// Token returns the current token, refreshing it if needed.
func (p *CachingProvider) Token(ctx context.Context) (*Token, error) {
	_, err := p.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	return p.store.Get(), nil
}

// Invalidate drops the cached token, e.g. after the server rejected it.
func (p *CachingProvider) Invalidate(ctx context.Context) {
	p.store.Clear()

	if p.shared != nil {
		err := p.shared.Delete(ctx, p.cacheKey)
		if err != nil {
			p.warn("Failed to delete shared token", err)
		}
	}
}

func (p *CachingProvider) refresh(ctx context.Context) (*Token, error) {
	// another caller may have refreshed while this one waited
	if token := p.store.Get(); token.Valid() {
		return token, nil
	}

	if token := p.fromShared(ctx); token != nil {
		p.store.Set(token)

		return token, nil
	}

	if p.logger != nil {
		p.logger.Debug("Refreshing access token", nil)
	}

	token, err := p.source.Token(ctx)
	if err != nil {
		return nil, err
	}

	if token.AccessToken == "" {
		return nil, constants.ErrEmptyAccessToken
	}

	p.store.Set(token)
	p.toShared(ctx, token)

	return token, nil
}

func (p *CachingProvider) fromShared(ctx context.Context) *Token {
	if p.shared == nil {
		return nil
	}

	entry, err := p.shared.Get(ctx, p.cacheKey)
	if err != nil {
		return nil
	}

	var token Token

	err = json.Unmarshal(entry.Data, &token)
	if err != nil {
		p.warn("Ignoring undecodable shared token", err)

		return nil
	}

	if !token.Valid() {
		return nil
	}

	return &token
}

func (p *CachingProvider) toShared(ctx context.Context, token *Token) {
	if p.shared == nil {
		return
	}

	// refresh tokens are long-lived secrets and stay in process
	shared := *token
	shared.RefreshToken = ""

	data, err := json.Marshal(&shared)
	if err != nil {
		p.warn("Failed to encode token for shared cache", err)

		return
	}

	expiresAt := token.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(constants.DefaultCacheTTL)
	}

	err = p.shared.Set(ctx, p.cacheKey, &cache.Entry{Data: data, ExpiresAt: expiresAt})
	if err != nil {
		p.warn("Failed to store token in shared cache", err)
	}
}

func (p *CachingProvider) warn(msg string, err error) {
	if p.logger != nil {
		p.logger.Warn(msg, map[string]interface{}{"error": fmt.Sprint(err)})
	}
}
