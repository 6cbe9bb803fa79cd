package cloudclient

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fivetwenty-io/cloudrest/internal/auth"
	"github.com/fivetwenty-io/cloudrest/internal/constants"
	internalhttp "github.com/fivetwenty-io/cloudrest/internal/http"
	"github.com/fivetwenty-io/cloudrest/pkg/cache"
	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/fivetwenty-io/cloudrest/pkg/iam"
	"github.com/fivetwenty-io/cloudrest/pkg/location"
	"github.com/fivetwenty-io/cloudrest/pkg/secretmanager"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired   = errors.New("config is required")
	ErrEndpointRequired = errors.New("endpoint is required")
	ErrNoCredentials    = auth.ErrNoCredentials
)

// Config describes how to reach a service and authenticate to it.
type Config struct {
	// Endpoint is the service base URL. A trailing slash is trimmed and
	// "https://" is added when no scheme is present. Service constructors
	// fill in their default endpoint when it is empty.
	Endpoint string

	// Authentication options (provide one)
	// AccessToken is sent as is; it is never refreshed.
	AccessToken string
	// CredentialsFile is a service_account or authorized_user JSON file.
	CredentialsFile string
	// ClientID and ClientSecret select the client credentials grant, or the
	// refresh token grant when RefreshToken is also set.
	ClientID     string
	ClientSecret string
	RefreshToken string
	// TokenURL overrides the OAuth2 token endpoint.
	TokenURL string
	// Scopes default to the cloud-platform scope.
	Scopes []string

	// Optional configurations
	// HTTPTimeout bounds each HTTP attempt. Zero means DefaultHTTPTimeout.
	HTTPTimeout time.Duration
	// RetryMax enables transport retries for connection errors, 429 and 5xx.
	// Zero keeps every call to a single attempt.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Debug logs every request and response when Logger is set.
	Debug  bool
	Logger gax.Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Cache shares refreshed tokens between processes. Nil keeps tokens in
	// memory only.
	Cache *cache.Config
	// SharedCache is an already built cache; it takes precedence over Cache.
	SharedCache cache.Cache
	// CacheKey names the token in Cache. It defaults to a hash of the
	// credential identity.
	CacheKey string
}

// NewTransport builds the HTTP transport described by config.
func NewTransport(config *Config) *internalhttp.Client {
	var opts []internalhttp.Option

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, internalhttp.WithDebug(true))
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = constants.UserAgentPrefix + constants.Version
	}

	opts = append(opts, internalhttp.WithUserAgent(userAgent))

	if config.HTTPTimeout > 0 {
		opts = append(opts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		opts = append(opts, internalhttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return internalhttp.NewClient(opts...)
}

// NewCredentialProvider resolves the credentials config names.
func NewCredentialProvider(config *Config) (gax.CredentialProvider, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	if config.AccessToken != "" {
		return auth.NewStaticProvider(config.AccessToken), nil
	}

	source, identity, err := tokenSource(config)
	if err != nil {
		return nil, err
	}

	var opts []auth.ProviderOption

	if config.Logger != nil {
		opts = append(opts, auth.WithProviderLogger(config.Logger))
	}

	shared := config.SharedCache
	if shared == nil && config.Cache != nil {
		var cacheErr error

		shared, cacheErr = cache.NewFromConfig(config.Cache)
		if cacheErr != nil {
			return nil, fmt.Errorf("creating token cache: %w", cacheErr)
		}
	}

	if shared != nil {
		key := config.CacheKey
		if key == "" {
			key = cacheKey(identity, scopes(config))
		}

		opts = append(opts, auth.WithSharedCache(shared, key))
	}

	return auth.NewCachingProvider(source, opts...), nil
}

func tokenSource(config *Config) (auth.TokenSource, string, error) {
	tokenHTTPClient := &http.Client{Timeout: constants.ShortHTTPTimeout}

	if config.CredentialsFile != "" {
		file, err := auth.LoadCredentialsFile(config.CredentialsFile)
		if err != nil {
			return nil, "", err
		}

		identity := file.ClientEmail
		if identity == "" {
			identity = file.ClientID
		}

		return file.TokenSource(scopes(config), config.TokenURL, tokenHTTPClient), identity, nil
	}

	source, err := auth.NewOAuth2TokenSource(&auth.OAuth2Config{
		TokenURL:     config.TokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RefreshToken: config.RefreshToken,
		Scopes:       scopes(config),
		HTTPClient:   tokenHTTPClient,
	})
	if err != nil {
		return nil, "", err
	}

	return source, config.ClientID, nil
}

func scopes(config *Config) []string {
	if len(config.Scopes) == 0 {
		return []string{constants.CloudPlatformScope}
	}

	return config.Scopes
}

func cacheKey(identity string, scopes []string) string {
	sum := sha256.Sum256([]byte(identity + "|" + strings.Join(scopes, " ")))

	return "token:" + hex.EncodeToString(sum[:8])
}

// NewExecutor builds an executor for config.Endpoint.
func NewExecutor(config *Config) (*gax.Executor, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	endpoint, err := normalizeEndpoint(config.Endpoint)
	if err != nil {
		return nil, err
	}

	provider, err := NewCredentialProvider(config)
	if err != nil {
		return nil, err
	}

	return gax.NewExecutor(endpoint, provider, NewTransport(config)), nil
}

func normalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSuffix(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return "", ErrEndpointRequired
	}

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint, nil
}

func withDefaultEndpoint(config *Config, endpoint string) *Config {
	if config == nil || config.Endpoint != "" {
		return config
	}

	withEndpoint := *config
	withEndpoint.Endpoint = endpoint

	return &withEndpoint
}

// NewSecretManager creates a Secret Manager client. An empty endpoint means
// secretmanager.DefaultEndpoint.
func NewSecretManager(config *Config) (*secretmanager.Client, error) {
	exec, err := NewExecutor(withDefaultEndpoint(config, secretmanager.DefaultEndpoint))
	if err != nil {
		return nil, err
	}

	return secretmanager.NewClient(exec), nil
}

// NewLocations creates a Locations client for the service at config.Endpoint.
func NewLocations(config *Config) (*location.Client, error) {
	exec, err := NewExecutor(config)
	if err != nil {
		return nil, err
	}

	return location.NewClient(exec), nil
}

// NewPolicyClient creates an IAM policy client for the service at
// config.Endpoint.
func NewPolicyClient(config *Config) (*iam.PolicyClient, error) {
	exec, err := NewExecutor(config)
	if err != nil {
		return nil, err
	}

	return iam.NewPolicyClient(exec), nil
}
