package cloudclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fivetwenty-io/cloudrest/pkg/cache"
	"github.com/fivetwenty-io/cloudrest/pkg/cloudclient"
	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/fivetwenty-io/cloudrest/pkg/iam"
	"github.com/fivetwenty-io/cloudrest/pkg/location"
	"github.com/fivetwenty-io/cloudrest/pkg/secretmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenServer(t *testing.T, grants *atomic.Int32) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		grants.Add(1)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "minted-" + r.Form.Get("grant_type"),
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(server.Close)

	return server
}

func newAPIServer(t *testing.T) (*httptest.Server, func() []*http.Request) {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []*http.Request
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Clone(context.Background()))
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/locations"):
			_, _ = w.Write([]byte(`{"locations":[{"locationId":"us-east1"}]}`))
		case strings.HasSuffix(r.URL.Path, ":testIamPermissions"):
			_, _ = w.Write([]byte(`{"permissions":["secretmanager.versions.access"]}`))
		default:
			_, _ = w.Write([]byte(`{"name":"projects/p/secrets/s"}`))
		}
	}))
	t.Cleanup(server.Close)

	return server, func() []*http.Request {
		mu.Lock()
		defer mu.Unlock()

		return append([]*http.Request(nil), requests...)
	}
}

func TestNewSecretManager_AccessToken(t *testing.T) {
	t.Parallel()

	server, requests := newAPIServer(t)

	client, err := cloudclient.NewSecretManager(&cloudclient.Config{
		Endpoint:    server.URL + "/",
		AccessToken: "static-token",
	})
	require.NoError(t, err)

	secret, err := client.GetSecret(context.Background(), &secretmanager.GetSecretRequest{Name: "projects/p/secrets/s"})
	require.NoError(t, err)
	assert.Equal(t, "projects/p/secrets/s", secret.Name)

	got := requests()
	require.Len(t, got, 1)
	assert.Equal(t, "Bearer static-token", got[0].Header.Get("Authorization"))
	assert.True(t, strings.HasPrefix(got[0].Header.Get("User-Agent"), "cloudrest-go/"))
	assert.Equal(t, "/v1/projects/p/secrets/s", got[0].URL.Path)
}

func TestNewSecretManager_ClientCredentials(t *testing.T) {
	t.Parallel()

	var grants atomic.Int32

	tokenServer := newTokenServer(t, &grants)
	server, requests := newAPIServer(t)

	client, err := cloudclient.NewSecretManager(&cloudclient.Config{
		Endpoint:     server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     tokenServer.URL,
		UserAgent:    "secrets-sync/1.0",
	})
	require.NoError(t, err)

	for range 3 {
		_, err = client.GetSecret(context.Background(), &secretmanager.GetSecretRequest{Name: "projects/p/secrets/s"})
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), grants.Load())

	for _, req := range requests() {
		assert.Equal(t, "Bearer minted-client_credentials", req.Header.Get("Authorization"))
		assert.Equal(t, "secrets-sync/1.0", req.Header.Get("User-Agent"))
	}
}

func TestNewCredentialProvider_SharedCache(t *testing.T) {
	t.Parallel()

	var grants atomic.Int32

	tokenServer := newTokenServer(t, &grants)
	shared := cache.NewMemoryCache(10)

	config := &cloudclient.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh",
		TokenURL:     tokenServer.URL,
		SharedCache:  shared,
	}

	first, err := cloudclient.NewCredentialProvider(config)
	require.NoError(t, err)

	second, err := cloudclient.NewCredentialProvider(config)
	require.NoError(t, err)

	token, err := first.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "minted-refresh_token", token.Value)

	token, err = second.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "minted-refresh_token", token.Value)

	assert.Equal(t, int32(1), grants.Load())
	assert.Equal(t, 1, shared.Len())
}

func TestNewCredentialProvider_CredentialsFile(t *testing.T) {
	t.Parallel()

	var grants atomic.Int32

	tokenServer := newTokenServer(t, &grants)

	path := filepath.Join(t.TempDir(), "adc.json")
	err := os.WriteFile(path, []byte(`{
		"type": "authorized_user",
		"client_id": "user-client",
		"client_secret": "user-secret",
		"refresh_token": "user-refresh"
	}`), 0o600)
	require.NoError(t, err)

	provider, err := cloudclient.NewCredentialProvider(&cloudclient.Config{
		CredentialsFile: path,
		TokenURL:        tokenServer.URL,
		Cache:           cache.DefaultConfig(),
	})
	require.NoError(t, err)

	token, err := provider.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "minted-refresh_token", token.Value)

	_, err = cloudclient.NewCredentialProvider(&cloudclient.Config{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewCredentialProvider_Errors(t *testing.T) {
	t.Parallel()

	_, err := cloudclient.NewCredentialProvider(nil)
	require.ErrorIs(t, err, cloudclient.ErrConfigRequired)

	_, err = cloudclient.NewCredentialProvider(&cloudclient.Config{})
	require.ErrorIs(t, err, cloudclient.ErrNoCredentials)

	_, err = cloudclient.NewCredentialProvider(&cloudclient.Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Cache:        &cache.Config{Type: "redis"},
	})
	require.ErrorIs(t, err, cache.ErrUnsupportedType)
}

func TestNewExecutor(t *testing.T) {
	t.Parallel()

	exec, err := cloudclient.NewExecutor(&cloudclient.Config{Endpoint: "secretmanager.example.com/", AccessToken: "t"})
	require.NoError(t, err)
	assert.Equal(t, "https://secretmanager.example.com", exec.Endpoint())

	_, err = cloudclient.NewExecutor(&cloudclient.Config{AccessToken: "t"})
	require.ErrorIs(t, err, cloudclient.ErrEndpointRequired)

	_, err = cloudclient.NewExecutor(nil)
	require.ErrorIs(t, err, cloudclient.ErrConfigRequired)

	_, err = cloudclient.NewSecretManager(&cloudclient.Config{AccessToken: "t"})
	require.NoError(t, err)
}

func TestNewLocationsAndPolicyClient(t *testing.T) {
	t.Parallel()

	server, requests := newAPIServer(t)
	config := &cloudclient.Config{Endpoint: server.URL, AccessToken: "t"}

	locations, err := cloudclient.NewLocations(config)
	require.NoError(t, err)

	resp, err := locations.ListLocations(context.Background(), &location.ListLocationsRequest{Name: "projects/p"})
	require.NoError(t, err)
	require.Len(t, resp.Locations, 1)

	policies, err := cloudclient.NewPolicyClient(config)
	require.NoError(t, err)

	perms, err := policies.TestIamPermissions(context.Background(), &iam.TestIamPermissionsRequest{
		Resource:    "projects/p/secrets/s",
		Permissions: []string{"secretmanager.versions.access"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"secretmanager.versions.access"}, perms.Permissions)

	assert.Len(t, requests(), 2)

	_, err = cloudclient.NewLocations(&cloudclient.Config{AccessToken: "t"})
	require.ErrorIs(t, err, cloudclient.ErrEndpointRequired)
}

func TestNewTransport_Retries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	transport := cloudclient.NewTransport(&cloudclient.Config{RetryMax: 3, RetryWaitMin: 1, RetryWaitMax: 1})

	resp, err := transport.Send(context.Background(), &gax.TransportRequest{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}
