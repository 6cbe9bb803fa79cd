package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	cloudhttp "github.com/fivetwenty-io/cloudrest/internal/http"
	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNetworkDown = errors.New("network is down")

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) record(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.record("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.record("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.record("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.record("error", msg, fields) }

func get(url string) *gax.TransportRequest {
	return &gax.TransportRequest{Method: http.MethodGet, URL: url, Headers: http.Header{}}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Send(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/v1/projects/p/secrets", request.URL.Path)
			assert.Equal(t, "alt=json", request.URL.RawQuery)
			assert.Equal(t, http.MethodGet, request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Contains(t, request.Header.Get("User-Agent"), "cloudrest-go/")

			writer.Header().Set("X-Goog-Request-Id", "r-1")
			_, _ = writer.Write([]byte(`{"secrets":[]}`))
		}))
		defer server.Close()

		client := cloudhttp.NewClient()

		req := get(server.URL + "/v1/projects/p/secrets?alt=json")
		req.Headers.Set("Authorization", "Bearer test-token")

		resp, err := client.Send(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "r-1", resp.Headers.Get("x-goog-request-id"))
		assert.JSONEq(t, `{"secrets":[]}`, string(resp.Body))
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, http.MethodPost, request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			body, _ := io.ReadAll(request.Body)
			assert.JSONEq(t, `{"replication":{"automatic":{}}}`, string(body))

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := cloudhttp.NewClient()

		resp, err := client.Send(context.Background(), &gax.TransportRequest{
			Method:  http.MethodPost,
			URL:     server.URL + "/v1/projects/p/secrets",
			Headers: http.Header{"Content-Type": []string{"application/json"}},
			Body:    []byte(`{"replication":{"automatic":{}}}`),
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("error response is returned, not failed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Add("Warning", "one")
			writer.Header().Add("Warning", "two")
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"error":{"code":404,"status":"NOT_FOUND"}}`))
		}))
		defer server.Close()

		client := cloudhttp.NewClient()

		resp, err := client.Send(context.Background(), get(server.URL+"/v1/missing"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, []string{"one", "two"}, resp.Headers.Values("Warning"))
		assert.Contains(t, string(resp.Body), "NOT_FOUND")
	})

	t.Run("custom user agent", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "my-tool/1.0", request.Header.Get("User-Agent"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := cloudhttp.NewClient(cloudhttp.WithUserAgent("my-tool/1.0"))

		resp, err := client.Send(context.Background(), get(server.URL))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"result":"ok"}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := cloudhttp.NewClient(cloudhttp.WithLogger(logger), cloudhttp.WithDebug(true))

		_, err := client.Send(context.Background(), get(server.URL))
		require.NoError(t, err)

		// Should have logged request and response
		require.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})

	t.Run("no logging without debug", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := cloudhttp.NewClient(cloudhttp.WithLogger(logger))

		_, err := client.Send(context.Background(), get(server.URL))
		require.NoError(t, err)
		assert.Empty(t, logger.logs)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := cloudhttp.NewClient().Send(ctx, get(server.URL))
		require.ErrorIs(t, err, context.Canceled)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()

	t.Run("single attempt by default", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusServiceUnavailable)
			_, _ = writer.Write([]byte("unavailable"))
		}))
		defer server.Close()

		resp, err := cloudhttp.NewClient().Send(context.Background(), get(server.URL))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "unavailable", string(resp.Body))
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("retries on 5xx errors when enabled", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := cloudhttp.NewClient(cloudhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Send(context.Background(), get(server.URL))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("exhausted retries return the last response", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusTooManyRequests)
			_, _ = writer.Write([]byte(`{"error":{"code":429}}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := cloudhttp.NewClient(
			cloudhttp.WithRetryConfig(2, time.Millisecond, 5*time.Millisecond),
			cloudhttp.WithLogger(logger),
		)

		resp, err := client.Send(context.Background(), get(server.URL))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.JSONEq(t, `{"error":{"code":429}}`, string(resp.Body))
		assert.Equal(t, int32(3), attempts.Load())
		assert.NotEmpty(t, logger.logs)
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := cloudhttp.NewClient(cloudhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Send(context.Background(), get(server.URL))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})
}

func TestClient_TransportErrors(t *testing.T) {
	t.Parallel()

	mock := httpmock.NewMockTransport()
	mock.RegisterResponder(http.MethodGet, "https://secretmanager.example.com/v1/down",
		httpmock.NewErrorResponder(errNetworkDown))
	mock.RegisterResponder(http.MethodDelete, "https://secretmanager.example.com/v1/projects/p/secrets/s",
		httpmock.NewStringResponder(http.StatusOK, `{}`))

	mockClient := &http.Client{Transport: mock}

	client := cloudhttp.NewClient(cloudhttp.WithHTTPClient(mockClient))

	_, err := client.Send(context.Background(), get("https://secretmanager.example.com/v1/down"))
	require.ErrorIs(t, err, errNetworkDown)

	resp, err := client.Send(context.Background(), &gax.TransportRequest{
		Method:  http.MethodDelete,
		URL:     "https://secretmanager.example.com/v1/projects/p/secrets/s",
		Headers: http.Header{},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, mock.GetCallCountInfo()["DELETE https://secretmanager.example.com/v1/projects/p/secrets/s"])
}

func TestClient_ImplementsTransport(t *testing.T) {
	t.Parallel()

	var transport gax.Transport = cloudhttp.NewClient()
	assert.NotNil(t, transport)
}
