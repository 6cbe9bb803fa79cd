//go:build integration

package integration

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/fivetwenty-io/cloudrest/pkg/cloudclient"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Project     string
	Endpoint    string
	AccessToken string
	Credentials string
	Verbose     bool
}

// LoadTestConfig loads configuration from the environment and an optional .env file
func LoadTestConfig() *TestConfig {
	_ = godotenv.Load()

	return &TestConfig{
		Project:     os.Getenv("CLOUDREST_PROJECT"),
		Endpoint:    os.Getenv("CLOUDREST_ENDPOINT"),
		AccessToken: os.Getenv("CLOUDREST_TOKEN"),
		Credentials: os.Getenv("CLOUDREST_CREDENTIALS"),
		Verbose:     os.Getenv("CLOUDREST_VERBOSE") == "true",
	}
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Project == "" {
		t.Skip("CLOUDREST_PROJECT not set, skipping integration test")
	}

	if config.AccessToken == "" && config.Credentials == "" {
		t.Skip("neither CLOUDREST_TOKEN nor CLOUDREST_CREDENTIALS set, skipping integration test")
	}
}

// ClientConfig converts the test configuration for cloudclient.
func (config *TestConfig) ClientConfig() *cloudclient.Config {
	return &cloudclient.Config{
		Endpoint:        config.Endpoint,
		AccessToken:     config.AccessToken,
		CredentialsFile: config.Credentials,
		RetryMax:        2,
		Debug:           config.Verbose,
	}
}

// Parent is the project resource name.
func (config *TestConfig) Parent() string {
	return "projects/" + config.Project
}

// GenerateTestName returns a secret id that will not collide with other runs.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().Unix(), uuid.NewString()[:8])
}
