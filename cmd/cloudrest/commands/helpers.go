package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/fivetwenty-io/cloudrest/pkg/cache"
	"github.com/fivetwenty-io/cloudrest/pkg/cloudclient"
	"github.com/fivetwenty-io/cloudrest/pkg/gax/backoff"
	"github.com/fivetwenty-io/cloudrest/pkg/secretmanager"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	latestVersion = "latest"
	projectsRoot  = "projects/"
)

// Static errors for err113 compliance.
var (
	ErrSecretIDRequired = errors.New("secret id is required")
	ErrNothingToUpdate  = errors.New("nothing to update, use --label or --annotation")
)

// clientConfig builds the client configuration from flags, environment and
// the config file.
func clientConfig(logOutput io.Writer) *cloudclient.Config {
	verbose := viper.GetBool("verbose")

	config := &cloudclient.Config{
		Endpoint:        viper.GetString("endpoint"),
		AccessToken:     viper.GetString("token"),
		CredentialsFile: viper.GetString("credentials"),
		ClientID:        viper.GetString("client_id"),
		ClientSecret:    viper.GetString("client_secret"),
		RefreshToken:    viper.GetString("refresh_token"),
		TokenURL:        viper.GetString("token_url"),
		RetryMax:        viper.GetInt("transport_retries"),
		Debug:           verbose,
		Logger:          NewLogger(logOutput, verbose),
	}

	switch cache.Type(viper.GetString("token_cache")) {
	case cache.TypeNATS:
		config.Cache = &cache.Config{
			Type: cache.TypeNATS,
			NATS: &cache.NATSKVConfig{
				URL:    viper.GetString("nats_url"),
				Bucket: constants.DefaultTokenBucket,
			},
			Memory: cache.DefaultConfig().Memory,
		}
	case cache.TypeMemory:
		config.Cache = cache.DefaultConfig()
	case cache.TypeNone:
	}

	return config
}

func newSecretManagerClient(logOutput io.Writer) (*secretmanager.Client, error) {
	client, err := cloudclient.NewSecretManager(clientConfig(logOutput))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// call runs fn with the retry policy from --retries.
func call[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	return backoff.Retry(ctx, backoff.DefaultPolicy(viper.GetInt("retries")), fn)
}

func projectParent() (string, error) {
	project := viper.GetString("project")
	if project == "" {
		return "", constants.ErrNoProjectConfigured
	}

	return projectsRoot + strings.TrimPrefix(project, projectsRoot), nil
}

// secretName accepts either a full resource name or a bare secret id.
func secretName(id string) (string, error) {
	if id == "" {
		return "", ErrSecretIDRequired
	}

	if strings.HasPrefix(id, projectsRoot) {
		return id, nil
	}

	parent, err := projectParent()
	if err != nil {
		return "", err
	}

	return parent + "/secrets/" + id, nil
}

// versionName accepts a full version name or a secret plus version id.
func versionName(secret, version string) (string, error) {
	if strings.Contains(secret, "/versions/") {
		return secret, nil
	}

	name, err := secretName(secret)
	if err != nil {
		return "", err
	}

	if version == "" {
		version = latestVersion
	}

	return name + "/versions/" + version, nil
}

func lastSegment(name string) string {
	return name[strings.LastIndex(name, "/")+1:]
}

func parseLabels(pairs []string) (map[string]string, error) {
	labels := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidLabel, pair)
		}

		labels[key] = value
	}

	return labels, nil
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return constants.NotAvailable
	}

	pairs := make([]string, 0, len(labels))
	for _, key := range slices.Sorted(maps.Keys(labels)) {
		pairs = append(pairs, key+"="+labels[key])
	}

	return strings.Join(pairs, ",")
}

func outputFormat() (string, error) {
	return parseOutputFormat(viper.GetString("output"))
}

func parseOutputFormat(format string) (string, error) {
	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

// render writes data as JSON or YAML, or calls table for table output.
func render(w io.Writer, data any, table func(t *tablewriter.Table) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		return renderJSON(w, data)
	case constants.FormatYAML:
		return renderYAML(w, data)
	default:
		t := tablewriter.NewWriter(w)

		err = table(t)
		if err != nil {
			return err
		}

		err = t.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func renderJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// renderYAML goes through JSON first so keys keep their wire names.
func renderYAML(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	var generic any

	err = yaml.Unmarshal(raw, &generic)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	err = encoder.Encode(generic)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}
