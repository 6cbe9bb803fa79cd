package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file.
type Config struct {
	Project          string `json:"project,omitempty"           yaml:"project,omitempty"`
	Endpoint         string `json:"endpoint,omitempty"          yaml:"endpoint,omitempty"`
	Output           string `json:"output,omitempty"            yaml:"output,omitempty"`
	Credentials      string `json:"credentials,omitempty"       yaml:"credentials,omitempty"`
	Token            string `json:"token,omitempty"             yaml:"token,omitempty"`
	ClientID         string `json:"client_id,omitempty"         yaml:"client_id,omitempty"`
	ClientSecret     string `json:"client_secret,omitempty"     yaml:"client_secret,omitempty"`
	RefreshToken     string `json:"refresh_token,omitempty"     yaml:"refresh_token,omitempty"`
	TokenURL         string `json:"token_url,omitempty"         yaml:"token_url,omitempty"`
	TokenCache       string `json:"token_cache,omitempty"       yaml:"token_cache,omitempty"`
	NATSURL          string `json:"nats_url,omitempty"          yaml:"nats_url,omitempty"`
	Retries          int    `json:"retries,omitempty"           yaml:"retries,omitempty"`
	TransportRetries int    `json:"transport_retries,omitempty" yaml:"transport_retries,omitempty"`
}

// configKeys are the keys accepted by config set, in display order.
var configKeys = []string{
	"project", "endpoint", "output", "credentials", "token", "client_id", "client_secret",
	"refresh_token", "token_url", "token_cache", "nats_url", "retries", "transport_retries",
}

var secretConfigKeys = []string{"token", "client_secret", "refresh_token"}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the cloudrest config file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskConfig(loadConfig())

			return render(cmd.OutOrStdout(), config, func(table *tablewriter.Table) error {
				table.Header("Key", "Value")

				values := configValues(config)
				for _, key := range configKeys {
					value := values[key]
					if value == "" || value == "0" {
						value = constants.NotAvailable
					}

					_ = table.Append(key, value)
				}

				return nil
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Store a configuration value in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			config := loadConfig()

			err := setConfigValue(config, key, value)
			if err != nil {
				return err
			}

			path, err := saveConfig(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if slices.Contains(secretConfigKeys, key) {
				value = constants.MaskedSecret
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, path)

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		Project:          viper.GetString("project"),
		Endpoint:         viper.GetString("endpoint"),
		Output:           viper.GetString("output"),
		Credentials:      viper.GetString("credentials"),
		Token:            viper.GetString("token"),
		ClientID:         viper.GetString("client_id"),
		ClientSecret:     viper.GetString("client_secret"),
		RefreshToken:     viper.GetString("refresh_token"),
		TokenURL:         viper.GetString("token_url"),
		TokenCache:       viper.GetString("token_cache"),
		NATSURL:          viper.GetString("nats_url"),
		Retries:          viper.GetInt("retries"),
		TransportRetries: viper.GetInt("transport_retries"),
	}
}

func configValues(config *Config) map[string]string {
	return map[string]string{
		"project":           config.Project,
		"endpoint":          config.Endpoint,
		"output":            config.Output,
		"credentials":       config.Credentials,
		"token":             config.Token,
		"client_id":         config.ClientID,
		"client_secret":     config.ClientSecret,
		"refresh_token":     config.RefreshToken,
		"token_url":         config.TokenURL,
		"token_cache":       config.TokenCache,
		"nats_url":          config.NATSURL,
		"retries":           strconv.Itoa(config.Retries),
		"transport_retries": strconv.Itoa(config.TransportRetries),
	}
}

func maskConfig(config *Config) *Config {
	masked := *config

	for _, secret := range []*string{&masked.Token, &masked.ClientSecret, &masked.RefreshToken} {
		if *secret != "" {
			*secret = constants.MaskedSecret
		}
	}

	return &masked
}

func setConfigValue(config *Config, key, value string) error {
	var err error

	switch key {
	case "project":
		config.Project = value
	case "endpoint":
		config.Endpoint = value
	case "output":
		config.Output, err = parseOutputFormat(value)
	case "credentials":
		config.Credentials = value
	case "token":
		config.Token = value
	case "client_id":
		config.ClientID = value
	case "client_secret":
		config.ClientSecret = value
	case "refresh_token":
		config.RefreshToken = value
	case "token_url":
		config.TokenURL = value
	case "token_cache":
		config.TokenCache = value
	case "nats_url":
		config.NATSURL = value
	case "retries":
		config.Retries, err = strconv.Atoi(value)
	case "transport_retries":
		config.TransportRetries, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	return nil
}

// saveConfig writes config to the file viper read, or to
// ~/.cloudrest/config.yml, and returns the path written.
func saveConfig(config *Config) (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}

		configFile = filepath.Join(home, ".cloudrest", "config.yml")
	}

	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configFile, nil
}
