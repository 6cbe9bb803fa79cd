package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/cloudrest/cmd/cloudrest/commands"
	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = constants.Version
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cloudrest",
	Short: "Secret Manager CLI",
	Long: `A command-line interface for Secret Manager built on the cloudrest
client runtime.

Secrets, versions, IAM policies and locations are managed through the
REST API. Credentials come from --token, --credentials, or the client
settings in the config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.cloudrest/config.yml)")
	rootCmd.PersistentFlags().StringP("project", "p", "", "project id")
	rootCmd.PersistentFlags().String("endpoint", "", "service endpoint URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "access token")
	rootCmd.PersistentFlags().String("credentials", "", "service_account or authorized_user credentials file")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Int("retries", constants.DefaultCallAttempts, "attempts per call for retryable errors")

	// Bind flags to viper
	for _, name := range []string{"config", "project", "endpoint", "token", "credentials", "output", "verbose", "retries"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewSecretsCommand())
	rootCmd.AddCommand(commands.NewVersionsCommand())
	rootCmd.AddCommand(commands.NewIAMCommand())
	rootCmd.AddCommand(commands.NewLocationsCommand())
}

func initConfig() {
	// A missing .env is fine
	_ = godotenv.Load()

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".cloudrest")

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("CLOUDREST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, commands.FormatError(err))
		os.Exit(1)
	}
}
