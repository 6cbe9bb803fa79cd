package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/fivetwenty-io/cloudrest/pkg/secretmanager"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewVersionsCommand creates the versions command group.
func NewVersionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Manage secret versions",
		Long:  "Add, access and change the state of secret versions",
	}

	cmd.AddCommand(newVersionsListCommand())
	cmd.AddCommand(newVersionsGetCommand())
	cmd.AddCommand(newVersionsAddCommand())
	cmd.AddCommand(newVersionsAccessCommand())
	cmd.AddCommand(newVersionsStateCommand("enable", "Enable a secret version", enableVersion))
	cmd.AddCommand(newVersionsStateCommand("disable", "Disable a secret version", disableVersion))
	cmd.AddCommand(newVersionsStateCommand("destroy", "Destroy a secret version's payload irrevocably", destroyVersion))

	return cmd
}

func newVersionsListCommand() *cobra.Command {
	var (
		allPages bool
		pageSize int32
		filter   string
	)

	cmd := &cobra.Command{
		Use:   "list SECRET",
		Short: "List secret versions",
		Long:  "List the versions of a secret, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := secretName(args[0])
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			req := &secretmanager.ListSecretVersionsRequest{Parent: name, PageSize: pageSize, Filter: filter}
			options := &gax.PaginationOptions{MaxPages: 1}

			if allPages {
				options = gax.DefaultPaginationOptions()
			}

			versions, err := collectWithRetry(cmd.Context(), client.ListSecretVersionsPaginator(req), options)
			if err != nil {
				return fmt.Errorf("failed to list versions: %w", err)
			}

			return renderVersions(cmd.OutOrStdout(), versions)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().Int32Var(&pageSize, "page-size", constants.DefaultPageSize, "results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "list filter, e.g. state:ENABLED")

	return cmd
}

func newVersionsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SECRET [VERSION]",
		Short: "Get version details",
		Long:  "Display the metadata of a secret version. VERSION defaults to latest.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := versionName(args[0], optionalArg(args, 1))
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			version, err := call(cmd.Context(), func(ctx context.Context) (*secretmanager.SecretVersion, error) {
				return client.GetSecretVersion(ctx, &secretmanager.GetSecretVersionRequest{Name: name})
			})
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}

			return renderVersion(cmd.OutOrStdout(), version)
		},
	}
}

func newVersionsAddCommand() *cobra.Command {
	var (
		data     string
		dataFile string
	)

	cmd := &cobra.Command{
		Use:   "add SECRET",
		Short: "Add a secret version",
		Long: `Add a version holding a new payload. The payload comes from --data,
from --data-file ("-" reads stdin), or from a hidden prompt on a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := secretName(args[0])
			if err != nil {
				return err
			}

			payload, err := readPayload(cmd, data, dataFile)
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			// Adding a version is not idempotent, so it is sent once.
			version, err := client.AddSecretVersion(cmd.Context(), &secretmanager.AddSecretVersionRequest{
				Parent:  name,
				Payload: secretmanager.NewPayload(payload),
			})
			if err != nil {
				return fmt.Errorf("failed to add version: %w", err)
			}

			return renderVersion(cmd.OutOrStdout(), version)
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "payload (visible in shell history, prefer --data-file)")
	cmd.Flags().StringVar(&dataFile, "data-file", "", `file holding the payload, "-" for stdin`)

	return cmd
}

func readPayload(cmd *cobra.Command, data, dataFile string) ([]byte, error) {
	var (
		payload []byte
		err     error
	)

	switch {
	case data != "":
		payload = []byte(data)
	case dataFile == "-":
		payload, err = io.ReadAll(cmd.InOrStdin())
	case dataFile != "":
		payload, err = readDataFile(dataFile)
	default:
		payload, err = promptPayload(cmd.ErrOrStderr())
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if len(payload) == 0 {
		return nil, constants.ErrEmptyPayload
	}

	return payload, nil
}

func readDataFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNotRegularFile, path)
	}

	// #nosec G304 -- the user names the file to upload
	return os.ReadFile(path)
}

func promptPayload(prompt io.Writer) ([]byte, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return nil, constants.ErrPayloadNotTerminal
	}

	_, _ = fmt.Fprint(prompt, "Secret payload: ")

	payload, err := term.ReadPassword(fd)

	_, _ = fmt.Fprintln(prompt)

	return payload, err
}

func newVersionsAccessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "access SECRET [VERSION]",
		Short: "Access a secret version's payload",
		Long: `Print the payload of a secret version. VERSION defaults to latest.
Table output prints the raw payload; json and yaml print the full response.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := versionName(args[0], optionalArg(args, 1))
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			resp, err := call(cmd.Context(), func(ctx context.Context) (*secretmanager.AccessSecretVersionResponse, error) {
				return client.AccessSecretVersion(ctx, &secretmanager.AccessSecretVersionRequest{Name: name})
			})
			if err != nil {
				return fmt.Errorf("failed to access version: %w", err)
			}

			payload, err := resp.Data()
			if err != nil {
				return err
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format == constants.FormatTable {
				_, err = cmd.OutOrStdout().Write(payload)

				return err
			}

			return render(cmd.OutOrStdout(), resp, nil)
		},
	}
}

type versionTransition func(ctx context.Context, client *secretmanager.Client, name, etag string) (*secretmanager.SecretVersion, error)

func enableVersion(ctx context.Context, client *secretmanager.Client, name, etag string) (*secretmanager.SecretVersion, error) {
	return client.EnableSecretVersion(ctx, &secretmanager.EnableSecretVersionRequest{Name: name, Etag: etag})
}

func disableVersion(ctx context.Context, client *secretmanager.Client, name, etag string) (*secretmanager.SecretVersion, error) {
	return client.DisableSecretVersion(ctx, &secretmanager.DisableSecretVersionRequest{Name: name, Etag: etag})
}

func destroyVersion(ctx context.Context, client *secretmanager.Client, name, etag string) (*secretmanager.SecretVersion, error) {
	return client.DestroySecretVersion(ctx, &secretmanager.DestroySecretVersionRequest{Name: name, Etag: etag})
}

func newVersionsStateCommand(use, short string, transition versionTransition) *cobra.Command {
	var etag string

	cmd := &cobra.Command{
		Use:   use + " SECRET VERSION",
		Short: short,
		Long:  short + ". VERSION must be a version number; aliases such as latest are rejected by the service.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := versionName(args[0], args[1])
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			version, err := call(cmd.Context(), func(ctx context.Context) (*secretmanager.SecretVersion, error) {
				return transition(ctx, client, name, etag)
			})
			if err != nil {
				return fmt.Errorf("failed to %s version: %w", use, err)
			}

			return renderVersion(cmd.OutOrStdout(), version)
		},
	}

	cmd.Flags().StringVar(&etag, "etag", "", "only apply if the version's etag matches")

	return cmd
}

func optionalArg(args []string, index int) string {
	if len(args) > index {
		return args[index]
	}

	return ""
}

func renderVersions(w io.Writer, versions []secretmanager.SecretVersion) error {
	return render(w, versions, func(table *tablewriter.Table) error {
		if len(versions) == 0 {
			_, _ = fmt.Fprintln(w, "No versions found")
		}

		table.Header("Version", "State", "Created", "Destroyed")

		for _, version := range versions {
			_ = table.Append(lastSegment(version.Name), string(version.State), formatTime(version.CreateTime),
				formatTime(version.DestroyTime))
		}

		return nil
	})
}

func renderVersion(w io.Writer, version *secretmanager.SecretVersion) error {
	return render(w, version, func(table *tablewriter.Table) error {
		table.Header("Property", "Value")
		_ = table.Append("Name", version.Name)
		_ = table.Append("State", string(version.State))
		_ = table.Append("Created", formatTime(version.CreateTime))
		_ = table.Append("Destroyed", formatTime(version.DestroyTime))
		_ = table.Append("Etag", version.Etag)

		return nil
	})
}
