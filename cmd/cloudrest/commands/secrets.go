package commands

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/fivetwenty-io/cloudrest/pkg/iam"
	"github.com/fivetwenty-io/cloudrest/pkg/secretmanager"
	"github.com/fivetwenty-io/cloudrest/pkg/wkt"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewSecretsCommand creates the secrets command group.
func NewSecretsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "secrets",
		Aliases: []string{"secret"},
		Short:   "Manage secrets",
		Long:    "List, create, inspect, update and delete secrets",
	}

	cmd.AddCommand(newSecretsListCommand())
	cmd.AddCommand(newSecretsGetCommand())
	cmd.AddCommand(newSecretsCreateCommand())
	cmd.AddCommand(newSecretsUpdateCommand())
	cmd.AddCommand(newSecretsDeleteCommand())
	cmd.AddCommand(newSecretsDescribeCommand())

	return cmd
}

func newSecretsListCommand() *cobra.Command {
	var (
		allPages bool
		pageSize int32
		filter   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List secrets",
		Long:  "List the secrets in the configured project",
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := projectParent()
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			req := &secretmanager.ListSecretsRequest{Parent: parent, PageSize: pageSize, Filter: filter}
			options := &gax.PaginationOptions{MaxPages: 1}

			if allPages {
				options = gax.DefaultPaginationOptions()
			}

			secrets, err := collectWithRetry(cmd.Context(), client.ListSecretsPaginator(req), options)
			if err != nil {
				return fmt.Errorf("failed to list secrets: %w", err)
			}

			return renderSecrets(cmd.OutOrStdout(), secrets)
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages")
	cmd.Flags().Int32Var(&pageSize, "page-size", constants.DefaultPageSize, "results per page")
	cmd.Flags().StringVar(&filter, "filter", "", "list filter, e.g. labels.env=prod")

	return cmd
}

// collectWithRetry restarts the collection when it fails with a retryable error.
func collectWithRetry[T any](ctx context.Context, paginator *gax.Paginator[T], options *gax.PaginationOptions) ([]T, error) {
	return call(ctx, func(ctx context.Context) ([]T, error) {
		return paginator.Collect(ctx, options)
	})
}

func newSecretsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get SECRET",
		Short: "Get secret details",
		Long:  "Display the metadata of a secret",
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

			secret, err := call(cmd.Context(), func(ctx context.Context) (*secretmanager.Secret, error) {
				return client.GetSecret(ctx, &secretmanager.GetSecretRequest{Name: name})
			})
			if err != nil {
				return fmt.Errorf("failed to get secret: %w", err)
			}

			return renderSecret(cmd.OutOrStdout(), secret)
		},
	}
}

func newSecretsCreateCommand() *cobra.Command {
	var (
		labels    []string
		locations []string
		ttl       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create [SECRET_ID]",
		Short: "Create a secret",
		Long:  "Create a secret without versions. A random id is generated when none is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := projectParent()
			if err != nil {
				return err
			}

			secretID := "secret-" + uuid.NewString()
			if len(args) == 1 {
				secretID = args[0]
			}

			parsedLabels, err := parseLabels(labels)
			if err != nil {
				return err
			}

			secret := &secretmanager.Secret{
				Labels:      parsedLabels,
				Replication: replicationFor(locations),
			}

			if ttl > 0 {
				secret.TTL = wkt.NewDuration(ttl)
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			// Create is not idempotent, so it is sent once.
			created, err := client.CreateSecret(cmd.Context(), &secretmanager.CreateSecretRequest{
				Parent:   parent,
				SecretID: secretID,
				Secret:   secret,
			})
			if err != nil {
				return fmt.Errorf("failed to create secret: %w", err)
			}

			return renderSecret(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "label as key=value (repeatable)")
	cmd.Flags().StringSliceVar(&locations, "locations", nil, "replicate only to these locations")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "delete the secret after this duration")

	return cmd
}

func replicationFor(locations []string) *secretmanager.Replication {
	if len(locations) == 0 {
		return &secretmanager.Replication{Automatic: &secretmanager.AutomaticReplication{}}
	}

	replicas := make([]secretmanager.Replica, 0, len(locations))
	for _, location := range locations {
		replicas = append(replicas, secretmanager.Replica{Location: location})
	}

	return &secretmanager.Replication{UserManaged: &secretmanager.UserManagedReplication{Replicas: replicas}}
}

func newSecretsUpdateCommand() *cobra.Command {
	var (
		labels      []string
		annotations []string
	)

	cmd := &cobra.Command{
		Use:   "update SECRET",
		Short: "Update a secret",
		Long:  "Replace the labels or annotations of a secret. Only the flags given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := secretName(args[0])
			if err != nil {
				return err
			}

			secret := &secretmanager.Secret{Name: name}
			mask := wkt.NewFieldMask()

			if cmd.Flags().Changed("label") {
				secret.Labels, err = parseLabels(labels)
				if err != nil {
					return err
				}

				mask.Paths = append(mask.Paths, "labels")
			}

			if cmd.Flags().Changed("annotation") {
				secret.Annotations, err = parseLabels(annotations)
				if err != nil {
					return err
				}

				mask.Paths = append(mask.Paths, "annotations")
			}

			if len(mask.Paths) == 0 {
				return ErrNothingToUpdate
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			updated, err := call(cmd.Context(), func(ctx context.Context) (*secretmanager.Secret, error) {
				return client.UpdateSecret(ctx, &secretmanager.UpdateSecretRequest{Secret: secret, UpdateMask: mask})
			})
			if err != nil {
				return fmt.Errorf("failed to update secret: %w", err)
			}

			return renderSecret(cmd.OutOrStdout(), updated)
		},
	}

	cmd.Flags().StringSliceVarP(&labels, "label", "l", nil, "label as key=value (repeatable, replaces all labels)")
	cmd.Flags().StringSliceVar(&annotations, "annotation", nil, "annotation as key=value (repeatable, replaces all annotations)")

	return cmd
}

func newSecretsDeleteCommand() *cobra.Command {
	var etag string

	cmd := &cobra.Command{
		Use:   "delete SECRET",
		Short: "Delete a secret",
		Long:  "Delete a secret and all of its versions",
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

			_, err = call(cmd.Context(), func(ctx context.Context) (struct{}, error) {
				return struct{}{}, client.DeleteSecret(ctx, &secretmanager.DeleteSecretRequest{Name: name, Etag: etag})
			})
			if err != nil {
				return fmt.Errorf("failed to delete secret: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted secret %s\n", name)

			return nil
		},
	}

	cmd.Flags().StringVar(&etag, "etag", "", "only delete if the secret's etag matches")

	return cmd
}

// SecretDescription combines a secret with its newest versions and policy.
type SecretDescription struct {
	Secret   *secretmanager.Secret         `json:"secret"`
	Versions []secretmanager.SecretVersion `json:"versions,omitempty"`
	Policy   *iam.Policy                   `json:"policy,omitempty"`
}

func newSecretsDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe SECRET",
		Short: "Describe a secret",
		Long:  "Display a secret together with its newest versions and its IAM policy",
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

			description, err := describeSecret(cmd.Context(), client, name)
			if err != nil {
				return fmt.Errorf("failed to describe secret: %w", err)
			}

			return renderDescription(cmd.OutOrStdout(), description)
		},
	}
}

func describeSecret(ctx context.Context, client *secretmanager.Client, name string) (*SecretDescription, error) {
	var description SecretDescription

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(constants.DefaultConcurrencyLimit)

	g.Go(func() error {
		secret, err := call(ctx, func(ctx context.Context) (*secretmanager.Secret, error) {
			return client.GetSecret(ctx, &secretmanager.GetSecretRequest{Name: name})
		})
		if err != nil {
			return err
		}

		description.Secret = secret

		return nil
	})

	g.Go(func() error {
		resp, err := call(ctx, func(ctx context.Context) (*secretmanager.ListSecretVersionsResponse, error) {
			return client.ListSecretVersions(ctx, &secretmanager.ListSecretVersionsRequest{
				Parent:   name,
				PageSize: constants.DescribeVersionLimit,
			})
		})
		if err != nil {
			return err
		}

		description.Versions = resp.Versions

		return nil
	})

	g.Go(func() error {
		policy, err := call(ctx, func(ctx context.Context) (*iam.Policy, error) {
			return client.GetIamPolicy(ctx, &iam.GetIamPolicyRequest{Resource: name})
		})
		if err != nil {
			// Callers without getIamPolicy permission still get the rest.
			if gax.IsPermissionDenied(err) {
				return nil
			}

			return err
		}

		description.Policy = policy

		return nil
	})

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return &description, nil
}

func renderSecrets(w io.Writer, secrets []secretmanager.Secret) error {
	return render(w, secrets, func(table *tablewriter.Table) error {
		if len(secrets) == 0 {
			_, _ = fmt.Fprintln(w, "No secrets found")
		}

		table.Header("Name", "Created", "Labels", "Replication")

		for _, secret := range secrets {
			_ = table.Append(lastSegment(secret.Name), formatTime(secret.CreateTime), formatLabels(secret.Labels),
				replicationSummary(secret.Replication))
		}

		return nil
	})
}

func renderSecret(w io.Writer, secret *secretmanager.Secret) error {
	return render(w, secret, func(table *tablewriter.Table) error {
		appendSecretRows(table, secret)

		return nil
	})
}

func appendSecretRows(table *tablewriter.Table, secret *secretmanager.Secret) {
	table.Header("Property", "Value")
	_ = table.Append("Name", secret.Name)
	_ = table.Append("Created", formatTime(secret.CreateTime))
	_ = table.Append("Labels", formatLabels(secret.Labels))
	_ = table.Append("Annotations", formatLabels(secret.Annotations))
	_ = table.Append("Replication", replicationSummary(secret.Replication))
	_ = table.Append("Etag", secret.Etag)

	if !secret.ExpireTime.IsZero() {
		_ = table.Append("Expires", formatTime(secret.ExpireTime))
	}

	for _, alias := range slices.Sorted(maps.Keys(secret.VersionAliases)) {
		_ = table.Append("Alias "+alias, strconv.FormatInt(int64(secret.VersionAliases[alias]), 10))
	}
}

func renderDescription(w io.Writer, description *SecretDescription) error {
	return render(w, description, func(table *tablewriter.Table) error {
		appendSecretRows(table, description.Secret)

		for _, version := range description.Versions {
			_ = table.Append("Version "+lastSegment(version.Name), string(version.State))
		}

		if description.Policy != nil {
			for _, binding := range description.Policy.Bindings {
				for _, member := range binding.Members {
					_ = table.Append(binding.Role, member)
				}
			}
		}

		return nil
	})
}

func replicationSummary(replication *secretmanager.Replication) string {
	switch {
	case replication == nil:
		return constants.NotAvailable
	case replication.UserManaged != nil:
		locations := make([]string, 0, len(replication.UserManaged.Replicas))
		for _, replica := range replication.UserManaged.Replicas {
			locations = append(locations, replica.Location)
		}

		return "user-managed: " + formatList(locations)
	default:
		return "automatic"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return constants.NotAvailable
	}

	return t.Format(time.RFC3339)
}

func formatList(items []string) string {
	if len(items) == 0 {
		return constants.NotAvailable
	}

	return strings.Join(items, ",")
}
