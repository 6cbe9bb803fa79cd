package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/fivetwenty-io/cloudrest/pkg/iam"
	"github.com/fivetwenty-io/cloudrest/pkg/wkt"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// conditionalPolicyVersion is the policy format that can carry conditions.
const conditionalPolicyVersion = 3

// NewIAMCommand creates the iam command group.
func NewIAMCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iam",
		Short: "Manage secret access policies",
		Long:  "Read and change the IAM policy of a secret",
	}

	cmd.AddCommand(newIAMGetPolicyCommand())
	cmd.AddCommand(newIAMAddBindingCommand())
	cmd.AddCommand(newIAMTestPermissionsCommand())

	return cmd
}

func newIAMGetPolicyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get-policy SECRET",
		Short: "Show a secret's IAM policy",
		Long:  "Display the role bindings of a secret",
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

			policy, err := call(cmd.Context(), func(ctx context.Context) (*iam.Policy, error) {
				return client.GetIamPolicy(ctx, &iam.GetIamPolicyRequest{
					Resource: name,
					Options:  &iam.GetPolicyOptions{RequestedPolicyVersion: conditionalPolicyVersion},
				})
			})
			if err != nil {
				return fmt.Errorf("failed to get policy: %w", err)
			}

			return renderPolicy(cmd.OutOrStdout(), policy)
		},
	}
}

func newIAMAddBindingCommand() *cobra.Command {
	var (
		role   string
		member string
	)

	cmd := &cobra.Command{
		Use:   "add-binding SECRET",
		Short: "Grant a role on a secret",
		Long: `Add a member to a role on a secret. The policy is read, changed and
written back with its etag, so a concurrent change makes the write fail
instead of being lost.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if role == "" {
				return constants.ErrRoleRequired
			}

			if member == "" {
				return constants.ErrMemberRequired
			}

			name, err := secretName(args[0])
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			// Retries repeat the whole read-modify-write so a retried write
			// never carries a stale etag.
			policy, err := call(cmd.Context(), func(ctx context.Context) (*iam.Policy, error) {
				current, getErr := client.GetIamPolicy(ctx, &iam.GetIamPolicyRequest{
					Resource: name,
					Options:  &iam.GetPolicyOptions{RequestedPolicyVersion: conditionalPolicyVersion},
				})
				if getErr != nil {
					return nil, getErr
				}

				if !current.AddMember(normalizeRole(role), member) {
					return current, nil
				}

				return client.SetIamPolicy(ctx, &iam.SetIamPolicyRequest{
					Resource:   name,
					Policy:     current,
					UpdateMask: wkt.NewFieldMask("bindings", "etag"),
				})
			})
			if err != nil {
				return fmt.Errorf("failed to add binding: %w", err)
			}

			return renderPolicy(cmd.OutOrStdout(), policy)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "role to grant, e.g. roles/secretmanager.secretAccessor")
	cmd.Flags().StringVar(&member, "member", "", "member to add, e.g. user:alice@example.com")

	return cmd
}

func normalizeRole(role string) string {
	if strings.HasPrefix(role, "roles/") || strings.HasPrefix(role, "projects/") || strings.HasPrefix(role, "organizations/") {
		return role
	}

	return "roles/" + role
}

func newIAMTestPermissionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test-permissions SECRET PERMISSION...",
		Short: "Check your permissions on a secret",
		Long:  "List which of the given permissions the caller holds on a secret",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return constants.ErrPermissionsRequired
			}

			name, err := secretName(args[0])
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			resp, err := call(cmd.Context(), func(ctx context.Context) (*iam.TestIamPermissionsResponse, error) {
				return client.TestIamPermissions(ctx, &iam.TestIamPermissionsRequest{Resource: name, Permissions: args[1:]})
			})
			if err != nil {
				return fmt.Errorf("failed to test permissions: %w", err)
			}

			granted := make(map[string]bool, len(resp.Permissions))
			for _, permission := range resp.Permissions {
				granted[permission] = true
			}

			return render(cmd.OutOrStdout(), resp, func(table *tablewriter.Table) error {
				table.Header("Permission", "Granted")

				for _, permission := range args[1:] {
					_ = table.Append(permission, fmt.Sprint(granted[permission]))
				}

				return nil
			})
		},
	}
}

func renderPolicy(w io.Writer, policy *iam.Policy) error {
	return render(w, policy, func(table *tablewriter.Table) error {
		if len(policy.Bindings) == 0 {
			_, _ = fmt.Fprintln(w, "No bindings found")
		}

		table.Header("Role", "Member", "Condition")

		for _, binding := range policy.Bindings {
			condition := constants.NotAvailable
			if binding.Condition != nil {
				condition = binding.Condition.Title
			}

			for _, member := range binding.Members {
				_ = table.Append(binding.Role, member, condition)
			}
		}

		return nil
	})
}
