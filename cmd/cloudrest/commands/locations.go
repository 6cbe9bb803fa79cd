package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/fivetwenty-io/cloudrest/pkg/location"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewLocationsCommand creates the locations command group.
func NewLocationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List service locations",
		Long:  "List the locations Secret Manager is available in",
	}

	cmd.AddCommand(newLocationsListCommand())
	cmd.AddCommand(newLocationsGetCommand())

	return cmd
}

func newLocationsListCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		Long:  "List every location available to the configured project",
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := projectParent()
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			req := &location.ListLocationsRequest{Name: parent, Filter: filter}

			locations, err := collectWithRetry(cmd.Context(), client.ListLocationsPaginator(req), gax.DefaultPaginationOptions())
			if err != nil {
				return fmt.Errorf("failed to list locations: %w", err)
			}

			return render(cmd.OutOrStdout(), locations, func(table *tablewriter.Table) error {
				table.Header("Location", "Display Name")

				for _, loc := range locations {
					_ = table.Append(loc.LocationID, displayName(loc))
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "list filter")

	return cmd
}

func newLocationsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get LOCATION",
		Short: "Get location details",
		Long:  "Display one location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent, err := projectParent()
			if err != nil {
				return err
			}

			client, err := newSecretManagerClient(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			loc, err := call(cmd.Context(), func(ctx context.Context) (*location.Location, error) {
				return client.GetLocation(ctx, &location.GetLocationRequest{Name: parent + "/locations/" + args[0]})
			})
			if err != nil {
				return fmt.Errorf("failed to get location: %w", err)
			}

			return renderLocation(cmd.OutOrStdout(), loc)
		},
	}
}

func renderLocation(w io.Writer, loc *location.Location) error {
	return render(w, loc, func(table *tablewriter.Table) error {
		table.Header("Property", "Value")
		_ = table.Append("Name", loc.Name)
		_ = table.Append("Location", loc.LocationID)
		_ = table.Append("Display Name", displayName(*loc))
		_ = table.Append("Labels", formatLabels(loc.Labels))

		return nil
	})
}

func displayName(loc location.Location) string {
	if loc.DisplayName == "" {
		return constants.NotAvailable
	}

	return loc.DisplayName
}
