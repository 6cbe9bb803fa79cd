package secretmanager

import (
	"context"

	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/fivetwenty-io/cloudrest/pkg/location"
)

// ListSecretsPaginator walks every page of ListSecrets starting at the
// request's PageToken. The request is not modified.
func (c *Client) ListSecretsPaginator(req *ListSecretsRequest) *gax.Paginator[Secret] {
	return gax.NewPaginator(req.PageToken, func(ctx context.Context, pageToken string) (gax.Page[Secret], error) {
		next := *req
		next.PageToken = pageToken

		resp, err := c.ListSecrets(ctx, &next)
		if err != nil {
			return gax.Page[Secret]{}, err
		}

		return gax.Page[Secret]{Items: resp.Secrets, NextPageToken: resp.NextPageToken}, nil
	})
}

// ListSecretVersionsPaginator walks every page of ListSecretVersions.
func (c *Client) ListSecretVersionsPaginator(req *ListSecretVersionsRequest) *gax.Paginator[SecretVersion] {
	return gax.NewPaginator(req.PageToken, func(ctx context.Context, pageToken string) (gax.Page[SecretVersion], error) {
		next := *req
		next.PageToken = pageToken

		resp, err := c.ListSecretVersions(ctx, &next)
		if err != nil {
			return gax.Page[SecretVersion]{}, err
		}

		return gax.Page[SecretVersion]{Items: resp.Versions, NextPageToken: resp.NextPageToken}, nil
	})
}

// ListLocationsPaginator walks every page of ListLocations.
func (c *Client) ListLocationsPaginator(req *location.ListLocationsRequest) *gax.Paginator[location.Location] {
	return c.locations.ListLocationsPaginator(req)
}
