package secretmanager

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/fivetwenty-io/cloudrest/pkg/gax"
	"github.com/fivetwenty-io/cloudrest/pkg/iam"
	"github.com/fivetwenty-io/cloudrest/pkg/location"
	"github.com/fivetwenty-io/cloudrest/pkg/wkt"
)

// DefaultEndpoint is the public Secret Manager endpoint.
const DefaultEndpoint = constants.SecretManagerEndpoint

// Client calls Secret Manager. It holds no state besides the executor and
// is safe for concurrent use.
type Client struct {
	exec      *gax.Executor
	policies  *iam.PolicyClient
	locations *location.Client
}

// NewClient creates a client over exec, which should be bound to
// DefaultEndpoint or a compatible one.
func NewClient(exec *gax.Executor) *Client {
	return &Client{
		exec:      exec,
		policies:  iam.NewPolicyClient(exec),
		locations: location.NewClient(exec),
	}
}

// ListSecrets fetches one page of secrets.
func (c *Client) ListSecrets(ctx context.Context, req *ListSecretsRequest) (*ListSecretsResponse, error) {
	parent, err := gax.PathParam("parent", req.Parent)
	if err != nil {
		return nil, err
	}

	call, err := gax.NewRequest(http.MethodGet, "/v1/"+parent+"/secrets").WithQueryParams(
		gax.QueryParam{Name: "pageSize", Value: req.PageSize},
		gax.QueryParam{Name: "pageToken", Value: req.PageToken},
		gax.QueryParam{Name: "filter", Value: req.Filter},
	)
	if err != nil {
		return nil, err
	}

	return gax.Execute[ListSecretsResponse](ctx, c.exec, call, nil)
}

// CreateSecret creates a secret without any versions.
func (c *Client) CreateSecret(ctx context.Context, req *CreateSecretRequest) (*Secret, error) {
	parent, err := gax.PathParam("parent", req.Parent)
	if err != nil {
		return nil, err
	}

	call, err := gax.NewRequest(http.MethodPost, "/v1/"+parent+"/secrets").WithQuery("secretId", req.SecretID)
	if err != nil {
		return nil, err
	}

	return gax.Execute[Secret](ctx, c.exec, call, req.Secret)
}

// AddSecretVersion adds a version holding the request's payload.
func (c *Client) AddSecretVersion(ctx context.Context, req *AddSecretVersionRequest) (*SecretVersion, error) {
	parent, err := gax.PathParam("parent", req.Parent)
	if err != nil {
		return nil, err
	}

	return gax.Execute[SecretVersion](ctx, c.exec, gax.NewRequest(http.MethodPost, "/v1/"+parent+":addVersion"), req)
}

// GetSecret fetches a secret's metadata.
func (c *Client) GetSecret(ctx context.Context, req *GetSecretRequest) (*Secret, error) {
	name, err := gax.PathParam("name", req.Name)
	if err != nil {
		return nil, err
	}

	return gax.Execute[Secret](ctx, c.exec, gax.NewRequest(http.MethodGet, "/v1/"+name), nil)
}

// UpdateSecret updates the fields named by the update mask.
func (c *Client) UpdateSecret(ctx context.Context, req *UpdateSecretRequest) (*Secret, error) {
	secret, err := gax.RequiredField(req.Secret, "secret")
	if err != nil {
		return nil, err
	}

	name, err := gax.PathParam("secret.name", secret.Name)
	if err != nil {
		return nil, err
	}

	call, err := gax.NewRequest(http.MethodPatch, "/v1/"+name).WithQuery("updateMask", req.UpdateMask)
	if err != nil {
		return nil, err
	}

	return gax.Execute[Secret](ctx, c.exec, call, secret)
}

// DeleteSecret deletes a secret and all of its versions.
func (c *Client) DeleteSecret(ctx context.Context, req *DeleteSecretRequest) error {
	name, err := gax.PathParam("name", req.Name)
	if err != nil {
		return err
	}

	call, err := gax.NewRequest(http.MethodDelete, "/v1/"+name).WithQuery("etag", req.Etag)
	if err != nil {
		return err
	}

	_, err = gax.Execute[wkt.Empty](ctx, c.exec, call, nil)

	return err
}

// ListSecretVersions fetches one page of a secret's versions.
func (c *Client) ListSecretVersions(ctx context.Context, req *ListSecretVersionsRequest) (*ListSecretVersionsResponse, error) {
	parent, err := gax.PathParam("parent", req.Parent)
	if err != nil {
		return nil, err
	}

	call, err := gax.NewRequest(http.MethodGet, "/v1/"+parent+"/versions").WithQueryParams(
		gax.QueryParam{Name: "pageSize", Value: req.PageSize},
		gax.QueryParam{Name: "pageToken", Value: req.PageToken},
		gax.QueryParam{Name: "filter", Value: req.Filter},
	)
	if err != nil {
		return nil, err
	}

	return gax.Execute[ListSecretVersionsResponse](ctx, c.exec, call, nil)
}

// GetSecretVersion fetches a version's metadata.
func (c *Client) GetSecretVersion(ctx context.Context, req *GetSecretVersionRequest) (*SecretVersion, error) {
	name, err := gax.PathParam("name", req.Name)
	if err != nil {
		return nil, err
	}

	return gax.Execute[SecretVersion](ctx, c.exec, gax.NewRequest(http.MethodGet, "/v1/"+name), nil)
}

// AccessSecretVersion reads a version's payload.
func (c *Client) AccessSecretVersion(ctx context.Context, req *AccessSecretVersionRequest) (*AccessSecretVersionResponse, error) {
	name, err := gax.PathParam("name", req.Name)
	if err != nil {
		return nil, err
	}

	return gax.Execute[AccessSecretVersionResponse](ctx, c.exec, gax.NewRequest(http.MethodGet, "/v1/"+name+":access"), nil)
}

// DisableSecretVersion moves a version to DISABLED.
func (c *Client) DisableSecretVersion(ctx context.Context, req *DisableSecretVersionRequest) (*SecretVersion, error) {
	return versionAction(ctx, c, req.Name, ":disable", req)
}

// EnableSecretVersion moves a version to ENABLED.
func (c *Client) EnableSecretVersion(ctx context.Context, req *EnableSecretVersionRequest) (*SecretVersion, error) {
	return versionAction(ctx, c, req.Name, ":enable", req)
}

// DestroySecretVersion moves a version to DESTROYED and discards its payload.
func (c *Client) DestroySecretVersion(ctx context.Context, req *DestroySecretVersionRequest) (*SecretVersion, error) {
	return versionAction(ctx, c, req.Name, ":destroy", req)
}

func versionAction(ctx context.Context, c *Client, name, verb string, body any) (*SecretVersion, error) {
	name, err := gax.PathParam("name", name)
	if err != nil {
		return nil, err
	}

	return gax.Execute[SecretVersion](ctx, c.exec, gax.NewRequest(http.MethodPost, "/v1/"+name+verb), body)
}

// SetIamPolicy replaces the access control policy on a secret.
func (c *Client) SetIamPolicy(ctx context.Context, req *iam.SetIamPolicyRequest) (*iam.Policy, error) {
	return c.policies.SetIamPolicy(ctx, req)
}

// GetIamPolicy reads the access control policy on a secret. Unlike the
// generic IAM method this is a GET, so the options travel in the query as
// options.requestedPolicyVersion.
func (c *Client) GetIamPolicy(ctx context.Context, req *iam.GetIamPolicyRequest) (*iam.Policy, error) {
	resource, err := gax.PathParam("resource", req.Resource)
	if err != nil {
		return nil, err
	}

	call, err := gax.NewRequest(http.MethodGet, "/v1/"+resource+":getIamPolicy").WithQuery("options", req.Options)
	if err != nil {
		return nil, err
	}

	return gax.Execute[iam.Policy](ctx, c.exec, call, nil)
}

// TestIamPermissions returns the permissions the caller holds on a secret.
func (c *Client) TestIamPermissions(ctx context.Context, req *iam.TestIamPermissionsRequest) (*iam.TestIamPermissionsResponse, error) {
	return c.policies.TestIamPermissions(ctx, req)
}

// ListLocations fetches one page of the locations Secret Manager runs in.
func (c *Client) ListLocations(ctx context.Context, req *location.ListLocationsRequest) (*location.ListLocationsResponse, error) {
	return c.locations.ListLocations(ctx, req)
}

// GetLocation fetches one location.
func (c *Client) GetLocation(ctx context.Context, req *location.GetLocationRequest) (*location.Location, error) {
	return c.locations.GetLocation(ctx, req)
}
