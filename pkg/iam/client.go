package iam

import (
	"context"
	"net/http"

	"github.com/fivetwenty-io/cloudrest/pkg/gax"
)

// PolicyClient calls the IAMPolicy methods, which every IAM-enabled
// service exposes as custom methods on its own resources.
type PolicyClient struct {
	exec *gax.Executor
}

// NewPolicyClient creates a client bound to a service's executor.
func NewPolicyClient(exec *gax.Executor) *PolicyClient {
	return &PolicyClient{exec: exec}
}

// SetIamPolicy replaces any existing policy on the resource.
func (c *PolicyClient) SetIamPolicy(ctx context.Context, req *SetIamPolicyRequest) (*Policy, error) {
	resource, err := gax.PathParam("resource", req.Resource)
	if err != nil {
		return nil, err
	}

	return gax.Execute[Policy](ctx, c.exec, gax.NewRequest(http.MethodPost, "/v1/"+resource+":setIamPolicy"), req)
}

// GetIamPolicy returns the policy on the resource. A resource without a
// policy yields an empty one.
func (c *PolicyClient) GetIamPolicy(ctx context.Context, req *GetIamPolicyRequest) (*Policy, error) {
	resource, err := gax.PathParam("resource", req.Resource)
	if err != nil {
		return nil, err
	}

	return gax.Execute[Policy](ctx, c.exec, gax.NewRequest(http.MethodPost, "/v1/"+resource+":getIamPolicy"), req)
}

// TestIamPermissions returns the subset of permissions the caller holds. A
// missing resource yields an empty set, not a 404.
func (c *PolicyClient) TestIamPermissions(ctx context.Context, req *TestIamPermissionsRequest) (*TestIamPermissionsResponse, error) {
	resource, err := gax.PathParam("resource", req.Resource)
	if err != nil {
		return nil, err
	}

	return gax.Execute[TestIamPermissionsResponse](ctx, c.exec,
		gax.NewRequest(http.MethodPost, "/v1/"+resource+":testIamPermissions"), req)
}
