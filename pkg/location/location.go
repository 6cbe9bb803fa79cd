// Package location lists the locations a service is available in.
package location

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fivetwenty-io/cloudrest/pkg/gax"
)

// Location is a region or zone a service runs in.
type Location struct {
	Name        string            `json:"name,omitempty"`
	LocationID  string            `json:"locationId,omitempty"`
	DisplayName string            `json:"displayName,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	// Metadata is service specific and kept undecoded.
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// ListLocationsRequest lists the locations under Name, usually "projects/{project}".
type ListLocationsRequest struct {
	Name      string `json:"name,omitempty"`
	Filter    string `json:"filter,omitempty"`
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

// ListLocationsResponse is one page of locations.
type ListLocationsResponse struct {
	Locations     []Location `json:"locations,omitempty"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// GetLocationRequest names one location.
type GetLocationRequest struct {
	Name string `json:"name,omitempty"`
}

// Client calls the Locations mixin of a service.
type Client struct {
	exec *gax.Executor
}

// NewClient creates a client bound to a service's executor.
func NewClient(exec *gax.Executor) *Client {
	return &Client{exec: exec}
}

// ListLocations fetches one page of locations.
func (c *Client) ListLocations(ctx context.Context, req *ListLocationsRequest) (*ListLocationsResponse, error) {
	name, err := gax.PathParam("name", req.Name)
	if err != nil {
		return nil, err
	}

	call, err := gax.NewRequest(http.MethodGet, "/v1/"+name+"/locations").WithQueryParams(
		gax.QueryParam{Name: "filter", Value: req.Filter},
		gax.QueryParam{Name: "pageSize", Value: req.PageSize},
		gax.QueryParam{Name: "pageToken", Value: req.PageToken},
	)
	if err != nil {
		return nil, err
	}

	return gax.Execute[ListLocationsResponse](ctx, c.exec, call, nil)
}

// GetLocation fetches one location.
func (c *Client) GetLocation(ctx context.Context, req *GetLocationRequest) (*Location, error) {
	name, err := gax.PathParam("name", req.Name)
	if err != nil {
		return nil, err
	}

	return gax.Execute[Location](ctx, c.exec, gax.NewRequest(http.MethodGet, "/v1/"+name), nil)
}

// ListLocationsPaginator walks every page of ListLocations. The request's
// PageToken is the starting point; the request itself is not modified.
func (c *Client) ListLocationsPaginator(req *ListLocationsRequest) *gax.Paginator[Location] {
	return gax.NewPaginator(req.PageToken, func(ctx context.Context, pageToken string) (gax.Page[Location], error) {
		next := *req
		next.PageToken = pageToken

		resp, err := c.ListLocations(ctx, &next)
		if err != nil {
			return gax.Page[Location]{}, err
		}

		return gax.Page[Location]{Items: resp.Locations, NextPageToken: resp.NextPageToken}, nil
	})
}
