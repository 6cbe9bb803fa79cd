// Package gax is the runtime shared by every generated service client.
//
// # Overview
//
// A generated method encodes its request into a Request value (path and
// query parameters), then hands it to Execute together with an optional body.
// Execute fetches a bearer token from the CredentialProvider, sends the call
// over the Transport, and returns either the decoded response or an *Error.
//
//	req := gax.NewRequest(http.MethodGet, "v1/"+parent+"/secrets")
//	req, err := req.WithQuery("pageSize", in.PageSize)
//	if err != nil { return nil, err }
//	out, err := gax.Execute[ListSecretsResponse](ctx, exec, req, nil)
//
// # Errors
//
// Every failure is an *Error whose Kind is one of KindIO, KindSerialization,
// KindAuthentication, KindHTTP or KindOther. For KindHTTP the HTTPError
// carries the status, headers, raw body and the structured details parsed
// from the error envelope:
//
//	if httpErr, ok := gax.AsHTTPError(err); ok {
//	  for _, q := range gax.DetailsOf[gax.QuotaFailure](httpErr.Details) { ... }
//	  if delay, ok := httpErr.RetryDelay(); ok { ... }
//	}
//
// Nothing in this package retries. RetryDelay is advice for the caller; the
// backoff subpackage offers a caller-side helper that honours it.
//
// # Pagination
//
// Paginator threads nextPageToken from one list call into the next and stops
// at the first empty token:
//
//	for secret, err := range client.ListSecretsPaginator(req).All(ctx) { ... }
package gax
