// Package secretmanager is a client for the Secret Manager REST API.
//
// Every method performs exactly one HTTP call through a gax.Executor and
// returns a *gax.Error on failure:
//
//	client := secretmanager.NewClient(exec)
//
//	secret, err := client.GetSecret(ctx, &secretmanager.GetSecretRequest{
//		Name: "projects/my-project/secrets/db-password",
//	})
//	if gax.IsNotFound(err) {
//		// ...
//	}
//
// List methods have paginator variants that follow nextPageToken until the
// server returns an empty one.
package secretmanager
