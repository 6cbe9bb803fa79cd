// Package cloudclient wires the runtime pieces together: it resolves
// credentials from a Config, builds the HTTP transport and returns ready
// service clients.
//
// Credentials are never discovered implicitly. Set exactly one of
// AccessToken, CredentialsFile, or ClientID with ClientSecret (optionally
// with RefreshToken):
//
//	client, err := cloudclient.NewSecretManager(&cloudclient.Config{
//		CredentialsFile: "/etc/cloudrest/key.json",
//	})
package cloudclient
