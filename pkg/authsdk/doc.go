/*
Package authsdk provides the typed client for the fleetauth service,
used by the dashboard frontends.

# Overview

The Client performs the wire calls: sign-in, user info, admin account
creation, bootstrap, and health checks. A successful SignIn stores the
returned bearer token on the Client so subsequent authenticated calls
just work:

	client := authsdk.NewClient("https://auth.fleet.example.com")

	resp, err := client.SignIn(ctx, "aadmin", "secret1")
	if err != nil { ... }

	// Token from the sign-in is used automatically.
	created, err := client.CreateUser(ctx, authsdk.CreateUserRequest{
		Name: "Indy Jones", Username: "i.jones", Password: "pw", Role: "inspector",
	})

Errors come back as *APIError values mapped to the service's error
codes, with sentinels for the common cases:

	if errors.Is(err, authsdk.ErrInvalidCredentials) { ... }

# Sessions and guards

Client implements session.Authenticator, so it plugs straight into
session.Manager, which owns the local sign-in state machine and
persistence. The guard package consumes the manager's state to make
render/redirect decisions for routed views.
*/
package authsdk
