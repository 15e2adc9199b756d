package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHealthEndpoints verifies both probes against a live service.
func TestHealthEndpoints(t *testing.T) {
	client := setupService(t)
	ctx := context.Background()

	live, err := client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.NotEmpty(t, live.Uptime)
	require.Nil(t, live.Checks, "liveness carries no dependency checks")

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
}
