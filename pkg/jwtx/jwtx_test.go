package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner("fleetauth-test", time.Minute)
	require.NoError(t, err)
	require.True(t, signer.Ready())

	raw, exp, err := signer.Sign("aadmin", "aadmin", "admin")
	require.NoError(t, err)
	require.True(t, exp.After(time.Now()))

	claims, err := signer.Verifier().Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "aadmin", claims.Subject)
	require.Equal(t, "aadmin", claims.Username)
	require.Equal(t, "admin", claims.Role)
	require.NotEmpty(t, claims.ID)
	require.NoError(t, claims.ValidateExpiry())
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	t.Parallel()

	a, err := NewSigner("fleetauth-test", time.Minute)
	require.NoError(t, err)
	b, err := NewSigner("fleetauth-test", time.Minute)
	require.NoError(t, err)

	raw, _, err := a.Sign("aadmin", "aadmin", "admin")
	require.NoError(t, err)

	_, err = b.Verifier().Verify(raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner("fleetauth-test", time.Minute)
	require.NoError(t, err)
	signer.TTL = -time.Minute

	raw, _, err := signer.Sign("aadmin", "aadmin", "admin")
	require.NoError(t, err)

	_, err = signer.Verifier().Verify(raw)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner("someone-else", time.Minute)
	require.NoError(t, err)

	raw, _, err := signer.Sign("aadmin", "aadmin", "admin")
	require.NoError(t, err)

	v := signer.Verifier()
	v.Issuer = "fleetauth-test"
	_, err = v.Verify(raw)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner("fleetauth-test", time.Minute)
	require.NoError(t, err)

	_, err = signer.Verifier().Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
