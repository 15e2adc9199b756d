package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/apufleet/fleetauth/pkg/idx"
)

// Signer mints EdDSA-signed access tokens.
type Signer struct {
	Issuer string
	TTL    time.Duration

	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewSigner generates a fresh Ed25519 keypair and returns a Signer
// bound to it.
func NewSigner(issuer string, ttl time.Duration) (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: failed to generate signing key: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &Signer{Issuer: issuer, TTL: ttl, priv: priv, pub: pub}, nil
}

// Ready reports whether key material is loaded.
func (s *Signer) Ready() bool { return len(s.priv) > 0 }

// Sign mints a token for the given subject. Returns the compact JWT and
// its expiry.
func (s *Signer) Sign(subject, username, role string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.TTL)

	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   subject,
			ID:        idx.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(s.priv)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwtx: failed to sign token: %w", err)
	}
	return signed, exp, nil
}

// Verifier returns the verifying half of this signer's keypair.
func (s *Signer) Verifier() *Verifier {
	return &Verifier{Issuer: s.Issuer, pub: s.pub}
}
