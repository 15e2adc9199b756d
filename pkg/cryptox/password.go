package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for upgraded hashes.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

const argon2idPrefix = "$argon2id$"

// ErrPasswordMismatch is returned by VerifyCredential when the password
// does not match the stored hash.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// Digest computes the legacy unsalted SHA-256 hex digest of a password.
//
// This is NOT a suitable password hash: it is unsalted and fast, so
// identical passwords produce identical digests and the digests are
// cheap to brute-force. It is kept only because the existing dashboard
// credential records store exactly this digest; every record verified
// with it is upgraded to Argon2id on the next successful sign-in. New
// hashes should come from HashPassword.
func Digest(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// HashPassword generates a PHC-format Argon2id hash string including
// salt and parameters.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyCredential compares a plaintext password against a stored hash,
// accepting both hash generations: Argon2id PHC strings and legacy
// SHA-256 hex digests. Returns ErrPasswordMismatch when the password is
// wrong, or a descriptive error when the stored hash is unparseable.
func VerifyCredential(password, stored string) error {
	if strings.HasPrefix(stored, argon2idPrefix) {
		return verifyArgon2id(password, stored)
	}
	return verifyLegacyDigest(password, stored)
}

// NeedsRehash reports whether the stored hash is a legacy digest that
// should be replaced with an Argon2id hash.
func NeedsRehash(stored string) bool {
	return !strings.HasPrefix(stored, argon2idPrefix)
}

func verifyLegacyDigest(password, stored string) error {
	want, err := hex.DecodeString(strings.ToLower(stored))
	if err != nil || len(want) != sha256.Size {
		return fmt.Errorf("cryptox: stored digest is not a sha256 hex string")
	}
	got := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(got[:], want) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

func verifyArgon2id(password, encodedHash string) error {
	// PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return errors.New("cryptox: invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return errors.New("cryptox: invalid hash format: not argon2id")
	}
	if parts[2] != "v=19" {
		return errors.New("cryptox: invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("cryptox: invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("cryptox: invalid hash format: failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("cryptox: invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		iters,
		mem,
		par,
		uint32(len(expected)), // #nosec G115 - hash lengths are tiny
	)

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}
