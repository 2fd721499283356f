package auth

import "github.com/alexedwards/argon2id"

// HashPassword produces a salted argon2id hash. The plaintext is never
// recoverable from it.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// VerifyPassword reports whether password matches hash. The error is
// only non-nil for malformed hashes, not for mismatches.
func VerifyPassword(password, hash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, hash)
}
