package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed   = errors.New("password hashing failed")
	ErrInvalidPassword = errors.New("invalid password")
)

// Cost 12 keeps a single hash around the 100ms mark on current hardware,
// which is also the cost the dummy hash below was generated with.
const Cost = 12

// dummyHash is a bcrypt hash of a random throwaway string. Comparing
// against it burns the same work factor as a real verification, so the
// "no such user" path is indistinguishable by latency from "wrong password".
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrInvalidPassword
	}

	hashedBytes, err := bcrypt.GenerateFromPassword(truncate(password), Cost)
	if err != nil {
		return "", ErrHashingFailed
	}

	return string(hashedBytes), nil
}

// ComparePassword reports whether password matches hashedPassword.
// Malformed hashes and empty inputs count as a mismatch, never an error:
// verification must not crash the login path.
func ComparePassword(hashedPassword, password string) bool {
	if hashedPassword == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), truncate(password)) == nil
}

// bcrypt reads at most 72 bytes of input; recent x/crypto versions reject
// longer passwords instead of silently truncating. Trim on both the hash
// and compare paths so passwords up to the 100-char policy limit stay valid.
func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

// DummyCompare runs one full-cost bcrypt comparison against a fixed hash.
// Called on authentication paths that have no stored hash to check so that
// every failure path performs exactly one verification-shaped operation.
func DummyCompare(password string) {
	if password == "" {
		password = "timing-equalizer"
	}
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
}
