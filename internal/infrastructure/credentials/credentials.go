// Package credentials provides the password verifiers used by the session store.
package credentials

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Plain stores passwords as-is and matches them exactly.
type Plain struct{}

func (Plain) Hash(password string) (string, error) { return password, nil }

func (Plain) Verify(secret, password string) bool {
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}

// Bcrypt stores bcrypt hashes. A zero Cost uses bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (Bcrypt) Verify(secret, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
}
