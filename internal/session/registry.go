// Package session holds the token registry that backs bearer authentication.
//
// The registry is built once at startup from the credential list and is
// read-only afterwards: one random token is minted per credential and held
// for the process lifetime. There is no expiry and no refresh.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hirelab/vacancyload/internal/config"
)

// ErrInvalidCredentials is returned by SignIn for an unknown identity or a
// wrong secret.
var ErrInvalidCredentials = errors.New("invalid credentials")

type entry struct {
	token      string
	secretHash string
}

// Registry maps opaque bearer tokens to identities. Immutable after
// construction, so it is safe for concurrent use without locking.
type Registry struct {
	byToken    map[string]string // token -> identity
	byIdentity map[string]entry  // identity -> token + secret hash
}

// NewRegistry mints one fresh token per credential and hashes each secret.
func NewRegistry(creds []config.Credential) (*Registry, error) {
	r := &Registry{
		byToken:    make(map[string]string, len(creds)),
		byIdentity: make(map[string]entry, len(creds)),
	}
	for _, cred := range creds {
		hash, err := hashSecret(cred.Secret)
		if err != nil {
			return nil, fmt.Errorf("session: hash secret for %s: %w", cred.Identity, err)
		}
		token := uuid.New().String()
		r.byToken[token] = cred.Identity
		r.byIdentity[cred.Identity] = entry{token: token, secretHash: hash}
	}
	return r, nil
}

// ValidateBearer reports whether header is a well-formed bearer header
// carrying a known token. The header must be exactly two whitespace-separated
// fields with the first equal to "bearer" (case-insensitive). Pure and
// side-effect-free.
func (r *Registry) ValidateBearer(header string) bool {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return false
	}
	_, ok := r.byToken[parts[1]]
	return ok
}

// SignIn verifies the secret for identity and returns the pre-minted token.
// Unknown identities and wrong secrets both return ErrInvalidCredentials.
func (r *Registry) SignIn(identity, secret string) (string, error) {
	e, ok := r.byIdentity[identity]
	if !ok {
		dummyVerify()
		return "", ErrInvalidCredentials
	}
	valid, err := verifySecret(secret, e.secretHash)
	if err != nil {
		return "", fmt.Errorf("session: verify secret: %w", err)
	}
	if !valid {
		return "", ErrInvalidCredentials
	}
	return e.token, nil
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	return len(r.byToken)
}
