package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

// maskThreshold is the credential length at or below which the whole value
// is masked; longer credentials keep three characters on each end.
const maskThreshold = 6

// Gate validates the shared-secret API credential. One secret per process:
// there are no per-account keys, no expiry and no rotation.
type Gate struct {
	secret []byte
}

// NewGate creates a gate for the configured secret.
func NewGate(secret string) *Gate {
	return &Gate{secret: []byte(secret)}
}

// UnauthorizedError reports a rejected credential. It carries only the
// masked form of the supplied value, safe for diagnostic logging; the raw
// credential is never retained.
type UnauthorizedError struct {
	MaskedKey string
}

func (e *UnauthorizedError) Error() string {
	if e.MaskedKey == "" {
		return "unauthorized: missing api key"
	}
	return fmt.Sprintf("unauthorized: invalid api key %s", e.MaskedKey)
}

// Authorize compares the supplied credential against the configured secret
// in constant time. On mismatch or absence it returns an UnauthorizedError
// and nothing else happens: the gate has no side effects.
func (g *Gate) Authorize(supplied string) error {
	if supplied == "" {
		return &UnauthorizedError{}
	}
	if subtle.ConstantTimeCompare([]byte(supplied), g.secret) == 1 {
		return nil
	}
	return &UnauthorizedError{MaskedKey: Mask(supplied)}
}

// Mask redacts a credential for logging: values of 6 characters or fewer
// are fully masked, longer values show the first and last three characters
// around an ellipsis marker.
func Mask(credential string) string {
	if len(credential) <= maskThreshold {
		return strings.Repeat("*", len(credential))
	}
	return credential[:3] + "..." + credential[len(credential)-3:]
}
