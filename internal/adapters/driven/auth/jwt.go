// Package auth reads claims from the bearer credential.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// Ensure JWTInspector implements the interface.
var _ driven.TokenInspector = (*JWTInspector)(nil)

// ErrOpaqueToken indicates the credential is not a JWT.
var ErrOpaqueToken = errors.New("credential is not a JWT")

// JWTInspector decodes JWT claims without verifying the signature.
// The backend remains the authority on validity; the client only uses the
// claims to skip a credential that has already expired.
type JWTInspector struct {
	parser *jwt.Parser
}

// NewJWTInspector creates an inspector.
func NewJWTInspector() *JWTInspector {
	return &JWTInspector{parser: jwt.NewParser()}
}

// Inspect returns the email and expiry carried by token.
// ExpiresAt is zero when the token has no exp claim.
func (i *JWTInspector) Inspect(token string) (*driven.TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	out := &driven.TokenClaims{}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("read exp claim: %w", err)
	}
	if exp != nil {
		out.ExpiresAt = exp.Unix()
	}

	for _, key := range []string{"email", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			out.Email = v
			break
		}
	}
	return out, nil
}
