package auth

import (
	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized covers every token failure: missing, malformed, expired,
// badly signed. Handlers map it to a single 401 so callers cannot probe which
// check failed.
var ErrUnauthorized = errors.New("unauthorized")

// Claims is the token payload: standard registered claims plus an optional
// role. Token issuance lives outside this service.
type Claims struct {
	Role string `json:"role,omitempty"`

	jwt.RegisteredClaims
}

// Verifier validates HMAC-signed bearer tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier with the given HMAC secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// Verify parses and validates a raw token string and returns the identity it
// asserts. The signing method is pinned to HMAC to rule out algorithm
// confusion with an attacker-chosen asymmetric key.
func (v *Verifier) Verify(raw string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthorized
	}
	if claims.Subject == "" {
		return Identity{}, ErrUnauthorized
	}

	return Identity{
		UserID: claims.Subject,
		Role:   claims.Role,
	}, nil
}
