package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity claims extracted from a verified token.
type Claims struct {
	SubjectID string
	Email     string
}

// Verifier validates externally-issued RS256 tokens against the cached
// signing key set. Issuer and audience are pinned to the trusted project:
// audience is the project id, issuer is the project's securetoken issuer.
type Verifier struct {
	keys     *KeyCache
	issuer   string
	audience string
	parser   *jwt.Parser
}

// NewVerifier creates a verifier for the given trusted project id.
func NewVerifier(keys *KeyCache, projectID string) *Verifier {
	return &Verifier{
		keys:     keys,
		issuer:   "https://securetoken.google.com/" + projectID,
		audience: projectID,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses and validates a raw token string and extracts its subject
// id and email. No side effects beyond key cache reads.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	token, err := v.parser.Parse(rawToken, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing key id header", ErrInvalidToken)
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, ErrKeyFetch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unreadable claims", ErrInvalidToken)
	}

	if iss, _ := claims.GetIssuer(); iss != v.issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	}
	aud, _ := claims.GetAudience()
	if !containsAudience(aud, v.audience) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}

	return &Claims{SubjectID: sub, Email: email}, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
