package providers

import (
	"context"
	"fmt"
	"strings"
)

var _ AuthProvider = &InsecureAuthProvider{}

// InsecureAuthProvider accepts any non-empty token and treats it as the
// user ID, optionally followed by ":<name>". For development only.
type InsecureAuthProvider struct {
}

func NewInsecureAuthProvider() *InsecureAuthProvider {
	return &InsecureAuthProvider{}
}

func (p *InsecureAuthProvider) VerifyToken(ctx context.Context, idToken string) (*TokenClaims, error) {
	if idToken == "" {
		return nil, fmt.Errorf("empty token")
	}

	claims := &TokenClaims{UID: idToken}
	if uid, name, ok := strings.Cut(idToken, ":"); ok {
		claims.UID = uid
		claims.Name = name
	}

	return claims, nil
}
