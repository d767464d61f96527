package auth

import (
	"log"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated identity derived once from a verified token.
// Roles come from the realm_access.roles claim; a missing or malformed claim
// yields an empty role set, never an error.
type Principal struct {
	UserID string
	Email  string
	Roles  map[string]struct{}
	Claims jwt.MapClaims
}

// NewPrincipal builds a Principal from verified token claims.
func NewPrincipal(claims jwt.MapClaims) Principal {
	p := Principal{
		Roles:  extractRoles(claims),
		Claims: claims,
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		p.UserID = sub
	} else if id, ok := claims["userId"].(string); ok {
		p.UserID = id
	}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	return p
}

// HasRole reports whether the principal carries the given role.
func (p Principal) HasRole(role string) bool {
	_, ok := p.Roles[role]
	return ok
}

// HasAnyRole reports whether the principal carries at least one of the roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if p.HasRole(role) {
			return true
		}
	}
	return false
}

func extractRoles(claims jwt.MapClaims) map[string]struct{} {
	roles := make(map[string]struct{})

	realmAccess, ok := claims["realm_access"].(map[string]any)
	if !ok {
		if _, present := claims["realm_access"]; present {
			log.Printf("auth: malformed realm_access claim, treating as no roles")
		}
		return roles
	}

	list, ok := realmAccess["roles"].([]any)
	if !ok {
		log.Printf("auth: roles not found in realm_access claim")
		return roles
	}

	for _, entry := range list {
		if role, ok := entry.(string); ok {
			roles[role] = struct{}{}
		}
	}
	return roles
}
