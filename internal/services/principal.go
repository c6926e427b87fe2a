package services

import (
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/google/uuid"
)

// Principal is the resolved identity behind an authenticated request. It can
// only be obtained from AuthService.Authenticate or AuthService.PrincipalFor,
// so role checks cannot run ahead of authentication.
type Principal struct {
	user *models.User
}

func (p *Principal) ID() uuid.UUID {
	return p.user.ID
}

func (p *Principal) Role() models.Role {
	return p.user.Role
}

// User returns a copy of the identity record as resolved for this request.
func (p *Principal) User() models.User {
	return *p.user
}

// Require fails with ErrForbidden unless the principal holds one of roles.
// A nil principal fails with ErrNotAuthenticated.
func (p *Principal) Require(roles ...models.Role) error {
	if p == nil || p.user == nil {
		return ErrNotAuthenticated
	}
	for _, r := range roles {
		if p.user.Role == r {
			return nil
		}
	}
	return ErrForbidden
}
