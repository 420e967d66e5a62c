package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository exposes the user and user-group operations the scoping core
// consumes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetUser(ctx context.Context, id string) (*User, error)

	// RevokeOrgGrants removes the user from every group belonging to the
	// given organization.
	RevokeOrgGrants(ctx context.Context, orgID, userID string) error

	// RevokeAllGrants removes the user from every group regardless of
	// organization. Used when a member leaves an organization entirely.
	RevokeAllGrants(ctx context.Context, userID string) error
}
