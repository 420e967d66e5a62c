package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound            = errors.New("organization not found")
	ErrInvalidName         = errors.New("invalid organization name")
	ErrInvalidOrganization = errors.New("invalid organization")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidUser         = errors.New("invalid user")
	ErrMemberExists        = errors.New("membership already exists")
	ErrSentinelImmutable   = errors.New("sentinel organizations cannot be persisted")
)

// Service owns the organization and membership lifecycle, including the
// cascade cleanup that keeps permission and group grants consistent with
// membership.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Organization, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Organization, error)

	AddMember(ctx context.Context, orgID, userID, role string) (*OrganizationMember, error)

	// RemoveMember revokes the user's membership in the organization,
	// restricted to the given roles when any are passed, then strips the
	// user's organization-scoped permission and group grants.
	RemoveMember(ctx context.Context, orgID, userID string, roleIn ...string) error

	// RemoveUsers removes the users from the organization entirely: all of
	// their permission and group grants are revoked first (unscoped — the
	// member is leaving), then every membership row is deleted.
	RemoveUsers(ctx context.Context, orgID string, userIDs ...string) error
}

// GrantRevoker is the slice of a collaborator repository the membership
// cascade consumes. The perm and user repositories both implement it.
type GrantRevoker interface {
	// RevokeOrgGrants removes the user from every grant belonging to the
	// given organization.
	RevokeOrgGrants(ctx context.Context, orgID, userID string) error

	// RevokeAllGrants removes the user from every grant regardless of
	// organization.
	RevokeAllGrants(ctx context.Context, userID string) error
}

// CreateRequest carries the fields for a new organization.
type CreateRequest struct {
	Name      string
	Comment   string
	CreatedBy string
}

// UpdateRequest carries the mutable organization fields.
type UpdateRequest struct {
	Name    string
	Comment string
}
