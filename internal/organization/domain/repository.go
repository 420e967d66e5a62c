package domain

import (
	"context"

	userdomain "github.com/smallbiznis/bastion/internal/user/domain"
	"gorm.io/gorm"
)

// Repository is the storage surface for organizations and their membership
// rows. Sentinel organizations never reach this layer.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetByID(ctx context.Context, id string) (*Organization, error)
	GetByName(ctx context.Context, name string) (*Organization, error)
	ListAll(ctx context.Context) ([]Organization, error)
	Create(ctx context.Context, org *Organization) error
	Update(ctx context.Context, org *Organization) error

	AddMember(ctx context.Context, member *OrganizationMember) error

	// DeleteMembers removes the user's membership rows in the organization,
	// restricted to the given roles when any are passed, and returns the
	// deleted rows so post-delete hooks can act on them.
	DeleteMembers(ctx context.Context, orgID, userID string, roleIn ...string) ([]OrganizationMember, error)

	// DeleteMembersByUsers removes every membership row the given users hold
	// in the organization.
	DeleteMembersByUsers(ctx context.Context, orgID string, userIDs []string) error

	// MemberUsersByRole returns the users joined through membership rows
	// holding any of the given roles.
	MemberUsersByRole(ctx context.Context, orgID string, roleIn []string) ([]userdomain.User, error)

	// MemberUsers returns the users joined through membership rows, leaving
	// out rows holding any of the excluded roles.
	MemberUsers(ctx context.Context, orgID string, excludeRoles []string) ([]userdomain.User, error)

	// UsersByGlobalRole returns users whose global role matches. Used when
	// queries run under a sentinel organization, which has no membership
	// rows.
	UsersByGlobalRole(ctx context.Context, roleIn []string) ([]userdomain.User, error)

	// AllUsers returns every user whose global role is not excluded.
	AllUsers(ctx context.Context, excludeRoles []string) ([]userdomain.User, error)

	// HasMember reports whether the user holds any of the given roles in the
	// organization.
	HasMember(ctx context.Context, orgID, userID string, roleIn []string) (bool, error)

	// OrgsByUserRole returns the distinct organizations where the user holds
	// any of the given roles.
	OrgsByUserRole(ctx context.Context, userID string, roleIn []string) ([]Organization, error)
}
