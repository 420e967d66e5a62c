// Package domain contains persistence models for organization scoping.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Well-known organization identities. ROOT, DEFAULT and SYSTEM are never
// persisted; they are in-memory sentinels with fixed ids.
const (
	RootID   = "00000000-0000-0000-0000-000000000000"
	RootName = "ROOT"

	DefaultID   = "DEFAULT"
	DefaultName = "DEFAULT"

	SystemID   = "00000000-0000-0000-0000-000000000002"
	SystemName = "SYSTEM"
)

// Organization represents a tenant scope partitioning resources and users.
type Organization struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_organizations_name" json:"name"`
	CreatedBy   *string   `gorm:"type:varchar(128)" json:"created_by,omitempty"`
	DateCreated time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"date_created"`
	Comment     string    `gorm:"type:text;not null;default:''" json:"comment"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// New builds a real organization with a fresh id.
func New(name string) Organization {
	return Organization{
		ID:          uuid.NewString(),
		Name:        name,
		DateCreated: time.Now().UTC(),
	}
}

// Default returns the DEFAULT sentinel, the fallback scope when no real
// organization is selected.
func Default() *Organization {
	return &Organization{ID: DefaultID, Name: DefaultName}
}

// Root returns the ROOT sentinel, the unscoped administrative view.
func Root() *Organization {
	return &Organization{ID: RootID, Name: RootName}
}

// System returns the SYSTEM sentinel, the scope for system-internal
// operations.
func System() *Organization {
	return &Organization{ID: SystemID, Name: SystemName}
}

// IsReal reports whether the organization is backed by a storage row rather
// than being one of the sentinels. Sentinel checks compare ids by value.
func (o *Organization) IsReal() bool {
	return o.ID != DefaultID && o.ID != RootID && o.ID != SystemID
}

func (o *Organization) IsRoot() bool { return o.ID == RootID }

func (o *Organization) IsDefault() bool { return o.ID == DefaultID }

func (o *Organization) IsSystem() bool { return o.ID == SystemID }

// OrgID returns the id used to scope queries: a real organization scopes by
// its own id, ROOT scopes globally by its fixed id, and the remaining
// sentinels carry no scope at all.
func (o *Organization) OrgID() string {
	switch {
	case o.IsReal():
		return o.ID
	case o.IsRoot():
		return RootID
	default:
		return ""
	}
}

func (o *Organization) String() string { return o.Name }

// OrganizationMember links one user to one organization under one role.
// A user may hold several distinct roles in the same organization, but the
// (org, user, role) triple is unique.
type OrganizationMember struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	OrgID       string    `gorm:"type:char(36);not null;index;uniqueIndex:ux_org_user_role,priority:1" json:"org_id"`
	UserID      string    `gorm:"type:char(36);not null;index;uniqueIndex:ux_org_user_role,priority:2" json:"user_id"`
	Role        string    `gorm:"type:varchar(16);not null;default:'User';uniqueIndex:ux_org_user_role,priority:3" json:"role"`
	DateCreated time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"date_created"`
	DateUpdated time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"date_updated"`
	CreatedBy   *string   `gorm:"type:varchar(128)" json:"created_by,omitempty"`
}

// TableName sets the database table name. The explicit name keeps the layout
// compatible with the pre-existing schema.
func (OrganizationMember) TableName() string { return "orgs_organization_members" }
