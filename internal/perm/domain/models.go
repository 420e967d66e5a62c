// Package domain contains the asset-permission surface the scoping core
// collaborates with. The full permission model is owned elsewhere; only the
// organization-scoped user grants matter here.
package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// AssetPermission is an organization-scoped permission set granting users
// access to assets.
type AssetPermission struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	OrgID       string    `gorm:"type:char(36);not null;index" json:"org_id"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	DateCreated time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"date_created"`
	CreatedBy   *string   `gorm:"type:varchar(128)" json:"created_by,omitempty"`
}

// TableName sets the database table name.
func (AssetPermission) TableName() string { return "asset_permissions" }

// AssetPermissionUser is the many-to-many grant row between permissions and
// users.
type AssetPermissionUser struct {
	PermissionID string `gorm:"type:char(36);primaryKey" json:"permission_id"`
	UserID       string `gorm:"type:char(36);primaryKey;index" json:"user_id"`
}

// TableName sets the database table name.
func (AssetPermissionUser) TableName() string { return "asset_permission_users" }

// Repository exposes the grant operations the membership cascade consumes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// RevokeOrgGrants removes the user from every permission belonging to
	// the given organization.
	RevokeOrgGrants(ctx context.Context, orgID, userID string) error

	// RevokeAllGrants removes the user from every permission regardless of
	// organization.
	RevokeAllGrants(ctx context.Context, userID string) error
}
