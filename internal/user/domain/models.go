// Package domain contains the user-facing entities the scoping core
// collaborates with. Users are owned by another subsystem; only id, name and
// role checks are relied on here.
package domain

import (
	"time"

	"github.com/smallbiznis/bastion/internal/roles"
)

// User is the external user entity. Role is the user's global role, read
// directly when queries run under a sentinel organization.
type User struct {
	ID       string `gorm:"type:char(36);primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(128);not null" json:"name"`
	Username string `gorm:"type:varchar(128);not null;uniqueIndex:ux_users_username" json:"username"`
	Role     string `gorm:"type:varchar(16);not null;default:'User'" json:"role"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// IsAnonymous reports whether the user carries no identity. Anonymous users
// are a valid, privilege-free input.
func (u *User) IsAnonymous() bool { return u == nil || u.ID == "" }

// IsSuperuser reports whether the user holds the global Admin role.
func (u *User) IsSuperuser() bool { return !u.IsAnonymous() && u.Role == roles.Admin }

// IsSuperAuditor reports whether the user holds the global Auditor role.
func (u *User) IsSuperAuditor() bool { return !u.IsAnonymous() && u.Role == roles.Auditor }

// UserGroup is an organization-scoped grouping of users.
type UserGroup struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	OrgID       string    `gorm:"type:char(36);not null;index" json:"org_id"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Comment     string    `gorm:"type:text;not null;default:''" json:"comment"`
	DateCreated time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"date_created"`
	CreatedBy   *string   `gorm:"type:varchar(128)" json:"created_by,omitempty"`
}

// TableName sets the database table name.
func (UserGroup) TableName() string { return "user_groups" }

// UserGroupMember is the many-to-many grant row between groups and users.
type UserGroupMember struct {
	GroupID string `gorm:"type:char(36);primaryKey" json:"group_id"`
	UserID  string `gorm:"type:char(36);primaryKey;index" json:"user_id"`
}

// TableName sets the database table name.
func (UserGroupMember) TableName() string { return "user_group_users" }
