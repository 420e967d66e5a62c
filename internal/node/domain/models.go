// Package domain contains the asset-tree node surface the scoping core
// collaborates with. Each organization owns one root node named after it.
package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// RootKey is the tree key of every organization's root node.
const RootKey = "1"

// Node is a node of the per-organization asset tree.
type Node struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	OrgID       string    `gorm:"type:char(36);not null;index;uniqueIndex:ux_nodes_org_key,priority:1" json:"org_id"`
	Key         string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_nodes_org_key,priority:2" json:"key"`
	Value       string    `gorm:"type:varchar(128);not null" json:"value"`
	DateCreated time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"date_created"`
}

// TableName sets the database table name.
func (Node) TableName() string { return "nodes" }

// IsRoot reports whether the node is an organization root.
func (n *Node) IsRoot() bool { return n.Key == RootKey }

// Repository exposes the node operations the organization lifecycle consumes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// OrgRoot returns the organization's root node, creating it with the
	// given label when it does not exist yet.
	OrgRoot(ctx context.Context, orgID, label string) (*Node, error)

	Save(ctx context.Context, node *Node) error
}
