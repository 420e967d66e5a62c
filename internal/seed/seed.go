// Package seed performs idempotent bootstrap seeding.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	nodedomain "github.com/smallbiznis/bastion/internal/node/domain"
	orgdomain "github.com/smallbiznis/bastion/internal/organization/domain"
	"gorm.io/gorm"
)

// EnsureBootstrapOrg creates the named real organization and its root node
// when they do not exist yet.
func EnsureBootstrapOrg(db *gorm.DB, name string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if name == orgdomain.DefaultName || name == orgdomain.RootName || name == orgdomain.SystemName {
		return errors.New("bootstrap organization name is reserved")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var org orgdomain.Organization
		err := tx.First(&org, "name = ?", name).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		org = orgdomain.New(name)
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		node := nodedomain.Node{
			ID:          uuid.NewString(),
			OrgID:       org.ID,
			Key:         nodedomain.RootKey,
			Value:       org.Name,
			DateCreated: time.Now().UTC(),
		}
		return tx.Create(&node).Error
	})
}
