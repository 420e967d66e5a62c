package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/bastion/internal/perm/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) RevokeOrgGrants(ctx context.Context, orgID, userID string) error {
	err := r.db.WithContext(ctx).Exec(
		`DELETE FROM asset_permission_users
		 WHERE user_id = ?
		   AND permission_id IN (SELECT id FROM asset_permissions WHERE org_id = ?)`,
		userID,
		orgID,
	).Error
	if err != nil {
		return fmt.Errorf("revoke org permission grants: %w", err)
	}
	return nil
}

func (r *repository) RevokeAllGrants(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Exec(
		`DELETE FROM asset_permission_users WHERE user_id = ?`,
		userID,
	).Error
	if err != nil {
		return fmt.Errorf("revoke all permission grants: %w", err)
	}
	return nil
}
