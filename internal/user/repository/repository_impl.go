package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/bastion/internal/user/domain"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no user matches the given id.
var ErrNotFound = errors.New("user not found")

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) RevokeOrgGrants(ctx context.Context, orgID, userID string) error {
	err := r.db.WithContext(ctx).Exec(
		`DELETE FROM user_group_users
		 WHERE user_id = ?
		   AND group_id IN (SELECT id FROM user_groups WHERE org_id = ?)`,
		userID,
		orgID,
	).Error
	if err != nil {
		return fmt.Errorf("revoke org group grants: %w", err)
	}
	return nil
}

func (r *repository) RevokeAllGrants(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Exec(
		`DELETE FROM user_group_users WHERE user_id = ?`,
		userID,
	).Error
	if err != nil {
		return fmt.Errorf("revoke all group grants: %w", err)
	}
	return nil
}
