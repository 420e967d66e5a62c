package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/bastion/internal/node/domain"
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

func (r *repository) OrgRoot(ctx context.Context, orgID, label string) (*domain.Node, error) {
	// Map conditions let gorm quote "key", a reserved word on mysql.
	var node domain.Node
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{"org_id": orgID, "key": domain.RootKey}).
		First(&node).Error
	if err == nil {
		return &node, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	node = domain.Node{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		Key:         domain.RootKey,
		Value:       label,
		DateCreated: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&node).Error; err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *repository) Save(ctx context.Context, node *domain.Node) error {
	return r.db.WithContext(ctx).Save(node).Error
}
