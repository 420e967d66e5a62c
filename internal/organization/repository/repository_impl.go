package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/bastion/internal/organization/domain"
	userdomain "github.com/smallbiznis/bastion/internal/user/domain"
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

func (r *repository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) ListAll(ctx context.Context) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).Order("date_created ASC").Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *repository) Create(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *repository) Update(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

func (r *repository) AddMember(ctx context.Context, member *domain.OrganizationMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) DeleteMembers(ctx context.Context, orgID, userID string, roleIn ...string) ([]domain.OrganizationMember, error) {
	query := r.db.WithContext(ctx).Where("org_id = ? AND user_id = ?", orgID, userID)
	if len(roleIn) > 0 {
		query = query.Where("role IN ?", roleIn)
	}

	var deleted []domain.OrganizationMember
	if err := query.Find(&deleted).Error; err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(deleted))
	for _, m := range deleted {
		ids = append(ids, m.ID)
	}
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.OrganizationMember{}).Error; err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *repository) DeleteMembersByUsers(ctx context.Context, orgID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("org_id = ? AND user_id IN ?", orgID, userIDs).
		Delete(&domain.OrganizationMember{}).Error
}

func (r *repository) MemberUsersByRole(ctx context.Context, orgID string, roleIn []string) ([]userdomain.User, error) {
	var users []userdomain.User
	err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT u.*
		 FROM users u
		 JOIN orgs_organization_members m ON m.user_id = u.id
		 WHERE m.org_id = ? AND m.role IN ?`,
		orgID,
		roleIn,
	).Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) MemberUsers(ctx context.Context, orgID string, excludeRoles []string) ([]userdomain.User, error) {
	query := `SELECT DISTINCT u.*
		 FROM users u
		 JOIN orgs_organization_members m ON m.user_id = u.id
		 WHERE m.org_id = ?`
	args := []interface{}{orgID}
	if len(excludeRoles) > 0 {
		query += ` AND m.role NOT IN ?`
		args = append(args, excludeRoles)
	}

	var users []userdomain.User
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) UsersByGlobalRole(ctx context.Context, roleIn []string) ([]userdomain.User, error) {
	var users []userdomain.User
	err := r.db.WithContext(ctx).
		Where("role IN ?", roleIn).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) AllUsers(ctx context.Context, excludeRoles []string) ([]userdomain.User, error) {
	query := r.db.WithContext(ctx)
	if len(excludeRoles) > 0 {
		query = query.Where("role NOT IN ?", excludeRoles)
	}

	var users []userdomain.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) HasMember(ctx context.Context, orgID, userID string, roleIn []string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", orgID, userID)
	if len(roleIn) > 0 {
		query = query.Where("role IN ?", roleIn)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) OrgsByUserRole(ctx context.Context, userID string, roleIn []string) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT o.*
		 FROM organizations o
		 JOIN orgs_organization_members m ON m.org_id = o.id
		 WHERE m.user_id = ? AND m.role IN ?`,
		userID,
		roleIn,
	).Scan(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}
