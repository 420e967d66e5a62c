// Package registry resolves organizations by id or name, serving sentinels
// and a process-wide write-through cache before touching storage.
package registry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/smallbiznis/bastion/internal/organization/domain"
	"github.com/smallbiznis/bastion/internal/roles"
	"github.com/smallbiznis/bastion/internal/telemetry"
	userdomain "github.com/smallbiznis/bastion/internal/user/domain"
	"github.com/smallbiznis/bastion/pkg/cache"
	"go.uber.org/zap"
)

// Registry is the process-wide organization lookup surface. The cache is
// shared across all concurrent units of work; entries have no TTL and are
// bounded by the number of real organizations. Eviction races at worst serve
// a stale copy until the next cache write.
type Registry struct {
	repo  domain.Repository
	cache cache.Cache[string, *domain.Organization]
	log   *zap.Logger
}

// New builds a Registry with an empty cache.
func New(repo domain.Repository, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		repo:  repo,
		cache: cache.NewTTLCache[string, *domain.Organization](),
		log:   log,
	}
}

// SetToCache inserts or overwrites the organization under its id key.
// Subsequent lookups return this exact instance until evicted.
func (r *Registry) SetToCache(org *domain.Organization) {
	if org == nil || org.ID == "" {
		return
	}
	r.cache.Set(org.ID, org, 0)
}

// ExpireCache removes the id from the cache. Must be called whenever an
// organization's persisted fields may have changed.
func (r *Registry) ExpireCache(id string) {
	r.cache.Delete(id)
}

// GetFromCache returns the cached instance for id, never touching storage.
func (r *Registry) GetFromCache(id string) (*domain.Organization, bool) {
	return r.cache.Get(id)
}

// GetInstance resolves idOrName to an organization:
//
//  1. cache hit by id string
//  2. empty input or a DEFAULT alias resolves to the DEFAULT sentinel
//  3. ROOT alias resolves to the ROOT sentinel
//  4. SYSTEM alias resolves to the SYSTEM sentinel
//  5. otherwise storage is queried by id (when the input parses as a UUID)
//     or by name, and the result is cached
//
// When nothing matches, withDefault selects between the DEFAULT sentinel and
// ErrNotFound. Sentinels short-circuit before storage because they are never
// persisted.
func (r *Registry) GetInstance(ctx context.Context, idOrName string, withDefault bool) (*domain.Organization, error) {
	if cached, ok := r.GetFromCache(idOrName); ok {
		telemetry.OrgCacheHitsTotal.Inc()
		return cached, nil
	}
	telemetry.OrgCacheMissesTotal.Inc()

	switch idOrName {
	case "", domain.DefaultID:
		return domain.Default(), nil
	case domain.RootID, domain.RootName:
		return domain.Root(), nil
	case domain.SystemID, domain.SystemName:
		return domain.System(), nil
	}

	var (
		org *domain.Organization
		err error
	)
	if _, parseErr := uuid.Parse(idOrName); parseErr == nil {
		org, err = r.repo.GetByID(ctx, idOrName)
	} else {
		org, err = r.repo.GetByName(ctx, idOrName)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if withDefault {
				return domain.Default(), nil
			}
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	r.SetToCache(org)
	return org, nil
}

// MembersByRole returns the organization's users holding any of the given
// roles. Sentinel organizations have no membership rows, so the roles are
// read directly off the user records.
func (r *Registry) MembersByRole(ctx context.Context, org *domain.Organization, roleIn ...string) ([]userdomain.User, error) {
	if org == nil {
		return nil, domain.ErrInvalidOrganization
	}
	if len(roleIn) == 0 {
		return nil, domain.ErrInvalidRole
	}
	if org.IsReal() {
		return r.repo.MemberUsersByRole(ctx, org.ID, roleIn)
	}
	return r.repo.UsersByGlobalRole(ctx, roleIn)
}

// Users returns the organization's plain members.
func (r *Registry) Users(ctx context.Context, org *domain.Organization) ([]userdomain.User, error) {
	return r.MembersByRole(ctx, org, roles.User)
}

// Admins returns the organization's administrators.
func (r *Registry) Admins(ctx context.Context, org *domain.Organization) ([]userdomain.User, error) {
	return r.MembersByRole(ctx, org, roles.Admin)
}

// Auditors returns the organization's auditors.
func (r *Registry) Auditors(ctx context.Context, org *domain.Organization) ([]userdomain.User, error) {
	return r.MembersByRole(ctx, org, roles.Auditor)
}

// Members returns the organization's users across all roles, leaving out the
// excluded ones.
func (r *Registry) Members(ctx context.Context, org *domain.Organization, excludeRoles ...string) ([]userdomain.User, error) {
	if org == nil {
		return nil, domain.ErrInvalidOrganization
	}
	if org.IsReal() {
		return r.repo.MemberUsers(ctx, org.ID, excludeRoles)
	}
	return r.repo.AllUsers(ctx, excludeRoles)
}

// CanAdminBy reports whether the user administers the organization: global
// superusers always can, otherwise an Admin membership is required.
func (r *Registry) CanAdminBy(ctx context.Context, org *domain.Organization, user *userdomain.User) (bool, error) {
	if user.IsAnonymous() {
		return false, nil
	}
	if user.IsSuperuser() {
		return true, nil
	}
	if !org.IsReal() {
		return false, nil
	}
	return r.repo.HasMember(ctx, org.ID, user.ID, []string{roles.Admin})
}

// CanAuditBy reports whether the user audits the organization: global
// super-auditors always can, otherwise an Auditor membership is required.
func (r *Registry) CanAuditBy(ctx context.Context, org *domain.Organization, user *userdomain.User) (bool, error) {
	if user.IsAnonymous() {
		return false, nil
	}
	if user.IsSuperAuditor() {
		return true, nil
	}
	if !org.IsReal() {
		return false, nil
	}
	return r.repo.HasMember(ctx, org.ID, user.ID, []string{roles.Auditor})
}

// CanUserBy reports whether the user is a plain member of the organization.
func (r *Registry) CanUserBy(ctx context.Context, org *domain.Organization, user *userdomain.User) (bool, error) {
	if user.IsAnonymous() {
		return false, nil
	}
	if !org.IsReal() {
		return user.Role == roles.User, nil
	}
	return r.repo.HasMember(ctx, org.ID, user.ID, []string{roles.User})
}

// UserOrgsByRole returns the organizations where the user holds any of the
// given roles.
func (r *Registry) UserOrgsByRole(ctx context.Context, user *userdomain.User, roleIn ...string) ([]domain.Organization, error) {
	if user.IsAnonymous() {
		return nil, nil
	}
	return r.repo.OrgsByUserRole(ctx, user.ID, roleIn)
}

// UserAdminOrgs returns the organizations the user administers. Global
// superusers get every real organization plus the DEFAULT sentinel.
func (r *Registry) UserAdminOrgs(ctx context.Context, user *userdomain.User) ([]domain.Organization, error) {
	if user.IsAnonymous() {
		return nil, nil
	}
	if user.IsSuperuser() {
		return r.allOrgsWithDefault(ctx)
	}
	return r.UserOrgsByRole(ctx, user, roles.Admin)
}

// UserUserOrgs returns the organizations where the user is a plain member.
func (r *Registry) UserUserOrgs(ctx context.Context, user *userdomain.User) ([]domain.Organization, error) {
	if user.IsAnonymous() {
		return nil, nil
	}
	return r.UserOrgsByRole(ctx, user, roles.User)
}

// UserAuditOrgs returns the organizations the user audits. Global
// super-auditors get every real organization plus the DEFAULT sentinel.
func (r *Registry) UserAuditOrgs(ctx context.Context, user *userdomain.User) ([]domain.Organization, error) {
	if user.IsAnonymous() {
		return nil, nil
	}
	if user.IsSuperAuditor() {
		return r.allOrgsWithDefault(ctx)
	}
	return r.UserOrgsByRole(ctx, user, roles.Auditor)
}

// UserAdminOrAuditOrgs returns the organizations the user administers or
// audits.
func (r *Registry) UserAdminOrAuditOrgs(ctx context.Context, user *userdomain.User) ([]domain.Organization, error) {
	if user.IsAnonymous() {
		return nil, nil
	}
	if user.IsSuperuser() || user.IsSuperAuditor() {
		return r.allOrgsWithDefault(ctx)
	}
	return r.UserOrgsByRole(ctx, user, roles.Admin, roles.Auditor)
}

func (r *Registry) allOrgsWithDefault(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := r.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return append(orgs, *domain.Default()), nil
}
