package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	nodedomain "github.com/smallbiznis/bastion/internal/node/domain"
	noderepo "github.com/smallbiznis/bastion/internal/node/repository"
	"github.com/smallbiznis/bastion/internal/organization/domain"
	"github.com/smallbiznis/bastion/internal/organization/registry"
	orgrepo "github.com/smallbiznis/bastion/internal/organization/repository"
	"github.com/smallbiznis/bastion/internal/orgctx"
	permdomain "github.com/smallbiznis/bastion/internal/perm/domain"
	permrepo "github.com/smallbiznis/bastion/internal/perm/repository"
	"github.com/smallbiznis/bastion/internal/roles"
	userdomain "github.com/smallbiznis/bastion/internal/user/domain"
	userrepo "github.com/smallbiznis/bastion/internal/user/repository"
	dbpkg "github.com/smallbiznis/bastion/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	reg *registry.Registry
	svc domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := dbpkg.NewTest(t.Name())
	require.NoError(t, err)

	// Create tables manually to match production schema.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id CHAR(36) PRIMARY KEY,
			name VARCHAR(128) NOT NULL UNIQUE,
			created_by VARCHAR(128),
			date_created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			comment TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id CHAR(36) PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			username VARCHAR(128) NOT NULL UNIQUE,
			role VARCHAR(16) NOT NULL DEFAULT 'User',
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS orgs_organization_members (
			id CHAR(36) PRIMARY KEY,
			org_id CHAR(36) NOT NULL,
			user_id CHAR(36) NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT 'User',
			date_created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			date_updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_by VARCHAR(128)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_org_user_role
			ON orgs_organization_members (org_id, user_id, role)`,
		`CREATE TABLE IF NOT EXISTS user_groups (
			id CHAR(36) PRIMARY KEY,
			org_id CHAR(36) NOT NULL,
			name VARCHAR(128) NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			date_created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_by VARCHAR(128)
		)`,
		`CREATE TABLE IF NOT EXISTS user_group_users (
			group_id CHAR(36) NOT NULL,
			user_id CHAR(36) NOT NULL,
			PRIMARY KEY (group_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS asset_permissions (
			id CHAR(36) PRIMARY KEY,
			org_id CHAR(36) NOT NULL,
			name VARCHAR(128) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			date_created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_by VARCHAR(128)
		)`,
		`CREATE TABLE IF NOT EXISTS asset_permission_users (
			permission_id CHAR(36) NOT NULL,
			user_id CHAR(36) NOT NULL,
			PRIMARY KEY (permission_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id CHAR(36) PRIMARY KEY,
			org_id CHAR(36) NOT NULL,
			key VARCHAR(64) NOT NULL,
			value VARCHAR(128) NOT NULL,
			date_created TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_nodes_org_key ON nodes (org_id, key)`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}

	repo := orgrepo.NewRepository(db)
	reg := registry.New(repo, zap.NewNop())
	svc := NewService(
		db,
		repo,
		permrepo.NewRepository(db),
		userrepo.NewRepository(db),
		noderepo.NewRepository(db),
		reg,
		zap.NewNop(),
	)

	return &fixture{db: db, reg: reg, svc: svc}
}

func (f *fixture) seedUser(t *testing.T, name string) *userdomain.User {
	t.Helper()
	user := userdomain.User{
		ID:       uuid.NewString(),
		Name:     name,
		Username: name,
		Role:     roles.User,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return &user
}

func (f *fixture) seedPermission(t *testing.T, orgID, name string, userIDs ...string) *permdomain.AssetPermission {
	t.Helper()
	perm := permdomain.AssetPermission{
		ID:       uuid.NewString(),
		OrgID:    orgID,
		Name:     name,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(&perm).Error)
	for _, userID := range userIDs {
		grant := permdomain.AssetPermissionUser{PermissionID: perm.ID, UserID: userID}
		require.NoError(t, f.db.Create(&grant).Error)
	}
	return &perm
}

func (f *fixture) seedGroup(t *testing.T, orgID, name string, userIDs ...string) *userdomain.UserGroup {
	t.Helper()
	group := userdomain.UserGroup{
		ID:    uuid.NewString(),
		OrgID: orgID,
		Name:  name,
	}
	require.NoError(t, f.db.Create(&group).Error)
	for _, userID := range userIDs {
		grant := userdomain.UserGroupMember{GroupID: group.ID, UserID: userID}
		require.NoError(t, f.db.Create(&grant).Error)
	}
	return &group
}

func (f *fixture) permGrantCount(t *testing.T, userID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&permdomain.AssetPermissionUser{}).
		Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func (f *fixture) groupGrantCount(t *testing.T, userID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&userdomain.UserGroupMember{}).
		Where("user_id = ?", userID).Count(&count).Error)
	return count
}

// Mock objects
type mockPermRepo struct {
	mock.Mock
}

func (m *mockPermRepo) WithTx(tx *gorm.DB) permdomain.Repository { return m }

func (m *mockPermRepo) RevokeOrgGrants(ctx context.Context, orgID, userID string) error {
	args := m.Called(ctx, orgID, userID)
	return args.Error(0)
}

func (m *mockPermRepo) RevokeAllGrants(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestCreateOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	org, err := f.svc.Create(ctx, domain.CreateRequest{Name: "acme", Comment: "first tenant", CreatedBy: "admin"})
	require.NoError(t, err)
	assert.True(t, org.IsReal())
	assert.Equal(t, "acme", org.Name)

	// The post-save hook creates the organization's root node, labelled
	// after the organization.
	var node nodedomain.Node
	require.NoError(t, f.db.First(&node, "org_id = ?", org.ID).Error)
	assert.Equal(t, nodedomain.RootKey, node.Key)
	assert.Equal(t, "acme", node.Value)

	// Creation caches; it must not evict.
	cached, ok := f.reg.GetFromCache(org.ID)
	require.True(t, ok)
	assert.Equal(t, org.ID, cached.ID)
}

func TestCreateRejectsReservedNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{domain.DefaultName, domain.RootName, domain.SystemName} {
		_, err := f.svc.Create(ctx, domain.CreateRequest{Name: name})
		assert.True(t, errors.Is(err, domain.ErrSentinelImmutable), "name %q", name)
	}

	_, err := f.svc.Create(ctx, domain.CreateRequest{Name: "   "})
	assert.True(t, errors.Is(err, domain.ErrInvalidName))
}

func TestUpdateEvictsCacheAndRelabelsRootNode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	org, err := f.svc.Create(ctx, domain.CreateRequest{Name: "before"})
	require.NoError(t, err)

	_, ok := f.reg.GetFromCache(org.ID)
	require.True(t, ok)

	updated, err := f.svc.Update(ctx, org.ID, domain.UpdateRequest{Name: "after"})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Name)

	// Update evicts so subsequent reads refetch current data.
	if _, ok := f.reg.GetFromCache(org.ID); ok {
		t.Fatal("expected cache eviction on update")
	}

	var node nodedomain.Node
	require.NoError(t, f.db.First(&node, "org_id = ? AND key = ?", org.ID, nodedomain.RootKey).Error)
	assert.Equal(t, "after", node.Value)
}

func TestAddMemberRoleUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	org, err := f.svc.Create(ctx, domain.CreateRequest{Name: "acme"})
	require.NoError(t, err)
	user := f.seedUser(t, "alice")

	_, err = f.svc.AddMember(ctx, org.ID, user.ID, roles.Admin)
	require.NoError(t, err)

	// Same role twice fails with a uniqueness violation.
	_, err = f.svc.AddMember(ctx, org.ID, user.ID, roles.Admin)
	assert.True(t, errors.Is(err, domain.ErrMemberExists))

	// A different role for the same (org, user) coexists.
	_, err = f.svc.AddMember(ctx, org.ID, user.ID, roles.Auditor)
	require.NoError(t, err)
}

func TestAddMemberValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	org, err := f.svc.Create(ctx, domain.CreateRequest{Name: "acme"})
	require.NoError(t, err)
	user := f.seedUser(t, "alice")

	_, err = f.svc.AddMember(ctx, org.ID, user.ID, "Owner")
	assert.True(t, errors.Is(err, domain.ErrInvalidRole))

	_, err = f.svc.AddMember(ctx, domain.DefaultID, user.ID, roles.User)
	assert.True(t, errors.Is(err, domain.ErrInvalidOrganization))

	_, err = f.svc.AddMember(ctx, uuid.NewString(), user.ID, roles.User)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRemoveMemberCascadesOrgScopedGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orgA, err := f.svc.Create(ctx, domain.CreateRequest{Name: "a"})
	require.NoError(t, err)
	orgB, err := f.svc.Create(ctx, domain.CreateRequest{Name: "b"})
	require.NoError(t, err)

	u1 := f.seedUser(t, "u1")
	u2 := f.seedUser(t, "u2")

	_, err = f.svc.AddMember(ctx, orgA.ID, u1.ID, roles.Admin)
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, orgA.ID, u2.ID, roles.User)
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, orgB.ID, u1.ID, roles.User)
	require.NoError(t, err)

	f.seedPermission(t, orgA.ID, "perm-a", u1.ID, u2.ID)
	f.seedPermission(t, orgB.ID, "perm-b", u1.ID)
	f.seedGroup(t, orgA.ID, "group-a", u1.ID)
	f.seedGroup(t, orgB.ID, "group-b", u1.ID)

	// The caller runs under some organization scope; the cascade must not
	// leak its context switch back out.
	callerCtx := orgctx.WithOrg(ctx, orgB)

	require.NoError(t, f.svc.RemoveMember(callerCtx, orgA.ID, u1.ID))

	// Membership row gone.
	var count int64
	require.NoError(t, f.db.Model(&domain.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", orgA.ID, u1.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Org-scoped grants revoked; grants in other orgs stay.
	assert.Equal(t, int64(1), f.permGrantCount(t, u1.ID)) // perm-b only
	assert.Equal(t, int64(1), f.groupGrantCount(t, u1.ID))

	// Other members' grants are untouched.
	assert.Equal(t, int64(1), f.permGrantCount(t, u2.ID))

	// The caller's context still holds whatever it held before.
	current, ok := orgctx.Current(callerCtx)
	require.True(t, ok)
	assert.Equal(t, orgB.ID, current.ID)
}

func TestRemoveMemberCascadeSurvivesRevocationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The permission revoker fails; the group revocation must still run and
	// the committed membership deletion must stand.
	perms := new(mockPermRepo)
	perms.On("RevokeOrgGrants", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("permission backend unavailable"))

	svc := NewService(
		f.db,
		orgrepo.NewRepository(f.db),
		perms,
		userrepo.NewRepository(f.db),
		noderepo.NewRepository(f.db),
		f.reg,
		zap.NewNop(),
	)

	org, err := svc.Create(ctx, domain.CreateRequest{Name: "acme"})
	require.NoError(t, err)
	user := f.seedUser(t, "alice")

	_, err = svc.AddMember(ctx, org.ID, user.ID, roles.User)
	require.NoError(t, err)
	f.seedGroup(t, org.ID, "group-a", user.ID)

	require.NoError(t, svc.RemoveMember(ctx, org.ID, user.ID))

	// Membership row stays deleted despite the failed revocation.
	var count int64
	require.NoError(t, f.db.Model(&domain.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", org.ID, user.ID).Count(&count).Error)
	assert.Zero(t, count)

	// The group revocation ran even though the permission one failed.
	assert.Zero(t, f.groupGrantCount(t, user.ID))
	perms.AssertCalled(t, "RevokeOrgGrants", mock.Anything, org.ID, user.ID)
}

func TestRemoveMemberSingleRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	org, err := f.svc.Create(ctx, domain.CreateRequest{Name: "acme"})
	require.NoError(t, err)
	user := f.seedUser(t, "alice")

	_, err = f.svc.AddMember(ctx, org.ID, user.ID, roles.Admin)
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, org.ID, user.ID, roles.Auditor)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveMember(ctx, org.ID, user.ID, roles.Auditor))

	var remaining []domain.OrganizationMember
	require.NoError(t, f.db.
		Where("org_id = ? AND user_id = ?", org.ID, user.ID).
		Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, roles.Admin, remaining[0].Role)
}

func TestRemoveMemberNoRowsIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	org, err := f.svc.Create(ctx, domain.CreateRequest{Name: "acme"})
	require.NoError(t, err)
	user := f.seedUser(t, "alice")

	require.NoError(t, f.svc.RemoveMember(ctx, org.ID, user.ID))
}

func TestRemoveUsersRevokesAllGrants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orgA, err := f.svc.Create(ctx, domain.CreateRequest{Name: "a"})
	require.NoError(t, err)
	orgB, err := f.svc.Create(ctx, domain.CreateRequest{Name: "b"})
	require.NoError(t, err)

	u1 := f.seedUser(t, "u1")
	u2 := f.seedUser(t, "u2")

	_, err = f.svc.AddMember(ctx, orgA.ID, u1.ID, roles.User)
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, orgA.ID, u2.ID, roles.User)
	require.NoError(t, err)

	// Departing members lose every grant, including those scoped to other
	// organizations.
	f.seedPermission(t, orgA.ID, "perm-a", u1.ID)
	f.seedPermission(t, orgB.ID, "perm-b", u1.ID)
	f.seedGroup(t, orgB.ID, "group-b", u1.ID)
	f.seedPermission(t, orgA.ID, "perm-keep", u2.ID)

	require.NoError(t, f.svc.RemoveUsers(ctx, orgA.ID, u1.ID))

	assert.Zero(t, f.permGrantCount(t, u1.ID))
	assert.Zero(t, f.groupGrantCount(t, u1.ID))
	assert.Equal(t, int64(1), f.permGrantCount(t, u2.ID))

	var count int64
	require.NoError(t, f.db.Model(&domain.OrganizationMember{}).
		Where("org_id = ? AND user_id = ?", orgA.ID, u1.ID).Count(&count).Error)
	assert.Zero(t, count)
}
