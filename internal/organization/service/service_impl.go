package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	nodedomain "github.com/smallbiznis/bastion/internal/node/domain"
	"github.com/smallbiznis/bastion/internal/organization/domain"
	"github.com/smallbiznis/bastion/internal/organization/registry"
	"github.com/smallbiznis/bastion/internal/orgctx"
	permdomain "github.com/smallbiznis/bastion/internal/perm/domain"
	"github.com/smallbiznis/bastion/internal/roles"
	"github.com/smallbiznis/bastion/internal/telemetry"
	userdomain "github.com/smallbiznis/bastion/internal/user/domain"
	"github.com/smallbiznis/bastion/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db       *gorm.DB
	repo     domain.Repository
	perms    permdomain.Repository
	users    userdomain.Repository
	nodes    nodedomain.Repository
	registry *registry.Registry
	log      *zap.Logger
}

func NewService(
	conn *gorm.DB,
	repo domain.Repository,
	perms permdomain.Repository,
	users userdomain.Repository,
	nodes nodedomain.Repository,
	reg *registry.Registry,
	log *zap.Logger,
) domain.Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		db:       conn,
		repo:     repo,
		perms:    perms,
		users:    users,
		nodes:    nodes,
		registry: reg,
		log:      log,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if isReservedName(name) {
		return nil, domain.ErrSentinelImmutable
	}

	org := domain.New(name)
	org.Comment = req.Comment
	if createdBy := strings.TrimSpace(req.CreatedBy); createdBy != "" {
		org.CreatedBy = &createdBy
	}

	// The organization and its root node are created atomically: an
	// organization without a root node is not a valid tenant.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &org); err != nil {
			return err
		}
		scoped := orgctx.ChangeTo(ctx, &org)
		_, err := s.nodes.WithTx(tx).OrgRoot(scoped, org.ID, org.Name)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.registry.SetToCache(&org)
	return &org, nil
}

func (s *service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if isReservedName(name) {
		return nil, domain.ErrSentinelImmutable
	}
	if isSentinelID(id) {
		return nil, domain.ErrSentinelImmutable
	}

	var org *domain.Organization
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		org, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		org.Name = name
		org.Comment = req.Comment
		return repo.Update(ctx, org)
	})
	if err != nil {
		return nil, err
	}

	// Evict so subsequent reads refetch current data.
	s.registry.ExpireCache(org.ID)
	s.syncRootNode(ctx, org)
	return org, nil
}

func (s *service) AddMember(ctx context.Context, orgID, userID, role string) (*domain.OrganizationMember, error) {
	if isSentinelID(orgID) {
		return nil, domain.ErrInvalidOrganization
	}
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}
	if !roles.Valid(role) {
		return nil, domain.ErrInvalidRole
	}

	if _, err := s.repo.GetByID(ctx, orgID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	member := domain.OrganizationMember{
		ID:          uuid.NewString(),
		OrgID:       orgID,
		UserID:      userID,
		Role:        role,
		DateCreated: now,
		DateUpdated: now,
	}
	if err := s.repo.AddMember(ctx, &member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrMemberExists
		}
		return nil, err
	}
	return &member, nil
}

func (s *service) RemoveMember(ctx context.Context, orgID, userID string, roleIn ...string) error {
	if isSentinelID(orgID) {
		return domain.ErrInvalidOrganization
	}
	if userID == "" {
		return domain.ErrInvalidUser
	}

	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return err
	}

	// The row fetch and the delete run in one transaction so a concurrent
	// membership write cannot slip between them.
	var deleted []domain.OrganizationMember
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = s.repo.WithTx(tx).DeleteMembers(ctx, orgID, userID, roleIn...)
		return err
	})
	if err != nil {
		return err
	}
	if len(deleted) == 0 {
		return nil
	}

	// Post-delete cascade: revoke the user's organization-scoped grants
	// under the affected organization's context. The deletion is already
	// committed, so cleanup is best-effort and never rolls it back.
	scoped := orgctx.ChangeTo(ctx, org)
	s.revokeOrgGrants(scoped, s.perms, s.users, orgID, userID)
	return nil
}

func (s *service) RemoveUsers(ctx context.Context, orgID string, userIDs ...string) error {
	if isSentinelID(orgID) {
		return domain.ErrInvalidOrganization
	}
	if len(userIDs) == 0 {
		return nil
	}

	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return err
	}

	// Pre-remove cascade: each departing user loses every permission and
	// group grant, not only the organization-scoped ones, because they are
	// leaving the organization entirely. Revocations are best-effort and
	// never abort the membership deletion.
	scoped := orgctx.ChangeTo(ctx, org)
	return s.db.Transaction(func(tx *gorm.DB) error {
		perms := s.perms.WithTx(tx)
		groups := s.users.WithTx(tx)
		for _, userID := range userIDs {
			s.revokeAllGrants(scoped, perms, groups, userID)
		}
		return s.repo.WithTx(tx).DeleteMembersByUsers(scoped, orgID, userIDs)
	})
}

// syncRootNode runs the post-persist hook: under the affected organization's
// context, relabel the organization's root node when its value drifted from
// the organization name. The caller keeps its own context, so the previous
// scope is restored on every exit path.
func (s *service) syncRootNode(ctx context.Context, org *domain.Organization) {
	scoped := orgctx.ChangeTo(ctx, org)
	root, err := s.nodes.OrgRoot(scoped, org.ID, org.Name)
	if err != nil {
		s.log.Warn("failed to resolve org root node",
			zap.String("org_id", org.ID),
			zap.Error(err),
		)
		return
	}
	if root.Value == org.Name {
		return
	}

	root.Value = org.Name
	if err := s.nodes.Save(scoped, root); err != nil {
		s.log.Warn("failed to relabel org root node",
			zap.String("org_id", org.ID),
			zap.String("value", org.Name),
			zap.Error(err),
		)
	}
}

// revokeOrgGrants strips the user from every permission set and user group
// scoped to the organization. Both removals are attempted even if one fails.
func (s *service) revokeOrgGrants(ctx context.Context, perms, groups domain.GrantRevoker, orgID, userID string) {
	if err := perms.RevokeOrgGrants(ctx, orgID, userID); err != nil {
		telemetry.CascadeFailuresTotal.WithLabelValues("asset_permission").Inc()
		s.log.Error("cascade: failed to revoke permission grants",
			zap.String("org_id", orgID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	if err := groups.RevokeOrgGrants(ctx, orgID, userID); err != nil {
		telemetry.CascadeFailuresTotal.WithLabelValues("user_group").Inc()
		s.log.Error("cascade: failed to revoke group grants",
			zap.String("org_id", orgID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// revokeAllGrants strips the user from every permission set and user group
// regardless of organization.
func (s *service) revokeAllGrants(ctx context.Context, perms, groups domain.GrantRevoker, userID string) {
	if err := perms.RevokeAllGrants(ctx, userID); err != nil {
		telemetry.CascadeFailuresTotal.WithLabelValues("asset_permission").Inc()
		s.log.Error("cascade: failed to revoke all permission grants",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	if err := groups.RevokeAllGrants(ctx, userID); err != nil {
		telemetry.CascadeFailuresTotal.WithLabelValues("user_group").Inc()
		s.log.Error("cascade: failed to revoke all group grants",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

func isSentinelID(id string) bool {
	return id == "" || id == domain.DefaultID || id == domain.RootID || id == domain.SystemID
}

func isReservedName(name string) bool {
	return name == domain.DefaultName || name == domain.RootName || name == domain.SystemName
}
