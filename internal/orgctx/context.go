// Package orgctx carries the current organization through context.Context.
//
// Every unit of work derives its own context, so concurrent requests never
// observe each other's scope, nesting is strictly LIFO, and an aborted scoped
// block "restores" the previous organization simply by the caller continuing
// with the outer context.
package orgctx

import (
	"context"

	"github.com/smallbiznis/bastion/internal/organization/domain"
)

type orgKey struct{}

// WithOrg returns a child context scoped to org. Passing nil derives a
// context with no current organization.
func WithOrg(ctx context.Context, org *domain.Organization) context.Context {
	return context.WithValue(ctx, orgKey{}, org)
}

// ChangeTo is WithOrg under the name the rest of the platform uses when an
// operation switches itself into an organization's scope.
func ChangeTo(ctx context.Context, org *domain.Organization) context.Context {
	return WithOrg(ctx, org)
}

// Current returns the current organization, if one is set.
func Current(ctx context.Context) (*domain.Organization, bool) {
	if ctx == nil {
		return nil, false
	}
	org, ok := ctx.Value(orgKey{}).(*domain.Organization)
	if !ok || org == nil {
		return nil, false
	}
	return org, true
}

// CurrentOrDefault returns the current organization, falling back to the
// DEFAULT sentinel when no scope is set.
func CurrentOrDefault(ctx context.Context) *domain.Organization {
	if org, ok := Current(ctx); ok {
		return org
	}
	return domain.Default()
}

// CurrentOrgID returns the scoping id of the current organization, or ""
// when unscoped. See Organization.OrgID for sentinel semantics.
func CurrentOrgID(ctx context.Context) string {
	org, ok := Current(ctx)
	if !ok {
		return ""
	}
	return org.OrgID()
}
