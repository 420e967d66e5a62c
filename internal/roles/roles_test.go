package roles

import (
	"testing"

	"github.com/smallbiznis/bastion/pkg/choices"
	"github.com/stretchr/testify/assert"
)

func TestRoleSet(t *testing.T) {
	assert.Equal(t, []string{Admin, User, Auditor}, Set.Values())
	assert.Equal(t, "Administrator", Set.LabelOf(Admin))
	assert.True(t, Valid(Auditor))
	assert.False(t, Valid("Owner"))
}

func TestDerivedSetInheritsRoles(t *testing.T) {
	// Extending the role set keeps the base roles not shadowed by value.
	derived := choices.MustExtend(Set, choices.C("App", "Application"))
	assert.Equal(t, []string{"App", Admin, User, Auditor}, derived.Values())
	assert.Equal(t, "Administrator", derived.LabelOf(Admin))
}
