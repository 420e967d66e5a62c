// Package roles defines the capability levels a member can hold within an
// organization. The set is fixed at process start; new variants must be
// registered here.
package roles

import "github.com/smallbiznis/bastion/pkg/choices"

const (
	Admin   = "Admin"
	User    = "User"
	Auditor = "Auditor"
)

// Set is the Role enumeration with display labels.
var Set = choices.MustNew(
	choices.C(Admin, "Administrator"),
	choices.C(User, "User"),
	choices.C(Auditor, "Auditor"),
)

// Valid reports whether role is a registered role value.
func Valid(role string) bool {
	return Set.Contains(role)
}
