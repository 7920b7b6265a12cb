package shared

import "fmt"

// shared types across the application
// 1st: account role variant used for routing and authorization
// 2nd: recipient identity used by the notification delivery path
// 3rd: add more shared types as needed

// Role is the account role. It is a closed set: adding a role means
// updating ParseRole and every switch over Role, which the compiler flags.
type Role string

const (
	RoleVolunteer    Role = "volunteer"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleVolunteer:
		return RoleVolunteer, nil
	case RoleOrganization:
		return RoleOrganization, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleVolunteer, RoleOrganization, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Recipient identifies who a notification is addressed to.
type Recipient struct {
	Role Role   `json:"role"`
	ID   string `json:"id"`
}
