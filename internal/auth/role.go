package auth

import "fmt"

// Role is the single role carried by an Identity.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// Roles returns every role the storefront knows about.
func Roles() []Role {
	return []Role{RoleAdmin, RoleCustomer}
}

// Valid reports whether r is one of Roles. Matching is case-sensitive.
func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a claim value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
