package domain

// RoleAdmin is granted to every successful login; there is no per-user role storage.
const RoleAdmin = "admin"

// DefaultRoles returns the role set attached to newly issued session tokens.
func DefaultRoles() []string {
	return []string{RoleAdmin}
}
