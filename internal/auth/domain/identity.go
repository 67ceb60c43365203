// Package domain defines the identity supplied by the upstream gateway for every request.
package domain

// Roles recognised by the engine. Any other role value is treated as a regular user.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated caller as asserted by the bearer token. The engine trusts it
// and performs no authentication of its own beyond verifying the token signature.
type Identity struct {
	UserID string
	Role   string
}

// HasRole reports whether the identity carries the given role.
func (i *Identity) HasRole(role string) bool {
	return i != nil && i.Role == role
}
