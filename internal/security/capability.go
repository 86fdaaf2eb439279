package security

import domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"

// Capability is a single named permission. HTTP clients carry capabilities in
// the JWT "perms" claim; user records map to capability sets through their role.
type Capability string

const (
	ReadOrders   Capability = "orders.read"
	WriteOrders  Capability = "orders.write"
	ManageOrders Capability = "orders.manage"
)

// roleCaps defines the capability set of each role once, replacing per-call
// role string comparisons.
var roleCaps = map[domain.Role][]Capability{
	domain.RoleCustomer: {ReadOrders, WriteOrders},
	domain.RoleAdmin:    {ReadOrders, WriteOrders, ManageOrders},
	domain.RoleManager:  {ReadOrders, WriteOrders, ManageOrders},
}

// Can reports whether role grants cap.
func Can(role domain.Role, cap Capability) bool {
	for _, c := range roleCaps[role] {
		if c == cap {
			return true
		}
	}
	return false
}
