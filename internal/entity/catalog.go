package domain

// Role is the coarse capability tier carried on a user record.
type Role string

const (
	RoleCustomer Role = "Customer"
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
)

type User struct {
	ID         string
	FullName   string
	Email      string
	Avatar     string
	Role       Role
	AddressIDs []string
}

// Book metadata is owned elsewhere; this core mutates only Stock and
// SoldQuantity. Stock may go negative: oversell is accepted, not rejected.
type Book struct {
	ID           string
	Title        string
	Stock        int
	SoldQuantity int
}

// CartItem is a transient pre-order selection, consumed and deleted when the
// cart is converted into an order.
type CartItem struct {
	ID       string
	UserID   string
	BookID   string
	Quantity int
}

// Address records are deduplicated on the exact (Name, Phone, Address) tuple
// and never mutated after creation.
type Address struct {
	ID      string
	Name    string
	Phone   string
	Address string
}
