package usecase

import "time"

// OrderView is the read model served to clients and stored in the cache.
type OrderView struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	OrderDate     time.Time       `json:"orderDate"`
	PaymentDate   *time.Time      `json:"paymentDate,omitempty"`
	Address       AddressView     `json:"address"`
	Items         []OrderItemView `json:"items"`
}

type AddressView struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderItemView struct {
	ID       string `json:"id"`
	BookID   string `json:"bookId"`
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// CustomerOrderCount is one row of the top-customers aggregation, enriched
// with user profile fields.
type CustomerOrderCount struct {
	UserID     string `json:"userId"`
	OrderCount int64  `json:"orderCount"`
	FullName   string `json:"fullName,omitempty"`
	Email      string `json:"email,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

// Page wraps a paged listing.
type Page struct {
	Content       []OrderView `json:"content"`
	TotalPages    int64       `json:"totalPages"`
	TotalElements int64       `json:"totalElements"`
}
