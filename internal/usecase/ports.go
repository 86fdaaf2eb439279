package usecase

import (
	"context"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
)

// OrderRepo is the persistence port for orders. Status writes go through
// UpdateStatusIf so every writer re-validates its precondition at write time.
type OrderRepo interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListByUserPage(ctx context.Context, userID string, page, size int) ([]domain.Order, int64, error)
	ListAllPage(ctx context.Context, page, size int) ([]domain.Order, int64, error)

	// UpdateStatusIf performs a guarded compare-and-swap on the order status.
	// false means the order no longer satisfies the from-status precondition
	// (or does not exist).
	UpdateStatusIf(ctx context.Context, id string, from, to domain.Status) (bool, error)
	// UpdateStatus writes the status unconditionally.
	UpdateStatus(ctx context.Context, id string, to domain.Status) error
	// MarkPaid sets payment_status to PAID; payment_date is set only if it has
	// never been set before.
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error

	ListUnpaidOnline(ctx context.Context) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error)
	TopCustomers(ctx context.Context, limit int) ([]CustomerOrderCount, error)
}

type OrderItemRepo interface {
	Create(ctx context.Context, item *domain.OrderItem) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error)
}

type CartRepo interface {
	ListByIDs(ctx context.Context, ids []string) ([]domain.CartItem, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// BookRepo is the book directory contract. Metadata is owned elsewhere; this
// core only reads books and adjusts stock counters.
type BookRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Book, error)
	// AdjustStock decrements stock and increments sold quantity by qty.
	AdjustStock(ctx context.Context, id string, qty int) error
}

// UserRepo is the user directory contract.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// AttachAddress links an address to the user; re-attaching is a no-op.
	AttachAddress(ctx context.Context, userID, addressID string) error
}

type AddressRepo interface {
	// FindExact returns nil, nil when no address matches the tuple.
	FindExact(ctx context.Context, name, phone, address string) (*domain.Address, error)
	Create(ctx context.Context, a *domain.Address) error
	GetByID(ctx context.Context, id string) (*domain.Address, error)
}

// TxRunner scopes fn to a single transaction; repository calls made with the
// ctx passed to fn join it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderCache holds read-derived order views. Views are invalidated per order
// id after every successful mutation, never flushed wholesale.
type OrderCache interface {
	GetView(ctx context.Context, orderID string) (*OrderView, bool, error)
	SetView(ctx context.Context, view *OrderView) error
	Invalidate(ctx context.Context, orderID string) error
}

// NotificationSink accepts user notifications. Delivery is fire-and-forget:
// a sink error never fails the operation that emitted it.
type NotificationSink interface {
	Notify(ctx context.Context, userID, title, body, link string) error
}

// PushSink publishes real-time events on a per-user topic
// ("notifications/<userId>").
type PushSink interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// EventStream carries order lifecycle events to downstream consumers.
type EventStream interface {
	StatusChanged(ctx context.Context, msg OrderStatusChangedMsg) error
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}
