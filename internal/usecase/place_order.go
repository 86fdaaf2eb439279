package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/LakLN/Book-Garden-Server-v2/internal/logging"
	"github.com/google/uuid"
)

type PlaceOrderInput struct {
	UserID         string
	CartItemIDs    []string
	FullName       string
	Phone          string
	Address        string
	PaymentMethod  string
	IdempotencyKey string
}

// PlaceOrder converts a set of cart items into a persisted PENDING order.
// Address resolution, inventory adjustment, order-item materialization, cart
// deletion and the order insert run in one transaction: any failure leaves no
// partial order visible.
type PlaceOrder struct {
	tx       TxRunner
	orders   OrderRepo
	items    OrderItemRepo
	carts    CartRepo
	books    BookRepo
	users    UserRepo
	addrs    AddressRepo
	notifier NotificationSink
	idem     IdempotencyStore

	clientHost string
	now        func() time.Time
}

func NewPlaceOrder(tx TxRunner, orders OrderRepo, items OrderItemRepo, carts CartRepo,
	books BookRepo, users UserRepo, addrs AddressRepo, notifier NotificationSink,
	idem IdempotencyStore, clientHost string) *PlaceOrder {
	return &PlaceOrder{
		tx:         tx,
		orders:     orders,
		items:      items,
		carts:      carts,
		books:      books,
		users:      users,
		addrs:      addrs,
		notifier:   notifier,
		idem:       idem,
		clientHost: clientHost,
		now:        time.Now,
	}
}

func (uc *PlaceOrder) Execute(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if len(in.CartItemIDs) == 0 {
		return nil, fmt.Errorf("%w: no cart items", ErrInvalidReference)
	}
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	user, err := uc.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, in.UserID)
	}

	// Duplicate order suppression on the client-supplied key.
	if uc.idem != nil && in.IdempotencyKey != "" {
		if id, ok, _ := uc.idem.Recall(ctx, in.UserID, in.IdempotencyKey); ok {
			return uc.orders.GetByID(ctx, id)
		}
		ok, err := uc.idem.TryLock(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDuplicate
		}
	}

	var order *domain.Order
	err = uc.tx.RunInTx(ctx, func(ctx context.Context) error {
		addr, err := uc.findOrCreateAddress(ctx, in)
		if err != nil {
			return err
		}
		if err := uc.users.AttachAddress(ctx, in.UserID, addr.ID); err != nil {
			return err
		}

		orderID := uuid.NewString()
		itemIDs, err := uc.consumeCartItems(ctx, orderID, in.UserID, dedupe(in.CartItemIDs))
		if err != nil {
			return err
		}

		order = &domain.Order{
			ID:            orderID,
			UserID:        in.UserID,
			ItemIDs:       itemIDs,
			AddressID:     addr.ID,
			Status:        domain.StatusPending,
			PaymentMethod: method,
			PaymentStatus: domain.PaymentNotPaid,
			OrderDate:     uc.now().UTC(),
		}
		return uc.orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if uc.idem != nil && in.IdempotencyKey != "" {
		_ = uc.idem.Remember(ctx, in.UserID, in.IdempotencyKey, order.ID)
	}

	// Best-effort: a sink failure never unwinds the committed order.
	if err := uc.notifier.Notify(ctx, in.UserID, "Order placed",
		"Your order has been placed successfully.", uc.clientHost+"/profile/order-history"); err != nil {
		logging.FromCtx(ctx).Warn("order placed notification failed", "order_id", order.ID, "err", err)
	}

	ordersCreated.Inc()
	return order, nil
}

func (uc *PlaceOrder) findOrCreateAddress(ctx context.Context, in PlaceOrderInput) (*domain.Address, error) {
	addr, err := uc.addrs.FindExact(ctx, in.FullName, in.Phone, in.Address)
	if err != nil {
		return nil, err
	}
	if addr != nil {
		return addr, nil
	}
	addr = &domain.Address{
		ID:      uuid.NewString(),
		Name:    in.FullName,
		Phone:   in.Phone,
		Address: in.Address,
	}
	if err := uc.addrs.Create(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

// consumeCartItems snapshots each cart item into an order item, adjusts book
// counters and deletes the consumed cart rows. Stock has no floor: oversell
// drives it negative rather than failing.
func (uc *PlaceOrder) consumeCartItems(ctx context.Context, orderID, userID string, cartItemIDs []string) ([]string, error) {
	cartItems, err := uc.carts.ListByIDs(ctx, cartItemIDs)
	if err != nil {
		return nil, err
	}
	if len(cartItems) != len(cartItemIDs) {
		return nil, fmt.Errorf("%w: cart item", ErrNotFound)
	}

	itemIDs := make([]string, 0, len(cartItems))
	for _, ci := range cartItems {
		if ci.UserID != userID {
			return nil, fmt.Errorf("%w: cart item %s belongs to another user", ErrForbidden, ci.ID)
		}
		book, err := uc.books.GetByID(ctx, ci.BookID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, fmt.Errorf("%w: book %s", ErrNotFound, ci.BookID)
		}
		if err := uc.books.AdjustStock(ctx, ci.BookID, ci.Quantity); err != nil {
			return nil, err
		}

		item := &domain.OrderItem{
			ID:       uuid.NewString(),
			OrderID:  orderID,
			BookID:   ci.BookID,
			Quantity: ci.Quantity,
		}
		if err := uc.items.Create(ctx, item); err != nil {
			return nil, err
		}
		itemIDs = append(itemIDs, item.ID)
	}

	if err := uc.carts.DeleteByIDs(ctx, cartItemIDs); err != nil {
		return nil, err
	}
	return itemIDs, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
