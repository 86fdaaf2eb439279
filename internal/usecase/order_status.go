package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/LakLN/Book-Garden-Server-v2/internal/logging"
	"github.com/LakLN/Book-Garden-Server-v2/internal/security"
)

// OrderStatus owns every user-driven transition of the order state machine.
// Each operation re-fetches the order and writes through a guarded
// compare-and-swap, so a decision is never based on a status a concurrent
// writer already changed.
type OrderStatus struct {
	orders   OrderRepo
	users    UserRepo
	cache    OrderCache
	notifier NotificationSink
	push     PushSink
	events   EventStream

	clientHost string
	now        func() time.Time
}

func NewOrderStatus(orders OrderRepo, users UserRepo, cache OrderCache,
	notifier NotificationSink, push PushSink, events EventStream, clientHost string) *OrderStatus {
	return &OrderStatus{
		orders:     orders,
		users:      users,
		cache:      cache,
		notifier:   notifier,
		push:       push,
		events:     events,
		clientHost: clientHost,
		now:        time.Now,
	}
}

// StaffUpdate applies a generic transition from the table. Only actors whose
// role grants orders.manage may call it. A DELIVERED transition forces the
// payment status to PAID.
func (uc *OrderStatus) StaffUpdate(ctx context.Context, actorID, orderID, rawStatus string) (*domain.Order, error) {
	actor, err := uc.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !security.Can(actor.Role, security.ManageOrders) {
		return nil, fmt.Errorf("%w: orders.manage required", ErrForbidden)
	}

	newStatus, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if !order.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, newStatus)
	}

	swapped, err := uc.orders.UpdateStatusIf(ctx, orderID, order.Status, newStatus)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// The status moved underneath us; the precondition no longer holds.
		return nil, fmt.Errorf("%w: order %s changed concurrently", ErrInvalidTransition, orderID)
	}

	if newStatus == domain.StatusDelivered {
		if err := uc.orders.MarkPaid(ctx, orderID, uc.now().UTC()); err != nil {
			return nil, err
		}
	}
	uc.invalidate(ctx, orderID)
	transitionsTotal.WithLabelValues(string(order.Status), string(newStatus)).Inc()

	uc.announce(ctx, order, order.Status, newStatus)

	return uc.orders.GetByID(ctx, orderID)
}

// CustomerCancel cancels the caller's own order, allowed only while it is
// still PENDING.
func (uc *OrderStatus) CustomerCancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := uc.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled", ErrInvalidTransition)
	}

	swapped, err := uc.orders.UpdateStatusIf(ctx, orderID, domain.StatusPending, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, fmt.Errorf("%w: order %s changed concurrently", ErrInvalidTransition, orderID)
	}
	uc.invalidate(ctx, orderID)
	transitionsTotal.WithLabelValues(string(domain.StatusPending), string(domain.StatusCancelled)).Inc()

	return uc.orders.GetByID(ctx, orderID)
}

// ConfirmReceipt moves the caller's own DELIVERED order to CONFIRMED. This is
// the only legal way to leave DELIVERED.
func (uc *OrderStatus) ConfirmReceipt(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := uc.ownedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusDelivered {
		return nil, fmt.Errorf("%w: only delivered orders can be confirmed", ErrInvalidTransition)
	}

	swapped, err := uc.orders.UpdateStatusIf(ctx, orderID, domain.StatusDelivered, domain.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, fmt.Errorf("%w: order %s changed concurrently", ErrInvalidTransition, orderID)
	}
	uc.invalidate(ctx, orderID)
	transitionsTotal.WithLabelValues(string(domain.StatusDelivered), string(domain.StatusConfirmed)).Inc()

	return uc.orders.GetByID(ctx, orderID)
}

func (uc *OrderStatus) ownedOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s is not yours", ErrForbidden, orderID)
	}
	return order, nil
}

func (uc *OrderStatus) invalidate(ctx context.Context, orderID string) {
	if err := uc.cache.Invalidate(ctx, orderID); err != nil {
		logging.FromCtx(ctx).Warn("order cache invalidation failed", "order_id", orderID, "err", err)
	}
}

// announce sends the status-change notification, the real-time push event and
// the lifecycle event. All three are best-effort.
func (uc *OrderStatus) announce(ctx context.Context, order *domain.Order, from, to domain.Status) {
	log := logging.FromCtx(ctx)

	body := "Your order status has been updated to " + string(to)
	if err := uc.notifier.Notify(ctx, order.UserID, "Order updated", body,
		uc.clientHost+"/profile/order-history"); err != nil {
		log.Warn("status notification failed", "order_id", order.ID, "err", err)
	}

	msg := OrderStatusChangedMsg{
		OrderID: order.ID,
		UserID:  order.UserID,
		From:    string(from),
		To:      string(to),
		At:      uc.now().UTC(),
	}
	if err := uc.push.Publish(ctx, "notifications/"+order.UserID, msg); err != nil {
		log.Warn("push publish failed", "order_id", order.ID, "err", err)
	}
	if err := uc.events.StatusChanged(ctx, msg); err != nil {
		log.Warn("status event publish failed", "order_id", order.ID, "err", err)
	}
}
