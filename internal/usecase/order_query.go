package usecase

import (
	"context"
	"fmt"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/LakLN/Book-Garden-Server-v2/internal/logging"
	"github.com/LakLN/Book-Garden-Server-v2/internal/security"
)

// OrderQuery serves the read side: single orders, listings and the
// top-customers aggregation. Single-order views are cached per id.
type OrderQuery struct {
	orders OrderRepo
	items  OrderItemRepo
	books  BookRepo
	users  UserRepo
	addrs  AddressRepo
	cache  OrderCache
}

func NewOrderQuery(orders OrderRepo, items OrderItemRepo, books BookRepo,
	users UserRepo, addrs AddressRepo, cache OrderCache) *OrderQuery {
	return &OrderQuery{orders: orders, items: items, books: books, users: users, addrs: addrs, cache: cache}
}

// GetOrder returns one order view. Staff may read any order; customers only
// their own.
func (uc *OrderQuery) GetOrder(ctx context.Context, callerID, orderID string) (*OrderView, error) {
	caller, err := uc.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if view, ok, err := uc.cache.GetView(ctx, orderID); err == nil && ok {
		if err := uc.authorizeRead(caller, view.UserID, orderID); err != nil {
			return nil, err
		}
		return view, nil
	} else if err != nil {
		logging.FromCtx(ctx).Warn("order cache read failed", "order_id", orderID, "err", err)
	}

	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	if err := uc.authorizeRead(caller, order.UserID, orderID); err != nil {
		return nil, err
	}

	view, err := uc.BuildView(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetView(ctx, view); err != nil {
		logging.FromCtx(ctx).Warn("order cache write failed", "order_id", orderID, "err", err)
	}
	return view, nil
}

// List returns the caller's orders newest first; staff callers see every
// order. Paged unless all is set.
func (uc *OrderQuery) List(ctx context.Context, callerID string, page, size int, all bool) (*Page, error) {
	caller, err := uc.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	staff := security.Can(caller.Role, security.ManageOrders)

	var (
		orders []domain.Order
		total  int64
	)
	switch {
	case all && staff:
		orders, err = uc.orders.ListAll(ctx)
		total = int64(len(orders))
	case all:
		orders, err = uc.orders.ListByUser(ctx, callerID)
		total = int64(len(orders))
	case staff:
		orders, total, err = uc.orders.ListAllPage(ctx, page, size)
	default:
		orders, total, err = uc.orders.ListByUserPage(ctx, callerID, page, size)
	}
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		view, err := uc.BuildView(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	p := &Page{Content: views, TotalElements: total, TotalPages: 1}
	if !all && size > 0 {
		p.TotalPages = (total + int64(size) - 1) / int64(size)
	}
	return p, nil
}

// TopCustomers is a pure aggregation over orders, staff only.
func (uc *OrderQuery) TopCustomers(ctx context.Context, callerID string, limit int) ([]CustomerOrderCount, error) {
	caller, err := uc.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !security.Can(caller.Role, security.ManageOrders) {
		return nil, fmt.Errorf("%w: orders.manage required", ErrForbidden)
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := uc.orders.TopCustomers(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		user, err := uc.users.GetByID(ctx, rows[i].UserID)
		if err != nil || user == nil {
			continue
		}
		rows[i].FullName = user.FullName
		rows[i].Email = user.Email
		rows[i].Avatar = user.Avatar
	}
	return rows, nil
}

// BuildView assembles the read model for one order.
func (uc *OrderQuery) BuildView(ctx context.Context, order *domain.Order) (*OrderView, error) {
	view := &OrderView{
		ID:            order.ID,
		UserID:        order.UserID,
		Status:        string(order.Status),
		PaymentMethod: string(order.PaymentMethod),
		PaymentStatus: string(order.PaymentStatus),
		OrderDate:     order.OrderDate,
	}
	if !order.PaymentDate.IsZero() {
		d := order.PaymentDate
		view.PaymentDate = &d
	}

	if addr, err := uc.addrs.GetByID(ctx, order.AddressID); err == nil && addr != nil {
		view.Address = AddressView{Name: addr.Name, Phone: addr.Phone, Address: addr.Address}
	}

	items, err := uc.items.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		iv := OrderItemView{ID: item.ID, BookID: item.BookID, Quantity: item.Quantity}
		if book, err := uc.books.GetByID(ctx, item.BookID); err == nil && book != nil {
			iv.Title = book.Title
		}
		view.Items = append(view.Items, iv)
	}
	return view, nil
}

func (uc *OrderQuery) caller(ctx context.Context, callerID string) (*domain.User, error) {
	caller, err := uc.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, callerID)
	}
	return caller, nil
}

func (uc *OrderQuery) authorizeRead(caller *domain.User, ownerID, orderID string) error {
	if security.Can(caller.Role, security.ManageOrders) || caller.ID == ownerID {
		return nil
	}
	return fmt.Errorf("%w: order %s is not yours", ErrForbidden, orderID)
}
