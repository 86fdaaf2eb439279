package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueryFixture(s *memStore) (*OrderQuery, *memCache) {
	cache := newMemCache()
	uc := NewOrderQuery(&memOrderRepo{s}, &memItemRepo{s}, &memBookRepo{s},
		&memUserRepo{s}, &memAddrRepo{s}, cache)
	return uc, cache
}

func seedQueryData(s *memStore) {
	s.users["cust"] = &domain.User{ID: "cust", FullName: "An Nguyen", Email: "an@example.com", Role: domain.RoleCustomer}
	s.users["other"] = &domain.User{ID: "other", Role: domain.RoleCustomer}
	s.users["mgr"] = &domain.User{ID: "mgr", Role: domain.RoleManager}
	s.addrs["addr1"] = &domain.Address{ID: "addr1", Name: "An Nguyen", Phone: "0901234567", Address: "12 Ly Thuong Kiet"}
	s.books["bookA"] = &domain.Book{ID: "bookA", Title: "Go in Action"}

	o := &domain.Order{
		ID:            "ord-1",
		UserID:        "cust",
		AddressID:     "addr1",
		Status:        domain.StatusPending,
		PaymentMethod: domain.PaymentCOD,
		PaymentStatus: domain.PaymentNotPaid,
		OrderDate:     time.Now().UTC().Add(-time.Hour),
	}
	s.orders[o.ID] = o
	s.orderSeq = append(s.orderSeq, o.ID)
	s.items["it-1"] = &domain.OrderItem{ID: "it-1", OrderID: "ord-1", BookID: "bookA", Quantity: 2}
	s.itemOrder = append(s.itemOrder, "it-1")
}

func TestGetOrder_BuildsAndCachesView(t *testing.T) {
	s := newMemStore()
	seedQueryData(s)
	uc, cache := newQueryFixture(s)

	view, err := uc.GetOrder(context.Background(), "cust", "ord-1")
	require.NoError(t, err)

	assert.Equal(t, "ord-1", view.ID)
	assert.Equal(t, "PENDING", view.Status)
	assert.Nil(t, view.PaymentDate)
	assert.Equal(t, "An Nguyen", view.Address.Name)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Go in Action", view.Items[0].Title)
	assert.Equal(t, 2, view.Items[0].Quantity)

	_, hit, _ := cache.GetView(context.Background(), "ord-1")
	assert.True(t, hit)
}

func TestGetOrder_CachedViewStillAuthorized(t *testing.T) {
	s := newMemStore()
	seedQueryData(s)
	uc, cache := newQueryFixture(s)
	cache.views["ord-1"] = &OrderView{ID: "ord-1", UserID: "cust"}

	_, err := uc.GetOrder(context.Background(), "other", "ord-1")
	assert.ErrorIs(t, err, ErrForbidden)

	view, err := uc.GetOrder(context.Background(), "mgr", "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", view.ID)
}

func TestGetOrder_NotFound(t *testing.T) {
	s := newMemStore()
	seedQueryData(s)
	uc, _ := newQueryFixture(s)

	_, err := uc.GetOrder(context.Background(), "cust", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_CustomerSeesOwnOrdersOnly(t *testing.T) {
	s := newMemStore()
	seedQueryData(s)
	o := &domain.Order{ID: "ord-2", UserID: "other", Status: domain.StatusPending,
		PaymentMethod: domain.PaymentCOD, PaymentStatus: domain.PaymentNotPaid,
		OrderDate: time.Now().UTC()}
	s.orders[o.ID] = o
	s.orderSeq = append(s.orderSeq, o.ID)
	uc, _ := newQueryFixture(s)

	p, err := uc.List(context.Background(), "cust", 0, 10, false)
	require.NoError(t, err)
	require.Len(t, p.Content, 1)
	assert.Equal(t, "ord-1", p.Content[0].ID)
	assert.Equal(t, int64(1), p.TotalElements)

	p, err = uc.List(context.Background(), "mgr", 0, 10, false)
	require.NoError(t, err)
	assert.Len(t, p.Content, 2)
}

func TestList_Pagination(t *testing.T) {
	s := newMemStore()
	seedQueryData(s)
	for i := 2; i <= 7; i++ {
		o := &domain.Order{ID: fmt.Sprintf("ord-%d", i), UserID: "cust",
			Status: domain.StatusPending, PaymentMethod: domain.PaymentCOD,
			PaymentStatus: domain.PaymentNotPaid, OrderDate: time.Now().UTC()}
		s.orders[o.ID] = o
		s.orderSeq = append(s.orderSeq, o.ID)
	}
	uc, _ := newQueryFixture(s)

	p, err := uc.List(context.Background(), "cust", 0, 3, false)
	require.NoError(t, err)
	assert.Len(t, p.Content, 3)
	assert.Equal(t, int64(7), p.TotalElements)
	assert.Equal(t, int64(3), p.TotalPages)

	p, err = uc.List(context.Background(), "cust", 2, 3, false)
	require.NoError(t, err)
	assert.Len(t, p.Content, 1)

	p, err = uc.List(context.Background(), "cust", 0, 0, true)
	require.NoError(t, err)
	assert.Len(t, p.Content, 7)
	assert.Equal(t, int64(1), p.TotalPages)
}

func TestTopCustomers(t *testing.T) {
	s := newMemStore()
	seedQueryData(s)
	for i := 0; i < 3; i++ {
		o := &domain.Order{ID: fmt.Sprintf("o-other-%d", i), UserID: "other",
			Status: domain.StatusPending, PaymentMethod: domain.PaymentCOD,
			PaymentStatus: domain.PaymentNotPaid, OrderDate: time.Now().UTC()}
		s.orders[o.ID] = o
		s.orderSeq = append(s.orderSeq, o.ID)
	}
	uc, _ := newQueryFixture(s)

	rows, err := uc.TopCustomers(context.Background(), "mgr", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "other", rows[0].UserID)
	assert.Equal(t, int64(3), rows[0].OrderCount)
	assert.Equal(t, "cust", rows[1].UserID)
	assert.Equal(t, "An Nguyen", rows[1].FullName)
	assert.Equal(t, "an@example.com", rows[1].Email)

	_, err = uc.TopCustomers(context.Background(), "cust", 10)
	assert.ErrorIs(t, err, ErrForbidden)
}
