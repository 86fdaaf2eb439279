package usecase

import (
	"context"
	"testing"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatusFixture(s *memStore) (*OrderStatus, *memCache, *recordingNotifier, *recordingPush, *recordingEvents) {
	cache := newMemCache()
	notifier := &recordingNotifier{}
	push := &recordingPush{}
	events := &recordingEvents{}
	uc := NewOrderStatus(&memOrderRepo{s}, &memUserRepo{s}, cache, notifier, push, events, "https://shop.example")
	return uc, cache, notifier, push, events
}

func seedStatusOrder(s *memStore, status domain.Status) *domain.Order {
	s.users["cust"] = &domain.User{ID: "cust", FullName: "An Nguyen", Role: domain.RoleCustomer}
	s.users["mgr"] = &domain.User{ID: "mgr", FullName: "Binh Tran", Role: domain.RoleManager}
	o := &domain.Order{
		ID:            "ord-1",
		UserID:        "cust",
		Status:        status,
		PaymentMethod: domain.PaymentCOD,
		PaymentStatus: domain.PaymentNotPaid,
		OrderDate:     time.Now().UTC().Add(-time.Hour),
	}
	s.orders[o.ID] = o
	s.orderSeq = append(s.orderSeq, o.ID)
	return o
}

func TestStaffUpdate_AdvancesOrder(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusPending)
	uc, cache, notifier, push, events := newStatusFixture(s)
	cache.views["ord-1"] = &OrderView{ID: "ord-1", UserID: "cust"}

	order, err := uc.StaffUpdate(context.Background(), "mgr", "ord-1", "PROCESSING")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, order.Status)
	assert.Equal(t, domain.PaymentNotPaid, order.PaymentStatus)

	assert.Contains(t, cache.invalidated, "ord-1")
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "cust", notifier.sent[0].UserID)
	require.Len(t, push.topics, 1)
	assert.Equal(t, "notifications/cust", push.topics[0])
	require.Len(t, events.msgs, 1)
	assert.Equal(t, "PENDING", events.msgs[0].From)
	assert.Equal(t, "PROCESSING", events.msgs[0].To)
}

func TestStaffUpdate_DeliveredForcesPaid(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusDelivering)
	uc, _, _, _, _ := newStatusFixture(s)

	order, err := uc.StaffUpdate(context.Background(), "mgr", "ord-1", "DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, order.Status)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.False(t, order.PaymentDate.IsZero())
}

func TestStaffUpdate_RejectsIllegalTransition(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusDelivered)
	uc, _, _, _, _ := newStatusFixture(s)

	_, err := uc.StaffUpdate(context.Background(), "mgr", "ord-1", "CANCELLED")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = uc.StaffUpdate(context.Background(), "mgr", "ord-1", "CONFIRMED")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStaffUpdate_RequiresManageCapability(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusPending)
	uc, _, _, _, _ := newStatusFixture(s)

	_, err := uc.StaffUpdate(context.Background(), "cust", "ord-1", "PROCESSING")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestStaffUpdate_UnknownStatus(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusPending)
	uc, _, _, _, _ := newStatusFixture(s)

	_, err := uc.StaffUpdate(context.Background(), "mgr", "ord-1", "SHIPPED")
	assert.ErrorIs(t, err, ErrInvalidReference)
}

func TestCustomerCancel(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusPending)
	uc, _, _, _, _ := newStatusFixture(s)

	order, err := uc.CustomerCancel(context.Background(), "cust", "ord-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
}

func TestCustomerCancel_OnlyPending(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusProcessing)
	uc, _, _, _, _ := newStatusFixture(s)

	_, err := uc.CustomerCancel(context.Background(), "cust", "ord-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, domain.StatusProcessing, s.orders["ord-1"].Status)
}

func TestCustomerCancel_OwnershipEnforced(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusPending)
	s.users["other"] = &domain.User{ID: "other", Role: domain.RoleCustomer}
	uc, _, _, _, _ := newStatusFixture(s)

	_, err := uc.CustomerCancel(context.Background(), "other", "ord-1")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConfirmReceipt(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusDelivered)
	uc, _, _, _, _ := newStatusFixture(s)

	order, err := uc.ConfirmReceipt(context.Background(), "cust", "ord-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, order.Status)
}

func TestConfirmReceipt_OnlyDelivered(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusDelivering)
	uc, _, _, _, _ := newStatusFixture(s)

	_, err := uc.ConfirmReceipt(context.Background(), "cust", "ord-1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmReceipt_UnknownOrder(t *testing.T) {
	s := newMemStore()
	seedStatusOrder(s, domain.StatusDelivered)
	uc, _, _, _, _ := newStatusFixture(s)

	_, err := uc.ConfirmReceipt(context.Background(), "cust", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
