package scheduler

import (
	"context"
	"testing"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/LakLN/Book-Garden-Server-v2/internal/logging"
	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	usecase.OrderRepo
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*domain.Order{}}
}

func (r *fakeOrderRepo) add(o *domain.Order) { r.orders[o.ID] = o }

func (r *fakeOrderRepo) ListUnpaidOnline(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.PaymentMethod == domain.PaymentOnline && o.PaymentStatus == domain.PaymentNotPaid {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) ListByStatus(_ context.Context, status domain.Status) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range r.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatusIf(_ context.Context, id string, from, to domain.Status) (bool, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

type fakeCache struct{ invalidated []string }

func (c *fakeCache) GetView(context.Context, string) (*usecase.OrderView, bool, error) {
	return nil, false, nil
}
func (c *fakeCache) SetView(context.Context, *usecase.OrderView) error { return nil }
func (c *fakeCache) Invalidate(_ context.Context, id string) error {
	c.invalidated = append(c.invalidated, id)
	return nil
}

type fakeNotifier struct{ sent []string }

func (n *fakeNotifier) Notify(_ context.Context, userID, _, _, _ string) error {
	n.sent = append(n.sent, userID)
	return nil
}

func newTestSweeper(repo *fakeOrderRepo, at time.Time) (*Sweeper, *fakeCache, *fakeNotifier) {
	cache := &fakeCache{}
	notifier := &fakeNotifier{}
	s := New(logging.New("sweeper-test"), repo, cache, notifier, "https://shop.example",
		5*time.Minute, 30*time.Minute, 24*time.Hour, 7*24*time.Hour)
	s.now = func() time.Time { return at }
	return s, cache, notifier
}

func unpaidOrder(id string, age time.Duration, at time.Time) *domain.Order {
	return &domain.Order{
		ID:            id,
		UserID:        "cust",
		Status:        domain.StatusPending,
		PaymentMethod: domain.PaymentOnline,
		PaymentStatus: domain.PaymentNotPaid,
		OrderDate:     at.Add(-age),
	}
}

func TestCancelUnpaidOrders_ExpiryBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo()
	repo.add(unpaidOrder("fresh", 29*time.Minute+59*time.Second, now))
	repo.add(unpaidOrder("exact", 30*time.Minute, now))
	repo.add(unpaidOrder("stale", 2*time.Hour, now))

	s, cache, notifier := newTestSweeper(repo, now)
	s.CancelUnpaidOrders(context.Background())

	assert.Equal(t, domain.StatusPending, repo.orders["fresh"].Status)
	assert.Equal(t, domain.StatusCancelled, repo.orders["exact"].Status)
	assert.Equal(t, domain.StatusCancelled, repo.orders["stale"].Status)
	assert.ElementsMatch(t, []string{"exact", "stale"}, cache.invalidated)
	assert.Len(t, notifier.sent, 2)
}

func TestCancelUnpaidOrders_SkipsAdvancedOrders(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo()
	o := unpaidOrder("moved", 2*time.Hour, now)
	o.Status = domain.StatusProcessing
	repo.add(o)

	s, _, notifier := newTestSweeper(repo, now)
	s.CancelUnpaidOrders(context.Background())

	assert.Equal(t, domain.StatusProcessing, repo.orders["moved"].Status)
	assert.Empty(t, notifier.sent)
}

func TestCancelUnpaidOrders_SecondPassIsNoop(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo()
	repo.add(unpaidOrder("stale", 2*time.Hour, now))

	s, _, notifier := newTestSweeper(repo, now)
	s.CancelUnpaidOrders(context.Background())
	s.CancelUnpaidOrders(context.Background())

	require.Equal(t, domain.StatusCancelled, repo.orders["stale"].Status)
	assert.Len(t, notifier.sent, 1)
}

func TestAutoConfirmDelivered(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := newFakeOrderRepo()
	old := &domain.Order{
		ID: "old", UserID: "cust", Status: domain.StatusDelivered,
		PaymentMethod: domain.PaymentCOD, PaymentStatus: domain.PaymentPaid,
		OrderDate: now.Add(-8 * 24 * time.Hour),
	}
	recent := &domain.Order{
		ID: "recent", UserID: "cust", Status: domain.StatusDelivered,
		PaymentMethod: domain.PaymentCOD, PaymentStatus: domain.PaymentPaid,
		OrderDate: now.Add(-2 * 24 * time.Hour),
	}
	repo.add(old)
	repo.add(recent)

	s, cache, notifier := newTestSweeper(repo, now)
	s.AutoConfirmDelivered(context.Background())

	assert.Equal(t, domain.StatusConfirmed, repo.orders["old"].Status)
	assert.Equal(t, domain.StatusDelivered, repo.orders["recent"].Status)
	assert.Equal(t, []string{"old"}, cache.invalidated)
	assert.Len(t, notifier.sent, 1)
}
