package scheduler

import (
	"context"
	"log/slog"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sweepCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookgarden_sweep_cancelled_total",
		Help: "Unpaid orders cancelled by the expiry sweep",
	})
	sweepConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookgarden_sweep_confirmed_total",
		Help: "Delivered orders confirmed by the auto-confirm sweep",
	})
)

// Sweeper runs the two reconciliation passes: unpaid-order expiry and
// delivered-order auto-confirm. Both transition orders through the same
// guarded compare-and-swap the user-driven operations use, so re-running a
// sweep, or racing a staff action, is a no-op for already-moved orders.
type Sweeper struct {
	log      *slog.Logger
	orders   usecase.OrderRepo
	cache    usecase.OrderCache
	notifier usecase.NotificationSink

	clientHost   string
	unpaidEvery  time.Duration
	unpaidExpiry time.Duration
	confirmEvery time.Duration
	confirmGrace time.Duration

	now func() time.Time
}

func New(log *slog.Logger, orders usecase.OrderRepo, cache usecase.OrderCache,
	notifier usecase.NotificationSink, clientHost string,
	unpaidEvery, unpaidExpiry, confirmEvery, confirmGrace time.Duration) *Sweeper {
	return &Sweeper{
		log:          log,
		orders:       orders,
		cache:        cache,
		notifier:     notifier,
		clientHost:   clientHost,
		unpaidEvery:  unpaidEvery,
		unpaidExpiry: unpaidExpiry,
		confirmEvery: confirmEvery,
		confirmGrace: confirmGrace,
		now:          time.Now,
	}
}

// RunUnpaidExpiry ticks until ctx is cancelled. Each tick runs one full
// CancelUnpaidOrders pass; passes never overlap.
func (s *Sweeper) RunUnpaidExpiry(ctx context.Context) {
	t := time.NewTicker(s.unpaidEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("unpaid expiry sweep stopping")
			return
		case <-t.C:
			s.CancelUnpaidOrders(ctx)
		}
	}
}

// RunAutoConfirm ticks until ctx is cancelled.
func (s *Sweeper) RunAutoConfirm(ctx context.Context) {
	t := time.NewTicker(s.confirmEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("auto-confirm sweep stopping")
			return
		case <-t.C:
			s.AutoConfirmDelivered(ctx)
		}
	}
}

// CancelUnpaidOrders cancels ONLINE orders still NOT_PAID and PENDING once
// their age reaches the expiry threshold (inclusive: an order aged exactly at
// the threshold is cancelled). One order's failure never aborts the pass.
func (s *Sweeper) CancelUnpaidOrders(ctx context.Context) {
	orders, err := s.orders.ListUnpaidOnline(ctx)
	if err != nil {
		s.log.Error("unpaid expiry scan failed", "err", err)
		return
	}

	now := s.now()
	for i := range orders {
		order := &orders[i]
		if now.Sub(order.OrderDate) < s.unpaidExpiry || order.Status != domain.StatusPending {
			continue
		}
		// The CAS re-checks PENDING at write time; the scan snapshot may be
		// stale by now.
		swapped, err := s.orders.UpdateStatusIf(ctx, order.ID, domain.StatusPending, domain.StatusCancelled)
		if err != nil {
			s.log.Error("unpaid expiry cancel failed", "order_id", order.ID, "err", err)
			continue
		}
		if !swapped {
			continue
		}
		sweepCancelled.Inc()
		s.invalidate(ctx, order.ID)
		if err := s.notifier.Notify(ctx, order.UserID, "Order cancelled",
			"Your order was cancelled because it was not paid in time.",
			s.clientHost+"/profile/order-history"); err != nil {
			s.log.Warn("cancellation notification failed", "order_id", order.ID, "err", err)
		}
		s.log.Info("unpaid order cancelled", "order_id", order.ID, "age", now.Sub(order.OrderDate).String())
	}
}

// AutoConfirmDelivered confirms DELIVERED orders older than the grace period.
func (s *Sweeper) AutoConfirmDelivered(ctx context.Context) {
	orders, err := s.orders.ListByStatus(ctx, domain.StatusDelivered)
	if err != nil {
		s.log.Error("auto-confirm scan failed", "err", err)
		return
	}

	now := s.now()
	for i := range orders {
		order := &orders[i]
		if now.Sub(order.OrderDate) < s.confirmGrace {
			continue
		}
		swapped, err := s.orders.UpdateStatusIf(ctx, order.ID, domain.StatusDelivered, domain.StatusConfirmed)
		if err != nil {
			s.log.Error("auto-confirm failed", "order_id", order.ID, "err", err)
			continue
		}
		if !swapped {
			continue
		}
		sweepConfirmed.Inc()
		s.invalidate(ctx, order.ID)
		if err := s.notifier.Notify(ctx, order.UserID, "Order confirmed",
			"Your order was automatically confirmed 7 days after delivery.",
			s.clientHost+"/profile/order-history"); err != nil {
			s.log.Warn("auto-confirm notification failed", "order_id", order.ID, "err", err)
		}
		s.log.Info("delivered order auto-confirmed", "order_id", order.ID)
	}
}

func (s *Sweeper) invalidate(ctx context.Context, orderID string) {
	if err := s.cache.Invalidate(ctx, orderID); err != nil {
		s.log.Warn("order cache invalidation failed", "order_id", orderID, "err", err)
	}
}
