package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/LakLN/Book-Garden-Server-v2/internal/entity"
	"github.com/LakLN/Book-Garden-Server-v2/internal/logging"
)

// PaymentCallback applies a gateway result to an order. The gateway delivers
// at least once, so the handler must tolerate duplicates: PAID is set at most
// once and the payment date never moves after the first success.
type PaymentCallback struct {
	orders OrderRepo
	cache  OrderCache

	successCode string
	now         func() time.Time
}

func NewPaymentCallback(orders OrderRepo, cache OrderCache, successCode string) *PaymentCallback {
	return &PaymentCallback{
		orders:      orders,
		cache:       cache,
		successCode: successCode,
		now:         time.Now,
	}
}

func (uc *PaymentCallback) Execute(ctx context.Context, orderID, responseCode string) (*domain.Order, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		paymentCallbacks.WithLabelValues("unknown_order").Inc()
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}

	if responseCode != uc.successCode {
		paymentCallbacks.WithLabelValues("declined").Inc()
		return nil, fmt.Errorf("%w: gateway code %s", ErrPaymentDeclined, responseCode)
	}

	if err := uc.orders.MarkPaid(ctx, orderID, uc.now().UTC()); err != nil {
		return nil, err
	}
	// The original engine moves the order to PROCESSING unconditionally, even
	// if staff already advanced it; preserved as-is.
	if err := uc.orders.UpdateStatus(ctx, orderID, domain.StatusProcessing); err != nil {
		return nil, err
	}

	if err := uc.cache.Invalidate(ctx, orderID); err != nil {
		logging.FromCtx(ctx).Warn("order cache invalidation failed", "order_id", orderID, "err", err)
	}
	paymentCallbacks.WithLabelValues("paid").Inc()

	return uc.orders.GetByID(ctx, orderID)
}
