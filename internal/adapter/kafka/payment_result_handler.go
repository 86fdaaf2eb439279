package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
)

// PaymentResultHandler applies gateway results arriving on the payment events
// topic. The topic delivers at least once; the callback use case is
// idempotent, so duplicates are applied harmlessly.
type PaymentResultHandler struct {
	Callback *usecase.PaymentCallback
	Log      *slog.Logger
}

func NewPaymentResultHandler(cb *usecase.PaymentCallback, log *slog.Logger) *PaymentResultHandler {
	return &PaymentResultHandler{Callback: cb, Log: log}
}

func (h *PaymentResultHandler) Handle(ctx context.Context, ev usecase.PaymentResultMsg) error {
	_, err := h.Callback.Execute(ctx, ev.OrderID, ev.ResponseCode)
	switch {
	case err == nil:
		h.Log.Info("payment result applied", "order_id", ev.OrderID, "txn", ev.TransactionNo)
		return nil
	case errors.Is(err, usecase.ErrPaymentDeclined):
		// A declined payment is a terminal outcome for this message, not a
		// reason to retry it.
		h.Log.Info("payment declined", "order_id", ev.OrderID, "code", ev.ResponseCode)
		return nil
	case errors.Is(err, usecase.ErrNotFound):
		h.Log.Warn("payment result for unknown order", "order_id", ev.OrderID)
		return nil
	default:
		return err
	}
}
