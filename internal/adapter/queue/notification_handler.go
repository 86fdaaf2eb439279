package queue

import (
	"context"
	"log/slog"

	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsDelivered = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bookgarden_notifications_delivered_total",
	Help: "Notifications drained from the delivery queue",
})

// NotificationHandler is the delivery worker behind the notification queue.
// The push transport itself lives outside this service; the worker hands the
// payload to the per-user push topic and records the delivery.
type NotificationHandler struct {
	Push usecase.PushSink
	Log  *slog.Logger
}

func NewNotificationHandler(push usecase.PushSink, log *slog.Logger) *NotificationHandler {
	return &NotificationHandler{Push: push, Log: log}
}

// HandleNotification is intended to be used with the JSON adapter
// (queue.JSONHandler[usecase.NotificationMsg]).
func (h *NotificationHandler) HandleNotification(ctx context.Context, msg usecase.NotificationMsg) error {
	if err := h.Push.Publish(ctx, "notifications/"+msg.UserID, msg); err != nil {
		return err
	}
	notificationsDelivered.Inc()
	h.Log.Info("notification delivered", "user_id", msg.UserID, "title", msg.Title)
	return nil
}
