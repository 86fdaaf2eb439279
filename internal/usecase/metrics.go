package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookgarden_orders_created_total",
		Help: "Orders created from carts",
	})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookgarden_order_transitions_total",
		Help: "Accepted order status transitions",
	}, []string{"from", "to"})

	paymentCallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookgarden_payment_callbacks_total",
		Help: "Payment gateway callbacks by outcome",
	}, []string{"outcome"})
)
