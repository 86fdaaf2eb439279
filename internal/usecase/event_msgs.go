package usecase

import "time"

// NotificationMsg is the payload published to the notification queue.
type NotificationMsg struct {
	UserID string    `json:"userId"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Link   string    `json:"link"`
	SentAt time.Time `json:"sentAt"`
}

// OrderStatusChangedMsg is emitted on the event stream after every accepted
// transition.
type OrderStatusChangedMsg struct {
	OrderID string    `json:"orderId"`
	UserID  string    `json:"userId"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
}

// PaymentResultMsg mirrors the gateway callback shape when the result arrives
// over the payment events topic instead of HTTP.
type PaymentResultMsg struct {
	OrderID       string `json:"orderId"`
	ResponseCode  string `json:"responseCode"`
	TransactionNo string `json:"transactionNo"`
}
