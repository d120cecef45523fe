package main

import "context"

// Notifier is the boundary to the notification collaborator (email/WhatsApp
// delivery lives outside this service).
type Notifier interface {
	OrderPaid(ctx context.Context, orderID, userID string, totalPrice int64) error
	OrderDelivered(ctx context.Context, orderID, userID string) error
}
