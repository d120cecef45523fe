package webhook

import "time"

// Gateway event types this processor reconciles.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// Outcomes recorded on an Event row. Rows are append-only audit entries;
// they are never updated after the insert.
const (
	StatusProcessed = "processed"
	StatusIgnored   = "ignored"
	StatusFailed    = "failed"
)

// Delivery is the parsed webhook payload after the delivery signature has
// been verified.
type Delivery struct {
	EventID   string `json:"event_id,omitempty"`
	EventType string `json:"event_type"`
	PaymentID string `json:"payment_id"`
	IntentID  string `json:"intent_id"`
}

// Event is the shape persisted in the webhook events table. The uniqueness
// of DedupeKey is the mechanism that bounds side effects to at most once per
// distinct gateway event.
type Event struct {
	DedupeKey   string    `dynamodbav:"dedupe_key"` // PK, unique
	EventType   string    `dynamodbav:"event_type"`
	PaymentID   string    `dynamodbav:"payment_id,omitempty"`
	IntentID    string    `dynamodbav:"intent_id,omitempty"`
	Status      string    `dynamodbav:"status"`
	Note        string    `dynamodbav:"note,omitempty"`
	ProcessedAt time.Time `dynamodbav:"processed_at"`
}

// DedupeKey derives the deterministic identity of a delivery: the gateway
// event id when the gateway assigns one, otherwise payment id + event type.
// Arrival time must never participate, or redeliveries would stop colliding.
func DedupeKey(d Delivery) string {
	if d.EventID != "" {
		return d.EventID
	}
	return d.PaymentID + "|" + d.EventType
}
