package exchange

import (
	"errors"
	"fmt"
	"time"
)

// Decision states for an exchange request.
const (
	StatusPending  = "Pending"
	StatusAccepted = "Exchange Accepted"
	StatusRejected = "Exchange Rejected"
)

// ErrDuplicateRequest means an exchange request already exists for the order.
var ErrDuplicateRequest = errors.New("exchange request already exists for order")

// ErrAlreadyDecided means the request has left Pending and cannot be decided
// again.
var ErrAlreadyDecided = errors.New("exchange request already decided")

// NotEligibleError carries the human-readable eligibility reason.
type NotEligibleError struct {
	Reason string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("order not eligible for exchange: %s", e.Reason)
}

// Customer is the contact snapshot taken when the request is opened.
type Customer struct {
	Name    string `dynamodbav:"name" json:"name"`
	Email   string `dynamodbav:"email" json:"email"`
	Address string `dynamodbav:"address" json:"address"`
	Mobile  string `dynamodbav:"mobile" json:"mobile"`
}

// Request is a customer's post-delivery exchange application. The table is
// keyed by order_id, which is what enforces at most one request per order.
type Request struct {
	OrderID    string     `dynamodbav:"order_id" json:"order_id"` // PK
	RequestID  string     `dynamodbav:"request_id" json:"request_id"`
	Customer   Customer   `dynamodbav:"customer" json:"customer"`
	Reason     string     `dynamodbav:"reason" json:"reason"`
	Status     string     `dynamodbav:"status" json:"status"`
	CreatedAt  time.Time  `dynamodbav:"created_at" json:"created_at"`
	DecisionAt *time.Time `dynamodbav:"decision_at,omitempty" json:"decision_at,omitempty"`
}
