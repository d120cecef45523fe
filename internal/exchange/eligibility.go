package exchange

import (
	"fmt"
	"time"

	"github.com/imrishuroy/go-checkout-reconciler/internal/orders"
)

// Window is how long after delivery an exchange may be requested.
const Window = 72 * time.Hour

// EligibilityResult says whether an exchange may be opened now, and until
// when.
type EligibilityResult struct {
	CanApply bool       `json:"can_apply"`
	Deadline *time.Time `json:"deadline,omitempty"`
	Reason   string     `json:"reason"`
}

// Eligibility decides whether the order can be exchanged at `now`. It is a
// pure function of its arguments so repeated evaluation cannot drift.
func Eligibility(order *orders.Order, now time.Time) EligibilityResult {
	if order.OrderStatus != orders.StatusDelivered {
		return EligibilityResult{Reason: "exchange is available only after delivery"}
	}
	if order.DeliveredAt == nil || order.DeliveredAt.IsZero() {
		return EligibilityResult{Reason: "exchange is currently unavailable"}
	}
	deadline := order.DeliveredAt.Add(Window)
	if now.After(deadline) {
		return EligibilityResult{
			Deadline: &deadline,
			Reason:   fmt.Sprintf("exchange window closed on %s", deadline.Format(time.RFC1123)),
		}
	}
	return EligibilityResult{
		CanApply: true,
		Deadline: &deadline,
		Reason:   fmt.Sprintf("exchange available until %s", deadline.Format(time.RFC1123)),
	}
}
