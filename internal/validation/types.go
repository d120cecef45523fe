package validation

// LineItem is a client-submitted order line. No price field: prices always
// come from the catalog.
type LineItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	GiftWrap  bool   `json:"gift_wrap,omitempty"`
}

// AddressPayload is a shipping or billing snapshot as submitted at checkout.
type AddressPayload struct {
	Name       string `json:"name" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Phone      string `json:"phone" validate:"required,mobile10"`
}

// IntentRequest is the payload for POST /checkout/intent. The amount is
// computed server-side from the items; the client proposes none.
type IntentRequest struct {
	Items    []LineItem `json:"items" validate:"required,min=1,dive"`
	Currency string     `json:"currency" validate:"required,len=3"`
}

// CheckoutRequest is the payload for POST /checkout/verify: the gateway
// completion triple plus the order the client wants recorded.
type CheckoutRequest struct {
	IntentID     string          `json:"intent_id" validate:"required"`
	PaymentID    string          `json:"payment_id" validate:"required"`
	Signature    string          `json:"signature" validate:"required"`
	Items        []LineItem      `json:"items" validate:"required,min=1,dive"`
	ShippingInfo AddressPayload  `json:"shipping_info" validate:"required"`
	BillingInfo  *AddressPayload `json:"billing_info,omitempty"`
}

// ExchangeCreateRequest is the payload for POST /orders/:id/exchange.
type ExchangeCreateRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
	Mobile  string `json:"mobile" validate:"required,mobile10"`
	Reason  string `json:"reason" validate:"required,min=20"`
}

// StatusUpdateRequest is the admin payload for PUT /admin/orders/:id/status.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=Processing Shipped Delivered Cancelled"`
}

// DecisionRequest is the admin payload for PUT /admin/exchange-requests/:id.
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted rejected"`
}
