package orders

import "time"

// PaymentStatus is the payment leg of an order. It moves processing -> paid
// or processing -> failed; both are terminal.
type PaymentStatus string

const (
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

// Terminal reports whether no further payment transitions are allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

// Status is the fulfillment leg of an order, admin-driven.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// LineItem is an ordered line with catalog snapshots taken at verification
// time, so later catalog edits do not rewrite order history.
type LineItem struct {
	ProductID string `dynamodbav:"product_id" json:"product_id"`
	Name      string `dynamodbav:"name" json:"name"`
	UnitPrice int64  `dynamodbav:"unit_price" json:"unit_price"` // minor units
	Quantity  int    `dynamodbav:"quantity" json:"quantity"`
	Size      string `dynamodbav:"size,omitempty" json:"size,omitempty"`
	Color     string `dynamodbav:"color,omitempty" json:"color,omitempty"`
	GiftWrap  bool   `dynamodbav:"gift_wrap,omitempty" json:"gift_wrap,omitempty"`
	ImageURL  string `dynamodbav:"image_url,omitempty" json:"image_url,omitempty"`
}

// Address is a shipping or billing snapshot.
type Address struct {
	Name       string `dynamodbav:"name" json:"name"`
	Line1      string `dynamodbav:"line1" json:"line1"`
	Line2      string `dynamodbav:"line2,omitempty" json:"line2,omitempty"`
	City       string `dynamodbav:"city" json:"city"`
	State      string `dynamodbav:"state,omitempty" json:"state,omitempty"`
	Country    string `dynamodbav:"country" json:"country"`
	PostalCode string `dynamodbav:"postal_code" json:"postal_code"`
	Phone      string `dynamodbav:"phone" json:"phone"`
}

// Order is the durable record of one purchase.
//
// Payment identifiers and payment_status are stored flat (not nested) so the
// store can express its compare-and-swap conditions and the intent-id GSI
// directly against them.
type Order struct {
	OrderID       string        `dynamodbav:"order_id" json:"order_id"` // PK
	UserID        string        `dynamodbav:"user_id" json:"user_id"`
	Items         []LineItem    `dynamodbav:"items" json:"items"`
	ItemsPrice    int64         `dynamodbav:"items_price" json:"items_price"`
	ShippingPrice int64         `dynamodbav:"shipping_price" json:"shipping_price"`
	GiftWrapPrice int64         `dynamodbav:"gift_wrap_price" json:"gift_wrap_price"`
	TotalPrice    int64         `dynamodbav:"total_price" json:"total_price"`
	ShippingInfo  Address       `dynamodbav:"shipping_info" json:"shipping_info"`
	BillingInfo   *Address      `dynamodbav:"billing_info,omitempty" json:"billing_info,omitempty"`
	IntentID      string        `dynamodbav:"intent_id" json:"intent_id"`
	PaymentID     string        `dynamodbav:"payment_id,omitempty" json:"payment_id,omitempty"`
	PaymentStatus PaymentStatus `dynamodbav:"payment_status" json:"payment_status"`
	OrderStatus   Status        `dynamodbav:"order_status" json:"order_status"`
	DeliveredAt   *time.Time    `dynamodbav:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	CreatedAt     time.Time     `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `dynamodbav:"updated_at" json:"updated_at"`
}
