package pricing

import (
	"context"
	"fmt"

	"github.com/imrishuroy/go-checkout-reconciler/internal/catalog"
)

// Pricing constants, minor units.
const (
	ShippingFlat    int64 = 10000  // flat shipping charge
	FreeShippingMin int64 = 100000 // items total at or above this ships free
	GiftWrapPerItem int64 = 3000   // charged per gift-wrapped line
)

// InvalidOrderError rejects a checkout payload that cannot be priced.
type InvalidOrderError struct {
	Reason string
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("invalid order: %s", e.Reason)
}

// LineItemRequest is a client-submitted line. Prices are deliberately absent:
// the client never supplies them.
type LineItemRequest struct {
	ProductID string
	Quantity  int
	Size      string
	Color     string
	GiftWrap  bool
}

// QuoteLine is a re-priced line with snapshots taken from the catalog.
type QuoteLine struct {
	ProductID string
	Name      string
	UnitPrice int64
	Quantity  int
	Size      string
	Color     string
	GiftWrap  bool
	ImageURL  string
}

// Quote is the authoritative pricing of a proposed order.
type Quote struct {
	Lines         []QuoteLine
	ItemsPrice    int64
	ShippingPrice int64
	GiftWrapPrice int64
	TotalPrice    int64
}

// Normalize re-prices the submitted lines from the catalog and computes
// aggregate totals. It reads the catalog but mutates nothing; stock is
// checked, not decremented.
func Normalize(ctx context.Context, reader catalog.Reader, items []LineItemRequest) (*Quote, error) {
	if len(items) == 0 {
		return nil, &InvalidOrderError{Reason: "order has no items"}
	}

	q := &Quote{Lines: make([]QuoteLine, 0, len(items))}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, &InvalidOrderError{Reason: fmt.Sprintf("quantity %d for product %s", it.Quantity, it.ProductID)}
		}
		p, err := reader.Get(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("catalog lookup %s: %w", it.ProductID, err)
		}
		if p == nil {
			return nil, &InvalidOrderError{Reason: fmt.Sprintf("unknown product %s", it.ProductID)}
		}
		if it.Quantity > p.Stock {
			return nil, &InvalidOrderError{Reason: fmt.Sprintf("insufficient stock for %s: requested %d, available %d", p.Name, it.Quantity, p.Stock)}
		}

		q.Lines = append(q.Lines, QuoteLine{
			ProductID: p.ProductID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			GiftWrap:  it.GiftWrap,
			ImageURL:  p.ImageURL,
		})
		q.ItemsPrice += p.Price * int64(it.Quantity)
		if it.GiftWrap {
			q.GiftWrapPrice += GiftWrapPerItem
		}
	}

	if q.ItemsPrice < FreeShippingMin {
		q.ShippingPrice = ShippingFlat
	}
	q.TotalPrice = q.ItemsPrice + q.ShippingPrice + q.GiftWrapPrice
	return q, nil
}
