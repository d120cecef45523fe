package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/imrishuroy/go-checkout-reconciler/internal/aws"
	"github.com/imrishuroy/go-checkout-reconciler/internal/gateway"
	"github.com/imrishuroy/go-checkout-reconciler/internal/orders"
	"github.com/imrishuroy/go-checkout-reconciler/internal/pricing"
	"github.com/imrishuroy/go-checkout-reconciler/internal/validation"
)

// userID resolves the authenticated user. Session handling lives upstream;
// the trusted header is what it forwards.
func userID(c *gin.Context) (string, bool) {
	uid := c.GetHeader("X-User-Id")
	return uid, uid != ""
}

func toLineItemRequests(items []validation.LineItem) []pricing.LineItemRequest {
	out := make([]pricing.LineItemRequest, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.LineItemRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			GiftWrap:  it.GiftWrap,
		})
	}
	return out
}

// createIntent prices the proposed cart and asks the gateway for a payment
// intent. Deliberately stateless on our side: abandoning checkout here leaves
// no orphaned pending order.
func (h *handlers) createIntent(c *gin.Context) {
	ctx := c.Request.Context()

	var req validation.IntentRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	quote, err := pricing.Normalize(ctx, h.catalog, toLineItemRequests(req.Items))
	if err != nil {
		var ioe *pricing.InvalidOrderError
		if errors.As(err, &ioe) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_order", "msg": ioe.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pricing_failed"})
		return
	}

	intent, err := h.cfg.Gateway.CreateIntent(ctx, quote.TotalPrice, req.Currency)
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayUnavailable) {
			h.metrics.Count(ctx, aws.MetricGatewayUnavailable)
			c.JSON(http.StatusBadGateway, gin.H{"error": "gateway_unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "intent_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"intent_id":      intent.ID,
		"amount":         intent.Amount,
		"currency":       intent.Currency,
		"gateway_key_id": h.cfg.Gateway.KeyID(),
	})
}

// verifyCheckout validates the gateway completion triple and, only then,
// materializes the order — re-priced against the current catalog, never from
// client-submitted numbers.
func (h *handlers) verifyCheckout(c *gin.Context) {
	ctx := c.Request.Context()

	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req validation.CheckoutRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	if err := gateway.VerifyCompletionSignature(req.IntentID, req.PaymentID, req.Signature, h.cfg.SigningSecret); err != nil {
		// Enough detail to investigate tampering; the signature itself is
		// not logged.
		log.Printf("[checkout] signature mismatch intent=%s payment=%s user=%s", req.IntentID, req.PaymentID, uid)
		h.metrics.Count(ctx, aws.MetricVerifyFailed)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "payment_verification_failed"})
		return
	}

	// Prices and stock may have moved since intent issuance; re-normalize.
	quote, err := pricing.Normalize(ctx, h.catalog, toLineItemRequests(req.Items))
	if err != nil {
		var ioe *pricing.InvalidOrderError
		if errors.As(err, &ioe) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_order", "msg": ioe.Reason})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pricing_failed"})
		return
	}

	order := &orders.Order{
		OrderID:       uuid.NewString(),
		UserID:        uid,
		Items:         toOrderItems(quote),
		ItemsPrice:    quote.ItemsPrice,
		ShippingPrice: quote.ShippingPrice,
		GiftWrapPrice: quote.GiftWrapPrice,
		TotalPrice:    quote.TotalPrice,
		ShippingInfo:  toAddress(req.ShippingInfo),
		IntentID:      req.IntentID,
		PaymentID:     req.PaymentID,
		PaymentStatus: orders.PaymentPaid,
		OrderStatus:   orders.StatusProcessing,
		CreatedAt:     time.Now().UTC(),
	}
	if req.BillingInfo != nil {
		billing := toAddress(*req.BillingInfo)
		order.BillingInfo = &billing
	}

	if err := h.orders.Create(ctx, order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order_create_failed"})
		return
	}

	if h.publisher != nil {
		ev := aws.OrderEvent{
			Type:       aws.EventOrderPaid,
			OrderID:    order.OrderID,
			UserID:     uid,
			PaymentID:  req.PaymentID,
			TotalPrice: order.TotalPrice,
		}
		if perr := h.publisher.PublishOrderEvent(ctx, ev); perr != nil {
			log.Printf("[checkout] publish paid event order=%s: %v", order.OrderID, perr)
		}
	}

	c.JSON(http.StatusCreated, order)
}

// getOrder returns an order to its owner.
func (h *handlers) getOrder(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed"})
		return
	}
	if order == nil || order.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func toOrderItems(q *pricing.Quote) []orders.LineItem {
	items := make([]orders.LineItem, 0, len(q.Lines))
	for _, l := range q.Lines {
		items = append(items, orders.LineItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			GiftWrap:  l.GiftWrap,
			ImageURL:  l.ImageURL,
		})
	}
	return items
}

func toAddress(a validation.AddressPayload) orders.Address {
	return orders.Address{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		Country:    a.Country,
		PostalCode: a.PostalCode,
		Phone:      a.Phone,
	}
}
