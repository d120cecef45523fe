package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/imrishuroy/go-checkout-reconciler/internal/exchange"
	"github.com/imrishuroy/go-checkout-reconciler/internal/orders"
	"github.com/imrishuroy/go-checkout-reconciler/internal/validation"
)

// exchangeEligibility reports whether the order can be exchanged right now.
func (h *handlers) exchangeEligibility(c *gin.Context) {
	order, ok := h.ownedOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, exchange.Eligibility(order, time.Now().UTC()))
}

// createExchangeRequest opens a Pending exchange request if the order is
// still inside its window. Eligibility is evaluated at call time; the
// conditional insert enforces one request per order.
func (h *handlers) createExchangeRequest(c *gin.Context) {
	ctx := c.Request.Context()

	order, ok := h.ownedOrder(c)
	if !ok {
		return
	}

	var req validation.ExchangeCreateRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	elig := exchange.Eligibility(order, time.Now().UTC())
	if !elig.CanApply {
		notEligible := &exchange.NotEligibleError{Reason: elig.Reason}
		c.JSON(http.StatusForbidden, gin.H{"error": "not_eligible", "msg": notEligible.Error()})
		return
	}

	request := &exchange.Request{
		OrderID:   order.OrderID,
		RequestID: uuid.NewString(),
		Customer: exchange.Customer{
			Name:    req.Name,
			Email:   req.Email,
			Address: req.Address,
			Mobile:  req.Mobile,
		},
		Reason: req.Reason,
	}

	if err := h.exchanges.Create(ctx, request); err != nil {
		if errors.Is(err, exchange.ErrDuplicateRequest) {
			c.JSON(http.StatusConflict, gin.H{"error": "exchange_request_exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "exchange_create_failed"})
		return
	}

	c.JSON(http.StatusCreated, request)
}

// ownedOrder loads the order in :id and checks it belongs to the caller.
// Writes the error response itself when it returns ok=false.
func (h *handlers) ownedOrder(c *gin.Context) (*orders.Order, bool) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return nil, false
	}
	order, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed"})
		return nil, false
	}
	if order == nil || order.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
		return nil, false
	}
	return order, true
}
