package handlers

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/go-checkout-reconciler/internal/aws"
	"github.com/imrishuroy/go-checkout-reconciler/internal/exchange"
	"github.com/imrishuroy/go-checkout-reconciler/internal/orders"
	"github.com/imrishuroy/go-checkout-reconciler/internal/validation"
)

// AdminAuthMiddleware gates the admin group. Role management is upstream;
// the shared token is what it forwards to this service.
func AdminAuthMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Admin-Token")
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin_unauthorized"})
			return
		}
		c.Next()
	}
}

// updateOrderStatus advances the fulfillment machine. The transition is
// validated against a fresh read and applied with a compare-and-swap, so a
// racing admin gets a conflict instead of silently rewinding state.
func (h *handlers) updateOrderStatus(c *gin.Context) {
	ctx := c.Request.Context()

	var req validation.StatusUpdateRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	orderID := c.Param("id")
	order, err := h.orders.Get(ctx, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order_lookup_failed"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
		return
	}

	target := orders.Status(req.Status)
	err = h.orders.UpdateFulfillment(ctx, orderID, order.OrderStatus, target)
	if err != nil {
		var ite *orders.InvalidStatusTransitionError
		if errors.As(err, &ite) {
			c.JSON(http.StatusConflict, gin.H{"error": "invalid_transition", "msg": ite.Error()})
			return
		}
		if errors.Is(err, orders.ErrStatusConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "status_changed_concurrently"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status_update_failed"})
		return
	}

	if target == orders.StatusDelivered && h.publisher != nil {
		ev := aws.OrderEvent{
			Type:    aws.EventOrderDelivered,
			OrderID: orderID,
			UserID:  order.UserID,
		}
		if perr := h.publisher.PublishOrderEvent(ctx, ev); perr != nil {
			log.Printf("[admin] publish delivered event order=%s: %v", orderID, perr)
		}
	}

	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "status": req.Status})
}

// decideExchangeRequest records the accept/reject decision exactly once.
func (h *handlers) decideExchangeRequest(c *gin.Context) {
	ctx := c.Request.Context()

	var req validation.DecisionRequest
	if err := validation.BindAndValidate(c, &req, h.validate); err != nil {
		return
	}

	request, err := h.exchanges.GetByRequestID(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request_lookup_failed"})
		return
	}
	if request == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "exchange_request_not_found"})
		return
	}

	decision := exchange.StatusAccepted
	if req.Decision == "rejected" {
		decision = exchange.StatusRejected
	}

	if err := h.exchanges.Decide(ctx, request.OrderID, decision); err != nil {
		if errors.Is(err, exchange.ErrAlreadyDecided) {
			c.JSON(http.StatusConflict, gin.H{"error": "already_decided"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "decision_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"request_id": request.RequestID, "status": decision})
}
