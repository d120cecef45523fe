package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/go-checkout-reconciler/internal/gateway"
	"github.com/imrishuroy/go-checkout-reconciler/internal/webhook"
)

// signatureHeader carries the gateway's delivery signature.
const signatureHeader = "X-Gateway-Signature"

// gatewayWebhook ingests a gateway delivery. Delivery is at-least-once on
// the gateway's side; the dedup insert inside the processor is what bounds
// side effects to at most once. A store failure answers 500 so the gateway
// retries — acknowledging on internal failure would lose the event.
func (h *handlers) gatewayWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable_body"})
		return
	}

	if err := gateway.VerifyWebhookSignature(body, c.GetHeader(signatureHeader), h.cfg.WebhookSecret); err != nil {
		log.Printf("[webhook] delivery signature rejected from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
		return
	}

	var delivery webhook.Delivery
	if err := json.Unmarshal(body, &delivery); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed_payload"})
		return
	}
	if delivery.EventType == "" || delivery.PaymentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_event_fields"})
		return
	}

	result, err := h.processor.Process(ctx, delivery)
	if err != nil {
		// Retryable: the gateway redelivers and the dedup key converges.
		log.Printf("[webhook] processing failed type=%s payment=%s: %v", delivery.EventType, delivery.PaymentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "retryable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    result.Status,
		"duplicate": result.Duplicate,
	})
}
