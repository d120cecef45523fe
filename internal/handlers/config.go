package handlers

import (
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/imrishuroy/go-checkout-reconciler/internal/aws"
	"github.com/imrishuroy/go-checkout-reconciler/internal/catalog"
	"github.com/imrishuroy/go-checkout-reconciler/internal/exchange"
	"github.com/imrishuroy/go-checkout-reconciler/internal/gateway"
	"github.com/imrishuroy/go-checkout-reconciler/internal/orders"
	"github.com/imrishuroy/go-checkout-reconciler/internal/validation"
	"github.com/imrishuroy/go-checkout-reconciler/internal/webhook"
)

// HandlerConfig groups the dependencies the HTTP surface needs.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI

	CatalogTable  string
	OrdersTable   string
	WebhookTable  string
	ExchangeTable string
	QueueURL      string

	Gateway       *gateway.Client
	WebhookSecret string // gateway's webhook delivery secret
	SigningSecret string // gateway's completion signature secret
	AdminToken    string

	MetricsNamespace string
	RateLimit        int // requests per IP per minute on public routes; 0 disables
}

// handlers carries the wired stores behind the route functions.
type handlers struct {
	cfg      HandlerConfig
	validate *validatorv10.Validate

	catalog   *catalog.Store
	orders    *orders.Store
	exchanges *exchange.Store
	processor *webhook.Processor
	publisher *aws.Publisher
	metrics   *aws.Metrics
}

// RegisterRoutes wires every route of the reconciliation surface onto r.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	h := &handlers{
		cfg:       cfg,
		validate:  validation.New(),
		catalog:   catalog.NewStore(cfg.DynamoDBClient, cfg.CatalogTable),
		orders:    orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable),
		exchanges: exchange.NewStore(cfg.DynamoDBClient, cfg.ExchangeTable),
	}
	if cfg.SQSClient != nil {
		h.publisher = aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	}
	if cfg.CloudWatchClient != nil {
		h.metrics = aws.NewMetrics(cfg.CloudWatchClient, cfg.MetricsNamespace)
	}
	h.processor = webhook.NewProcessor(
		webhook.NewStore(cfg.DynamoDBClient, cfg.WebhookTable),
		h.orders,
		h.publisher,
		h.metrics,
	)

	public := r.Group("/")
	if cfg.RateLimit > 0 {
		public.Use(RateLimitMiddleware(cfg.RateLimit))
	}
	public.POST("/checkout/intent", h.createIntent)
	public.POST("/checkout/verify", h.verifyCheckout)
	public.GET("/orders/:id", h.getOrder)
	public.GET("/orders/:id/exchange/eligibility", h.exchangeEligibility)
	public.POST("/orders/:id/exchange", h.createExchangeRequest)

	// The gateway's server-to-server deliveries skip the per-IP limiter;
	// throttling retries would only delay convergence.
	r.POST("/webhooks/gateway", h.gatewayWebhook)

	admin := r.Group("/admin")
	admin.Use(AdminAuthMiddleware(cfg.AdminToken))
	admin.PUT("/orders/:id/status", h.updateOrderStatus)
	admin.PUT("/exchange-requests/:id", h.decideExchangeRequest)
}
