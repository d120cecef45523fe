package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/imrishuroy/go-checkout-reconciler/internal/aws"
	"github.com/imrishuroy/go-checkout-reconciler/internal/gateway"
	"github.com/imrishuroy/go-checkout-reconciler/internal/handlers"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterRoutes(r, cfg)

	return r
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	// local development convenience; in deployment the environment is real
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	gw := gateway.NewClient(
		os.Getenv("GATEWAY_BASE_URL"),
		os.Getenv("GATEWAY_KEY_ID"),
		os.Getenv("GATEWAY_KEY_SECRET"),
		time.Duration(envInt("GATEWAY_TIMEOUT_SECONDS", 10))*time.Second,
	)

	cfg := handlers.HandlerConfig{
		DynamoDBClient:   clients.DynamoDB,
		SQSClient:        clients.SQS,
		CloudWatchClient: clients.CloudWatch,
		CatalogTable:     os.Getenv("CATALOG_TABLE"),
		OrdersTable:      os.Getenv("ORDERS_TABLE"),
		WebhookTable:     os.Getenv("WEBHOOK_EVENTS_TABLE"),
		ExchangeTable:    os.Getenv("EXCHANGE_REQUESTS_TABLE"),
		QueueURL:         os.Getenv("NOTIFICATIONS_QUEUE_URL"),
		Gateway:          gw,
		WebhookSecret:    os.Getenv("GATEWAY_WEBHOOK_SECRET"),
		SigningSecret:    os.Getenv("GATEWAY_KEY_SECRET"),
		AdminToken:       os.Getenv("ADMIN_TOKEN"),
		MetricsNamespace: "CheckoutReconciler",
		RateLimit:        envInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
