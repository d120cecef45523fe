package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/gin-gonic/gin"
	"github.com/imrishuroy/go-checkout-reconciler/internal/catalog"
	"github.com/imrishuroy/go-checkout-reconciler/internal/gateway"
	"github.com/imrishuroy/go-checkout-reconciler/internal/orders"
)

const (
	testWebhookSecret = "whsec_test"
	testSigningSecret = "sigsec_test"
	testAdminToken    = "admintok_test"
)

func newTestRouter(t *testing.T, mock *mockDynamo, gw *gateway.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, HandlerConfig{
		DynamoDBClient: mock,
		CatalogTable:   "catalog",
		OrdersTable:    "orders",
		WebhookTable:   "webhook-events",
		ExchangeTable:  "exchange-requests",
		Gateway:        gw,
		WebhookSecret:  testWebhookSecret,
		SigningSecret:  testSigningSecret,
		AdminToken:     testAdminToken,
	})
	return r
}

func signHex(msg, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func doJSON(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func seedProduct(t *testing.T, mock *mockDynamo, p *catalog.Product) {
	t.Helper()
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		t.Fatalf("marshal product: %v", err)
	}
	mock.table("catalog")[p.ProductID] = item
}

func seedTestOrder(t *testing.T, mock *mockDynamo, order *orders.Order) {
	t.Helper()
	if err := orders.NewStore(mock, "orders").Create(context.Background(), order); err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func deliveredTestOrder(userID string, deliveredAt time.Time) *orders.Order {
	return &orders.Order{
		OrderID:       "order-1",
		UserID:        userID,
		IntentID:      "intent-1",
		TotalPrice:    59900,
		PaymentStatus: orders.PaymentPaid,
		OrderStatus:   orders.StatusDelivered,
		DeliveredAt:   &deliveredAt,
	}
}
