package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrGatewayUnavailable reports a transient failure talking to the payment
// gateway. The whole checkout attempt is safe to retry with a fresh intent;
// it must never be treated as success.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Intent is the gateway-side object representing an authorized-but-unpaid
// amount. No order row exists on our side at this point.
type Intent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

// Client talks to the gateway's hosted-checkout API.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

// NewClient returns a gateway client with a bounded request timeout.
func NewClient(baseURL, keyID, keySecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: timeout},
	}
}

// KeyID is the publishable key the browser needs to open hosted checkout.
func (c *Client) KeyID() string { return c.keyID }

type createIntentRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateIntent asks the gateway to create a payment intent for the given
// amount. Any transport or gateway-side error surfaces as
// ErrGatewayUnavailable; the caller created no local state to clean up.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error) {
	body, err := json.Marshal(createIntentRequest{Amount: amount, Currency: currency})
	if err != nil {
		return nil, fmt.Errorf("marshal intent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build intent request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: create intent returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("%w: decode intent response: %v", ErrGatewayUnavailable, err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("%w: intent response missing id", ErrGatewayUnavailable)
	}
	return &intent, nil
}
