package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Client talks to the Paystack REST API: transaction initialization for the
// hosted checkout page and verification of a transaction's outcome.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a gateway client.
func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// MustNewClient creates a gateway client from config and environment.
func MustNewClient() *Client {
	secret := os.Getenv("PAYSTACK_SECRET_KEY")
	if secret == "" {
		panic("PAYSTACK_SECRET_KEY is not set")
	}

	baseURL := viper.GetString("paystack.base_url")
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}

	timeout := viper.GetDuration("paystack.timeout")
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return NewClient(baseURL, secret, timeout)
}

// Metadata is carried through the gateway and echoed back on verification and
// webhook delivery. It correlates gateway transactions with local orders.
type Metadata struct {
	OrderID     int64  `json:"orderId"`
	UserID      int64  `json:"userId"`
	OrderNumber string `json:"orderNumber"`
}

// InitializeRequest describes a hosted checkout session to open.
type InitializeRequest struct {
	Email       string
	AmountCents int64
	Reference   string
	CallbackURL string
	Metadata    Metadata
}

// Authorization is the result of a successful initialization.
type Authorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction is the verified state of a gateway transaction.
type Transaction struct {
	Status      string   `json:"status"`
	Reference   string   `json:"reference"`
	AmountCents int64    `json:"amount"`
	Metadata    Metadata `json:"metadata"`
}

// Succeeded reports whether the gateway considers the transaction paid.
func (t *Transaction) Succeeded() bool {
	return t.Status == "success"
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction opens a hosted checkout session. Amounts are in minor
// currency units, as the gateway expects.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*Authorization, error) {
	payload := map[string]any{
		"email":        req.Email,
		"amount":       req.AmountCents,
		"reference":    req.Reference,
		"callback_url": req.CallbackURL,
		"metadata":     req.Metadata,
	}

	var auth Authorization
	if err := c.post(ctx, "/transaction/initialize", payload, &auth); err != nil {
		return nil, fmt.Errorf("initialize transaction: %w", err)
	}

	return &auth, nil
}

// VerifyTransaction asks the gateway for the authoritative state of a
// transaction by its reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	var txn Transaction
	if err := c.get(ctx, "/transaction/verify/"+reference, &txn); err != nil {
		return nil, fmt.Errorf("verify transaction %s: %w", reference, err)
	}

	return &txn, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !envelope.Status {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, envelope.Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode gateway data: %w", err)
		}
	}

	return nil
}
