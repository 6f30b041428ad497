// Package upstream talks to the store's remote REST API: catalog, sales,
// daily summaries and cashier login.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"feedmart-pos/internal/models"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote api: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope matches the {success, message, data} shape the API answers with.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/api/v1/products", nil, nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, nil, &p); err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// SubmitSale records a finalized sale. idempotencyKey lets the API collapse a
// retried submission onto the first one.
func (c *Client) SubmitSale(ctx context.Context, sale models.SaleSubmission, idempotencyKey string) (*models.SaleReceipt, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	var receipt models.SaleReceipt
	if err := c.do(ctx, http.MethodPost, "/api/v1/sales", sale, headers, &receipt); err != nil {
		return nil, fmt.Errorf("submit sale: %w", err)
	}
	if receipt.ID == "" {
		return nil, errors.New("submit sale: response carried no sale id")
	}
	return &receipt, nil
}

func (c *Client) DailySummary(ctx context.Context, date string) (*models.DailySummary, error) {
	q := url.Values{}
	q.Set("date", date)

	var s models.DailySummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/reports/daily-summary?"+q.Encode(), nil, nil, &s); err != nil {
		return nil, fmt.Errorf("daily summary %s: %w", date, err)
	}
	if s.Date == "" {
		s.Date = date
	}
	return &s, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", loginRequest{Username: username, Password: password}, nil, &u); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &u, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
