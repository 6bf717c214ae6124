package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stayloop/stayloop-server/internal/observability"
)

// Client talks to the external payment gateway. Initiation returns an HTML
// form the browser auto-submits to reach the gateway's hosted page; that
// redirect is irreversible, so callers guard it with the per-order lock.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  observability.Logger
}

func NewClient(baseURL, apiKey string, logger observability.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

type InitiateRequest struct {
	AmountCents   int64             `json:"amountCents"`
	Currency      string            `json:"currency"`
	OrderID       string            `json:"orderID"`
	CustomerEmail string            `json:"customerEmail"`
	CustomerName  string            `json:"customerName"`
	ReturnURL     string            `json:"returnURL"`
	CallbackURL   string            `json:"callbackURL"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type InitiateResult struct {
	Success  bool
	HTMLForm string
	Error    string
}

type gatewayError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Initiate posts the payment request. A 2xx HTML response carries the
// redirect form; anything else is reported as a gateway-side failure tuple.
// Only transport problems surface as a Go error.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal initiate request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payments/initiate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		observability.PaymentInitiations.WithLabelValues("transport_error").Inc()
		return nil, errors.Wrap(err, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read gateway response")
	}

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && strings.Contains(contentType, "text/html") {
		observability.PaymentInitiations.WithLabelValues("success").Inc()
		return &InitiateResult{Success: true, HTMLForm: string(data)}, nil
	}

	observability.PaymentInitiations.WithLabelValues("gateway_error").Inc()
	var gerr gatewayError
	if jsonErr := json.Unmarshal(data, &gerr); jsonErr == nil && (gerr.Error != "" || gerr.Message != "") {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Error
		}
		c.logger.WithField("order_id", req.OrderID).Warn("payment initiation rejected", msg)
		return &InitiateResult{Success: false, Error: msg}, nil
	}
	c.logger.WithField("order_id", req.OrderID).Warn("payment initiation rejected", resp.StatusCode)
	return &InitiateResult{Success: false, Error: fmt.Sprintf("gateway returned status %d", resp.StatusCode)}, nil
}

type StatusResult struct {
	OrderID       string `json:"orderID"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionID"`
}

func (c *Client) Status(ctx context.Context, orderID string) (*StatusResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/payments/status/"+orderID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("gateway status check returned %d", resp.StatusCode)
	}

	var result StatusResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode status response")
	}
	return &result, nil
}

type RefundRequest struct {
	TransactionID string `json:"transactionID"`
	AmountCents   int64  `json:"amountCents"`
	Reason        string `json:"reason"`
}

type RefundResult struct {
	RefundID string `json:"refundID"`
	Status   string `json:"status"`
}

func (c *Client) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal refund request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payments/refund", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "payment gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("gateway refund returned %d", resp.StatusCode)
	}

	var result RefundResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode refund response")
	}
	return &result, nil
}
