package payments_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initiateReq() payments.InitiateRequest {
	return payments.InitiateRequest{
		AmountCents:   272500,
		Currency:      "BRL",
		OrderID:       "ord-123",
		CustomerEmail: "ana@example.com",
		CustomerName:  "Ana Souza",
		ReturnURL:     "https://app/return",
		CallbackURL:   "https://api/callback",
	}
}

func TestClient_InitiateHTMLSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/initiate", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var got payments.InitiateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, int64(272500), got.AmountCents)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<form action='https://gw/pay'></form>"))
	}))
	defer srv.Close()

	c := payments.NewClient(srv.URL, "secret", observability.NewLogger())
	result, err := c.Initiate(context.Background(), initiateReq())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, result.HTMLForm, "<form")
}

func TestClient_InitiateGatewayErrorIsTuple(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "card_declined", "message": "insufficient funds"})
	}))
	defer srv.Close()

	c := payments.NewClient(srv.URL, "secret", observability.NewLogger())
	result, err := c.Initiate(context.Background(), initiateReq())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "insufficient funds", result.Error)
}

func TestClient_InitiateOpaqueErrorKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	}))
	defer srv.Close()

	c := payments.NewClient(srv.URL, "secret", observability.NewLogger())
	result, err := c.Initiate(context.Background(), initiateReq())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "502")
}

func TestClient_InitiateTransportErrorSurfaces(t *testing.T) {
	c := payments.NewClient("http://127.0.0.1:1", "secret", observability.NewLogger())
	_, err := c.Initiate(context.Background(), initiateReq())
	assert.Error(t, err)
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/status/ord-123", r.URL.Path)
		json.NewEncoder(w).Encode(payments.StatusResult{OrderID: "ord-123", Status: "SUCCEEDED", TransactionID: "tx-9"})
	}))
	defer srv.Close()

	c := payments.NewClient(srv.URL, "secret", observability.NewLogger())
	result, err := c.Status(context.Background(), "ord-123")
	require.NoError(t, err)
	assert.Equal(t, "SUCCEEDED", result.Status)
	assert.Equal(t, "tx-9", result.TransactionID)
}

func TestClient_Refund(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/refund", r.URL.Path)
		var got payments.RefundRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "tx-9", got.TransactionID)
		json.NewEncoder(w).Encode(payments.RefundResult{RefundID: "rf-1", Status: "PENDING"})
	}))
	defer srv.Close()

	c := payments.NewClient(srv.URL, "secret", observability.NewLogger())
	result, err := c.Refund(context.Background(), payments.RefundRequest{TransactionID: "tx-9", AmountCents: 1000, Reason: "cancellation"})
	require.NoError(t, err)
	assert.Equal(t, "rf-1", result.RefundID)
}
