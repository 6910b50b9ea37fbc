package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop_backend/internal/pkg/config"

	"github.com/stretchr/testify/assert"
)

func testRazorpay(baseURL string) *RazorpayGateway {
	return &RazorpayGateway{
		cfg: config.RazorpayConfig{
			KeyID:         "rzp_test_key",
			KeySecret:     "test_key_secret",
			WebhookSecret: "test_webhook_secret",
			Currency:      "INR",
		},
		client:  &http.Client{Timeout: 2 * time.Second},
		baseURL: baseURL,
	}
}

func TestRazorpayCreateSession(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders", r.URL.Path)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "rzp_test_key", user)
			assert.Equal(t, "test_key_secret", pass)

			var req razorpayOrderRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, int64(20000), req.Amount)
			assert.Equal(t, "INR", req.Currency)
			assert.Equal(t, "order_rcpt_order-1", req.Receipt)

			json.NewEncoder(w).Encode(razorpayOrderResponse{
				ID:       "order_gw_123",
				Amount:   req.Amount,
				Currency: req.Currency,
				Status:   "created",
			})
		}))
		defer server.Close()

		g := testRazorpay(server.URL)
		session, err := g.CreateSession("order-1", 200, "order_rcpt_order-1")

		assert.NoError(t, err)
		assert.Equal(t, "order_gw_123", session.TxnID)
		assert.Equal(t, "order_gw_123", session.Payload["razorpay_order_id"])
		assert.Equal(t, int64(20000), session.Payload["razorpay_amount"])
		assert.Equal(t, "rzp_test_key", session.Payload["key_id"])
	})

	t.Run("Gateway error surfaces description", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
		}))
		defer server.Close()

		g := testRazorpay(server.URL)
		_, err := g.CreateSession("order-1", 200, "rcpt")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Authentication failed")
	})
}

func TestRazorpaySignatures(t *testing.T) {
	g := testRazorpay("")

	t.Run("Round trip", func(t *testing.T) {
		sig := signHex("test_key_secret", "sess_1|pay_1")
		assert.True(t, g.VerifySignature("sess_1", "pay_1", sig))
	})

	t.Run("Single bit flip fails", func(t *testing.T) {
		sig := []byte(signHex("test_key_secret", "sess_1|pay_1"))
		if sig[0] == '0' {
			sig[0] = '1'
		} else {
			sig[0] = '0'
		}
		assert.False(t, g.VerifySignature("sess_1", "pay_1", string(sig)))
	})

	t.Run("Webhook body signed with webhook secret", func(t *testing.T) {
		body := []byte(`{"event":"payment.captured"}`)
		assert.True(t, g.VerifyWebhook(body, signHex("test_webhook_secret", string(body))))
		assert.False(t, g.VerifyWebhook(body, signHex("test_key_secret", string(body))))
	})
}

func TestRazorpayParseWebhook(t *testing.T) {
	g := testRazorpay("")

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_9","order_id":"order_gw_9","status":"captured"}}}}`)
	event, txnID, paymentID, err := g.ParseWebhook(body)

	assert.NoError(t, err)
	assert.Equal(t, "payment.captured", event)
	assert.Equal(t, "order_gw_9", txnID)
	assert.Equal(t, "pay_9", paymentID)

	_, _, _, err = g.ParseWebhook([]byte("not json"))
	assert.Error(t, err)
}
