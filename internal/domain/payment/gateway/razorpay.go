package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"shop_backend/internal/pkg/config"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

// RazorpayGateway 主支付渠道，直连网关 Orders API
type RazorpayGateway struct {
	cfg     config.RazorpayConfig
	client  *http.Client
	baseURL string
}

// NewRazorpayGateway 创建渠道实例，密钥缺失时报错
func NewRazorpayGateway() (*RazorpayGateway, error) {
	cfg := config.GlobalConfig.Razorpay
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, errors.New("razorpay config missing")
	}
	return &RazorpayGateway{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: razorpayBaseURL,
	}, nil
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"` // 最小货币单位（paise）
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateSession 在网关侧创建订单，返回会话号与前端拉起参数
func (g *RazorpayGateway) CreateSession(orderID string, amount float64, receipt string) (*Session, error) {
	paise := int64(math.Round(amount * 100))

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   paise,
		Currency: g.cfg.Currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var gwErr razorpayErrorResponse
		if json.Unmarshal(respBody, &gwErr) == nil && gwErr.Error.Description != "" {
			return nil, fmt.Errorf("razorpay: %s (%s)", gwErr.Error.Description, gwErr.Error.Code)
		}
		return nil, fmt.Errorf("razorpay: unexpected status %d", resp.StatusCode)
	}

	var gwOrder razorpayOrderResponse
	if err := json.Unmarshal(respBody, &gwOrder); err != nil {
		return nil, fmt.Errorf("razorpay: decode response: %w", err)
	}
	if gwOrder.ID == "" {
		return nil, errors.New("razorpay: response missing order id")
	}

	return &Session{
		TxnID: gwOrder.ID,
		Payload: map[string]interface{}{
			"razorpay_order_id": gwOrder.ID,
			"razorpay_amount":   gwOrder.Amount,
			"currency":          gwOrder.Currency,
			"key_id":            g.cfg.KeyID,
		},
	}, nil
}

// VerifySignature 校验回跳签名：HMAC-SHA256(sessionID|paymentID, keySecret)
func (g *RazorpayGateway) VerifySignature(sessionID, paymentID, signature string) bool {
	expected := signHex(g.cfg.KeySecret, sessionID+"|"+paymentID)
	return equalHex(expected, signature)
}

// VerifyWebhook 校验 webhook 签名（原始请求体，webhook 专用密钥）
func (g *RazorpayGateway) VerifyWebhook(body []byte, signature string) bool {
	secret := g.cfg.WebhookSecret
	if secret == "" {
		secret = g.cfg.KeySecret
	}
	expected := signHex(secret, string(body))
	return equalHex(expected, signature)
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhook 解析 webhook 事件
func (g *RazorpayGateway) ParseWebhook(body []byte) (string, string, string, error) {
	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return "", "", "", fmt.Errorf("razorpay: decode webhook: %w", err)
	}
	entity := evt.Payload.Payment.Entity
	return evt.Event, entity.OrderID, entity.ID, nil
}

// Notify webhook 之外无独立回调通道
func (g *RazorpayGateway) Notify(params interface{}) (string, bool, error) {
	return "", false, errors.New("razorpay notifications arrive via webhook")
}

var (
	_ Gateway           = (*RazorpayGateway)(nil)
	_ SignatureVerifier = (*RazorpayGateway)(nil)
	_ WebhookGateway    = (*RazorpayGateway)(nil)
)
