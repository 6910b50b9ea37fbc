package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"shop_backend/internal/pkg/config"
)

// StubGateway 本地联调用渠道：不出网，会话号确定可复现，
// 签名算法与主渠道一致，客户端可以在本地走完整的验签流程。
type StubGateway struct {
	cfg config.RazorpayConfig
	now func() time.Time
}

// NewStubGateway 创建本地渠道
func NewStubGateway() *StubGateway {
	return &StubGateway{
		cfg: config.GlobalConfig.Razorpay,
		now: time.Now,
	}
}

// CreateSession 生成确定性会话号 <orderID>_<unix>
func (g *StubGateway) CreateSession(orderID string, amount float64, receipt string) (*Session, error) {
	txnID := fmt.Sprintf("%s_%d", orderID, g.now().Unix())
	return &Session{
		TxnID: txnID,
		Payload: map[string]interface{}{
			"payment_url": fmt.Sprintf("%s/payment/stub?order_id=%s&session_id=%s",
				config.GlobalConfig.Server.BaseURL, orderID, txnID),
		},
	}, nil
}

// Sign 按主渠道算法生成回跳签名，供本地完成页使用
func (g *StubGateway) Sign(sessionID, paymentID string) string {
	return signHex(g.cfg.KeySecret, sessionID+"|"+paymentID)
}

// VerifySignature 与主渠道一致
func (g *StubGateway) VerifySignature(sessionID, paymentID, signature string) bool {
	return equalHex(g.Sign(sessionID, paymentID), signature)
}

// VerifyWebhook 与主渠道一致
func (g *StubGateway) VerifyWebhook(body []byte, signature string) bool {
	secret := g.cfg.WebhookSecret
	if secret == "" {
		secret = g.cfg.KeySecret
	}
	return equalHex(signHex(secret, string(body)), signature)
}

// ParseWebhook 与主渠道同构
func (g *StubGateway) ParseWebhook(body []byte) (string, string, string, error) {
	var evt webhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return "", "", "", err
	}
	entity := evt.Payload.Payment.Entity
	return evt.Event, entity.OrderID, entity.ID, nil
}

// Notify 本地渠道无异步回调
func (g *StubGateway) Notify(params interface{}) (string, bool, error) {
	return "", false, nil
}

var (
	_ Gateway           = (*StubGateway)(nil)
	_ SignatureVerifier = (*StubGateway)(nil)
	_ WebhookGateway    = (*StubGateway)(nil)
)
