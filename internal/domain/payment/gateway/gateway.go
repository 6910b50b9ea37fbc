package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Session 支付会话，TxnID 为网关侧会话号，Payload 为前端拉起支付所需参数
type Session struct {
	TxnID   string
	Payload map[string]interface{}
}

// Gateway 支付渠道接口
type Gateway interface {
	// CreateSession 为订单创建支付会话，amount 为主币种金额
	CreateSession(orderID string, amount float64, receipt string) (*Session, error)

	// Notify 处理渠道异步回调，返回网关会话号、支付是否成功
	Notify(params interface{}) (string, bool, error)
}

// SignatureVerifier 支持客户端回跳验签的渠道实现此接口
type SignatureVerifier interface {
	// VerifySignature 校验回跳签名：HMAC-SHA256(sessionID|paymentID)
	VerifySignature(sessionID, paymentID, signature string) bool
}

// WebhookGateway 支持服务端 webhook 确认的渠道实现此接口
type WebhookGateway interface {
	// VerifyWebhook 校验 webhook 签名（原始请求体整体签名）
	VerifyWebhook(body []byte, signature string) bool

	// ParseWebhook 解析 webhook 事件，返回事件名、会话号、支付单号
	ParseWebhook(body []byte) (event, txnID, paymentID string, err error)
}

// signHex HMAC-SHA256 后十六进制编码
func signHex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// equalHex 常量时间比较，避免签名校验上的时序侧信道
func equalHex(expected, got string) bool {
	return hmac.Equal([]byte(expected), []byte(got))
}
