package handler

import (
	"fmt"
	"net/http"
	"time"

	"shop_backend/internal/domain/payment/gateway"
	"shop_backend/internal/domain/payment/service"
	"shop_backend/internal/pkg/config"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler 支付处理器
type PaymentHandler struct {
	service service.PaymentService
	stub    *gateway.StubGateway // 仅 stub 模式下非 nil
}

// NewPaymentHandler 创建处理器
func NewPaymentHandler(s service.PaymentService, stub *gateway.StubGateway) *PaymentHandler {
	return &PaymentHandler{service: s, stub: stub}
}

// CreateSession 创建支付会话
// @Summary 创建支付会话
// @Tags Payment
// @Router /payment/create [post]
func (h *PaymentHandler) CreateSession(c *gin.Context) {
	var input service.CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	payload, err := h.service.CreateSession(middleware.GetUserID(c), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, payload)
}

// VerifyPayment 支付验证（回跳验签或状态轮询）
// @Summary 支付验证
// @Tags Payment
// @Router /payment/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var input service.VerifyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.VerifyPayment(middleware.GetUserID(c), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// Webhook 网关服务端确认回调
// @Summary 支付 webhook
// @Tags Payment
// @Router /payment/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if err := h.service.HandleWebhook(body, signature); err != nil {
		response.HandleError(c, err)
		return
	}
	// 网关只认 2xx，返回精简确认体
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AlipayNotify 支付宝异步回调
func (h *PaymentHandler) AlipayNotify(c *gin.Context) {
	c.Request.ParseForm()
	if err := h.service.HandleNotify("alipay", c.Request.Form); err != nil {
		c.String(http.StatusOK, "fail") // 渠道收到 fail 会重试
		return
	}
	c.String(http.StatusOK, "success")
}

// WechatNotify 微信支付异步回调
func (h *PaymentHandler) WechatNotify(c *gin.Context) {
	if err := h.service.HandleNotify("wechat", c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": "FAIL", "message": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

// Diag 配置自检，仅暴露存在性，不含密钥
func (h *PaymentHandler) Diag(c *gin.Context) {
	cfg := config.GlobalConfig.Razorpay
	response.Success(c, gin.H{
		"key_configured":            cfg.KeyID != "" && cfg.KeySecret != "",
		"webhook_secret_configured": cfg.WebhookSecret != "",
		"currency":                  cfg.Currency,
		"stub_mode":                 cfg.Stub,
	})
}

// StubComplete 本地联调完成页：生成与真实回跳同构的验签材料
func (h *PaymentHandler) StubComplete(c *gin.Context) {
	if h.stub == nil {
		response.Error(c, http.StatusNotFound, response.CodeError, "Stub mode is disabled")
		return
	}

	orderID := c.Query("order_id")
	sessionID := c.Query("session_id")
	if orderID == "" || sessionID == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "order_id and session_id are required")
		return
	}

	paymentID := fmt.Sprintf("pay_stub_%d", time.Now().Unix())
	response.Success(c, gin.H{
		"order_id":   orderID,
		"session_id": sessionID,
		"payment_id": paymentID,
		"signature":  h.stub.Sign(sessionID, paymentID),
	})
}
