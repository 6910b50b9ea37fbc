package service

import (
	"errors"
	"fmt"
	"math"

	orderModel "shop_backend/internal/domain/order/model"
	orderRepo "shop_backend/internal/domain/order/repository"
	"shop_backend/internal/domain/payment/gateway"
	"shop_backend/internal/domain/payment/worker"
	"shop_backend/internal/pkg/push"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/logger"
	"shop_backend/pkg/metrics"
	"shop_backend/pkg/response"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChannelPrimary 主渠道名
const ChannelPrimary = "razorpay"

// CustomerDetails 传给网关的买家信息
type CustomerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CreateSessionInput 创建支付会话输入
type CreateSessionInput struct {
	OrderID  string           `json:"orderId" binding:"required,uuid"`
	Channel  string           `json:"channel"`
	Customer *CustomerDetails `json:"customerDetails"`
}

// VerifyInput 支付验证输入。网关字段全部缺省时为轮询请求
type VerifyInput struct {
	OrderID   string `json:"orderId" binding:"required,uuid"`
	PaymentID string `json:"paymentId"`
	SessionID string `json:"sessionId"`
	Signature string `json:"signature"`
}

// VerifyResult 验证结果
type VerifyResult struct {
	PaymentStatus string `json:"paymentStatus"` // SUCCESS / PENDING
	AlreadyPaid   bool   `json:"alreadyPaid,omitempty"`
}

// PaymentService 支付服务接口
type PaymentService interface {
	CreateSession(userID string, input CreateSessionInput) (map[string]interface{}, error)
	VerifyPayment(userID string, input VerifyInput) (*VerifyResult, error)
	HandleWebhook(body []byte, signature string) error
	HandleNotify(channel string, params interface{}) error
	RegisterGateway(channel string, gw gateway.Gateway)
}

// paymentService 实现
type paymentService struct {
	orders   orderRepo.OrderRepository
	gateways map[string]gateway.Gateway
	stamper  *worker.StampPool
}

// NewPaymentService 创建支付服务，primary 为 nil 表示主渠道未配置
func NewPaymentService(orders orderRepo.OrderRepository, primary gateway.Gateway, stamper *worker.StampPool) PaymentService {
	s := &paymentService{
		orders:   orders,
		gateways: make(map[string]gateway.Gateway),
		stamper:  stamper,
	}
	if primary != nil {
		s.gateways[ChannelPrimary] = primary
	}
	return s
}

// RegisterGateway 注册支付渠道
func (s *paymentService) RegisterGateway(channel string, gw gateway.Gateway) {
	s.gateways[channel] = gw
}

func (s *paymentService) loadOwnedOrder(userID, orderID string) (*orderModel.Order, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "Order not found").
				WithCode(response.ErrOrderNotFound)
		}
		return nil, err
	}
	// 归属校验先于一切签名计算
	if order.UserID != userID {
		return nil, apperr.New(apperr.KindForbidden, "Not authorized for this order").
			WithCode(response.ErrOrderNotOwned)
	}
	return order, nil
}

// CreateSession 为订单创建支付会话。重复创建允许，会话号整体覆盖。
func (s *paymentService) CreateSession(userID string, input CreateSessionInput) (map[string]interface{}, error) {
	order, err := s.loadOwnedOrder(userID, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid() {
		return nil, apperr.New(apperr.KindConflict, "Order is already paid").
			WithCode(response.ErrAlreadyPaid)
	}

	// 金额必须能精确表示为最小货币单位
	paise := order.TotalAmount * 100
	if math.Abs(paise-math.Round(paise)) > 1e-6 {
		return nil, apperr.New(apperr.KindValidation, "Order amount is not representable in minor units")
	}

	channel := input.Channel
	if channel == "" {
		channel = ChannelPrimary
	}
	gw, ok := s.gateways[channel]
	if !ok {
		return nil, apperr.New(apperr.KindUpstream, "Payment gateway not configured").
			WithCode(response.ErrGatewayError)
	}

	receipt := "order_rcpt_" + order.ID
	session, err := gw.CreateSession(order.ID, order.TotalAmount, receipt)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "Payment gateway request failed", err).
			WithCode(response.ErrGatewayError)
	}

	if err := s.orders.SetPaymentTxnID(order.ID, session.TxnID); err != nil {
		return nil, err
	}

	payload := session.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload["order_id"] = order.ID
	if input.Customer != nil {
		payload["customer"] = input.Customer
	}
	return payload, nil
}

// VerifyPayment 客户端回跳验证。状态机：
//
//	Pending + 无网关字段  -> PENDING（轮询）
//	Pending + 签名匹配    -> Paid，返回 SUCCESS
//	Pending + 签名不匹配  -> InvalidSignature，状态不变
//	Paid    + 任意调用    -> 幂等短路，不重复盖章
func (s *paymentService) VerifyPayment(userID string, input VerifyInput) (*VerifyResult, error) {
	order, err := s.loadOwnedOrder(userID, input.OrderID)
	if err != nil {
		return nil, err
	}

	if order.IsPaid() {
		return &VerifyResult{PaymentStatus: "SUCCESS", AlreadyPaid: true}, nil
	}

	// 轮询形态：回跳后客户端查询进度，不携带网关字段
	if input.PaymentID == "" && input.SessionID == "" && input.Signature == "" {
		return &VerifyResult{PaymentStatus: "PENDING"}, nil
	}

	if input.PaymentID == "" || input.SessionID == "" || input.Signature == "" {
		return nil, apperr.New(apperr.KindValidation, "Incomplete gateway fields")
	}
	if order.PaymentTxnID == "" || input.SessionID != order.PaymentTxnID {
		return nil, apperr.New(apperr.KindValidation, "Session does not match order")
	}

	verifier, ok := s.gateways[ChannelPrimary].(gateway.SignatureVerifier)
	if !ok {
		return nil, apperr.New(apperr.KindUpstream, "Payment gateway not configured").
			WithCode(response.ErrGatewayError)
	}

	if !verifier.VerifySignature(input.SessionID, input.PaymentID, input.Signature) {
		s.countVerify("invalid_signature")
		return nil, apperr.New(apperr.KindInvalidSignature, "Payment signature verification failed").
			WithCode(response.ErrInvalidSignature)
	}

	if err := s.orders.MarkPaid(order.ID, input.PaymentID, input.SessionID); err != nil {
		// 资金已在网关侧扣除，本地落库失败不能伪装成普通失败：
		// 单独的错误码 + 补写队列，客户端不得引导用户重新付款
		s.countVerify("persistence_error")
		if s.stamper != nil {
			s.stamper.Enqueue(worker.StampTask{
				OrderID:   order.ID,
				PaymentID: input.PaymentID,
				TxnID:     input.SessionID,
			})
		}
		return nil, apperr.Wrap(apperr.KindPersistence,
			"Payment verified but confirmation could not be saved", err).
			WithCode(response.ErrPaidNotPersisted)
	}

	s.countVerify("success")
	s.notifyPaid(order)
	return &VerifyResult{PaymentStatus: "SUCCESS"}, nil
}

// HandleWebhook 网关服务端确认，支付状态的权威来源
func (s *paymentService) HandleWebhook(body []byte, signature string) error {
	wh, ok := s.gateways[ChannelPrimary].(gateway.WebhookGateway)
	if !ok {
		return apperr.New(apperr.KindUpstream, "Payment gateway not configured").
			WithCode(response.ErrGatewayError)
	}

	if !wh.VerifyWebhook(body, signature) {
		s.countVerify("webhook_invalid_signature")
		return apperr.New(apperr.KindInvalidSignature, "Webhook signature verification failed").
			WithCode(response.ErrInvalidSignature)
	}

	event, txnID, paymentID, err := wh.ParseWebhook(body)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "Malformed webhook payload", err)
	}
	if event != "payment.captured" {
		logger.Log.Debug("webhook event ignored", zap.String("event", event))
		return nil
	}

	order, err := s.orders.GetByPaymentTxnID(txnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.KindNotFound, "No order for session %s", txnID).
				WithCode(response.ErrOrderNotFound)
		}
		return err
	}
	if order.IsPaid() {
		return nil
	}

	if err := s.orders.MarkPaid(order.ID, paymentID, txnID); err != nil {
		s.countVerify("persistence_error")
		if s.stamper != nil {
			s.stamper.Enqueue(worker.StampTask{OrderID: order.ID, PaymentID: paymentID, TxnID: txnID})
		}
		return apperr.Wrap(apperr.KindPersistence,
			"Payment captured but confirmation could not be saved", err).
			WithCode(response.ErrPaidNotPersisted)
	}

	s.countVerify("webhook_success")
	s.notifyPaid(order)
	return nil
}

// HandleNotify 备选渠道回调（alipay / wechat）
func (s *paymentService) HandleNotify(channel string, params interface{}) error {
	gw, ok := s.gateways[channel]
	if !ok {
		return apperr.Newf(apperr.KindValidation, "Unsupported payment channel: %s", channel)
	}

	txnID, success, err := gw.Notify(params)
	if err != nil {
		return apperr.Wrap(apperr.KindInvalidSignature, "Channel notification verification failed", err)
	}

	order, err := s.orders.GetByPaymentTxnID(txnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.KindNotFound, "No order for session %s", txnID).
				WithCode(response.ErrOrderNotFound)
		}
		return err
	}

	if !success {
		if order.IsPaid() {
			return nil
		}
		return s.orders.UpdateStatus(order.ID, "", orderModel.PaymentStatusFailed)
	}
	if order.IsPaid() {
		return nil
	}

	if err := s.orders.MarkPaid(order.ID, txnID, txnID); err != nil {
		if s.stamper != nil {
			s.stamper.Enqueue(worker.StampTask{OrderID: order.ID, PaymentID: txnID, TxnID: txnID})
		}
		return apperr.Wrap(apperr.KindPersistence,
			"Payment captured but confirmation could not be saved", err).
			WithCode(response.ErrPaidNotPersisted)
	}

	s.notifyPaid(order)
	return nil
}

func (s *paymentService) countVerify(result string) {
	if metrics.Default != nil {
		metrics.Default.PaymentVerified(result)
	}
}

func (s *paymentService) notifyPaid(order *orderModel.Order) {
	if push.GlobalPushService == nil {
		return
	}
	title := "Payment successful"
	body := fmt.Sprintf("Your order %s has been paid. Total: %.2f", order.ID, order.TotalAmount)
	go push.GlobalPushService.PushToAccount(order.UserID, title, body, nil)
}
