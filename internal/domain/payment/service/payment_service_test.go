package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"testing"

	orderModel "shop_backend/internal/domain/order/model"
	orderRepo "shop_backend/internal/domain/order/repository"
	"shop_backend/internal/domain/payment/gateway"
	"shop_backend/internal/domain/payment/worker"
	"shop_backend/internal/pkg/config"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Init(true)
	config.GlobalConfig.Razorpay = config.RazorpayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     "test_key_secret",
		WebhookSecret: "test_webhook_secret",
		Currency:      "INR",
		Stub:          true,
	}
	config.GlobalConfig.Server.BaseURL = "http://localhost:8080"
	os.Exit(m.Run())
}

// MockOrderRepository is a mock of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	m.Called(fn)
	return fn(nil)
}

func (m *MockOrderRepository) CreateTx(tx *gorm.DB, order *orderModel.Order) error {
	args := m.Called(tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*orderModel.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByPaymentTxnID(txnID string) (*orderModel.Order, error) {
	args := m.Called(txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderModel.Order), args.Error(1)
}

func (m *MockOrderRepository) GetPaidByUser(userID string) ([]orderModel.Order, error) {
	args := m.Called(userID)
	return args.Get(0).([]orderModel.Order), args.Error(1)
}

func (m *MockOrderRepository) GetList(filter orderRepo.ListFilter, offset, limit int) ([]orderModel.Order, int64, error) {
	args := m.Called(filter, offset, limit)
	return args.Get(0).([]orderModel.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) SetPaymentTxnID(orderID, txnID string) error {
	args := m.Called(orderID, txnID)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkPaid(orderID, paymentID, txnID string) error {
	args := m.Called(orderID, paymentID, txnID)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(orderID string, orderStatus, paymentStatus string) error {
	args := m.Called(orderID, orderStatus, paymentStatus)
	return args.Error(0)
}

func signHex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func pendingOrder(id, userID string, total float64) *orderModel.Order {
	o := &orderModel.Order{
		UserID:        userID,
		TotalAmount:   total,
		OrderStatus:   orderModel.OrderStatusPending,
		PaymentStatus: orderModel.PaymentStatusPending,
	}
	o.ID = id
	return o
}

func newService(repo orderRepo.OrderRepository) PaymentService {
	return NewPaymentService(repo, gateway.NewStubGateway(), nil)
}

func TestCreateSession(t *testing.T) {
	t.Run("Success overwrites session id", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-1", "user-1", 200)
		mockRepo.On("GetByID", "order-1").Return(order, nil)
		mockRepo.On("SetPaymentTxnID", "order-1", mock.AnythingOfType("string")).Return(nil)

		payload, err := service.CreateSession("user-1", CreateSessionInput{OrderID: "order-1"})

		assert.NoError(t, err)
		assert.Equal(t, "order-1", payload["order_id"])
		assert.Contains(t, payload, "payment_url")
		mockRepo.AssertExpectations(t)
	})

	t.Run("Forbidden for another user", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-1", "user-1", 200)
		mockRepo.On("GetByID", "order-1").Return(order, nil)

		_, err := service.CreateSession("user-2", CreateSessionInput{OrderID: "order-1"})

		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		mockRepo.AssertNotCalled(t, "SetPaymentTxnID", mock.Anything, mock.Anything)
	})

	t.Run("Already paid rejected", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-1", "user-1", 200)
		order.PaymentStatus = orderModel.PaymentStatusPaid
		mockRepo.On("GetByID", "order-1").Return(order, nil)

		_, err := service.CreateSession("user-1", CreateSessionInput{OrderID: "order-1"})

		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("Order not found", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		mockRepo.On("GetByID", "missing").Return(nil, gorm.ErrRecordNotFound)

		_, err := service.CreateSession("user-1", CreateSessionInput{OrderID: "missing"})

		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("Gateway unconfigured", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := NewPaymentService(mockRepo, nil, nil)

		order := pendingOrder("order-1", "user-1", 200)
		mockRepo.On("GetByID", "order-1").Return(order, nil)

		_, err := service.CreateSession("user-1", CreateSessionInput{OrderID: "order-1"})

		assert.True(t, apperr.Is(err, apperr.KindUpstream))
	})

	t.Run("Amount not representable in paise", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-1", "user-1", 99.999)
		mockRepo.On("GetByID", "order-1").Return(order, nil)

		_, err := service.CreateSession("user-1", CreateSessionInput{OrderID: "order-1"})

		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestVerifyPayment(t *testing.T) {
	const (
		sessionID = "sess_abc"
		paymentID = "pay_123"
	)
	validSignature := signHex("test_key_secret", sessionID+"|"+paymentID)

	t.Run("Valid signature marks paid, re-verify short-circuits", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-1", "user-1", 200)
		order.PaymentTxnID = sessionID
		paid := pendingOrder("order-1", "user-1", 200)
		paid.PaymentTxnID = sessionID
		paid.PaymentStatus = orderModel.PaymentStatusPaid

		mockRepo.On("GetByID", "order-1").Return(order, nil).Once()
		mockRepo.On("MarkPaid", "order-1", paymentID, sessionID).Return(nil).Once()
		mockRepo.On("GetByID", "order-1").Return(paid, nil)

		result, err := service.VerifyPayment("user-1", VerifyInput{
			OrderID:   "order-1",
			PaymentID: paymentID,
			SessionID: sessionID,
			Signature: validSignature,
		})
		assert.NoError(t, err)
		assert.Equal(t, "SUCCESS", result.PaymentStatus)
		assert.False(t, result.AlreadyPaid)

		again, err := service.VerifyPayment("user-1", VerifyInput{
			OrderID:   "order-1",
			PaymentID: paymentID,
			SessionID: sessionID,
			Signature: validSignature,
		})
		assert.NoError(t, err)
		assert.Equal(t, "SUCCESS", again.PaymentStatus)
		assert.True(t, again.AlreadyPaid)

		// 第二次调用不允许重复盖章
		mockRepo.AssertNumberOfCalls(t, "MarkPaid", 1)
	})

	t.Run("Tampered signature fails", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-1", "user-1", 200)
		order.PaymentTxnID = sessionID
		mockRepo.On("GetByID", "order-1").Return(order, nil)

		tampered := []byte(validSignature)
		if tampered[0] == 'a' {
			tampered[0] = 'b'
		} else {
			tampered[0] = 'a'
		}

		_, err := service.VerifyPayment("user-1", VerifyInput{
			OrderID:   "order-1",
			PaymentID: paymentID,
			SessionID: sessionID,
			Signature: string(tampered),
		})

		assert.True(t, apperr.Is(err, apperr.KindInvalidSignature))
		mockRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Poll form returns pending", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-1", "user-1", 200)
		mockRepo.On("GetByID", "order-1").Return(order, nil)

		result, err := service.VerifyPayment("user-1", VerifyInput{OrderID: "order-1"})

		assert.NoError(t, err)
		assert.Equal(t, "PENDING", result.PaymentStatus)
	})

	t.Run("Ownership checked before signature work", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-1", "user-1", 200)
		order.PaymentTxnID = sessionID
		mockRepo.On("GetByID", "order-1").Return(order, nil)

		_, err := service.VerifyPayment("user-2", VerifyInput{
			OrderID:   "order-1",
			PaymentID: paymentID,
			SessionID: sessionID,
			Signature: validSignature,
		})

		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Session mismatch rejected", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-1", "user-1", 200)
		order.PaymentTxnID = "sess_other"
		mockRepo.On("GetByID", "order-1").Return(order, nil)

		_, err := service.VerifyPayment("user-1", VerifyInput{
			OrderID:   "order-1",
			PaymentID: paymentID,
			SessionID: sessionID,
			Signature: validSignature,
		})

		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("Persistence failure surfaces distinctly and enqueues retry", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		stamper := worker.NewStampPool(mockRepo, 1, 8) // 不 Start，仅观察队列
		service := NewPaymentService(mockRepo, gateway.NewStubGateway(), stamper)

		order := pendingOrder("order-1", "user-1", 200)
		order.PaymentTxnID = sessionID
		mockRepo.On("GetByID", "order-1").Return(order, nil)
		mockRepo.On("MarkPaid", "order-1", paymentID, sessionID).Return(gorm.ErrInvalidDB)

		_, err := service.VerifyPayment("user-1", VerifyInput{
			OrderID:   "order-1",
			PaymentID: paymentID,
			SessionID: sessionID,
			Signature: validSignature,
		})

		assert.True(t, apperr.Is(err, apperr.KindPersistence))
		assert.Len(t, stamper.TaskQueue, 1)

		task := <-stamper.TaskQueue
		assert.Equal(t, "order-1", task.OrderID)
		assert.Equal(t, paymentID, task.PaymentID)
	})
}

func TestHandleWebhook(t *testing.T) {
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_wh_1","order_id":"sess_wh","status":"captured"}}}}`)
	signature := signHex("test_webhook_secret", string(body))

	t.Run("Captured event stamps order", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-9", "user-1", 500)
		order.PaymentTxnID = "sess_wh"
		mockRepo.On("GetByPaymentTxnID", "sess_wh").Return(order, nil)
		mockRepo.On("MarkPaid", "order-9", "pay_wh_1", "sess_wh").Return(nil)

		err := service.HandleWebhook(body, signature)

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Bad signature rejected", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		err := service.HandleWebhook(body, "deadbeef")

		assert.True(t, apperr.Is(err, apperr.KindInvalidSignature))
		mockRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Already paid is a no-op", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		order := pendingOrder("order-9", "user-1", 500)
		order.PaymentTxnID = "sess_wh"
		order.PaymentStatus = orderModel.PaymentStatusPaid
		mockRepo.On("GetByPaymentTxnID", "sess_wh").Return(order, nil)

		err := service.HandleWebhook(body, signature)

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Other events ignored", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		service := newService(mockRepo)

		other := []byte(`{"event":"payment.authorized","payload":{"payment":{"entity":{"id":"pay_x","order_id":"sess_x"}}}}`)
		err := service.HandleWebhook(other, signHex("test_webhook_secret", string(other)))

		assert.NoError(t, err)
		mockRepo.AssertNotCalled(t, "GetByPaymentTxnID", mock.Anything)
	})
}
