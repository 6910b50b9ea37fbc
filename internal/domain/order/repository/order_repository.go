package repository

import (
	"shop_backend/internal/domain/order/model"

	"gorm.io/gorm"
)

// ListFilter 管理端订单列表过滤条件
type ListFilter struct {
	OrderStatus   string
	PaymentStatus string
}

// OrderRepository 接口定义
type OrderRepository interface {
	// Transaction 在单个数据库事务内执行 fn，fn 返回错误则整体回滚
	Transaction(fn func(tx *gorm.DB) error) error
	CreateTx(tx *gorm.DB, order *model.Order) error

	GetByID(id string) (*model.Order, error)
	GetByPaymentTxnID(txnID string) (*model.Order, error)
	GetPaidByUser(userID string) ([]model.Order, error)
	GetList(filter ListFilter, offset, limit int) ([]model.Order, int64, error)

	SetPaymentTxnID(orderID, txnID string) error
	// MarkPaid 盖章已支付并写入网关单号，仅在当前未支付时生效
	MarkPaid(orderID, paymentID, txnID string) error
	UpdateStatus(orderID string, orderStatus, paymentStatus string) error
}

// orderRepository 实现
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建新的仓库实例
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// CreateTx 在事务内创建订单（连带订单行）
func (r *orderRepository) CreateTx(tx *gorm.DB, order *model.Order) error {
	return tx.Create(order).Error
}

// GetByID 根据ID获取订单（含订单行）
func (r *orderRepository) GetByID(id string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByPaymentTxnID 根据网关会话号获取订单，webhook 确认路径使用
func (r *orderRepository) GetByPaymentTxnID(txnID string) (*model.Order, error) {
	var order model.Order
	if err := r.db.Preload("Items").Where("payment_txn_id = ?", txnID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetPaidByUser 买家订单列表，只返回已支付订单
func (r *orderRepository) GetPaidByUser(userID string) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").
		Where("user_id = ? AND payment_status = ?", userID, model.PaymentStatusPaid).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// GetList 管理端订单列表（过滤+分页）
func (r *orderRepository) GetList(filter ListFilter, offset, limit int) ([]model.Order, int64, error) {
	query := r.db.Model(&model.Order{})

	if filter.OrderStatus != "" {
		query = query.Where("order_status = ?", filter.OrderStatus)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// SetPaymentTxnID 写入网关会话号，重开会话时覆盖旧值
func (r *orderRepository) SetPaymentTxnID(orderID, txnID string) error {
	return r.db.Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("payment_txn_id", txnID).Error
}

// MarkPaid 条件盖章：payment_status 仍为未支付才更新，保证 Pending -> Paid 单向
func (r *orderRepository) MarkPaid(orderID, paymentID, txnID string) error {
	return r.db.Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, model.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentStatusPaid,
			"payment_id":     paymentID,
			"payment_txn_id": txnID,
		}).Error
}

// UpdateStatus 管理端更新订单状态，空串表示不修改该轴
func (r *orderRepository) UpdateStatus(orderID string, orderStatus, paymentStatus string) error {
	updates := map[string]interface{}{}
	if orderStatus != "" {
		updates["order_status"] = orderStatus
	}
	if paymentStatus != "" {
		updates["payment_status"] = paymentStatus
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&model.Order{}).Where("id = ?", orderID).Updates(updates).Error
}
