package model

import (
	baseModel "shop_backend/pkg/model"
)

// 订单状态（物流轴，与支付状态互不影响）
const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
	OrderStatusCancelled  = "Cancelled"
)

// 支付状态（Pending -> Paid 单向，正常流程不存在回退路径）
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
	PaymentStatusFailed  = "Failed"
)

// ValidOrderStatus 判断订单状态是否合法
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus 判断支付状态是否合法
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// ShippingAddress 收货地址，全部必填
type ShippingAddress struct {
	Name    string `gorm:"not null" json:"name"`
	Address string `gorm:"not null" json:"address"`
	City    string `gorm:"not null" json:"city"`
	State   string `gorm:"not null" json:"state"`
	Pincode string `gorm:"not null" json:"pincode"`
	Phone   string `gorm:"not null" json:"phone"`
}

// OrderItem 订单行，UnitPrice 为下单时的价格快照，后续商品调价不回溯
type OrderItem struct {
	baseModel.BaseModel
	OrderID   string  `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID string  `gorm:"type:uuid;not null" json:"productId"`
	Quantity  int     `gorm:"not null;check:quantity >= 1" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unitPrice"`
}

// Order 订单模型
type Order struct {
	baseModel.BaseModel
	UserID string      `gorm:"type:uuid;index;not null" json:"userId"`
	Items  []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	// TotalAmount 创建时一次性算出 Σ 快照单价×数量，之后不再重算
	TotalAmount     float64         `gorm:"not null" json:"totalAmount"`
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	OrderStatus     string          `gorm:"default:'Pending'" json:"orderStatus"`
	PaymentStatus   string          `gorm:"default:'Pending';index" json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	// PaymentTxnID 网关会话号，重开会话时允许覆盖
	PaymentTxnID string `gorm:"index" json:"paymentTxnId"`
	// PaymentID 网关支付单号，仅在验签通过后写入
	PaymentID string `json:"paymentId"`
}

// IsPaid 是否已支付
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}
