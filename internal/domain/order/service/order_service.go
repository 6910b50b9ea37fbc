package service

import (
	"context"
	"errors"

	"shop_backend/internal/domain/order/model"
	"shop_backend/internal/domain/order/repository"
	productRepo "shop_backend/internal/domain/product/repository"
	productService "shop_backend/internal/domain/product/service"
	userModel "shop_backend/internal/domain/user/model"
	"shop_backend/pkg/apperr"
	"shop_backend/pkg/cache"
	"shop_backend/pkg/metrics"
	"shop_backend/pkg/response"

	"gorm.io/gorm"
)

// OrderItemInput 下单商品行输入
type OrderItemInput struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CreateOrderInput 下单输入
type CreateOrderInput struct {
	Items           []OrderItemInput      `json:"items" binding:"required,min=1,dive"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                `json:"paymentMethod"`
}

// UpdateStatusInput 管理端更新订单状态输入，两轴均可选
type UpdateStatusInput struct {
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
}

// OrderService 订单服务接口
type OrderService interface {
	CreateOrder(userID string, input CreateOrderInput) (*model.Order, error)
	GetOrder(userID, role, orderID string) (*model.Order, error)
	GetUserOrders(userID string) ([]model.Order, error)
	GetOrders(filter repository.ListFilter, page, limit int) ([]model.Order, int64, error)
	UpdateOrderStatus(orderID string, input UpdateStatusInput) (*model.Order, error)
}

// orderService 实现
type orderService struct {
	repo        repository.OrderRepository
	productRepo productRepo.ProductRepository
	cache       cache.CacheService // 可为 nil，此时跳过商品缓存失效
}

// NewOrderService 创建订单服务
func NewOrderService(repo repository.OrderRepository, pr productRepo.ProductRepository, c cache.CacheService) OrderService {
	return &orderService{repo: repo, productRepo: pr, cache: c}
}

func validateAddress(addr model.ShippingAddress) error {
	if addr.Name == "" || addr.Address == "" || addr.City == "" ||
		addr.State == "" || addr.Pincode == "" || addr.Phone == "" {
		return apperr.New(apperr.KindValidation, "Shipping address is incomplete")
	}
	return nil
}

// CreateOrder 创建订单。校验、扣库存、写订单在同一个事务内完成，
// 任何一行商品库存不足则整体回滚，不会留下部分扣减。
func (s *orderService) CreateOrder(userID string, input CreateOrderInput) (*model.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperr.New(apperr.KindValidation, "Order must contain at least one item")
	}
	if err := validateAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	// 同一商品重复出现按行累计，不做合并
	order := &model.Order{
		UserID:          userID,
		ShippingAddress: input.ShippingAddress,
		OrderStatus:     model.OrderStatusPending,
		PaymentStatus:   model.PaymentStatusPending,
		PaymentMethod:   input.PaymentMethod,
	}

	err := s.repo.Transaction(func(tx *gorm.DB) error {
		var total float64
		for _, item := range input.Items {
			product, err := s.productRepo.GetByIDTx(tx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Newf(apperr.KindNotFound, "Product %s not found", item.ProductID).
						WithCode(response.ErrProductNotFound)
				}
				return err
			}

			ok, err := s.productRepo.ReserveStock(tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperr.Newf(apperr.KindConflict,
					"Insufficient stock for %s: %d available", product.Name, product.Stock).
					WithCode(response.ErrOutOfStock)
			}

			// 单价快照在此刻定格，后续改价不影响已建订单
			order.Items = append(order.Items, model.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
			total += product.Price * float64(item.Quantity)
		}

		order.TotalAmount = total
		return s.repo.CreateTx(tx, order)
	})
	if err != nil {
		return nil, err
	}

	// 扣减已生效，商品详情/列表缓存里的库存和状态已经过期
	if s.cache != nil {
		ids := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			ids = append(ids, item.ProductID)
		}
		productService.InvalidateProductCache(context.Background(), s.cache, ids...)
	}

	if metrics.Default != nil {
		metrics.Default.OrderCreated()
	}
	return order, nil
}

// GetOrder 获取订单详情，仅本人或管理员可见
func (s *orderService) GetOrder(userID, role, orderID string) (*model.Order, error) {
	order, err := s.repo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "Order not found").
				WithCode(response.ErrOrderNotFound)
		}
		return nil, err
	}
	if order.UserID != userID && role != userModel.RoleAdmin {
		return nil, apperr.New(apperr.KindForbidden, "Not authorized to view this order").
			WithCode(response.ErrOrderNotOwned)
	}
	return order, nil
}

func (s *orderService) GetUserOrders(userID string) ([]model.Order, error) {
	return s.repo.GetPaidByUser(userID)
}

func (s *orderService) GetOrders(filter repository.ListFilter, page, limit int) ([]model.Order, int64, error) {
	if filter.OrderStatus != "" && !model.ValidOrderStatus(filter.OrderStatus) {
		return nil, 0, apperr.New(apperr.KindValidation, "Invalid order status")
	}
	if filter.PaymentStatus != "" && !model.ValidPaymentStatus(filter.PaymentStatus) {
		return nil, 0, apperr.New(apperr.KindValidation, "Invalid payment status")
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return s.repo.GetList(filter, (page-1)*limit, limit)
}

// UpdateOrderStatus 管理端更新订单状态，两轴独立更新互不影响
func (s *orderService) UpdateOrderStatus(orderID string, input UpdateStatusInput) (*model.Order, error) {
	if input.OrderStatus == "" && input.PaymentStatus == "" {
		return nil, apperr.New(apperr.KindValidation, "No status provided")
	}
	if input.OrderStatus != "" && !model.ValidOrderStatus(input.OrderStatus) {
		return nil, apperr.New(apperr.KindValidation, "Invalid order status")
	}
	if input.PaymentStatus != "" && !model.ValidPaymentStatus(input.PaymentStatus) {
		return nil, apperr.New(apperr.KindValidation, "Invalid payment status")
	}

	if _, err := s.repo.GetByID(orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "Order not found").
				WithCode(response.ErrOrderNotFound)
		}
		return nil, err
	}

	if err := s.repo.UpdateStatus(orderID, input.OrderStatus, input.PaymentStatus); err != nil {
		return nil, err
	}
	return s.repo.GetByID(orderID)
}
