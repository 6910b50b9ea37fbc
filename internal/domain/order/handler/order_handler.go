package handler

import (
	"net/http"

	"shop_backend/internal/domain/order/repository"
	"shop_backend/internal/domain/order/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/pkg/response"
	"shop_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler 订单处理器
type OrderHandler struct {
	service service.OrderService
}

// NewOrderHandler 创建处理器
func NewOrderHandler(service service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// CreateOrder 创建订单
// @Summary 创建订单（扣库存+价格快照）
// @Tags Order
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var input service.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.CreateOrder(middleware.GetUserID(c), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// GetUserOrders 当前用户的已支付订单
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	orders, err := h.service.GetUserOrders(middleware.GetUserID(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, orders)
}

// GetOrder 订单详情（本人或管理员）
func (h *OrderHandler) GetOrder(c *gin.Context) {
	role, _ := c.Get("role")
	roleStr, _ := role.(string)

	order, err := h.service.GetOrder(middleware.GetUserID(c), roleStr, c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminListQuery 管理端订单列表查询参数
type AdminListQuery struct {
	utils.Pagination
	OrderStatus   string `form:"orderStatus"`
	PaymentStatus string `form:"paymentStatus"`
}

// GetOrders 管理端订单列表
// @Summary 订单列表（管理员）
// @Tags Order
// @Router /orders/admin [get]
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var query AdminListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	filter := repository.ListFilter{
		OrderStatus:   query.OrderStatus,
		PaymentStatus: query.PaymentStatus,
	}

	query.GetPageOffset()
	orders, total, err := h.service.GetOrders(filter, query.Page, query.Limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.NewPageResult(orders, total, &query.Pagination))
}

// UpdateOrderStatus 管理端更新订单状态
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var input service.UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	order, err := h.service.UpdateOrderStatus(c.Param("id"), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, order)
}
