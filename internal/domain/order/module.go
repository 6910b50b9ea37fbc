package order

import (
	"shop_backend/internal/domain/order/handler"
	"shop_backend/internal/domain/order/repository"
	"shop_backend/internal/domain/order/service"
	"shop_backend/internal/domain/product"
	productRepo "shop_backend/internal/domain/product/repository"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"
	"shop_backend/pkg/cache"

	"github.com/gin-gonic/gin"
)

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	return 10
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入。缓存前缀与商品模块一致，下单扣库存后失效对应商品缓存
	orderRepo := repository.NewOrderRepository(ctx.DB)
	productRepository := productRepo.NewProductRepository(ctx.DB)
	cacheService := cache.NewRedisCache(ctx.Redis, product.CachePrefix())
	orderService := service.NewOrderService(orderRepo, productRepository, cacheService)
	orderHandler := handler.NewOrderHandler(orderService)

	// 2. 路由注册
	setupRoutes(ctx.Router, orderHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	g := r.Group("/orders")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("", h.CreateOrder)
		g.GET("/user", h.GetUserOrders)
		g.GET("/:id", h.GetOrder)
	}

	admin := r.Group("/orders/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("", h.GetOrders)
		admin.PUT("/:id", h.UpdateOrderStatus)
	}
}
