package product

import (
	"shop_backend/internal/domain/product/handler"
	"shop_backend/internal/domain/product/repository"
	"shop_backend/internal/domain/product/service"
	"shop_backend/internal/pkg/config"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"
	"shop_backend/pkg/cache"

	"github.com/gin-gonic/gin"
)

// ProductModule 商品模块
type ProductModule struct{}

func init() {
	registry.Register(&ProductModule{})
}

func (m *ProductModule) Name() string {
	return "product"
}

func (m *ProductModule) Priority() int {
	return 5
}

func (m *ProductModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入，读路径走 Redis 缓存
	productRepo := repository.NewProductRepository(ctx.DB)
	categoryRepo := repository.NewCategoryRepository(ctx.DB)
	cacheService := cache.NewRedisCache(ctx.Redis, CachePrefix())
	productService := service.NewCachedProductService(productRepo, categoryRepo, cacheService)
	productHandler := handler.NewProductHandler(productService)

	categoryService := service.NewCategoryService(categoryRepo)
	categoryHandler := handler.NewCategoryHandler(categoryService)

	// 2. 路由注册
	setupRoutes(ctx.Router, productHandler, categoryHandler)

	return nil
}

// CachePrefix 商品缓存键前缀，下单等外部写路径失效缓存时需使用同一前缀
func CachePrefix() string {
	prefix := "shop:"
	if config.GlobalConfig.Server.Mode == "test" {
		prefix = "test:" + prefix
	}
	return prefix
}

func setupRoutes(r *gin.Engine, h *handler.ProductHandler, ch *handler.CategoryHandler) {
	// 公开路由
	g := r.Group("/products")
	{
		g.GET("", h.GetProducts)
		g.GET("/categories", h.GetCategories)
		g.GET("/:id", h.GetProduct)
	}

	// 管理员路由
	admin := r.Group("/products")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateProduct)
		admin.PUT("/:id", h.UpdateProduct)
		admin.DELETE("/:id", h.DeleteProduct)
	}

	categories := r.Group("/admin/categories")
	categories.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		categories.GET("", ch.GetCategoryStats)
		categories.POST("", ch.CreateCategory)
		categories.PUT("/:id", ch.UpdateCategory)
		categories.DELETE("/:id", ch.DeleteCategory)
	}

	inventory := r.Group("/admin/inventory")
	inventory.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		inventory.PUT("/bulk", h.BulkUpdateInventory)
	}
}
