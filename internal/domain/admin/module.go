package admin

import (
	"shop_backend/internal/domain/admin/handler"
	"shop_backend/internal/domain/admin/service"
	userRepo "shop_backend/internal/domain/user/repository"
	userService "shop_backend/internal/domain/user/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// AdminModule 管理端模块
type AdminModule struct{}

func init() {
	registry.Register(&AdminModule{})
}

func (m *AdminModule) Name() string {
	return "admin"
}

func (m *AdminModule) Priority() int {
	return 30
}

func (m *AdminModule) Init(ctx *registry.ModuleContext) error {
	// 聚合查询绕过 ORM，复用同一个连接池
	sqlDB, err := ctx.DB.DB()
	if err != nil {
		return err
	}
	db := sqlx.NewDb(sqlDB, "postgres")

	analytics := service.NewAnalyticsService(db)
	uService := userService.NewUserService(userRepo.NewUserRepository(ctx.DB))
	adminHandler := handler.NewAdminHandler(analytics, uService)

	setupRoutes(ctx.Router, adminHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.AdminHandler) {
	g := r.Group("/admin")
	g.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		g.GET("/revenue", h.Revenue)
		g.GET("/dashboard", h.Dashboard)
		g.GET("/users", h.GetUsers)
		g.POST("/users", h.CreateAdmin)
		g.DELETE("/users/:id", h.DeleteUser)
	}
}
