package user

import (
	"shop_backend/internal/domain/user/handler"
	"shop_backend/internal/domain/user/repository"
	"shop_backend/internal/domain/user/service"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"
	"shop_backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，其他模块依赖它
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	userService := service.NewUserService(userRepo)

	// Google 登录可选，未配置时只提供凭据登录
	googleAuth, err := service.NewGoogleAuthService(userRepo)
	if err != nil {
		logger.Log.Warn("Google OAuth disabled: " + err.Error())
		googleAuth = nil
	}

	userHandler := handler.NewUserHandler(userService, googleAuth)

	// 2. 路由注册
	setupRoutes(ctx.Router, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	// 公开路由
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/google", h.GoogleLogin)
		authGroup.GET("/google/callback", h.GoogleCallback)
	}

	// 受保护的路由
	authed := r.Group("")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.GET("/auth/me", h.Me)
		authed.GET("/wishlist", h.GetWishlist)
		authed.POST("/wishlist", h.AddToWishlist)
		authed.DELETE("/wishlist", h.RemoveFromWishlist)
	}
}
