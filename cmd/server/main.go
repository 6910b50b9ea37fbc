package main

import (
	"time"

	_ "shop_backend/internal/domain/admin"
	_ "shop_backend/internal/domain/order"
	_ "shop_backend/internal/domain/payment"
	_ "shop_backend/internal/domain/product"
	_ "shop_backend/internal/domain/user"

	common "shop_backend/internal/pkg/common"
	"shop_backend/internal/pkg/config"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/push"
	"shop_backend/internal/pkg/registry"
	"shop_backend/internal/pkg/uploader"
	"shop_backend/pkg/database"
	"shop_backend/pkg/logger"
	"shop_backend/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 1. 配置与日志
	config.LoadConfig()
	logger.Init(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	metrics.Init()

	// 2. 基础设施
	db := database.InitDatabase()
	redisClient := database.InitRedis()

	if sqlDB, err := db.DB(); err == nil {
		go metrics.Default.CollectDBStats(sqlDB, 15*time.Second)
	}

	// 3. 可选外部服务，配置缺失时降级为不可用
	if err := uploader.InitUploader(); err != nil {
		logger.Log.Warn("uploader disabled", zap.Error(err))
	}
	push.InitPushService()

	// 4. HTTP 引擎与中间件链
	gin.SetMode(config.GlobalConfig.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = []string{config.GlobalConfig.App.ClientURL}
	corsCfg.AllowCredentials = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 商品图片上传（管理员）
	r.POST("/upload",
		middleware.AuthMiddleware(), middleware.AdminMiddleware(),
		common.UploadImages)

	// 5. 业务模块
	ctx := &registry.ModuleContext{
		DB:     db,
		Redis:  redisClient,
		Router: r,
	}
	if err := registry.InitModules(ctx); err != nil {
		logger.Log.Fatal("module init failed", zap.Error(err))
	}

	addr := ":" + config.GlobalConfig.Server.Port
	logger.Log.Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}
