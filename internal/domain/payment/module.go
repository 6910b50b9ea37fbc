package payment

import (
	orderRepo "shop_backend/internal/domain/order/repository"
	"shop_backend/internal/domain/payment/gateway"
	"shop_backend/internal/domain/payment/handler"
	"shop_backend/internal/domain/payment/service"
	"shop_backend/internal/domain/payment/worker"
	"shop_backend/internal/pkg/config"
	"shop_backend/internal/pkg/middleware"
	"shop_backend/internal/pkg/registry"
	"shop_backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PaymentModule 支付模块
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// 依赖订单模块的仓库，优先级靠后
	return 20
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	orders := orderRepo.NewOrderRepository(ctx.DB)

	stamper := worker.NewStampPool(orders, 2, 64)
	stamper.Start()

	// 2. 主渠道：stub 模式走本地渠道，否则直连网关
	var primary gateway.Gateway
	var stub *gateway.StubGateway
	if config.GlobalConfig.Razorpay.Stub {
		stub = gateway.NewStubGateway()
		primary = stub
		logger.Log.Warn("payment gateway running in stub mode")
	} else {
		gw, err := gateway.NewRazorpayGateway()
		if err != nil {
			logger.Log.Error("Failed to init razorpay gateway: " + err.Error())
		} else {
			primary = gw
		}
	}

	pService := service.NewPaymentService(orders, primary, stamper)

	// 3. 备选渠道
	if config.GlobalConfig.Alipay.AppID != "" {
		alipayGw, err := gateway.NewAlipayGateway()
		if err != nil {
			logger.Log.Error("Failed to init alipay gateway: " + err.Error())
		} else {
			pService.RegisterGateway("alipay", alipayGw)
		}
	}
	if config.GlobalConfig.Wechat.MchID != "" {
		wechatGw, err := gateway.NewWechatGateway()
		if err != nil {
			logger.Log.Error("Failed to init wechat gateway: " + err.Error())
		} else {
			pService.RegisterGateway("wechat", wechatGw)
		}
	}

	pHandler := handler.NewPaymentHandler(pService, stub)

	// 4. 路由注册
	setupRoutes(ctx.Router, pHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PaymentHandler) {
	g := r.Group("/payment")

	// 网关回调（无需鉴权，靠验签）
	g.POST("/webhook", h.Webhook)
	g.POST("/notify/alipay", h.AlipayNotify)
	g.POST("/notify/wechat", h.WechatNotify)

	// 本地联调
	g.GET("/diag", h.Diag)
	g.GET("/stub", h.StubComplete)

	// 需要鉴权的接口
	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/create", h.CreateSession)
		auth.POST("/verify", h.VerifyPayment)
	}
}
