package gateway

import (
	"context"
	"errors"
	"math"
	"net/http"

	"shop_backend/internal/pkg/config"

	"github.com/wechatpay-apiv3/wechatpay-go/core"
	"github.com/wechatpay-apiv3/wechatpay-go/core/auth/verifiers"
	"github.com/wechatpay-apiv3/wechatpay-go/core/downloader"
	"github.com/wechatpay-apiv3/wechatpay-go/core/notify"
	"github.com/wechatpay-apiv3/wechatpay-go/core/option"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments"
	"github.com/wechatpay-apiv3/wechatpay-go/services/payments/native"
	"github.com/wechatpay-apiv3/wechatpay-go/utils"
)

// WechatGateway 微信支付渠道（Native 扫码）
type WechatGateway struct {
	client  *core.Client
	cfg     config.WechatPayConfig
	handler *notify.Handler
}

// NewWechatGateway 创建渠道实例
func NewWechatGateway() (*WechatGateway, error) {
	cfg := config.GlobalConfig.Wechat
	if cfg.MchID == "" {
		return nil, errors.New("wechat pay config missing")
	}

	mchPrivateKey, err := utils.LoadPrivateKey(cfg.MchPrivateKey)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	client, err := core.NewClient(ctx,
		option.WithWechatPayAutoAuthCipher(cfg.MchID, cfg.MchCertificateSerial, mchPrivateKey, cfg.APIv3Key))
	if err != nil {
		return nil, err
	}

	certVisitor := downloader.MgrInstance().GetCertificateVisitor(cfg.MchID)
	handler := notify.NewNotifyHandler(cfg.APIv3Key, verifiers.NewSHA256WithRSAVerifier(certVisitor))

	return &WechatGateway{client: client, cfg: cfg, handler: handler}, nil
}

// CreateSession Native 下单，返回支付二维码链接
func (g *WechatGateway) CreateSession(orderID string, amount float64, receipt string) (*Session, error) {
	amountFen := int64(math.Round(amount * 100))

	req := native.PrepayRequest{
		Appid:       core.String(g.cfg.AppID),
		Mchid:       core.String(g.cfg.MchID),
		Description: core.String(receipt),
		OutTradeNo:  core.String(orderID),
		NotifyUrl:   core.String(g.cfg.NotifyURL),
		Amount: &native.Amount{
			Total: core.Int64(amountFen),
		},
	}

	svc := native.NativeApiService{Client: g.client}
	resp, _, err := svc.Prepay(context.Background(), req)
	if err != nil {
		return nil, err
	}

	return &Session{
		TxnID: orderID,
		Payload: map[string]interface{}{
			"code_url": *resp.CodeUrl,
		},
	}, nil
}

// Notify 验签并解析回调，params 为 *http.Request
func (g *WechatGateway) Notify(params interface{}) (string, bool, error) {
	req, ok := params.(*http.Request)
	if !ok {
		return "", false, errors.New("invalid params type, expected *http.Request")
	}

	transaction := new(payments.Transaction)
	if _, err := g.handler.ParseNotifyRequest(context.Background(), req, transaction); err != nil {
		return "", false, err
	}

	success := transaction.TradeState != nil && *transaction.TradeState == "SUCCESS"
	return *transaction.OutTradeNo, success, nil
}

var _ Gateway = (*WechatGateway)(nil)
