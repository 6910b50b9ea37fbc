package gateway

import (
	"errors"
	"fmt"
	"net/url"

	"shop_backend/internal/pkg/config"

	"github.com/smartwalle/alipay/v3"
)

// AlipayGateway 支付宝渠道
type AlipayGateway struct {
	client *alipay.Client
	cfg    config.AlipayConfig
}

// NewAlipayGateway 创建渠道实例
func NewAlipayGateway() (*AlipayGateway, error) {
	cfg := config.GlobalConfig.Alipay
	if cfg.AppID == "" {
		return nil, errors.New("alipay config missing")
	}

	client, err := alipay.New(cfg.AppID, cfg.PrivateKey, cfg.IsProduction)
	if err != nil {
		return nil, err
	}
	if err = client.LoadAliPayPublicKey(cfg.PublicKey); err != nil {
		return nil, err
	}

	return &AlipayGateway{client: client, cfg: cfg}, nil
}

// CreateSession 网页支付，返回收银台跳转链接
func (g *AlipayGateway) CreateSession(orderID string, amount float64, receipt string) (*Session, error) {
	p := alipay.TradePagePay{}
	p.NotifyURL = g.cfg.NotifyURL
	p.ReturnURL = g.cfg.ReturnURL
	p.Subject = receipt
	p.OutTradeNo = orderID
	p.TotalAmount = fmt.Sprintf("%.2f", amount)
	p.ProductCode = "FAST_INSTANT_TRADE_PAY"

	payURL, err := g.client.TradePagePay(p)
	if err != nil {
		return nil, err
	}

	// 以订单号作为会话号，回调里用 OutTradeNo 对回
	return &Session{
		TxnID: orderID,
		Payload: map[string]interface{}{
			"payment_url": payURL.String(),
		},
	}, nil
}

// Notify 处理异步回调，验签后返回订单号与交易状态
func (g *AlipayGateway) Notify(params interface{}) (string, bool, error) {
	values, ok := params.(url.Values)
	if !ok {
		return "", false, errors.New("invalid params type, expected url.Values")
	}

	noti, err := g.client.DecodeNotification(values)
	if err != nil {
		return "", false, err
	}

	success := noti.TradeStatus == alipay.TradeStatusSuccess ||
		noti.TradeStatus == alipay.TradeStatusFinished
	return noti.OutTradeNo, success, nil
}

var _ Gateway = (*AlipayGateway)(nil)
