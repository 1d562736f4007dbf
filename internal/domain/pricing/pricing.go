package pricing

import (
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// Config 定价引擎配置
// 设计说明:
//  1. 历史上购物车结算和立即购买用了两套运费阈值,现统一为一组可配置参数
//     (config.yaml的checkout段),两条下单路径共用
//  2. 金额单位与商品价格一致(最小货币单位)
type Config struct {
	DeliveryFee           int64 // 固定运费
	FreeShippingThreshold int64 // 小计超过该值免运费
	CoinValue             int64 // 1金币可抵扣的金额
	DiscountCapPercent    int64 // 抵扣上限占订单金额的百分比
}

// Line 待结算条目
// 结算价格一律来自目录实时查询,不信任购物车快照和客户端传值
type Line struct {
	ProductID   uint
	ProductName string
	ColorName   string
	Quantity    int
	UnitPrice   int64
}

// Quote 服务端权威计价结果
// 派生数据,只在下单瞬间计算,从不落库或回传后复用
type Quote struct {
	Lines            []Line
	Subtotal         int64 // Σ(单价×数量)
	DeliveryFee      int64
	ReferralDiscount int64 // 金币抵扣金额(未开启时为0)
	CoinsUsed        int64 // 消耗金币数
	Total            int64 // Subtotal + DeliveryFee - ReferralDiscount
}

// Engine 定价引擎
type Engine struct {
	cfg Config
}

// NewEngine 创建定价引擎
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// PriceLines 计算商品小计与运费
// 规则:
// 1. 条目为空是错误,不允许产生0元订单
// 2. 单价<=0视为目录脏数据,拒绝结算
// 3. 小计超过免邮阈值时运费为0,否则收固定运费
func (e *Engine) PriceLines(lines []Line) (subtotal, deliveryFee int64, err error) {
	if len(lines) == 0 {
		return 0, 0, apperrors.ErrEmptySelection
	}

	for _, l := range lines {
		if l.Quantity < 1 {
			return 0, 0, apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
		}
		if l.UnitPrice <= 0 {
			return 0, 0, apperrors.ErrInvalidPrice
		}
		subtotal += l.UnitPrice * int64(l.Quantity)
	}

	deliveryFee = e.cfg.DeliveryFee
	if subtotal > e.cfg.FreeShippingThreshold {
		deliveryFee = 0
	}
	return subtotal, deliveryFee, nil
}

// ReferralDiscount 计算金币抵扣
// 规则:
// 1. 只有买家在结算页显式开启时才抵扣(optIn)
// 2. 抵扣金额 = min(余额×金币面值, 订单金额×上限百分比/100)
// 3. 永远以服务端查询的实时余额计算,客户端提交的抵扣值不可信
func (e *Engine) ReferralDiscount(total, coinBalance int64, optIn bool) (discount, coinsUsed int64) {
	if !optIn || coinBalance <= 0 || total <= 0 {
		return 0, 0
	}

	discount = coinBalance * e.cfg.CoinValue
	cap := total * e.cfg.DiscountCapPercent / 100
	if discount > cap {
		discount = cap
	}
	if discount <= 0 {
		return 0, 0
	}

	// 抵扣金额向下取整到整数个金币
	coinsUsed = discount / e.cfg.CoinValue
	discount = coinsUsed * e.cfg.CoinValue
	return discount, coinsUsed
}

// Quote 完整计价:小计+运费+金币抵扣
func (e *Engine) Quote(lines []Line, coinBalance int64, optIn bool) (*Quote, error) {
	subtotal, deliveryFee, err := e.PriceLines(lines)
	if err != nil {
		return nil, err
	}

	total := subtotal + deliveryFee
	discount, coinsUsed := e.ReferralDiscount(total, coinBalance, optIn)

	return &Quote{
		Lines:            lines,
		Subtotal:         subtotal,
		DeliveryFee:      deliveryFee,
		ReferralDiscount: discount,
		CoinsUsed:        coinsUsed,
		Total:            total - discount,
	}, nil
}
