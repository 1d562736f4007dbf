package checkout

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	"github.com/xiebiao/shopmall/internal/domain/pricing"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/referral"
)

// Draft 服务端权威的待下单草稿
// 派生数据,每次结算/下单时重新计算,从不落库,也从不信任客户端回传
type Draft struct {
	pricing.Quote
	Keys     []cart.LineKey // 购物车路径:本次消费的条目键
	FromCart bool           // true=购物车结算 false=立即购买
}

// PurchaseValidator 购买校验器
// 设计说明:
//  1. 购物车结算和立即购买两条入口都必须经过这里,是库存/规格校验的唯一卡口
//  2. 价格策略:一律以目录实时价格计价(购物车快照价仅做展示),
//     避免快照价与目录价不一致导致的陈旧定价
//  3. 校验用普通读,不加锁;下单事务内会用悲观锁二次确认(防止校验-提交窗口竞态)
type PurchaseValidator struct {
	cartRepo    cart.Repository
	productRepo product.Repository
	selection   cart.SelectionStore
	ledger      referral.Ledger
	pricer      *pricing.Engine
}

// NewPurchaseValidator 创建购买校验器
func NewPurchaseValidator(
	cartRepo cart.Repository,
	productRepo product.Repository,
	selection cart.SelectionStore,
	ledger referral.Ledger,
	pricer *pricing.Engine,
) *PurchaseValidator {
	return &PurchaseValidator{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		selection:   selection,
		ledger:      ledger,
		pricer:      pricer,
	}
}

// ValidateCartPurchase 校验购物车结算
// 对勾选集合中的每个键:
// 1. 必须存在对应的购物车条目(孤儿键直接报错)
// 2. 商品必须存在、颜色合法、价格可售、库存充足
func (v *PurchaseValidator) ValidateCartPurchase(ctx context.Context, userID uint, useCoins bool) (*Draft, error) {
	keys, err := v.selection.Selected(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, cart.ErrEmptySelection
	}

	// 1. 勾选键 → 购物车条目
	lines := make([]*cart.CartLine, 0, len(keys))
	ids := make([]uint, 0, len(keys))
	for _, key := range keys {
		line, err := v.cartRepo.FindByKey(ctx, userID, key)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		ids = append(ids, line.ProductID)
	}

	// 2. 目录实时校验
	products, err := v.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	priceLines := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, product.ErrProductNotFound
		}
		pl, err := v.checkLine(p, line.ColorName, line.Quantity)
		if err != nil {
			return nil, err
		}
		priceLines = append(priceLines, pl)
	}

	// 3. 计价(金币余额实时查询)
	quote, err := v.quote(ctx, userID, priceLines, useCoins)
	if err != nil {
		return nil, err
	}

	return &Draft{Quote: *quote, Keys: keys, FromCart: true}, nil
}

// ValidateDirectPurchase 校验立即购买(Buy Now)
// 单商品路径,完全绕过购物车与勾选集合,但校验规则与购物车路径一致
func (v *PurchaseValidator) ValidateDirectPurchase(ctx context.Context, userID, productID uint, quantity int, colorName string, useCoins bool) (*Draft, error) {
	p, err := v.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	pl, err := v.checkLine(p, colorName, quantity)
	if err != nil {
		return nil, err
	}

	quote, err := v.quote(ctx, userID, []pricing.Line{pl}, useCoins)
	if err != nil {
		return nil, err
	}

	return &Draft{Quote: *quote, FromCart: false}, nil
}

// checkLine 单条目校验:颜色规格、价格、库存
func (v *PurchaseValidator) checkLine(p *product.Product, colorName string, quantity int) (pricing.Line, error) {
	if quantity < 1 {
		return pricing.Line{}, cart.ErrInvalidQuantity
	}
	if !p.VariantValid(colorName) {
		return pricing.Line{}, product.ErrInvalidVariant
	}
	if err := p.CheckPrice(); err != nil {
		return pricing.Line{}, err
	}
	if !p.InStock(quantity) {
		return pricing.Line{}, product.ErrInsufficientStock
	}

	return pricing.Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		ColorName:   colorName,
		Quantity:    quantity,
		UnitPrice:   p.Price, // 实时目录价
	}, nil
}

// quote 计价,金币余额从账本实时读取
func (v *PurchaseValidator) quote(ctx context.Context, userID uint, lines []pricing.Line, useCoins bool) (*pricing.Quote, error) {
	var balance int64
	if useCoins {
		b, err := v.ledger.Balance(ctx, userID)
		if err != nil {
			return nil, err
		}
		balance = b
	}
	return v.pricer.Quote(lines, balance, useCoins)
}
