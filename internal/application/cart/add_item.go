package cart

import (
	"context"
	"errors"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	"github.com/xiebiao/shopmall/internal/domain/product"
)

// AddItemUseCase 加入购物车用例
// 业务规则:
// 1. 商品必须存在且颜色规格合法
// 2. 同一身份键(商品+颜色)重复加购时合并数量,并刷新价格快照
// 3. 加购不预占库存,库存只在下单事务中扣减
type AddItemUseCase struct {
	cartRepo    cart.Repository
	productRepo product.Repository
}

// NewAddItemUseCase 创建加购用例
func NewAddItemUseCase(cartRepo cart.Repository, productRepo product.Repository) *AddItemUseCase {
	return &AddItemUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItemRequest 加购请求DTO
type AddItemRequest struct {
	UserID    uint
	ProductID uint
	ColorName string // 有颜色规格的商品必填
	Quantity  int
}

// Execute 执行加购
func (uc *AddItemUseCase) Execute(ctx context.Context, req AddItemRequest) (*cart.CartLine, error) {
	// 1. 校验商品与颜色
	p, err := uc.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.VariantValid(req.ColorName) {
		return nil, product.ErrInvalidVariant
	}

	// 2. 同键条目已存在则合并数量
	key := cart.NewLineKey(req.ProductID, req.ColorName)
	existing, err := uc.cartRepo.FindByKey(ctx, req.UserID, key)
	if err == nil {
		if err := existing.Merge(req.Quantity, p.Price); err != nil {
			return nil, err
		}
		if err := uc.cartRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, cart.ErrLineMissing) {
		return nil, err
	}

	// 3. 新建条目(价格快照取当前目录价)
	line, err := cart.NewCartLine(req.UserID, req.ProductID, req.ColorName, req.Quantity, p.Price)
	if err != nil {
		return nil, err
	}
	if err := uc.cartRepo.Create(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}
