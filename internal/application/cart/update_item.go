package cart

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/cart"
)

// UpdateItemUseCase 修改购物车条目数量用例
type UpdateItemUseCase struct {
	cartRepo cart.Repository
}

// NewUpdateItemUseCase 创建改量用例
func NewUpdateItemUseCase(cartRepo cart.Repository) *UpdateItemUseCase {
	return &UpdateItemUseCase{cartRepo: cartRepo}
}

// UpdateItemRequest 改量请求DTO
type UpdateItemRequest struct {
	UserID    uint
	ProductID uint
	ColorName string
	Quantity  int // 必须>=1,减到0请调用移除接口
}

// Execute 执行改量
func (uc *UpdateItemUseCase) Execute(ctx context.Context, req UpdateItemRequest) (*cart.CartLine, error) {
	key := cart.NewLineKey(req.ProductID, req.ColorName)
	line, err := uc.cartRepo.FindByKey(ctx, req.UserID, key)
	if err != nil {
		return nil, err
	}

	if err := line.SetQuantity(req.Quantity); err != nil {
		return nil, err
	}
	if err := uc.cartRepo.Update(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}
