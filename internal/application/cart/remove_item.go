package cart

import (
	"context"
	"log"

	"github.com/xiebiao/shopmall/internal/domain/cart"
)

// RemoveItemUseCase 移除购物车条目用例
// 移除条目的同时要把对应的勾选键一并清掉,避免勾选集合里留下孤儿键
type RemoveItemUseCase struct {
	cartRepo  cart.Repository
	selection cart.SelectionStore
}

// NewRemoveItemUseCase 创建移除用例
func NewRemoveItemUseCase(cartRepo cart.Repository, selection cart.SelectionStore) *RemoveItemUseCase {
	return &RemoveItemUseCase{
		cartRepo:  cartRepo,
		selection: selection,
	}
}

// RemoveItemRequest 移除请求DTO
type RemoveItemRequest struct {
	UserID    uint
	ProductID uint
	ColorName string
}

// Execute 执行移除
func (uc *RemoveItemUseCase) Execute(ctx context.Context, req RemoveItemRequest) error {
	key := cart.NewLineKey(req.ProductID, req.ColorName)

	if err := uc.cartRepo.DeleteByKey(ctx, req.UserID, key); err != nil {
		return err
	}

	// 清理勾选键(失败不影响移除结果,孤儿键在结算校验时会被拦截)
	if err := uc.selection.Remove(ctx, req.UserID, []cart.LineKey{key}); err != nil {
		log.Printf("清理勾选键失败 user=%d key=%s: %v", req.UserID, key, err)
	}
	return nil
}
