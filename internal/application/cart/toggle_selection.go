package cart

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/cart"
)

// ToggleSelectionUseCase 勾选/取消勾选用例
// 设计说明:
// 1. 勾选状态服务端持久化(Redis Set),换设备结算看到同一份勾选
// 2. 只有购物车中真实存在的条目才能被勾选,防止客户端伪造键
// 3. 翻转是幂等的:同一键重复调用只翻转成员关系,不会重复累积
type ToggleSelectionUseCase struct {
	cartRepo  cart.Repository
	selection cart.SelectionStore
}

// NewToggleSelectionUseCase 创建勾选用例
func NewToggleSelectionUseCase(cartRepo cart.Repository, selection cart.SelectionStore) *ToggleSelectionUseCase {
	return &ToggleSelectionUseCase{
		cartRepo:  cartRepo,
		selection: selection,
	}
}

// ToggleSelectionRequest 勾选请求DTO
type ToggleSelectionRequest struct {
	UserID    uint
	ProductID uint
	ColorName string
}

// ToggleSelectionResponse 勾选响应DTO
type ToggleSelectionResponse struct {
	Key      string `json:"key"`
	Selected bool   `json:"selected"` // 翻转后的勾选状态
}

// Execute 执行勾选翻转
func (uc *ToggleSelectionUseCase) Execute(ctx context.Context, req ToggleSelectionRequest) (*ToggleSelectionResponse, error) {
	key := cart.NewLineKey(req.ProductID, req.ColorName)

	// 1. 校验条目存在(没有对应CartLine的键不允许勾选)
	if _, err := uc.cartRepo.FindByKey(ctx, req.UserID, key); err != nil {
		return nil, err
	}

	// 2. 翻转勾选状态
	selected, err := uc.selection.Toggle(ctx, req.UserID, key)
	if err != nil {
		return nil, err
	}

	return &ToggleSelectionResponse{
		Key:      key.String(),
		Selected: selected,
	}, nil
}
