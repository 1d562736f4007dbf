package cart

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	"github.com/xiebiao/shopmall/internal/domain/pricing"
)

// ListCartUseCase 查询购物车用例
// 返回全部条目、每条的勾选状态,以及已勾选部分的计价预览
// 预览用加购快照价即可(展示用);下单时会以目录实时价重新计算
type ListCartUseCase struct {
	cartRepo  cart.Repository
	selection cart.SelectionStore
	pricer    *pricing.Engine
}

// NewListCartUseCase 创建购物车查询用例
func NewListCartUseCase(cartRepo cart.Repository, selection cart.SelectionStore, pricer *pricing.Engine) *ListCartUseCase {
	return &ListCartUseCase{
		cartRepo:  cartRepo,
		selection: selection,
		pricer:    pricer,
	}
}

// CartLineView 购物车条目视图
type CartLineView struct {
	ProductID uint   `json:"product_id"`
	ColorName string `json:"color_name,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Selected  bool   `json:"selected"`
}

// CartView 购物车视图
type CartView struct {
	Lines []CartLineView `json:"lines"`
	// 以下为已勾选条目的计价预览(没有勾选时全为0)
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
}

// Execute 查询购物车
func (uc *ListCartUseCase) Execute(ctx context.Context, userID uint) (*CartView, error) {
	lines, err := uc.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	selectedKeys, err := uc.selection.Selected(ctx, userID)
	if err != nil {
		return nil, err
	}
	selected := make(map[cart.LineKey]struct{}, len(selectedKeys))
	for _, k := range selectedKeys {
		selected[k] = struct{}{}
	}

	view := &CartView{Lines: make([]CartLineView, 0, len(lines))}
	var priceLines []pricing.Line
	for _, l := range lines {
		_, isSelected := selected[l.Key()]
		view.Lines = append(view.Lines, CartLineView{
			ProductID: l.ProductID,
			ColorName: l.ColorName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Selected:  isSelected,
		})
		if isSelected {
			priceLines = append(priceLines, pricing.Line{
				ProductID: l.ProductID,
				ColorName: l.ColorName,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			})
		}
	}

	// 勾选为空时不报错,预览金额保持0
	if len(priceLines) > 0 {
		subtotal, fee, err := uc.pricer.PriceLines(priceLines)
		if err != nil {
			return nil, err
		}
		view.Subtotal = subtotal
		view.DeliveryFee = fee
		view.Total = subtotal + fee
	}

	return view, nil
}
