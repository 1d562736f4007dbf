package dto

// AddCartItemRequest HTTP层加入购物车请求
type AddCartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
	ColorName string `json:"color_name" binding:"max=50,excludes=:"`
}

// UpdateCartItemRequest HTTP层修改数量请求
type UpdateCartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
	ColorName string `json:"color_name" binding:"max=50,excludes=:"`
}

// ToggleSelectionRequest HTTP层翻转勾选请求
type ToggleSelectionRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	ColorName string `json:"color_name" binding:"max=50,excludes=:"`
}

// ValidateDirectPurchaseRequest HTTP层立即购买校验请求
type ValidateDirectPurchaseRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
	ColorName string `json:"color_name" binding:"max=50,excludes=:"`
	UseCoins  bool   `json:"use_coins"`
}
