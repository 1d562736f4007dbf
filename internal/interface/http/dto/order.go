package dto

// ShippingAddressDTO HTTP层收货地址
type ShippingAddressDTO struct {
	FirstName string `json:"first_name" binding:"required,max=50"`
	LastName  string `json:"last_name" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required,max=30"`
	Address   string `json:"address" binding:"required,max=255"`
	City      string `json:"city" binding:"required,max=100"`
	ZipCode   string `json:"zip_code" binding:"required,max=20"`
}

// CreateOrderRequest HTTP层购物车结算下单请求
// 明细不由客户端传入:以服务端勾选集合为准
type CreateOrderRequest struct {
	Address       ShippingAddressDTO `json:"address" binding:"required"`
	PaymentMethod string             `json:"payment_method" binding:"required,oneof=cod"`
	UseCoins      bool               `json:"use_coins"`
}

// CreateDirectOrderRequest HTTP层立即购买下单请求
type CreateDirectOrderRequest struct {
	ProductID     uint               `json:"product_id" binding:"required"`
	Quantity      int                `json:"quantity" binding:"required,min=1,max=999"`
	ColorName     string             `json:"color_name" binding:"max=50,excludes=:"`
	Address       ShippingAddressDTO `json:"address" binding:"required"`
	PaymentMethod string             `json:"payment_method" binding:"required,oneof=cod"`
	UseCoins      bool               `json:"use_coins"`
}

// CancelOrderRequest HTTP层取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// AdvanceOrderStatusRequest HTTP层推进订单状态请求
type AdvanceOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered"`
}
