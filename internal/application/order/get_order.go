package order

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/user"
)

// GetOrderUseCase 查询订单详情用例
type GetOrderUseCase struct {
	orderRepo order.Repository
}

// NewGetOrderUseCase 创建查询订单用例
func NewGetOrderUseCase(orderRepo order.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

// OrderItemDTO 订单明细响应DTO
type OrderItemDTO struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	ColorName   string `json:"color_name,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

// AddressDTO 收货地址响应DTO
type AddressDTO struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZipCode   string `json:"zip_code"`
}

// OrderDTO 订单响应DTO
type OrderDTO struct {
	ID               uint           `json:"id"`
	OrderNo          string         `json:"order_no"`
	UserID           uint           `json:"user_id"`
	Items            []OrderItemDTO `json:"items"`
	Address          AddressDTO     `json:"address"`
	Subtotal         int64          `json:"subtotal"`
	DeliveryFee      int64          `json:"delivery_fee"`
	TotalAmount      int64          `json:"total_amount"`
	ReferralDiscount int64          `json:"referral_discount"`
	CoinsUsed        int64          `json:"coins_used"`
	FinalAmount      int64          `json:"final_amount"`
	PaymentMethod    string         `json:"payment_method"`
	Status           string         `json:"status"`
	CancelReason     string         `json:"cancel_reason,omitempty"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
}

// toOrderDTO 领域对象 → 响应DTO
func toOrderDTO(o *order.Order) *OrderDTO {
	items := make([]OrderItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemDTO{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ColorName:   it.ColorName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.UnitPrice * int64(it.Quantity),
		}
	}
	return &OrderDTO{
		ID:      o.ID,
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
		Items:   items,
		Address: AddressDTO{
			FirstName: o.Address.FirstName,
			LastName:  o.Address.LastName,
			Email:     o.Address.Email,
			Phone:     o.Address.Phone,
			Address:   o.Address.Address,
			City:      o.Address.City,
			ZipCode:   o.Address.ZipCode,
		},
		Subtotal:         o.Subtotal(),
		DeliveryFee:      o.DeliveryFee,
		TotalAmount:      o.TotalAmount,
		ReferralDiscount: o.ReferralDiscount,
		CoinsUsed:        o.CoinsUsed,
		FinalAmount:      o.FinalAmount,
		PaymentMethod:    o.PaymentMethod,
		Status:           o.Status.Code(),
		CancelReason:     o.CancelReason,
		CreatedAt:        o.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:        o.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Execute 查询订单详情
// 权限规则:买家只能看自己的订单,商家/管理员可看任意订单
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID, actorID uint, actorRole string) (*OrderDTO, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	staff := actorRole == user.RoleSeller || actorRole == user.RoleAdmin
	if !staff && !o.IsOwnedBy(actorID) {
		// 返回404而非403,避免泄露他人订单的存在性
		return nil, order.ErrOrderNotFound
	}

	return toOrderDTO(o), nil
}
