package order

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/user"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// AdvanceStatusUseCase 推进订单状态用例(商家后台)
// 履约链:pending → processing → shipped → delivered
// 只允许一步一步向前推,不允许跳级、不允许回退
type AdvanceStatusUseCase struct {
	orderRepo order.Repository
}

// NewAdvanceStatusUseCase 创建推进状态用例
func NewAdvanceStatusUseCase(orderRepo order.Repository) *AdvanceStatusUseCase {
	return &AdvanceStatusUseCase{orderRepo: orderRepo}
}

// AdvanceStatusRequest 推进状态请求DTO
type AdvanceStatusRequest struct {
	OrderID   uint
	Target    string // 目标状态(pending/processing/shipped/delivered)
	ActorID   uint
	ActorRole string
}

// Execute 推进订单状态
// 状态机校验在领域层(Order.Advance),这里只做权限与参数解析
func (uc *AdvanceStatusUseCase) Execute(ctx context.Context, req AdvanceStatusRequest) (*OrderDTO, error) {
	if req.ActorRole != user.RoleSeller && req.ActorRole != user.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	target, ok := order.ParseStatus(req.Target)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "无效的订单状态")
	}

	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	from := o.Status
	if err := o.Advance(target); err != nil {
		return nil, err
	}

	// 条件化写入,防止与并发取消互相覆盖
	if err := uc.orderRepo.UpdateStatus(ctx, o, from); err != nil {
		return nil, err
	}

	return toOrderDTO(o), nil
}
