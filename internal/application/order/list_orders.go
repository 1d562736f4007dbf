package order

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/user"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// ListOrdersUseCase 订单列表用例
// 同一个用例服务两个视角:
// - 买家:只看自己的订单(历史订单页)
// - 商家/管理员:看全量订单,可按状态过滤(后台订单管理)
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// ListOrdersRequest 订单列表请求DTO
type ListOrdersRequest struct {
	ActorID   uint
	ActorRole string
	Status    string // 状态过滤(仅商家视角生效,空=全部)
	Page      int
	PageSize  int
}

// ListOrdersResponse 订单列表响应DTO
type ListOrdersResponse struct {
	Orders   []*OrderDTO `json:"orders"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Execute 查询订单列表(分页,按创建时间倒序)
func (uc *ListOrdersUseCase) Execute(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 10
	}

	var (
		orders []*order.Order
		total  int64
		err    error
	)

	staff := req.ActorRole == user.RoleSeller || req.ActorRole == user.RoleAdmin
	if staff {
		var status order.Status // 零值=不过滤
		if req.Status != "" {
			s, ok := order.ParseStatus(req.Status)
			if !ok {
				return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "无效的订单状态")
			}
			status = s
		}
		orders, total, err = uc.orderRepo.List(ctx, status, req.Page, req.PageSize)
	} else {
		orders, total, err = uc.orderRepo.ListByUserID(ctx, req.ActorID, req.Page, req.PageSize)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]*OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = toOrderDTO(o)
	}

	return &ListOrdersResponse{
		Orders:   dtos,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
