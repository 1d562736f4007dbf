package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. Create/Update在下单和取消事务中调用,必须感知context中的事务DB
type Repository interface {
	// Create 创建订单(包含订单明细,必须在同一事务中)
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatus 更新订单状态与取消原因(订单其余字段创建后不可变)
	// 条件化更新:只有当前状态仍为from时写入才生效,
	// 并发的取消/推进互相竞争时,后提交的一方拿到ErrInvalidStatusTransition
	UpdateStatus(ctx context.Context, order *Order, from Status) error

	// ListByUserID 查询用户的订单列表(分页)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)

	// List 查询全部订单(商家后台用,分页,可按状态过滤)
	List(ctx context.Context, status Status, page, pageSize int) ([]*Order, int64, error)
}
