package cart

import (
	"context"
)

// Repository 购物车仓储接口(依赖倒置)
// 设计说明:
// 1. 购物车是买家单人持有的可变状态,不需要跨请求锁
// 2. DeleteByKeys在下单事务内调用,必须感知context中的事务DB
type Repository interface {
	// Create 新增条目
	Create(ctx context.Context, line *CartLine) error

	// Update 更新条目(数量/价格快照)
	Update(ctx context.Context, line *CartLine) error

	// FindByUser 查询用户的全部条目
	FindByUser(ctx context.Context, userID uint) ([]*CartLine, error)

	// FindByKey 按身份键查询单个条目
	FindByKey(ctx context.Context, userID uint, key LineKey) (*CartLine, error)

	// DeleteByKey 删除单个条目
	DeleteByKey(ctx context.Context, userID uint, key LineKey) error

	// DeleteByKeys 批量删除条目(下单成功后清除已购买的条目)
	DeleteByKeys(ctx context.Context, userID uint, keys []LineKey) error
}
