package order

import (
	"context"
)

// AddressRepository 收货地址仓储接口
// 每个用户只保留一条地址记录:下单时覆盖保存,
// 下次结算预填最近一次使用的地址
type AddressRepository interface {
	// Save 覆盖保存用户地址(不存在则创建,存在则更新)
	Save(ctx context.Context, userID uint, addr ShippingAddress) error

	// FindByUser 查询用户最近一次使用的地址(无记录返回nil,不报错)
	FindByUser(ctx context.Context, userID uint) (*ShippingAddress, error)
}
