package referral

import (
	"context"
)

// Ledger 推荐金币账本接口
// 设计说明:
//  1. 金币余额是两大竞争资源之一(另一个是库存),扣减必须是条件化原子操作
//  2. 账本独立于订单库(Redis实现),因此下单时的扣减无法纳入数据库事务,
//     由checkout包的Saga负责失败补偿(退还金币)
type Ledger interface {
	// Balance 查询实时余额
	Balance(ctx context.Context, userID uint) (int64, error)

	// Debit 条件化扣减:余额不足时返回ErrInsufficientCoins,不产生负余额
	Debit(ctx context.Context, userID uint, coins int64) error

	// Credit 充值/退还金币(取消订单、下单失败补偿)
	Credit(ctx context.Context, userID uint, coins int64) error

	// Seed 初始化余额(仅当账本键不存在时写入,登录时从用户表同步)
	Seed(ctx context.Context, userID uint, coins int64) error
}
