package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/shopmall/internal/domain/referral"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// debitScript 条件化扣减Lua脚本
// 余额充足才扣减,整个判断+扣减在Redis单线程内原子执行,
// 并发下单不会把余额扣成负数
// 返回值:扣减后的余额;-1表示余额不足;-2表示账本不存在
var debitScript = redis.NewScript(`
local balance = redis.call('GET', KEYS[1])
if balance == false then
    return -2
end
balance = tonumber(balance)
local amount = tonumber(ARGV[1])
if balance < amount then
    return -1
end
return redis.call('DECRBY', KEYS[1], amount)
`)

// CoinLedger 推荐金币账本(Redis实现)
// 设计说明:
// 1. 每个用户一个计数键:coins:{userID}
// 2. 扣减用Lua脚本做条件化原子操作(GET+判断+DECRBY一步完成)
// 3. 账本与订单库分离,下单时的扣减由checkout包的Saga补偿兜底
type CoinLedger struct {
	client *redis.Client
}

// NewCoinLedger 创建金币账本
func NewCoinLedger(client *redis.Client) referral.Ledger {
	return &CoinLedger{client: client}
}

// coinKey 账本的Redis键
func (l *CoinLedger) coinKey(userID uint) string {
	return fmt.Sprintf("coins:%d", userID)
}

// Balance 查询实时余额(账本不存在视为0)
func (l *CoinLedger) Balance(ctx context.Context, userID uint) (int64, error) {
	balance, err := l.client.Get(ctx, l.coinKey(userID)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, apperrors.Wrap(err, "查询金币余额失败")
	}
	return balance, nil
}

// Debit 条件化扣减金币
func (l *CoinLedger) Debit(ctx context.Context, userID uint, coins int64) error {
	if coins <= 0 {
		return nil
	}

	result, err := debitScript.Run(ctx, l.client, []string{l.coinKey(userID)}, coins).Int64()
	if err != nil {
		return apperrors.Wrap(err, "扣减金币失败")
	}

	if result < 0 {
		metrics.IncCounterVec(metrics.CoinDebitsTotal, map[string]string{"result": "insufficient"})
		return apperrors.ErrInsufficientCoins
	}
	metrics.IncCounterVec(metrics.CoinDebitsTotal, map[string]string{"result": "success"})
	return nil
}

// Credit 充值/退还金币
func (l *CoinLedger) Credit(ctx context.Context, userID uint, coins int64) error {
	if coins <= 0 {
		return nil
	}

	if err := l.client.IncrBy(ctx, l.coinKey(userID), coins).Err(); err != nil {
		return apperrors.Wrap(err, "退还金币失败")
	}
	return nil
}

// Seed 初始化余额
// SETNX语义:账本已存在时不覆盖(Redis中的余额比用户表更新)
func (l *CoinLedger) Seed(ctx context.Context, userID uint, coins int64) error {
	if coins < 0 {
		coins = 0
	}

	if err := l.client.SetNX(ctx, l.coinKey(userID), coins, 0).Err(); err != nil {
		return apperrors.Wrap(err, "初始化金币账本失败")
	}
	return nil
}
