package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// SelectionStore 结算勾选集合(Redis Set实现)
// 设计说明:
//  1. 每个用户一个Set:cart:selected:{userID},成员是条目键"productID:colorName"
//  2. 勾选状态是会话级的轻量状态,放Redis而非MySQL:
//     翻转操作高频且无需与购物车行在同一事务
//  3. 键不设TTL:勾选状态跟随购物车条目生命周期,
//     条目删除时同步调用Remove清理
type SelectionStore struct {
	client *redis.Client
}

// NewSelectionStore 创建勾选集合存储
func NewSelectionStore(client *redis.Client) *SelectionStore {
	return &SelectionStore{client: client}
}

// selectionKey 勾选集合的Redis键
func (s *SelectionStore) selectionKey(userID uint) string {
	return fmt.Sprintf("cart:selected:%d", userID)
}

// Toggle 翻转条目的勾选状态,返回翻转后是否勾选
// SIsMember+SAdd/SRem,同一用户的操作串行(单浏览器会话),无需原子化
func (s *SelectionStore) Toggle(ctx context.Context, userID uint, key cart.LineKey) (bool, error) {
	redisKey := s.selectionKey(userID)
	member := key.String()

	selected, err := s.client.SIsMember(ctx, redisKey, member).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "查询勾选状态失败")
	}

	if selected {
		if err := s.client.SRem(ctx, redisKey, member).Err(); err != nil {
			return false, apperrors.Wrap(err, "取消勾选失败")
		}
		return false, nil
	}

	if err := s.client.SAdd(ctx, redisKey, member).Err(); err != nil {
		return false, apperrors.Wrap(err, "勾选条目失败")
	}
	return true, nil
}

// Selected 查询用户当前勾选的全部条目键
// 无法反解的成员(历史脏数据)跳过不返回
func (s *SelectionStore) Selected(ctx context.Context, userID uint) ([]cart.LineKey, error) {
	members, err := s.client.SMembers(ctx, s.selectionKey(userID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(err, "查询勾选集合失败")
	}

	keys := make([]cart.LineKey, 0, len(members))
	for _, m := range members {
		key, err := cart.ParseLineKey(m)
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Remove 从勾选集合移除条目键(条目删除或下单成功后调用)
func (s *SelectionStore) Remove(ctx context.Context, userID uint, keys []cart.LineKey) error {
	if len(keys) == 0 {
		return nil
	}

	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k.String()
	}

	if err := s.client.SRem(ctx, s.selectionKey(userID), members...).Err(); err != nil {
		return apperrors.Wrap(err, "清理勾选集合失败")
	}
	return nil
}
