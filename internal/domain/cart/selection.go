package cart

import (
	"context"
)

// SelectionStore 勾选集合存储接口
// 设计说明:
//  1. 勾选状态必须服务端持久化:换设备打开购物车,勾选结果要一致
//  2. Toggle是幂等翻转:对同一键连续调用,每次只翻转一次成员关系,
//     不会产生重复成员(Set语义天然保证)
//  3. 键是否有对应CartLine由应用层校验,存储层只管集合成员关系
type SelectionStore interface {
	// Toggle 翻转键的勾选状态,返回翻转后是否勾选
	Toggle(ctx context.Context, userID uint, key LineKey) (bool, error)

	// Selected 返回用户当前勾选的全部键
	Selected(ctx context.Context, userID uint) ([]LineKey, error)

	// Remove 移除指定键(条目删除或下单消费后调用)
	Remove(ctx context.Context, userID uint, keys []LineKey) error
}
