package cart

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LineKey 购物车条目身份键
// 设计说明:
// 1. 同一商品的不同颜色是不同的条目(productID + colorName唯一确定一行)
// 2. 无颜色商品的键中颜色部分为空
// 3. 键同时作为勾选集合(Redis Set)的成员,必须可序列化且可逆
type LineKey struct {
	ProductID uint
	ColorName string
}

// NewLineKey 构造身份键
func NewLineKey(productID uint, colorName string) LineKey {
	return LineKey{ProductID: productID, ColorName: colorName}
}

// String 序列化为"productID:colorName"形式
// 颜色名中不允许出现冒号(接口层已限制),因此可以安全反解
func (k LineKey) String() string {
	return fmt.Sprintf("%d:%s", k.ProductID, k.ColorName)
}

// ParseLineKey 反序列化身份键
func ParseLineKey(s string) (LineKey, error) {
	idx := strings.IndexByte(s, ':')
	if idx <= 0 {
		return LineKey{}, fmt.Errorf("非法的条目键: %q", s)
	}
	id, err := strconv.ParseUint(s[:idx], 10, 64)
	if err != nil {
		return LineKey{}, fmt.Errorf("非法的条目键: %q", s)
	}
	return LineKey{ProductID: uint(id), ColorName: s[idx+1:]}, nil
}

// CartLine 购物车条目实体
// 设计说明:
//  1. UnitPrice是加购时的价格快照,仅用于购物车页展示
//     结算金额一律以目录实时价格为准(定价策略见checkout包)
//  2. Quantity恒>=1,减到0通过删除条目表达,不存在0数量的行
type CartLine struct {
	ID        uint
	UserID    uint
	ProductID uint
	ColorName string // 为空表示无颜色规格
	Quantity  int
	UnitPrice int64 // 加购时价格快照
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCartLine 创建购物车条目(工厂方法)
func NewCartLine(userID, productID uint, colorName string, quantity int, unitPrice int64) (*CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	now := time.Now()
	return &CartLine{
		UserID:    userID,
		ProductID: productID,
		ColorName: colorName,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Key 返回条目身份键
func (l *CartLine) Key() LineKey {
	return NewLineKey(l.ProductID, l.ColorName)
}

// Merge 合并加购数量(同一身份键重复加购时)
// 同时刷新价格快照为最新目录价
func (l *CartLine) Merge(quantity int, unitPrice int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	l.Quantity += quantity
	l.UnitPrice = unitPrice
	l.UpdatedAt = time.Now()
	return nil
}

// SetQuantity 设置数量
func (l *CartLine) SetQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	l.Quantity = quantity
	l.UpdatedAt = time.Now()
	return nil
}
