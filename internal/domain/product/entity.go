package product

import (
	"time"
)

// ColorVariant 商品颜色规格
// 设计说明:
// 1. 颜色是商品的值对象,没有独立生命周期
// 2. 所有颜色共享商品库存(单库存模型,与卖家后台约定一致)
type ColorVariant struct {
	Name    string // 颜色名称(如 Red)
	HexCode string // 颜色展示值(如 #FF0000)
}

// Product 商品实体(聚合根)
// 设计说明:
// 1. Price使用int64存储最小货币单位,避免浮点精度问题
// 2. DeliveryPrice是商品页展示的单件运费参考价,结算运费由定价引擎统一计算
// 3. Colors为空表示无颜色规格,购买时不允许传颜色
type Product struct {
	ID            uint
	SKU           string // 商品编码(业务主键,全局唯一)
	Name          string
	Description   string
	CoverURL      string
	Price         int64 // 售价(最小货币单位)
	Stock         int   // 库存数量
	DeliveryPrice int64 // 展示用运费参考价
	Colors        []ColorVariant
	SellerID      uint // 发布商品的卖家用户ID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewProduct 创建商品(工厂方法)
func NewProduct(sku, name string, price int64, stock int, sellerID uint) *Product {
	now := time.Now()
	return &Product{
		SKU:       sku,
		Name:      name,
		Price:     price,
		Stock:     stock,
		SellerID:  sellerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasVariants 商品是否有颜色规格
func (p *Product) HasVariants() bool {
	return len(p.Colors) > 0
}

// VariantValid 校验请求的颜色是否合法
// 规则:
// 1. 无规格商品只接受空颜色
// 2. 有规格商品必须传已存在的颜色名("请选择颜色"由接口层提示)
func (p *Product) VariantValid(colorName string) bool {
	if colorName == "" {
		return !p.HasVariants()
	}
	for _, c := range p.Colors {
		if c.Name == colorName {
			return true
		}
	}
	return false
}

// CheckPrice 校验商品价格可售
// 目录数据由卖家后台维护,可能出现0价或负价的脏数据,结算前必须拦截
func (p *Product) CheckPrice() error {
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// InStock 库存是否满足购买数量
func (p *Product) InStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}
