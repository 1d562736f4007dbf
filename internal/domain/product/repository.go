package product

import (
	"context"
)

// ListParams 商品列表查询参数
type ListParams struct {
	Page     int
	PageSize int
	Keyword  string // 搜索名称/SKU
	SortBy   string // price_asc | price_desc | created_at_desc
}

// Repository 商品仓储接口(依赖倒置)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. LockByID/UpdateStock供下单事务使用,必须感知context中的事务DB
type Repository interface {
	// Create 创建商品(包含颜色规格)
	Create(ctx context.Context, p *Product) error

	// FindByID 根据ID查找商品(包含颜色规格)
	FindByID(ctx context.Context, id uint) (*Product, error)

	// FindByIDs 批量查找商品(购物车结算校验用)
	FindByIDs(ctx context.Context, ids []uint) (map[uint]*Product, error)

	// List 分页查询商品列表
	List(ctx context.Context, params ListParams) ([]*Product, int64, error)

	// LockByID 悲观锁查询商品(SELECT FOR UPDATE,下单事务内使用)
	LockByID(ctx context.Context, id uint) (*Product, error)

	// UpdateStock 条件化增减库存
	// delta为负时扣减,内部保证 stock + delta >= 0,否则返回ErrInsufficientStock
	UpdateStock(ctx context.Context, id uint, delta int) error
}
