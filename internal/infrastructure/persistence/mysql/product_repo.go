package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/shopmall/internal/domain/product"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/product/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如SKU重复),转换为业务错误
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// Create 创建商品(颜色规格随商品一起写入)
func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	// 1. 领域实体 → GORM模型
	model := &ProductModel{
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		CoverURL:      p.CoverURL,
		Price:         p.Price,
		Stock:         p.Stock,
		DeliveryPrice: p.DeliveryPrice,
		SellerID:      p.SellerID,
	}
	for _, c := range p.Colors {
		model.Colors = append(model.Colors, ProductColorModel{
			Name:    c.Name,
			HexCode: c.HexCode,
		})
	}

	// 2. 插入数据库(GORM的关联写入会同时插入product_colors)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		// 检查是否为SKU重复错误
		if isDuplicateError(err) {
			return product.ErrSKUDuplicate
		}
		return apperrors.Wrap(err, "创建商品失败")
	}

	// 3. 回填自增ID
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找商品(包含颜色规格)
func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).Preload("Colors").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// FindByIDs 批量查找商品(购物车结算校验用)
// 返回map便于调用方按ID取商品;缺失的ID不在map中,由调用方判定
func (r *productRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	if len(ids) == 0 {
		return map[uint]*product.Product{}, nil
	}

	var models []ProductModel
	err := r.db.WithContext(ctx).Preload("Colors").Where("id IN ?", ids).Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "批量查询商品失败")
	}

	result := make(map[uint]*product.Product, len(models))
	for i := range models {
		result[models[i].ID] = toProductEntity(&models[i])
	}
	return result, nil
}

// List 分页查询商品列表
func (r *productRepository) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	var models []ProductModel
	var total int64

	// 构建查询
	query := r.db.WithContext(ctx).Model(&ProductModel{})

	// 关键词搜索(搜索名称、SKU)
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", keyword, keyword)
	}

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品总数失败")
	}

	// 排序
	switch params.SortBy {
	case "price_asc":
		query = query.Order("price ASC")
	case "price_desc":
		query = query.Order("price DESC")
	case "created_at_desc":
		query = query.Order("created_at DESC")
	default:
		query = query.Order("created_at DESC") // 默认按创建时间降序
	}

	// 分页
	offset := (params.Page - 1) * params.PageSize
	query = query.Limit(params.PageSize).Offset(offset)

	// 查询数据
	if err := query.Preload("Colors").Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品列表失败")
	}

	// 转换为领域实体
	products := make([]*product.Product, len(models))
	for i := range models {
		products[i] = toProductEntity(&models[i])
	}

	return products, total, nil
}

// LockByID 悲观锁查询商品(用于订单创建)
// SELECT FOR UPDATE锁定行,必须使用getDB(ctx)从context获取事务DB
func (r *productRepository) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Colors").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "锁定商品失败")
	}

	return toProductEntity(&model), nil
}

// UpdateStock 条件化增减库存(原子操作)
// UPDATE products SET stock = stock + delta WHERE id = ? AND stock + delta >= 0
func (r *productRepository) UpdateStock(ctx context.Context, id uint, delta int) error {
	db := r.getDB(ctx)
	result := db.Model(&ProductModel{}).
		Where("id = ?", id).
		Where("stock + ? >= 0", delta). // 防止库存为负
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是商品不存在,或者库存不足
		// 再查一次确定原因
		var model ProductModel
		db := r.getDB(ctx)
		if err := db.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return apperrors.Wrap(err, "查询商品失败")
		}
		// 商品存在,说明是库存不足
		return product.ErrInsufficientStock
	}

	return nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toProductEntity GORM模型 → 领域实体
func toProductEntity(model *ProductModel) *product.Product {
	colors := make([]product.ColorVariant, len(model.Colors))
	for i, c := range model.Colors {
		colors[i] = product.ColorVariant{
			Name:    c.Name,
			HexCode: c.HexCode,
		}
	}
	return &product.Product{
		ID:            model.ID,
		SKU:           model.SKU,
		Name:          model.Name,
		Description:   model.Description,
		CoverURL:      model.CoverURL,
		Price:         model.Price,
		Stock:         model.Stock,
		DeliveryPrice: model.DeliveryPrice,
		Colors:        colors,
		SellerID:      model.SellerID,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
