package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// cartRepository 购物车仓储实现(MySQL)
// 设计说明:
// 1. (user_id, product_id, color_name)唯一索引保证同键条目只有一行
// 2. DeleteByKeys在下单事务内调用,使用getDB(ctx)参与事务
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// Create 新增条目
func (r *cartRepository) Create(ctx context.Context, line *cart.CartLine) error {
	model := &CartItemModel{
		UserID:    line.UserID,
		ProductID: line.ProductID,
		ColorName: line.ColorName,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		// 并发加购同一条目时撞唯一索引,上层用例会先查再插,
		// 这里兜底转换为业务错误
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeBusinessError, "条目已存在,请重试")
		}
		return apperrors.Wrap(err, "加入购物车失败")
	}

	line.ID = model.ID
	line.CreatedAt = model.CreatedAt
	line.UpdatedAt = model.UpdatedAt
	return nil
}

// Update 更新条目(数量/价格快照)
func (r *cartRepository) Update(ctx context.Context, line *cart.CartLine) error {
	result := r.db.WithContext(ctx).Model(&CartItemModel{}).
		Where("id = ?", line.ID).
		Updates(map[string]interface{}{
			"quantity":   line.Quantity,
			"unit_price": line.UnitPrice,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新购物车失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrLineMissing
	}
	return nil
}

// FindByUser 查询用户的全部条目(按加购时间正序,购物车页展示顺序稳定)
func (r *cartRepository) FindByUser(ctx context.Context, userID uint) ([]*cart.CartLine, error) {
	var models []CartItemModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}

	lines := make([]*cart.CartLine, len(models))
	for i := range models {
		lines[i] = toCartLineEntity(&models[i])
	}
	return lines, nil
}

// FindByKey 按身份键查询单个条目
func (r *cartRepository) FindByKey(ctx context.Context, userID uint, key cart.LineKey) (*cart.CartLine, error) {
	var model CartItemModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND color_name = ?", userID, key.ProductID, key.ColorName).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrLineMissing
		}
		return nil, apperrors.Wrap(err, "查询购物车条目失败")
	}

	return toCartLineEntity(&model), nil
}

// DeleteByKey 删除单个条目
func (r *cartRepository) DeleteByKey(ctx context.Context, userID uint, key cart.LineKey) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND color_name = ?", userID, key.ProductID, key.ColorName).
		Delete(&CartItemModel{})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除购物车条目失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrLineMissing
	}
	return nil
}

// DeleteByKeys 批量删除条目(下单成功后清除已购买的条目)
// 在下单事务内调用,使用getDB(ctx)参与事务
func (r *cartRepository) DeleteByKeys(ctx context.Context, userID uint, keys []cart.LineKey) error {
	if len(keys) == 0 {
		return nil
	}

	db := r.getDB(ctx)
	query := db.Where("user_id = ?", userID)

	// (product_id, color_name)成对匹配
	cond := db.Session(&gorm.Session{NewDB: true})
	orCond := cond
	for i, key := range keys {
		if i == 0 {
			orCond = cond.Where("product_id = ? AND color_name = ?", key.ProductID, key.ColorName)
		} else {
			orCond = orCond.Or("product_id = ? AND color_name = ?", key.ProductID, key.ColorName)
		}
	}

	if err := query.Where(orCond).Delete(&CartItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "清除购物车条目失败")
	}
	return nil
}

// toCartLineEntity GORM模型 → 领域实体
func toCartLineEntity(model *CartItemModel) *cart.CartLine {
	return &cart.CartLine{
		ID:        model.ID,
		UserID:    model.UserID,
		ProductID: model.ProductID,
		ColorName: model.ColorName,
		Quantity:  model.Quantity,
		UnitPrice: model.UnitPrice,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *cartRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
