package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/shopmall/internal/domain/order"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// addressRepository 收货地址仓储实现(MySQL)
// 每个用户一条记录,Save使用upsert语义覆盖更新
type addressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *gorm.DB) order.AddressRepository {
	return &addressRepository{db: db}
}

// Save 覆盖保存用户地址
// INSERT ... ON DUPLICATE KEY UPDATE(user_id唯一索引)
// 在下单事务内调用,使用getDB(ctx)参与事务
func (r *addressRepository) Save(ctx context.Context, userID uint, addr order.ShippingAddress) error {
	model := &AddressModel{
		UserID:    userID,
		FirstName: addr.FirstName,
		LastName:  addr.LastName,
		Email:     addr.Email,
		Phone:     addr.Phone,
		Address:   addr.Address,
		City:      addr.City,
		ZipCode:   addr.ZipCode,
	}

	db := r.getDB(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "email", "phone", "address", "city", "zip_code",
		}),
	}).Create(model).Error

	if err != nil {
		return apperrors.Wrap(err, "保存收货地址失败")
	}
	return nil
}

// FindByUser 查询用户最近一次使用的地址
// 无记录时返回(nil, nil),结算页按空地址处理
func (r *addressRepository) FindByUser(ctx context.Context, userID uint) (*order.ShippingAddress, error) {
	var model AddressModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询收货地址失败")
	}

	return &order.ShippingAddress{
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Email:     model.Email,
		Phone:     model.Phone,
		Address:   model.Address,
		City:      model.City,
		ZipCode:   model.ZipCode,
	}, nil
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *addressRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
