package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/shopmall/internal/domain/order"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计要点:
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// GORM通过foreignKey自动保存关联的Items
// 必须在事务中调用(通过getDB从context获取事务DB)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
	}

	return nil
}

// FindByID 根据ID查找订单(Preload预加载明细)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	db := r.getDB(ctx)
	err := db.Preload("Items").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	db := r.getDB(ctx)
	err := db.Preload("Items").Where("order_no = ?", orderNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// UpdateStatus 条件化更新订单状态
// 订单创建后金额与明细不可变,只更新状态、取消原因和UpdatedAt。
// WHERE带上期望的当前状态,和库存扣减的UpdateStock同一套路:
// 两个并发取消各自读到pending,先提交的生效,
// 后提交的RowsAffected为0,不会重复回补库存
func (r *orderRepository) UpdateStatus(ctx context.Context, o *order.Order, from order.Status) error {
	db := r.getDB(ctx)

	result := db.Model(&OrderModel{}).
		Where("id = ? AND status = ?", o.ID, int(from)).
		Updates(map[string]interface{}{
			"status":        int(o.Status),
			"cancel_reason": o.CancelReason,
			"updated_at":    o.UpdatedAt,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}

	// 调用方都先FindByID过,0行只可能是状态被并发修改
	if result.RowsAffected == 0 {
		return order.ErrInvalidStatusTransition
	}

	return nil
}

// ListByUserID 查询用户的订单列表(分页,按创建时间倒序)
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	db := r.getDB(ctx)
	query := db.Model(&OrderModel{}).Where("user_id = ?", userID)

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	// 分页查询(包含明细)
	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}

	return orders, total, nil
}

// List 查询全部订单(商家后台用,分页,可按状态过滤)
func (r *orderRepository) List(ctx context.Context, status order.Status, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	db := r.getDB(ctx)
	query := db.Model(&OrderModel{})

	// 状态过滤(零值表示不过滤)
	if status != 0 {
		query = query.Where("status = ?", int(status))
	}

	// 查询总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	// 分页查询(包含明细)
	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}

	return orders, total, nil
}

// =========================================
// 辅助函数:模型转换
// =========================================

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemModel{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ColorName:   it.ColorName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return &OrderModel{
		ID:               o.ID,
		OrderNo:          o.OrderNo,
		UserID:           o.UserID,
		TotalAmount:      o.TotalAmount,
		DeliveryFee:      o.DeliveryFee,
		ReferralDiscount: o.ReferralDiscount,
		CoinsUsed:        o.CoinsUsed,
		FinalAmount:      o.FinalAmount,
		PaymentMethod:    o.PaymentMethod,
		Status:           int(o.Status),
		CancelReason:     o.CancelReason,
		AddrFirstName:    o.Address.FirstName,
		AddrLastName:     o.Address.LastName,
		AddrEmail:        o.Address.Email,
		AddrPhone:        o.Address.Phone,
		AddrAddress:      o.Address.Address,
		AddrCity:         o.Address.City,
		AddrZipCode:      o.Address.ZipCode,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, it := range model.Items {
		items[i] = order.OrderItem{
			ID:          it.ID,
			OrderID:     it.OrderID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			ColorName:   it.ColorName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return &order.Order{
		ID:      model.ID,
		OrderNo: model.OrderNo,
		UserID:  model.UserID,
		Items:   items,
		Address: order.ShippingAddress{
			FirstName: model.AddrFirstName,
			LastName:  model.AddrLastName,
			Email:     model.AddrEmail,
			Phone:     model.AddrPhone,
			Address:   model.AddrAddress,
			City:      model.AddrCity,
			ZipCode:   model.AddrZipCode,
		},
		TotalAmount:      model.TotalAmount,
		DeliveryFee:      model.DeliveryFee,
		ReferralDiscount: model.ReferralDiscount,
		CoinsUsed:        model.CoinsUsed,
		FinalAmount:      model.FinalAmount,
		PaymentMethod:    model.PaymentMethod,
		Status:           order.Status(model.Status),
		CancelReason:     model.CancelReason,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value("tx").(*gorm.DB); ok {
		return tx
	}
	return r.db
}
