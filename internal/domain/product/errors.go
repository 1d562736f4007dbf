package product

import (
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// 商品领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.ErrProductNotFound

	// ErrSKUDuplicate SKU重复
	ErrSKUDuplicate = apperrors.ErrSKUDuplicate

	// ErrInvalidVariant 请求的颜色规格不存在
	ErrInvalidVariant = apperrors.ErrInvalidVariant

	// ErrInvalidPrice 目录价格非法(0价/负价脏数据)
	ErrInvalidPrice = apperrors.ErrInvalidPrice

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.ErrOutOfStock
)
