package order

import (
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.ErrOrderNotFound

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.ErrInvalidTransition

	// ErrInvalidOrderItems 订单明细不能为空
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrEmptyCancelReason 取消订单必须填写原因
	ErrEmptyCancelReason = apperrors.New(apperrors.ErrCodeInvalidParams, "请填写取消原因")

	// ErrIncompleteAddress 收货地址必填字段缺失
	ErrIncompleteAddress = apperrors.New(apperrors.ErrCodeInvalidParams, "收货地址信息不完整")

	// ErrUnsupportedPayment 不支持的支付方式(当前仅支持货到付款)
	ErrUnsupportedPayment = apperrors.New(apperrors.ErrCodeInvalidParams, "暂不支持该支付方式")
)
