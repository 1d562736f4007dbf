package cart

import (
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// 购物车领域错误定义
var (
	// ErrLineMissing 购物车中没有对应条目
	ErrLineMissing = apperrors.ErrCartLineMissing

	// ErrInvalidQuantity 数量必须>=1
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrEmptySelection 没有勾选任何条目
	ErrEmptySelection = apperrors.ErrEmptySelection
)
