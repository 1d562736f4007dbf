package product

import (
	"context"

	apperrors "github.com/xiebiao/shopmall/pkg/errors"
)

// Service 商品领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务规则校验(上架参数、颜色规格去重)
// 2. 不依赖具体的Repository实现(依赖倒置)
type Service interface {
	// Publish 发布商品(上架)
	// 业务规则:
	// - SKU不能为空且不能重复
	// - 价格必须在1-99999999之间
	// - 库存必须>=0
	// - 颜色规格名称不能重复
	Publish(ctx context.Context, p *Product) (*Product, error)

	// GetByID 根据ID获取商品详情
	GetByID(ctx context.Context, id uint) (*Product, error)

	// List 分页查询商品列表(公开接口)
	List(ctx context.Context, params ListParams) ([]*Product, int64, error)
}

type service struct {
	repo Repository
}

// NewService 创建商品领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Publish 发布商品
func (s *service) Publish(ctx context.Context, p *Product) (*Product, error) {
	// 1. 基础参数校验
	if p.SKU == "" || len(p.SKU) > 64 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "SKU不能为空且不超过64个字符")
	}
	if p.Name == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "商品名称不能为空")
	}

	// 2. 价格范围校验
	if p.Price < 1 || p.Price > 99999999 {
		return nil, ErrInvalidPrice
	}

	// 3. 库存校验
	if p.Stock < 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")
	}

	// 4. 颜色规格去重校验
	seen := make(map[string]struct{}, len(p.Colors))
	for _, c := range p.Colors {
		if c.Name == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "颜色名称不能为空")
		}
		if _, ok := seen[c.Name]; ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "颜色规格重复: "+c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	// 5. 持久化(SKU唯一性由数据库UNIQUE索引兜底)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetByID 根据ID获取商品详情
func (s *service) GetByID(ctx context.Context, id uint) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

// List 分页查询商品列表
func (s *service) List(ctx context.Context, params ListParams) ([]*Product, int64, error) {
	// 分页参数兜底
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}
	return s.repo.List(ctx, params)
}
