package product

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/product"
)

// GetProductUseCase 商品详情查询用例(商品详情页)
type GetProductUseCase struct {
	productService product.Service
}

// NewGetProductUseCase 创建详情查询用例
func NewGetProductUseCase(productService product.Service) *GetProductUseCase {
	return &GetProductUseCase{
		productService: productService,
	}
}

// GetProductResponse 详情响应DTO
type GetProductResponse struct {
	ID            uint              `json:"id"`
	SKU           string            `json:"sku"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	CoverURL      string            `json:"cover_url"`
	Price         int64             `json:"price"`
	Stock         int               `json:"stock"`
	DeliveryPrice int64             `json:"delivery_price"`
	Colors        []ColorVariantDTO `json:"colors"`
	SellerID      uint              `json:"seller_id"`
	CreatedAt     string            `json:"created_at"`
}

// Execute 执行详情查询用例
func (uc *GetProductUseCase) Execute(ctx context.Context, id uint) (*GetProductResponse, error) {
	p, err := uc.productService.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	colors := make([]ColorVariantDTO, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = ColorVariantDTO{Name: c.Name, HexCode: c.HexCode}
	}

	return &GetProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		CoverURL:      p.CoverURL,
		Price:         p.Price,
		Stock:         p.Stock,
		DeliveryPrice: p.DeliveryPrice,
		Colors:        colors,
		SellerID:      p.SellerID,
		CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
