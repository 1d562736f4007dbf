package product

import (
	"context"

	"github.com/xiebiao/shopmall/internal/domain/product"
)

// PublishProductUseCase 商品上架用例(卖家后台)
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO(Data Transfer Object),与HTTP层解耦
// 3. 参数合法性校验(SKU/价格/颜色去重)由领域服务负责
type PublishProductUseCase struct {
	productService product.Service
}

// NewPublishProductUseCase 创建上架用例
func NewPublishProductUseCase(productService product.Service) *PublishProductUseCase {
	return &PublishProductUseCase{
		productService: productService,
	}
}

// ColorVariantDTO 颜色规格DTO
type ColorVariantDTO struct {
	Name    string `json:"name"`
	HexCode string `json:"hex_code"`
}

// PublishProductRequest 上架请求DTO
type PublishProductRequest struct {
	SKU           string            // 商品编码
	Name          string            // 商品名称
	Description   string            // 商品描述
	CoverURL      string            // 主图URL
	Price         int64             // 售价(最小货币单位)
	Stock         int               // 初始库存
	DeliveryPrice int64             // 展示用运费参考价
	Colors        []ColorVariantDTO // 颜色规格(可为空)
	SellerID      uint              // 卖家用户ID(从认证中间件获取)
}

// PublishProductResponse 上架响应DTO
type PublishProductResponse struct {
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

// Execute 执行上架用例
func (uc *PublishProductUseCase) Execute(ctx context.Context, req PublishProductRequest) (*PublishProductResponse, error) {
	colors := make([]product.ColorVariant, len(req.Colors))
	for i, c := range req.Colors {
		colors[i] = product.ColorVariant{Name: c.Name, HexCode: c.HexCode}
	}

	p := product.NewProduct(req.SKU, req.Name, req.Price, req.Stock, req.SellerID)
	p.Description = req.Description
	p.CoverURL = req.CoverURL
	p.DeliveryPrice = req.DeliveryPrice
	p.Colors = colors

	created, err := uc.productService.Publish(ctx, p)
	if err != nil {
		return nil, err
	}

	return &PublishProductResponse{
		ID:            created.ID,
		SKU:           created.SKU,
		Name:          created.Name,
		Description:   created.Description,
		CoverURL:      created.CoverURL,
		Price:         created.Price,
		Stock:         created.Stock,
		DeliveryPrice: created.DeliveryPrice,
		Colors:        req.Colors,
		SellerID:      created.SellerID,
		CreatedAt:     created.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
