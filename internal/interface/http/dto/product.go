package dto

// ColorVariantRequest HTTP层颜色规格
type ColorVariantRequest struct {
	Name    string `json:"name" binding:"required,max=50,excludes=:"`
	HexCode string `json:"hex_code" binding:"max=16"`
}

// PublishProductRequest HTTP层商品上架请求
type PublishProductRequest struct {
	SKU           string                `json:"sku" binding:"required,max=64"`
	Name          string                `json:"name" binding:"required,max=200"`
	Description   string                `json:"description" binding:"max=5000"`
	CoverURL      string                `json:"cover_url" binding:"max=500"`
	Price         int64                 `json:"price" binding:"required,min=1,max=99999999"`
	Stock         int                   `json:"stock" binding:"min=0"`
	DeliveryPrice int64                 `json:"delivery_price" binding:"min=0"`
	Colors        []ColorVariantRequest `json:"colors" binding:"dive"`
}

// ListProductsRequest HTTP层商品列表查询参数
type ListProductsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Keyword  string `form:"keyword"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=price_asc price_desc created_at_desc"`
}
