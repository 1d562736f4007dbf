package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appproduct "github.com/xiebiao/shopmall/internal/application/product"
	"github.com/xiebiao/shopmall/internal/interface/http/dto"
	"github.com/xiebiao/shopmall/internal/interface/http/middleware"
	"github.com/xiebiao/shopmall/pkg/response"
)

// ProductHandler 商品HTTP处理器
type ProductHandler struct {
	publishProductUseCase *appproduct.PublishProductUseCase
	listProductsUseCase   *appproduct.ListProductsUseCase
	getProductUseCase     *appproduct.GetProductUseCase
}

// NewProductHandler 创建商品处理器
func NewProductHandler(
	publishProductUseCase *appproduct.PublishProductUseCase,
	listProductsUseCase *appproduct.ListProductsUseCase,
	getProductUseCase *appproduct.GetProductUseCase,
) *ProductHandler {
	return &ProductHandler{
		publishProductUseCase: publishProductUseCase,
		listProductsUseCase:   listProductsUseCase,
		getProductUseCase:     getProductUseCase,
	}
}

// PublishProduct 商品上架
// @Summary      商品上架
// @Description  卖家上架商品(需要seller/admin角色),SKU全局唯一
// @Tags         商品模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishProductRequest true "商品信息"
// @Success      200 {object} response.Response "上架成功"
// @Failure      400 {object} response.Response "参数错误(如价格超出范围、颜色重复)"
// @Failure      401 {object} response.Response "未登录"
// @Failure      40104 {object} response.Response "无权限"
// @Failure      40004 {object} response.Response "SKU重复"
// @Router       /products [post]
func (h *ProductHandler) PublishProduct(c *gin.Context) {
	var req dto.PublishProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	sellerID := middleware.MustGetUserID(c)

	colors := make([]appproduct.ColorVariantDTO, len(req.Colors))
	for i, color := range req.Colors {
		colors[i] = appproduct.ColorVariantDTO{
			Name:    color.Name,
			HexCode: color.HexCode,
		}
	}

	result, err := h.publishProductUseCase.Execute(c.Request.Context(), appproduct.PublishProductRequest{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		CoverURL:      req.CoverURL,
		Price:         req.Price,
		Stock:         req.Stock,
		DeliveryPrice: req.DeliveryPrice,
		Colors:        colors,
		SellerID:      sellerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListProducts 商品列表
// @Summary      商品列表查询
// @Description  分页查询商品,支持关键词搜索(名称/SKU)和排序
// @Tags         商品模块
// @Produce      json
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20,最大100)"
// @Param        keyword query string false "搜索关键词"
// @Param        sort_by query string false "排序(price_asc/price_desc/created_at_desc)"
// @Success      200 {object} response.Response "商品列表"
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var req dto.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listProductsUseCase.Execute(c.Request.Context(), appproduct.ListProductsRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		SortBy:   req.SortBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetProduct 商品详情
// @Summary      商品详情查询
// @Description  返回商品完整信息,包含颜色规格列表
// @Tags         商品模块
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response "商品详情"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的商品ID")
		return
	}

	result, err := h.getProductUseCase.Execute(c.Request.Context(), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
