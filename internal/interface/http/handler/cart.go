package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/shopmall/internal/application/cart"
	appcheckout "github.com/xiebiao/shopmall/internal/application/checkout"
	"github.com/xiebiao/shopmall/internal/interface/http/dto"
	"github.com/xiebiao/shopmall/internal/interface/http/middleware"
	"github.com/xiebiao/shopmall/pkg/response"
)

// CartHandler 购物车HTTP处理器
type CartHandler struct {
	addItemUseCase         *appcart.AddItemUseCase
	updateItemUseCase      *appcart.UpdateItemUseCase
	removeItemUseCase      *appcart.RemoveItemUseCase
	toggleSelectionUseCase *appcart.ToggleSelectionUseCase
	listCartUseCase        *appcart.ListCartUseCase
	validator              *appcheckout.PurchaseValidator
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(
	addItemUseCase *appcart.AddItemUseCase,
	updateItemUseCase *appcart.UpdateItemUseCase,
	removeItemUseCase *appcart.RemoveItemUseCase,
	toggleSelectionUseCase *appcart.ToggleSelectionUseCase,
	listCartUseCase *appcart.ListCartUseCase,
	validator *appcheckout.PurchaseValidator,
) *CartHandler {
	return &CartHandler{
		addItemUseCase:         addItemUseCase,
		updateItemUseCase:      updateItemUseCase,
		removeItemUseCase:      removeItemUseCase,
		toggleSelectionUseCase: toggleSelectionUseCase,
		listCartUseCase:        listCartUseCase,
		validator:              validator,
	}
}

// ListCart 查询购物车
// @Summary      查询购物车
// @Description  返回全部条目、勾选状态和已勾选条目的计价预览
// @Tags         购物车模块
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "购物车视图"
// @Failure      401 {object} response.Response "未登录"
// @Router       /cart [get]
func (h *CartHandler) ListCart(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	view, err := h.listCartUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, view)
}

// AddItem 加入购物车
// @Summary      加入购物车
// @Description  同商品同颜色的条目合并数量,并刷新价格快照
// @Tags         购物车模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "加购信息"
// @Success      200 {object} response.Response "加购成功"
// @Failure      400 {object} response.Response "参数错误或颜色规格不存在"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /cart/add [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	line, err := h.addItemUseCase.Execute(c.Request.Context(), appcart.AddItemRequest{
		UserID:    userID,
		ProductID: req.ProductID,
		ColorName: req.ColorName,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"product_id": line.ProductID,
		"color_name": line.ColorName,
		"quantity":   line.Quantity,
		"unit_price": line.UnitPrice,
	})
}

// UpdateItem 修改条目数量
// @Summary      修改购物车条目数量
// @Description  数量必须>=1,减到0请调用移除接口
// @Tags         购物车模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateCartItemRequest true "改量信息"
// @Success      200 {object} response.Response "修改成功"
// @Failure      404 {object} response.Response "条目不存在"
// @Router       /cart/update [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	line, err := h.updateItemUseCase.Execute(c.Request.Context(), appcart.UpdateItemRequest{
		UserID:    userID,
		ProductID: req.ProductID,
		ColorName: req.ColorName,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"product_id": line.ProductID,
		"color_name": line.ColorName,
		"quantity":   line.Quantity,
		"unit_price": line.UnitPrice,
	})
}

// RemoveItem 移除条目
// @Summary      移除购物车条目
// @Description  按商品ID+颜色移除,同时清理勾选键
// @Tags         购物车模块
// @Produce      json
// @Security     BearerAuth
// @Param        productId path int true "商品ID"
// @Param        color query string false "颜色名称"
// @Success      200 {object} response.Response "移除成功"
// @Failure      404 {object} response.Response "条目不存在"
// @Router       /cart/remove/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的商品ID")
		return
	}

	userID := middleware.MustGetUserID(c)

	err = h.removeItemUseCase.Execute(c.Request.Context(), appcart.RemoveItemRequest{
		UserID:    userID,
		ProductID: uint(productID),
		ColorName: c.Query("color"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}

// ToggleSelection 翻转条目勾选状态
// @Summary      翻转结算勾选状态
// @Description  勾选状态服务端持久化,翻转后返回当前状态
// @Tags         购物车模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ToggleSelectionRequest true "条目标识"
// @Success      200 {object} response.Response "翻转成功"
// @Failure      404 {object} response.Response "条目不存在"
// @Router       /cart/toggle-selection [put]
func (h *CartHandler) ToggleSelection(c *gin.Context) {
	var req dto.ToggleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.toggleSelectionUseCase.Execute(c.Request.Context(), appcart.ToggleSelectionRequest{
		UserID:    userID,
		ProductID: req.ProductID,
		ColorName: req.ColorName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ValidateDirectPurchase 立即购买预校验
// @Summary      立即购买预校验
// @Description  校验商品/颜色/库存并返回计价结果,不落任何数据
// @Tags         购物车模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ValidateDirectPurchaseRequest true "购买信息"
// @Success      200 {object} response.Response "校验通过,返回计价"
// @Failure      400 {object} response.Response "库存不足或颜色规格不存在"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /cart/validate-direct-purchase [post]
func (h *CartHandler) ValidateDirectPurchase(c *gin.Context) {
	var req dto.ValidateDirectPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	draft, err := h.validator.ValidateDirectPurchase(
		c.Request.Context(), userID, req.ProductID, req.Quantity, req.ColorName, req.UseCoins)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"subtotal":          draft.Subtotal,
		"delivery_fee":      draft.DeliveryFee,
		"referral_discount": draft.ReferralDiscount,
		"coins_used":        draft.CoinsUsed,
		"total":             draft.Total,
	})
}
