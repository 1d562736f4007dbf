package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appcheckout "github.com/xiebiao/shopmall/internal/application/checkout"
	apporder "github.com/xiebiao/shopmall/internal/application/order"
	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/interface/http/dto"
	"github.com/xiebiao/shopmall/internal/interface/http/middleware"
	"github.com/xiebiao/shopmall/pkg/response"
)

// OrderHandler 订单HTTP处理器
// 两条下单入口(购物车结算/立即购买)和订单生命周期操作都在这里
type OrderHandler struct {
	createOrderUseCase   *appcheckout.CreateOrderUseCase
	getOrderUseCase      *apporder.GetOrderUseCase
	listOrdersUseCase    *apporder.ListOrdersUseCase
	cancelOrderUseCase   *apporder.CancelOrderUseCase
	advanceStatusUseCase *apporder.AdvanceStatusUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrderUseCase *appcheckout.CreateOrderUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
	listOrdersUseCase *apporder.ListOrdersUseCase,
	cancelOrderUseCase *apporder.CancelOrderUseCase,
	advanceStatusUseCase *apporder.AdvanceStatusUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrderUseCase:   createOrderUseCase,
		getOrderUseCase:      getOrderUseCase,
		listOrdersUseCase:    listOrdersUseCase,
		cancelOrderUseCase:   cancelOrderUseCase,
		advanceStatusUseCase: advanceStatusUseCase,
	}
}

// toAddress HTTP地址DTO → 领域值对象
func toAddress(a dto.ShippingAddressDTO) order.ShippingAddress {
	return order.ShippingAddress{
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Phone:     a.Phone,
		Address:   a.Address,
		City:      a.City,
		ZipCode:   a.ZipCode,
	}
}

// CreateOrder 购物车结算下单
// @Summary      购物车结算下单
// @Description  以服务端勾选集合为准结算下单;悲观锁防超卖,金币扣减由Saga补偿兜底
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateOrderRequest true "收货地址与支付方式"
// @Success      200 {object} response.Response "下单成功"
// @Failure      400 {object} response.Response "勾选为空、库存不足或价格已变动"
// @Failure      401 {object} response.Response "未登录"
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.createOrderUseCase.CreateFromCart(c.Request.Context(), appcheckout.CreateFromCartRequest{
		UserID:        userID,
		Address:       toAddress(req.Address),
		PaymentMethod: req.PaymentMethod,
		UseCoins:      req.UseCoins,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateDirectOrder 立即购买下单
// @Summary      立即购买下单
// @Description  绕过购物车直接购买单个商品,走同一条提交管线
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateDirectOrderRequest true "购买信息"
// @Success      200 {object} response.Response "下单成功"
// @Failure      400 {object} response.Response "库存不足、颜色规格不存在或价格已变动"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /orders/direct [post]
func (h *OrderHandler) CreateDirectOrder(c *gin.Context) {
	var req dto.CreateDirectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.createOrderUseCase.CreateDirect(c.Request.Context(), appcheckout.CreateDirectRequest{
		UserID:        userID,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		ColorName:     req.ColorName,
		Address:       toAddress(req.Address),
		PaymentMethod: req.PaymentMethod,
		UseCoins:      req.UseCoins,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetOrder 查询订单详情
// @Summary      查询订单详情
// @Description  买家只能查自己的订单,商家/管理员可查任意订单
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "订单详情"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	userID := middleware.MustGetUserID(c)
	role := middleware.GetRole(c)

	result, err := h.getOrderUseCase.Execute(c.Request.Context(), uint(id), userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOrders 查询订单列表
// @Summary      查询订单列表
// @Description  买家查自己的订单;商家/管理员查全量订单,可按状态过滤
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认10)"
// @Param        status query string false "状态过滤(仅商家视角生效)"
// @Success      200 {object} response.Response "订单列表"
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	userID := middleware.MustGetUserID(c)
	role := middleware.GetRole(c)

	result, err := h.listOrdersUseCase.Execute(c.Request.Context(), apporder.ListOrdersRequest{
		ActorID:   userID,
		ActorRole: role,
		Status:    c.Query("status"),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Description  已送达/已取消的订单不可取消;取消原因必填;回补库存并退还金币
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.CancelOrderRequest true "取消原因"
// @Success      200 {object} response.Response "取消成功"
// @Failure      40002 {object} response.Response "当前状态不可取消"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)
	role := middleware.GetRole(c)

	result, err := h.cancelOrderUseCase.Execute(c.Request.Context(), apporder.CancelOrderRequest{
		OrderID:   uint(id),
		Reason:    req.Reason,
		ActorID:   userID,
		ActorRole: role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AdvanceStatus 推进订单状态
// @Summary      推进订单状态
// @Description  商家/管理员按履约链逐步推进:pending→processing→shipped→delivered
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.AdvanceOrderStatusRequest true "目标状态"
// @Success      200 {object} response.Response "推进成功"
// @Failure      40002 {object} response.Response "非法的状态跳转"
// @Failure      40104 {object} response.Response "无权限"
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	var req dto.AdvanceOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)
	role := middleware.GetRole(c)

	result, err := h.advanceStatusUseCase.Execute(c.Request.Context(), apporder.AdvanceStatusRequest{
		OrderID:   uint(id),
		Target:    req.Status,
		ActorID:   userID,
		ActorRole: role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
