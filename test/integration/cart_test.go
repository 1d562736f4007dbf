package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 购物车模块集成测试
//
// 覆盖的关键点：
// 1. 条目身份 = 商品ID + 颜色(同商品不同颜色是两个条目)
// 2. 重复加购合并数量
// 3. 勾选状态服务端持久化(Redis Set)
// 4. 立即购买预校验只报价不落数据

// TestCartFlow 测试购物车完整流程
func TestCartFlow(t *testing.T) {
	sellerToken := LoginTestSeller(t)
	_, buyerToken := RegisterTestUser(t, "cart_user")

	productID := PublishTestProduct(t, sellerToken, "购物车测试键盘", 10000, 30, "黑色", "白色")

	t.Run("加入购物车", func(t *testing.T) {
		addReq := map[string]interface{}{
			"product_id": productID,
			"quantity":   2,
			"color_name": "黑色",
		}

		resp := PostJSON(t, BaseURL+"/cart/add", addReq, buyerToken)
		require.Equal(t, 0, resp.Code, "加购应该成功: %s", resp.Message)
	})

	t.Run("重复加购合并数量", func(t *testing.T) {
		addReq := map[string]interface{}{
			"product_id": productID,
			"quantity":   3,
			"color_name": "黑色",
		}

		resp := PostJSON(t, BaseURL+"/cart/add", addReq, buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		var line CartLineData
		err := json.Unmarshal(resp.Data, &line)
		require.NoError(t, err)
		assert.Equal(t, 5, line.Quantity, "2+3应该合并为5")
	})

	t.Run("同商品不同颜色是独立条目", func(t *testing.T) {
		addReq := map[string]interface{}{
			"product_id": productID,
			"quantity":   1,
			"color_name": "白色",
		}

		resp := PostJSON(t, BaseURL+"/cart/add", addReq, buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		listResp := GetJSON(t, BaseURL+"/cart", buyerToken)
		require.Equal(t, 0, listResp.Code)

		var view CartViewData
		err := json.Unmarshal(listResp.Data, &view)
		require.NoError(t, err)
		assert.Len(t, view.Lines, 2, "黑色和白色是两个条目")
	})

	t.Run("不存在的颜色被拒绝", func(t *testing.T) {
		addReq := map[string]interface{}{
			"product_id": productID,
			"quantity":   1,
			"color_name": "金色",
		}

		resp := PostJSON(t, BaseURL+"/cart/add", addReq, buyerToken)
		assert.NotEqual(t, 0, resp.Code, "颜色不存在应该失败")
	})

	t.Run("修改数量", func(t *testing.T) {
		updateReq := map[string]interface{}{
			"product_id": productID,
			"quantity":   4,
			"color_name": "黑色",
		}

		resp := PutJSON(t, BaseURL+"/cart/update", updateReq, buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		var line CartLineData
		err := json.Unmarshal(resp.Data, &line)
		require.NoError(t, err)
		assert.Equal(t, 4, line.Quantity)
	})

	t.Run("勾选后购物车返回计价预览", func(t *testing.T) {
		toggleReq := map[string]interface{}{
			"product_id": productID,
			"color_name": "黑色",
		}

		resp := PutJSON(t, BaseURL+"/cart/toggle-selection", toggleReq, buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		listResp := GetJSON(t, BaseURL+"/cart", buyerToken)
		require.Equal(t, 0, listResp.Code)

		var view CartViewData
		err := json.Unmarshal(listResp.Data, &view)
		require.NoError(t, err)

		assert.Equal(t, int64(40000), view.Subtotal, "勾选了黑色x4,单价10000")
		assert.Zero(t, view.DeliveryFee, "超过免邮门槛")

		// 再翻转一次恢复未勾选
		resp = PutJSON(t, BaseURL+"/cart/toggle-selection", toggleReq, buyerToken)
		require.Equal(t, 0, resp.Code)
	})

	t.Run("移除条目", func(t *testing.T) {
		url := fmt.Sprintf("%s/cart/remove/%d?color=%s", BaseURL, productID, "白色")
		resp := DeleteJSON(t, url, buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		listResp := GetJSON(t, BaseURL+"/cart", buyerToken)
		var view CartViewData
		err := json.Unmarshal(listResp.Data, &view)
		require.NoError(t, err)
		assert.Len(t, view.Lines, 1, "只剩黑色条目")
	})

	t.Run("未登录不能访问购物车", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/cart", "")
		assert.NotEqual(t, 0, resp.Code)
	})
}

// TestValidateDirectPurchase 测试立即购买预校验
func TestValidateDirectPurchase(t *testing.T) {
	sellerToken := LoginTestSeller(t)
	_, buyerToken := RegisterTestUser(t, "quote_user")

	productID := PublishTestProduct(t, sellerToken, "报价测试商品", 2500, 5)

	t.Run("正常报价", func(t *testing.T) {
		req := map[string]interface{}{
			"product_id": productID,
			"quantity":   2,
		}

		resp := PostJSON(t, BaseURL+"/cart/validate-direct-purchase", req, buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		var quote struct {
			Subtotal    int64 `json:"subtotal"`
			DeliveryFee int64 `json:"delivery_fee"`
			Total       int64 `json:"total"`
		}
		err := json.Unmarshal(resp.Data, &quote)
		require.NoError(t, err)

		assert.Equal(t, int64(5000), quote.Subtotal)
		assert.Equal(t, quote.Subtotal+quote.DeliveryFee, quote.Total)
	})

	t.Run("超过库存报错", func(t *testing.T) {
		req := map[string]interface{}{
			"product_id": productID,
			"quantity":   6,
		}

		resp := PostJSON(t, BaseURL+"/cart/validate-direct-purchase", req, buyerToken)
		assert.NotEqual(t, 0, resp.Code, "库存只有5")
	})

	t.Run("预校验不扣库存", func(t *testing.T) {
		detailResp := GetJSON(t, fmt.Sprintf("%s/products/%d", BaseURL, productID), "")
		require.Equal(t, 0, detailResp.Code)

		var data ProductData
		err := json.Unmarshal(detailResp.Data, &data)
		require.NoError(t, err)
		assert.Equal(t, 5, data.Stock, "报价不产生任何副作用")
	})
}
