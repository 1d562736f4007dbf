package integration

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 订单模块集成测试
//
// 订单是本项目的核心，覆盖以下关键技术点：
// 1. 购物车结算与立即购买两条下单路径
// 2. 悲观锁防超卖（SELECT FOR UPDATE + 条件化扣减）
// 3. 下单事务：订单落库 + 扣库存 + 清购物车的原子性
// 4. 订单状态机与角色控制

func addAndSelect(t *testing.T, buyerToken string, productID uint, quantity int, colorName string) {
	addReq := map[string]interface{}{
		"product_id": productID,
		"quantity":   quantity,
		"color_name": colorName,
	}
	resp := PostJSON(t, BaseURL+"/cart/add", addReq, buyerToken)
	require.Equal(t, 0, resp.Code, "加购失败: %s", resp.Message)

	toggleReq := map[string]interface{}{
		"product_id": productID,
		"color_name": colorName,
	}
	resp = PutJSON(t, BaseURL+"/cart/toggle-selection", toggleReq, buyerToken)
	require.Equal(t, 0, resp.Code, "勾选失败: %s", resp.Message)
}

func productStock(t *testing.T, productID uint) int {
	resp := GetJSON(t, fmt.Sprintf("%s/products/%d", BaseURL, productID), "")
	require.Equal(t, 0, resp.Code, resp.Message)

	var data ProductData
	err := json.Unmarshal(resp.Data, &data)
	require.NoError(t, err)
	return data.Stock
}

// TestOrderFromCart 测试购物车结算下单
func TestOrderFromCart(t *testing.T) {
	sellerToken := LoginTestSeller(t)

	t.Run("正常下单", func(t *testing.T) {
		_, buyerToken := RegisterTestUser(t, "cart_buyer")
		productID := PublishTestProduct(t, sellerToken, "结算测试商品", 1000, 10)

		addAndSelect(t, buyerToken, productID, 2, "")

		orderReq := map[string]interface{}{
			"address":        TestShippingAddress(),
			"payment_method": "cod",
		}

		resp := PostJSON(t, BaseURL+"/orders", orderReq, buyerToken)
		require.Equal(t, 0, resp.Code, "下单应该成功: %s", resp.Message)

		var data OrderData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)

		assert.NotZero(t, data.OrderID)
		assert.NotEmpty(t, data.OrderNo)
		assert.Equal(t, int64(2000), data.Subtotal)
		assert.Equal(t, data.Subtotal+data.DeliveryFee, data.FinalAmount)
		assert.Equal(t, "pending", data.Status)

		// 库存已扣减
		assert.Equal(t, 8, productStock(t, productID))

		// 已购条目从购物车清除
		listResp := GetJSON(t, BaseURL+"/cart", buyerToken)
		var view CartViewData
		require.NoError(t, json.Unmarshal(listResp.Data, &view))
		assert.Empty(t, view.Lines)
	})

	t.Run("未勾选任何条目不能下单", func(t *testing.T) {
		_, buyerToken := RegisterTestUser(t, "empty_buyer")

		orderReq := map[string]interface{}{
			"address":        TestShippingAddress(),
			"payment_method": "cod",
		}

		resp := PostJSON(t, BaseURL+"/orders", orderReq, buyerToken)
		assert.NotEqual(t, 0, resp.Code, "空勾选应该失败")
	})

	t.Run("不支持的支付方式被拒绝", func(t *testing.T) {
		_, buyerToken := RegisterTestUser(t, "pay_buyer")
		productID := PublishTestProduct(t, sellerToken, "支付测试商品", 1000, 10)
		addAndSelect(t, buyerToken, productID, 1, "")

		orderReq := map[string]interface{}{
			"address":        TestShippingAddress(),
			"payment_method": "credit_card",
		}

		resp := PostJSON(t, BaseURL+"/orders", orderReq, buyerToken)
		assert.NotEqual(t, 0, resp.Code, "当前只支持货到付款")
	})

	t.Run("地址不完整被拒绝", func(t *testing.T) {
		_, buyerToken := RegisterTestUser(t, "addr_buyer")
		productID := PublishTestProduct(t, sellerToken, "地址测试商品", 1000, 10)
		addAndSelect(t, buyerToken, productID, 1, "")

		addr := TestShippingAddress()
		delete(addr, "phone")
		orderReq := map[string]interface{}{
			"address":        addr,
			"payment_method": "cod",
		}

		resp := PostJSON(t, BaseURL+"/orders", orderReq, buyerToken)
		assert.NotEqual(t, 0, resp.Code, "缺少电话应该失败")
	})
}

// TestOrderDirect 测试立即购买下单
func TestOrderDirect(t *testing.T) {
	sellerToken := LoginTestSeller(t)
	_, buyerToken := RegisterTestUser(t, "direct_buyer")
	productID := PublishTestProduct(t, sellerToken, "立即购买商品", 3000, 10, "蓝色")

	t.Run("正常下单", func(t *testing.T) {
		orderReq := map[string]interface{}{
			"product_id":     productID,
			"quantity":       1,
			"color_name":     "蓝色",
			"address":        TestShippingAddress(),
			"payment_method": "cod",
		}

		resp := PostJSON(t, BaseURL+"/orders/direct", orderReq, buyerToken)
		require.Equal(t, 0, resp.Code, "下单应该成功: %s", resp.Message)

		var data OrderData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), data.Subtotal)
		assert.Equal(t, 9, productStock(t, productID))
	})

	t.Run("库存不足失败且无残留", func(t *testing.T) {
		orderReq := map[string]interface{}{
			"product_id":     productID,
			"quantity":       100,
			"color_name":     "蓝色",
			"address":        TestShippingAddress(),
			"payment_method": "cod",
		}

		resp := PostJSON(t, BaseURL+"/orders/direct", orderReq, buyerToken)
		assert.NotEqual(t, 0, resp.Code, "库存不足应该失败")
		assert.Equal(t, 9, productStock(t, productID), "失败时库存不变")
	})
}

// TestOrderConcurrency 测试并发下单防超卖
// 库存5的商品被10个并发请求抢购，最多只能成交5单
func TestOrderConcurrency(t *testing.T) {
	sellerToken := LoginTestSeller(t)
	productID := PublishTestProduct(t, sellerToken, "秒杀测试商品", 1000, 5)

	const concurrency = 10
	var wg sync.WaitGroup
	results := make(chan int, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, token := RegisterTestUser(t, fmt.Sprintf("rush_buyer_%d", n))

			orderReq := map[string]interface{}{
				"product_id":     productID,
				"quantity":       1,
				"address":        TestShippingAddress(),
				"payment_method": "cod",
			}
			resp := PostJSON(t, BaseURL+"/orders/direct", orderReq, token)
			results <- resp.Code
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for code := range results {
		if code == 0 {
			succeeded++
		}
	}

	assert.Equal(t, 5, succeeded, "库存5只能成交5单")
	assert.Zero(t, productStock(t, productID), "库存应该正好扣完,不能为负")
}

// TestOrderLifecycle 测试订单查询/取消/状态推进
func TestOrderLifecycle(t *testing.T) {
	sellerToken := LoginTestSeller(t)
	_, buyerToken := RegisterTestUser(t, "lifecycle_buyer")
	productID := PublishTestProduct(t, sellerToken, "生命周期测试商品", 2000, 10)

	// 下单
	orderReq := map[string]interface{}{
		"product_id":     productID,
		"quantity":       2,
		"address":        TestShippingAddress(),
		"payment_method": "cod",
	}
	resp := PostJSON(t, BaseURL+"/orders/direct", orderReq, buyerToken)
	require.Equal(t, 0, resp.Code, resp.Message)

	var placed OrderData
	require.NoError(t, json.Unmarshal(resp.Data, &placed))

	t.Run("买家查看自己的订单", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/orders/%d", BaseURL, placed.OrderID), buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		var detail OrderDetailData
		require.NoError(t, json.Unmarshal(resp.Data, &detail))
		assert.Equal(t, placed.OrderNo, detail.OrderNo)
		require.Len(t, detail.Items, 1)
		assert.Equal(t, int64(4000), detail.Items[0].LineTotal)
	})

	t.Run("他人订单不可见", func(t *testing.T) {
		_, otherToken := RegisterTestUser(t, "other_buyer")
		resp := GetJSON(t, fmt.Sprintf("%s/orders/%d", BaseURL, placed.OrderID), otherToken)
		assert.NotEqual(t, 0, resp.Code, "非本人订单应该表现为不存在")
	})

	t.Run("买家不能推进订单状态", func(t *testing.T) {
		statusReq := map[string]string{"status": "processing"}
		resp := PutJSON(t, fmt.Sprintf("%s/orders/%d/status", BaseURL, placed.OrderID), statusReq, buyerToken)
		assert.Equal(t, 40104, resp.Code, "状态推进是商家操作")
	})

	t.Run("商家推进状态逐级流转", func(t *testing.T) {
		for _, status := range []string{"processing", "shipped", "delivered"} {
			statusReq := map[string]string{"status": status}
			resp := PutJSON(t, fmt.Sprintf("%s/orders/%d/status", BaseURL, placed.OrderID), statusReq, sellerToken)
			require.Equal(t, 0, resp.Code, "推进到%s失败: %s", status, resp.Message)
		}
	})

	t.Run("已送达订单不能取消", func(t *testing.T) {
		cancelReq := map[string]string{"reason": "不想要了"}
		resp := PostJSON(t, fmt.Sprintf("%s/orders/%d/cancel", BaseURL, placed.OrderID), cancelReq, buyerToken)
		assert.NotEqual(t, 0, resp.Code, "终态订单不可取消")
	})
}

// TestOrderCancel 测试取消订单回补库存
func TestOrderCancel(t *testing.T) {
	sellerToken := LoginTestSeller(t)
	_, buyerToken := RegisterTestUser(t, "cancel_buyer")
	productID := PublishTestProduct(t, sellerToken, "取消测试商品", 2000, 10)

	orderReq := map[string]interface{}{
		"product_id":     productID,
		"quantity":       3,
		"address":        TestShippingAddress(),
		"payment_method": "cod",
	}
	resp := PostJSON(t, BaseURL+"/orders/direct", orderReq, buyerToken)
	require.Equal(t, 0, resp.Code, resp.Message)

	var placed OrderData
	require.NoError(t, json.Unmarshal(resp.Data, &placed))
	require.Equal(t, 7, productStock(t, productID))

	t.Run("取消必须填写原因", func(t *testing.T) {
		cancelReq := map[string]string{"reason": ""}
		resp := PostJSON(t, fmt.Sprintf("%s/orders/%d/cancel", BaseURL, placed.OrderID), cancelReq, buyerToken)
		assert.NotEqual(t, 0, resp.Code)
	})

	t.Run("正常取消并回补库存", func(t *testing.T) {
		cancelReq := map[string]string{"reason": "买错了"}
		resp := PostJSON(t, fmt.Sprintf("%s/orders/%d/cancel", BaseURL, placed.OrderID), cancelReq, buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		var detail OrderDetailData
		require.NoError(t, json.Unmarshal(resp.Data, &detail))
		assert.Equal(t, "cancelled", detail.Status)
		assert.Equal(t, "买错了", detail.CancelReason)

		assert.Equal(t, 10, productStock(t, productID), "库存回补到下单前")
	})

	t.Run("重复取消被拒绝", func(t *testing.T) {
		cancelReq := map[string]string{"reason": "再取消一次"}
		resp := PostJSON(t, fmt.Sprintf("%s/orders/%d/cancel", BaseURL, placed.OrderID), cancelReq, buyerToken)
		assert.NotEqual(t, 0, resp.Code)
	})
}

// TestOrderList 测试订单列表
func TestOrderList(t *testing.T) {
	sellerToken := LoginTestSeller(t)
	_, buyerToken := RegisterTestUser(t, "list_buyer")
	productID := PublishTestProduct(t, sellerToken, "列表测试商品", 1500, 20)

	for i := 0; i < 3; i++ {
		orderReq := map[string]interface{}{
			"product_id":     productID,
			"quantity":       1,
			"address":        TestShippingAddress(),
			"payment_method": "cod",
		}
		resp := PostJSON(t, BaseURL+"/orders/direct", orderReq, buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)
	}

	t.Run("买家只看到自己的订单", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/orders?page=1&page_size=10", buyerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		var data struct {
			Orders []OrderDetailData `json:"orders"`
			Total  int64             `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, int64(3), data.Total)
	})

	t.Run("商家可以按状态过滤全部订单", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/orders?status=pending&page=1&page_size=5", sellerToken)
		require.Equal(t, 0, resp.Code, resp.Message)

		var data struct {
			Orders []OrderDetailData `json:"orders"`
			Total  int64             `json:"total"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		for _, o := range data.Orders {
			assert.Equal(t, "pending", o.Status)
		}
	})
}
