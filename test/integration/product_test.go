package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 商品模块集成测试
//
// 商品上架是商家/管理员专属操作，测试依赖预置的商家账号
// (见helper.go的LoginTestSeller说明)

// TestProductPublish 测试商品上架
func TestProductPublish(t *testing.T) {
	t.Run("买家不能上架商品", func(t *testing.T) {
		_, buyerToken := RegisterTestUser(t, "not_a_seller")

		productReq := map[string]interface{}{
			"sku":   GenerateTestSKU(),
			"name":  "买家的商品",
			"price": 1000,
			"stock": 10,
		}

		resp := PostJSON(t, BaseURL+"/products", productReq, buyerToken)
		assert.Equal(t, 40104, resp.Code, "买家角色应该被拒绝")
	})

	sellerToken := LoginTestSeller(t)

	t.Run("正常上架带颜色规格的商品", func(t *testing.T) {
		productReq := map[string]interface{}{
			"sku":   GenerateTestSKU(),
			"name":  "机械键盘",
			"price": 29900,
			"stock": 50,
			"colors": []map[string]string{
				{"name": "黑色", "hex_code": "#000000"},
				{"name": "白色", "hex_code": "#FFFFFF"},
			},
		}

		resp := PostJSON(t, BaseURL+"/products", productReq, sellerToken)
		require.Equal(t, 0, resp.Code, "上架应该成功: %s", resp.Message)

		var data ProductData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)

		assert.NotZero(t, data.ID)
		assert.Equal(t, int64(29900), data.Price)
		assert.Equal(t, 50, data.Stock)
		assert.Len(t, data.Colors, 2)
	})

	t.Run("重复SKU上架应失败", func(t *testing.T) {
		sku := GenerateTestSKU()
		productReq := map[string]interface{}{
			"sku":   sku,
			"name":  "商品A",
			"price": 1000,
			"stock": 10,
		}

		resp1 := PostJSON(t, BaseURL+"/products", productReq, sellerToken)
		require.Equal(t, 0, resp1.Code)

		productReq["name"] = "商品B"
		resp2 := PostJSON(t, BaseURL+"/products", productReq, sellerToken)
		assert.NotEqual(t, 0, resp2.Code, "重复SKU应该失败")
	})

	t.Run("零价商品被拒绝", func(t *testing.T) {
		productReq := map[string]interface{}{
			"sku":   GenerateTestSKU(),
			"name":  "免费商品",
			"price": 0,
			"stock": 10,
		}

		resp := PostJSON(t, BaseURL+"/products", productReq, sellerToken)
		assert.NotEqual(t, 0, resp.Code, "价格必须大于0")
	})
}

// TestProductList 测试商品列表与详情
func TestProductList(t *testing.T) {
	sellerToken := LoginTestSeller(t)
	productID := PublishTestProduct(t, sellerToken, "列表测试商品", 5000, 20, "红色")

	t.Run("列表公开可访问", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/products?page=1&page_size=10", "")
		require.Equal(t, 0, resp.Code, "无需登录: %s", resp.Message)
	})

	t.Run("详情包含颜色规格", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/products/%d", BaseURL, productID), "")
		require.Equal(t, 0, resp.Code, resp.Message)

		var data ProductData
		err := json.Unmarshal(resp.Data, &data)
		require.NoError(t, err)

		assert.Equal(t, "列表测试商品", data.Name)
		assert.Equal(t, int64(5000), data.Price)
		require.Len(t, data.Colors, 1)
		assert.Equal(t, "红色", data.Colors[0].Name)
	})

	t.Run("不存在的商品返回错误", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/products/99999999", "")
		assert.NotEqual(t, 0, resp.Code)
	})
}
