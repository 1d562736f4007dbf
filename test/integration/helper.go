package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：测试辅助工具
// 这个文件包含集成测试的通用辅助函数，遵循DRY原则（Don't Repeat Yourself）
// 将重复的代码（HTTP请求、JSON解析）封装成可复用的函数

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// UserInfoData 登录响应中的用户信息
type UserInfoData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	Coins    int64  `json:"coins"`
}

// LoginData 登录响应数据
type LoginData struct {
	User         UserInfoData `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// ProductData 商品响应数据
type ProductData struct {
	ID            uint        `json:"id"`
	SKU           string      `json:"sku"`
	Name          string      `json:"name"`
	Price         int64       `json:"price"`
	Stock         int         `json:"stock"`
	DeliveryPrice int64       `json:"delivery_price"`
	Colors        []ColorData `json:"colors"`
}

// ColorData 颜色规格响应数据
type ColorData struct {
	Name    string `json:"name"`
	HexCode string `json:"hex_code"`
}

// CartViewData 购物车视图响应数据
type CartViewData struct {
	Lines       []CartLineData `json:"lines"`
	Subtotal    int64          `json:"subtotal"`
	DeliveryFee int64          `json:"delivery_fee"`
	Total       int64          `json:"total"`
}

// CartLineData 购物车条目响应数据
type CartLineData struct {
	ProductID uint   `json:"product_id"`
	ColorName string `json:"color_name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Selected  bool   `json:"selected"`
}

// OrderData 下单响应数据
type OrderData struct {
	OrderID          uint   `json:"order_id"`
	OrderNo          string `json:"order_no"`
	Subtotal         int64  `json:"subtotal"`
	DeliveryFee      int64  `json:"delivery_fee"`
	ReferralDiscount int64  `json:"referral_discount"`
	CoinsUsed        int64  `json:"coins_used"`
	FinalAmount      int64  `json:"final_amount"`
	Status           string `json:"status"`
}

// OrderDetailData 订单详情响应数据
type OrderDetailData struct {
	ID           uint            `json:"id"`
	OrderNo      string          `json:"order_no"`
	Items        []OrderItemData `json:"items"`
	Subtotal     int64           `json:"subtotal"`
	DeliveryFee  int64           `json:"delivery_fee"`
	FinalAmount  int64           `json:"final_amount"`
	Status       string          `json:"status"`
	CancelReason string          `json:"cancel_reason"`
}

// OrderItemData 订单明细响应数据
type OrderItemData struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	ColorName   string `json:"color_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	LineTotal   int64  `json:"line_total"`
}

// doJSON 发送带JSON body的请求并解析响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPost, url, data, token)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPut, url, data, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodDelete, url, nil, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodGet, url, nil, token)
}

// GenerateTestEmail 生成唯一的测试邮箱
// 使用时间戳确保邮箱唯一性，避免测试重复运行时邮箱冲突
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, time.Now().UnixNano())
}

// GenerateTestSKU 生成唯一的测试商品编码
func GenerateTestSKU() string {
	return fmt.Sprintf("TEST-%d", time.Now().UnixNano())
}

// RegisterTestUser 注册测试买家并返回Token
// 封装注册+登录的完整流程，让测试更关注业务逻辑而非基础设施
func RegisterTestUser(t *testing.T, nickname string) (email string, token string) {
	email = GenerateTestEmail(nickname)
	registerReq := map[string]string{
		"email":    email,
		"password": "Test1234",
		"nickname": nickname,
	}

	registerResp := PostJSON(t, BaseURL+"/users/register", registerReq, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	loginReq := map[string]string{
		"email":    email,
		"password": "Test1234",
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")

	return email, loginData.AccessToken
}

// LoginTestSeller 登录预置的商家账号
//
// 商品上架接口要求seller/admin角色，注册接口只产生买家账号，
// 商家账号由测试环境初始化脚本预置(scripts/seed.sql)
// 未配置商家账号时跳过依赖上架的测试
func LoginTestSeller(t *testing.T) (token string) {
	email := os.Getenv("SHOPMALL_TEST_SELLER_EMAIL")
	password := os.Getenv("SHOPMALL_TEST_SELLER_PASSWORD")
	if email == "" {
		email = "seller@test.com"
	}
	if password == "" {
		password = "Seller1234"
	}

	loginReq := map[string]string{
		"email":    email,
		"password": password,
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", loginReq, "")
	if loginResp.Code != 0 {
		t.Skipf("商家账号未预置，跳过: %s", loginResp.Message)
	}

	var loginData LoginData
	err := json.Unmarshal(loginResp.Data, &loginData)
	require.NoError(t, err, "解析登录响应失败")
	require.NotEqual(t, "buyer", loginData.User.Role, "预置账号必须是商家或管理员角色")

	return loginData.AccessToken
}

// PublishTestProduct 上架测试商品并返回商品ID
func PublishTestProduct(t *testing.T, sellerToken, name string, price int64, stock int, colors ...string) uint {
	colorReqs := make([]map[string]string, 0, len(colors))
	for _, c := range colors {
		colorReqs = append(colorReqs, map[string]string{"name": c})
	}

	productReq := map[string]interface{}{
		"sku":    GenerateTestSKU(),
		"name":   name,
		"price":  price,
		"stock":  stock,
		"colors": colorReqs,
	}

	productResp := PostJSON(t, BaseURL+"/products", productReq, sellerToken)
	require.Equal(t, 0, productResp.Code, "商品上架失败: %s", productResp.Message)

	var productData ProductData
	err := json.Unmarshal(productResp.Data, &productData)
	require.NoError(t, err, "解析商品响应失败")

	return productData.ID
}

// TestShippingAddress 测试用收货地址
func TestShippingAddress() map[string]string {
	return map[string]string{
		"first_name": "小",
		"last_name":  "明",
		"email":      "xiaoming@test.com",
		"phone":      "13800138000",
		"address":    "中关村大街1号",
		"city":       "北京",
		"zip_code":   "100080",
	}
}
