package order

import (
	"time"
)

// Status 订单状态
// 设计说明:
// 1. 使用int类型而非string(节省存储空间,便于索引)
// 2. 状态值1-4为正向流转,5为取消态
type Status int

const (
	StatusPending    Status = 1 // 待处理(下单完成,货到付款待商家确认)
	StatusProcessing Status = 2 // 处理中(商家备货)
	StatusShipped    Status = 3 // 已发货
	StatusDelivered  Status = 4 // 已送达(终态)
	StatusCancelled  Status = 5 // 已取消(终态)
)

// String 实现Stringer接口(方便日志输出)
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "待处理"
	case StatusProcessing:
		return "处理中"
	case StatusShipped:
		return "已发货"
	case StatusDelivered:
		return "已送达"
	case StatusCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// ParseStatus 从接口层字符串解析状态
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "pending":
		return StatusPending, true
	case "processing":
		return StatusProcessing, true
	case "shipped":
		return StatusShipped, true
	case "delivered":
		return StatusDelivered, true
	case "cancelled":
		return StatusCancelled, true
	}
	return 0, false
}

// Code 接口层使用的状态编码
func (s Status) Code() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusShipped:
		return "shipped"
	case StatusDelivered:
		return "delivered"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// PaymentMethodCOD 货到付款(当前唯一支持的支付方式)
const PaymentMethodCOD = "cod"

// ShippingAddress 收货地址(值对象)
// 每个买家保留最近一次使用的地址作为默认地址(单槽位,下单时覆盖)
type ShippingAddress struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
	ZipCode   string
}

// Validate 校验必填字段
func (a ShippingAddress) Validate() error {
	if a.FirstName == "" || a.LastName == "" || a.Phone == "" ||
		a.Address == "" || a.City == "" || a.ZipCode == "" {
		return ErrIncompleteAddress
	}
	return nil
}

// Order 订单实体(聚合根)
// 设计说明:
// 1. Order是聚合根,OrderItem是子实体,必须一起创建
// 2. 金额字段全部冗余落库(下单时服务端计算,防止改价攻击,历史订单金额不随目录变化)
// 3. 订单创建后不可变,只有状态和取消原因可以流转
type Order struct {
	ID               uint
	OrderNo          string // 订单号(业务主键,全局唯一)
	UserID           uint   // 买家用户ID
	Items            []OrderItem
	Address          ShippingAddress
	TotalAmount      int64  // 商品小计+运费
	DeliveryFee      int64  // 运费
	ReferralDiscount int64  // 推荐金币抵扣金额
	CoinsUsed        int64  // 消耗的金币数
	FinalAmount      int64  // 实付金额 = TotalAmount - ReferralDiscount
	PaymentMethod    string // 当前仅支持cod
	Status           Status
	CancelReason     string // 取消原因(仅取消态有值)
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem 订单明细项
// 明细记录下单时的价格/名称快照,不直接关联商品对象(避免跨聚合引用)
type OrderItem struct {
	ID          uint
	OrderID     uint
	ProductID   uint
	ProductName string // 下单时商品名快照
	ColorName   string // 为空表示无颜色规格
	Quantity    int
	UnitPrice   int64 // 下单时单价快照
}

// NewOrder 创建新订单(工厂方法)
// 金额字段由结算管线计算后传入,初始状态为Pending
func NewOrder(orderNo string, userID uint, items []OrderItem, addr ShippingAddress,
	totalAmount, deliveryFee, referralDiscount, coinsUsed int64, paymentMethod string) (*Order, error) {

	if len(items) == 0 {
		return nil, ErrInvalidOrderItems
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	if paymentMethod != PaymentMethodCOD {
		return nil, ErrUnsupportedPayment
	}

	now := time.Now()
	return &Order{
		OrderNo:          orderNo,
		UserID:           userID,
		Items:            items,
		Address:          addr,
		TotalAmount:      totalAmount,
		DeliveryFee:      deliveryFee,
		ReferralDiscount: referralDiscount,
		CoinsUsed:        coinsUsed,
		FinalAmount:      totalAmount - referralDiscount,
		PaymentMethod:    paymentMethod,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// CanTransitionTo 检查是否可以转换到目标状态
// 状态机:pending → processing → shipped → delivered(只进不退)
// cancelled可从pending/processing/shipped到达,delivered后不可取消
func (o *Order) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending:    {StatusProcessing, StatusCancelled},
		StatusProcessing: {StatusShipped, StatusCancelled},
		StatusShipped:    {StatusDelivered, StatusCancelled},
		StatusDelivered:  {}, // 终态
		StatusCancelled:  {}, // 终态
	}

	allowed, exists := transitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// Advance 正向推进状态(商家操作)
// 取消不属于正向推进,必须走Cancel以强制填写原因
func (o *Order) Advance(target Status) error {
	if target == StatusCancelled {
		return ErrInvalidStatusTransition
	}
	return o.TransitionTo(target)
}

// Cancel 取消订单
// 业务规则:必须填写取消原因;已送达/已取消的订单不可取消
func (o *Order) Cancel(reason string) error {
	if reason == "" {
		return ErrEmptyCancelReason
	}
	if err := o.TransitionTo(StatusCancelled); err != nil {
		return err
	}
	o.CancelReason = reason
	return nil
}

// IsOwnedBy 检查订单是否属于指定用户(防止越权访问他人订单)
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.UserID == userID
}

// Subtotal 商品小计(不含运费)
// 用于校验落库金额与明细一致
func (o *Order) Subtotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}
