package checkout

// OrderCreatedEvent 订单创建事件
// 发布到 shopmall.events 交换机(routing key: order.created)
// 下游消费者:通知服务(下单推送)、卖家后台未处理订单角标
type OrderCreatedEvent struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	UserID      uint   `json:"user_id"`
	FinalAmount int64  `json:"final_amount"`
	ItemCount   int    `json:"item_count"`
	CreatedAt   string `json:"created_at"`
}

// EventPublisher 事件发布接口
// *mq.Publisher天然满足;生产装配时外面再包一层熔断器(见cmd/api)
type EventPublisher interface {
	Publish(routingKey string, message interface{}) error
}
