package order

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOrderNo 生成订单号
// 订单号设计原则:
// 1. 全局唯一(数据库UNIQUE索引兜底)
// 2. 时间有序(便于分库分表)
// 3. 不可预测(防止恶意遍历他人订单)
//
// 格式:ORD + 时间戳(秒) + 6位随机数
// 示例:ORD1756700000123456
//
// 生产环境推荐雪花算法,单体部署下该实现足够
func GenerateOrderNo() string {
	timestamp := time.Now().Unix()
	random := rand.Intn(1000000) // 6位随机数
	return fmt.Sprintf("ORD%d%06d", timestamp, random)
}
