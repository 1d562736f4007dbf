package main

import (
	"time"

	"github.com/xiebiao/shopmall/internal/application/checkout"
	"github.com/xiebiao/shopmall/pkg/circuitbreaker"
	"github.com/xiebiao/shopmall/pkg/metrics"
	"github.com/xiebiao/shopmall/pkg/mq"
)

// guardedPublisher 带熔断保护的事件发布器
// 设计说明:
// 1. RabbitMQ故障时发布调用会阻塞到超时,拖慢下单主流程
// 2. 熔断器在连续失败后直接快速失败,不再碰MQ
// 3. 事件发布是非关键副作用,熔断丢失的事件由上游日志兜底
type guardedPublisher struct {
	inner *mq.Publisher
	cb    *circuitbreaker.CircuitBreaker
}

// newGuardedPublisher 包装MQ发布器
func newGuardedPublisher(inner *mq.Publisher) checkout.EventPublisher {
	cb := circuitbreaker.NewCircuitBreaker("mq-publisher", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})
	return &guardedPublisher{inner: inner, cb: cb}
}

// Publish 经熔断器发布事件
func (p *guardedPublisher) Publish(routingKey string, message interface{}) error {
	return p.cb.Execute(func() error {
		return p.inner.Publish(routingKey, message)
	})
}
