package order

import (
	"context"
	"log"

	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/referral"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

// TxManager 事务边界接口(由mysql.TxManager实现)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CancelOrderUseCase 取消订单用例
// 取消是下单的逆操作,要把占用的资源还回去:
// 1. 状态置为cancelled并记录原因(领域层状态机校验)
// 2. 回补每个明细行的库存(与状态更新同一事务)
// 3. 退还抵扣的金币(Redis账本,事务提交后执行)
//
// 金币退还放在事务外:提交成功后退币失败只记日志,
// 不能因为Redis抖动把已取消的订单回滚成未取消
type CancelOrderUseCase struct {
	orderRepo   order.Repository
	productRepo product.Repository
	ledger      referral.Ledger
	txManager   TxManager
}

// NewCancelOrderUseCase 创建取消订单用例
func NewCancelOrderUseCase(
	orderRepo order.Repository,
	productRepo product.Repository,
	ledger referral.Ledger,
	txManager TxManager,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		ledger:      ledger,
		txManager:   txManager,
	}
}

// CancelOrderRequest 取消订单请求DTO
type CancelOrderRequest struct {
	OrderID   uint
	Reason    string // 取消原因(必填)
	ActorID   uint
	ActorRole string
}

// Execute 取消订单
// 权限规则:买家只能取消自己的订单,商家/管理员可取消任意订单
func (uc *CancelOrderUseCase) Execute(ctx context.Context, req CancelOrderRequest) (*OrderDTO, error) {
	var cancelled *order.Order

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.FindByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}

		staff := req.ActorRole == user.RoleSeller || req.ActorRole == user.RoleAdmin
		if !staff && !o.IsOwnedBy(req.ActorID) {
			return order.ErrOrderNotFound
		}

		// 状态机校验:delivered/cancelled不可取消,原因必填
		from := o.Status
		if err := o.Cancel(req.Reason); err != nil {
			return err
		}

		// 条件化写入:并发的另一次取消或状态推进抢先提交时,
		// 这里返回转换冲突,回补库存不会执行第二次
		if err := uc.orderRepo.UpdateStatus(txCtx, o, from); err != nil {
			return err
		}

		// 回补库存(与状态更新同一事务,条件化更新 stock = stock + qty)
		for _, it := range o.Items {
			if err := uc.productRepo.UpdateStock(txCtx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersCancelledTotal)

	// 退还金币(事务外,失败不回滚订单)
	if cancelled.CoinsUsed > 0 {
		if err := uc.ledger.Credit(ctx, cancelled.UserID, cancelled.CoinsUsed); err != nil {
			log.Printf("取消订单退还金币失败 order=%s user=%d coins=%d: %v",
				cancelled.OrderNo, cancelled.UserID, cancelled.CoinsUsed, err)
		}
	}

	return toOrderDTO(cancelled), nil
}
