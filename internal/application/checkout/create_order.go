package checkout

import (
	"context"
	"log"
	"time"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/referral"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
	"github.com/xiebiao/shopmall/pkg/metrics"
	"github.com/xiebiao/shopmall/pkg/saga"
)

// TxManager 事务边界接口(由mysql.TxManager实现)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateOrderUseCase 创建订单用例(订单装配器)
// 这是整个项目最核心的用例:两条下单入口(购物车结算/立即购买)
// 汇聚到同一条提交管线,保证定价、库存、金币的一致性
//
// 提交管线(Saga两步):
//
//	步骤1 扣减金币  : Redis账本条件化扣减(余额不足即失败)
//	                 补偿 = 退还金币
//	步骤2 订单落库  : 单个数据库事务内完成——
//	                 悲观锁锁定商品行 → 复核价格与库存 → 创建订单 →
//	                 条件化扣减库存 → 覆盖保存收货地址 → 清除已购买的购物车条目
//
// 金币账本在Redis、订单在MySQL,无法用一个数据库事务覆盖,
// 所以步骤2失败时由Saga逆序补偿步骤1(退币),避免"扣了币没有单"
// 步骤2内部的多个写操作由数据库事务保证原子性,避免"扣了库存没有单"
//
// 提交窗口内价格发生变动时直接失败(fail closed),
// 让买家重新结算,绝不静默重试(金融操作不允许重复提交)
type CreateOrderUseCase struct {
	validator   *PurchaseValidator
	orderRepo   order.Repository
	productRepo product.Repository
	cartRepo    cart.Repository
	addressRepo order.AddressRepository
	selection   cart.SelectionStore
	ledger      referral.Ledger
	txManager   TxManager
	publisher   EventPublisher
	timeout     time.Duration // 校验→提交窗口上限
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	validator *PurchaseValidator,
	orderRepo order.Repository,
	productRepo product.Repository,
	cartRepo cart.Repository,
	addressRepo order.AddressRepository,
	selection cart.SelectionStore,
	ledger referral.Ledger,
	txManager TxManager,
	publisher EventPublisher,
	timeout time.Duration,
) *CreateOrderUseCase {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CreateOrderUseCase{
		validator:   validator,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		selection:   selection,
		ledger:      ledger,
		txManager:   txManager,
		publisher:   publisher,
		timeout:     timeout,
	}
}

// CreateFromCartRequest 购物车结算请求DTO
type CreateFromCartRequest struct {
	UserID        uint
	Address       order.ShippingAddress
	PaymentMethod string
	UseCoins      bool // 是否用金币抵扣(买家在结算页显式开启)
}

// CreateDirectRequest 立即购买请求DTO
type CreateDirectRequest struct {
	UserID        uint
	ProductID     uint
	Quantity      int
	ColorName     string
	Address       order.ShippingAddress
	PaymentMethod string
	UseCoins      bool
}

// CreateOrderResponse 下单响应DTO
type CreateOrderResponse struct {
	OrderID          uint   `json:"order_id"`
	OrderNo          string `json:"order_no"`
	Subtotal         int64  `json:"subtotal"`
	DeliveryFee      int64  `json:"delivery_fee"`
	ReferralDiscount int64  `json:"referral_discount"`
	CoinsUsed        int64  `json:"coins_used"`
	FinalAmount      int64  `json:"final_amount"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

// CreateFromCart 购物车结算下单
func (uc *CreateOrderUseCase) CreateFromCart(ctx context.Context, req CreateFromCartRequest) (*CreateOrderResponse, error) {
	// 提交前重新校验+计价(防御校验和提交之间的竞态)
	draft, err := uc.validator.ValidateCartPurchase(ctx, req.UserID, req.UseCoins)
	if err != nil {
		return nil, err
	}
	return uc.place(ctx, req.UserID, draft, req.Address, req.PaymentMethod)
}

// CreateDirect 立即购买下单
func (uc *CreateOrderUseCase) CreateDirect(ctx context.Context, req CreateDirectRequest) (*CreateOrderResponse, error) {
	draft, err := uc.validator.ValidateDirectPurchase(ctx, req.UserID, req.ProductID, req.Quantity, req.ColorName, req.UseCoins)
	if err != nil {
		return nil, err
	}
	return uc.place(ctx, req.UserID, draft, req.Address, req.PaymentMethod)
}

// place 统一提交管线(两条入口的汇聚点)
func (uc *CreateOrderUseCase) place(ctx context.Context, userID uint, draft *Draft, addr order.ShippingAddress, paymentMethod string) (*CreateOrderResponse, error) {
	start := time.Now()
	metrics.IncGauge(metrics.OrdersInProgress)
	defer metrics.DecGauge(metrics.OrdersInProgress)

	var placed *order.Order

	sg := saga.NewSaga(uc.timeout)

	// 步骤1:扣减金币(Redis账本,条件化原子扣减)
	sg.AddStep("扣减金币",
		func(ctx context.Context) error {
			if draft.CoinsUsed == 0 {
				return nil
			}
			return uc.ledger.Debit(ctx, userID, draft.CoinsUsed)
		},
		func(ctx context.Context) error {
			if draft.CoinsUsed == 0 {
				return nil
			}
			return uc.ledger.Credit(ctx, userID, draft.CoinsUsed)
		},
	)

	// 步骤2:订单落库(单个数据库事务,最后一步无需补偿)
	sg.AddStep("订单落库",
		func(ctx context.Context) error {
			return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
				o, err := uc.commitTx(txCtx, userID, draft, addr, paymentMethod)
				if err != nil {
					return err
				}
				placed = o
				return nil
			})
		},
		nil,
	)

	if err := sg.Execute(ctx); err != nil {
		metrics.IncCounter(metrics.OrdersFailedTotal)
		// Saga包装的错误剥出业务错误码返回给调用方
		return nil, unwrapSagaError(err)
	}

	// 下单成功后的非关键副作用:失败只记日志,不影响订单结果
	uc.afterCommit(ctx, userID, draft, placed)

	metrics.IncCounter(metrics.OrdersCreatedTotal)
	metrics.ObserveHistogram(metrics.OrderCreationDuration, time.Since(start).Seconds())

	return &CreateOrderResponse{
		OrderID:          placed.ID,
		OrderNo:          placed.OrderNo,
		Subtotal:         draft.Subtotal,
		DeliveryFee:      placed.DeliveryFee,
		ReferralDiscount: placed.ReferralDiscount,
		CoinsUsed:        placed.CoinsUsed,
		FinalAmount:      placed.FinalAmount,
		Status:           placed.Status.Code(),
		CreatedAt:        placed.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// commitTx 事务内的订单落库流程
func (uc *CreateOrderUseCase) commitTx(txCtx context.Context, userID uint, draft *Draft, addr order.ShippingAddress, paymentMethod string) (*order.Order, error) {
	// 1. 悲观锁锁定商品行,复核价格与库存
	// 校验(普通读)到提交(加锁)之间目录可能已变化:
	// - 库存不足 → 库存不足错误
	// - 价格变动 → fail closed,让买家重新结算(不按旧价也不静默按新价)
	items := make([]order.OrderItem, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		p, err := uc.productRepo.LockByID(txCtx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.InStock(l.Quantity) {
			metrics.IncCounterVec(metrics.CheckoutConflictsTotal, map[string]string{"reason": "stock"})
			return nil, product.ErrInsufficientStock
		}
		if p.Price != l.UnitPrice {
			metrics.IncCounterVec(metrics.CheckoutConflictsTotal, map[string]string{"reason": "price"})
			return nil, apperrors.New(apperrors.ErrCodeBusinessError, "商品价格已更新,请重新结算")
		}
		items = append(items, order.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			ColorName:   l.ColorName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		})
	}

	// 2. 创建订单(初始状态pending)
	o, err := order.NewOrder(
		order.GenerateOrderNo(), userID, items, addr,
		draft.Subtotal+draft.DeliveryFee, draft.DeliveryFee,
		draft.ReferralDiscount, draft.CoinsUsed, paymentMethod,
	)
	if err != nil {
		return nil, err
	}
	if err := uc.orderRepo.Create(txCtx, o); err != nil {
		return nil, err
	}

	// 3. 条件化扣减库存(stock + delta >= 0,行锁已持有,不会并发超卖)
	for _, l := range draft.Lines {
		if err := uc.productRepo.UpdateStock(txCtx, l.ProductID, -l.Quantity); err != nil {
			return nil, err
		}
	}

	// 4. 覆盖保存收货地址(单槽位:最近一次使用的地址即默认地址)
	if err := uc.addressRepo.Save(txCtx, userID, addr); err != nil {
		return nil, err
	}

	// 5. 购物车路径:清除本次购买的条目(未勾选的条目保持不动)
	if draft.FromCart {
		if err := uc.cartRepo.DeleteByKeys(txCtx, userID, draft.Keys); err != nil {
			return nil, err
		}
	}

	return o, nil
}

// afterCommit 下单成功后的非关键副作用
func (uc *CreateOrderUseCase) afterCommit(ctx context.Context, userID uint, draft *Draft, o *order.Order) {
	// 清除勾选键(购物车条目已删,键失效)
	if draft.FromCart {
		if err := uc.selection.Remove(ctx, userID, draft.Keys); err != nil {
			log.Printf("清理勾选集合失败 user=%d order=%s: %v", userID, o.OrderNo, err)
		}
	}

	// 发布订单创建事件(发布器外层有熔断保护,MQ故障时快速失败)
	if uc.publisher != nil {
		evt := OrderCreatedEvent{
			OrderID:     o.ID,
			OrderNo:     o.OrderNo,
			UserID:      userID,
			FinalAmount: o.FinalAmount,
			ItemCount:   len(o.Items),
			CreatedAt:   o.CreatedAt.Format(time.RFC3339),
		}
		if err := uc.publisher.Publish("order.created", evt); err != nil {
			log.Printf("发布订单创建事件失败 order=%s: %v", o.OrderNo, err)
		}
	}
}

// unwrapSagaError 从Saga的包装错误中剥出业务错误
// Saga会用fmt.Errorf("步骤[...]执行失败: %w")包一层,接口层需要原始的AppError
func unwrapSagaError(err error) error {
	if apperrors.IsAppError(err) {
		return apperrors.GetAppError(err)
	}
	return err
}
