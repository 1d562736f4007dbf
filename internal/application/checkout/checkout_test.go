package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/shopmall/internal/domain/cart"
	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/pricing"
	"github.com/xiebiao/shopmall/internal/domain/product"
	apperrors "github.com/xiebiao/shopmall/pkg/errors"
	"github.com/xiebiao/shopmall/pkg/metrics"
)

func TestMain(m *testing.M) {
	// 用例会上报指标,先注册指标向量
	metrics.InitMetrics()
	m.Run()
}

// ========================================
// 内存实现的依赖(测试替身)
// ========================================

type fakeProductRepo struct {
	products map[uint]*product.Product
	// onLock 在悲观锁读取时调用,用于模拟校验-提交窗口内的目录变化
	onLock func(p *product.Product)
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error { return nil }

func (r *fakeProductRepo) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByIDs(ctx context.Context, ids []uint) (map[uint]*product.Product, error) {
	result := make(map[uint]*product.Product)
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			cp := *p
			result[id] = &cp
		}
	}
	return result, nil
}

func (r *fakeProductRepo) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	if r.onLock != nil {
		r.onLock(p)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) UpdateStock(ctx context.Context, id uint, delta int) error {
	p, ok := r.products[id]
	if !ok {
		return product.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return product.ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

type fakeCartRepo struct {
	lines   map[string]*cart.CartLine // key: LineKey.String()
	deleted []cart.LineKey
}

func (r *fakeCartRepo) Create(ctx context.Context, line *cart.CartLine) error { return nil }
func (r *fakeCartRepo) Update(ctx context.Context, line *cart.CartLine) error { return nil }

func (r *fakeCartRepo) FindByUser(ctx context.Context, userID uint) ([]*cart.CartLine, error) {
	result := make([]*cart.CartLine, 0, len(r.lines))
	for _, l := range r.lines {
		result = append(result, l)
	}
	return result, nil
}

func (r *fakeCartRepo) FindByKey(ctx context.Context, userID uint, key cart.LineKey) (*cart.CartLine, error) {
	l, ok := r.lines[key.String()]
	if !ok {
		return nil, cart.ErrLineMissing
	}
	return l, nil
}

func (r *fakeCartRepo) DeleteByKey(ctx context.Context, userID uint, key cart.LineKey) error {
	delete(r.lines, key.String())
	return nil
}

func (r *fakeCartRepo) DeleteByKeys(ctx context.Context, userID uint, keys []cart.LineKey) error {
	for _, k := range keys {
		delete(r.lines, k.String())
		r.deleted = append(r.deleted, k)
	}
	return nil
}

type fakeSelection struct {
	keys    []cart.LineKey
	removed []cart.LineKey
}

func (s *fakeSelection) Toggle(ctx context.Context, userID uint, key cart.LineKey) (bool, error) {
	return true, nil
}

func (s *fakeSelection) Selected(ctx context.Context, userID uint) ([]cart.LineKey, error) {
	return s.keys, nil
}

func (s *fakeSelection) Remove(ctx context.Context, userID uint, keys []cart.LineKey) error {
	s.removed = append(s.removed, keys...)
	return nil
}

type fakeLedger struct {
	balance int64
	debits  int64
	credits int64
}

func (l *fakeLedger) Balance(ctx context.Context, userID uint) (int64, error) {
	return l.balance, nil
}

func (l *fakeLedger) Debit(ctx context.Context, userID uint, coins int64) error {
	if l.balance < coins {
		return apperrors.ErrInsufficientCoins
	}
	l.balance -= coins
	l.debits += coins
	return nil
}

func (l *fakeLedger) Credit(ctx context.Context, userID uint, coins int64) error {
	l.balance += coins
	l.credits += coins
	return nil
}

func (l *fakeLedger) Seed(ctx context.Context, userID uint, coins int64) error { return nil }

type fakeOrderRepo struct {
	orders []*order.Order
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	o.ID = uint(len(r.orders) + 1)
	r.orders = append(r.orders, o)
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *fakeOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return nil, order.ErrOrderNotFound
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, o *order.Order, from order.Status) error {
	return nil
}

func (r *fakeOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return r.orders, int64(len(r.orders)), nil
}

func (r *fakeOrderRepo) List(ctx context.Context, status order.Status, page, pageSize int) ([]*order.Order, int64, error) {
	return r.orders, int64(len(r.orders)), nil
}

type fakeAddressRepo struct {
	saved *order.ShippingAddress
}

func (r *fakeAddressRepo) Save(ctx context.Context, userID uint, addr order.ShippingAddress) error {
	r.saved = &addr
	return nil
}

func (r *fakeAddressRepo) FindByUser(ctx context.Context, userID uint) (*order.ShippingAddress, error) {
	return r.saved, nil
}

// fakeTxManager 直接执行回调,不提供真实事务语义
type fakeTxManager struct{}

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePublisher struct {
	published []string
}

func (p *fakePublisher) Publish(routingKey string, message interface{}) error {
	p.published = append(p.published, routingKey)
	return nil
}

// ========================================
// 测试夹具
// ========================================

type fixture struct {
	productRepo *fakeProductRepo
	cartRepo    *fakeCartRepo
	selection   *fakeSelection
	ledger      *fakeLedger
	orderRepo   *fakeOrderRepo
	addressRepo *fakeAddressRepo
	publisher   *fakePublisher
	uc          *CreateOrderUseCase
}

// newFixture 搭建标准场景:
// 商品1(键盘,价格1000,库存10,黑/白两色),商品2(鼠标,价格2500,库存5,无规格)
// 购物车勾选了 1:黑色 x2 和 2: x1,账本余额20金币
// 定价:运费500,满30000免邮,金币面值100,抵扣上限50%
func newFixture() *fixture {
	f := &fixture{
		productRepo: &fakeProductRepo{products: map[uint]*product.Product{
			1: {ID: 1, SKU: "KB-01", Name: "机械键盘", Price: 1000, Stock: 10,
				Colors: []product.ColorVariant{{Name: "黑色"}, {Name: "白色"}}},
			2: {ID: 2, SKU: "MS-01", Name: "无线鼠标", Price: 2500, Stock: 5},
		}},
		cartRepo: &fakeCartRepo{lines: map[string]*cart.CartLine{
			"1:黑色": {UserID: 1, ProductID: 1, ColorName: "黑色", Quantity: 2, UnitPrice: 900},
			"2:":   {UserID: 1, ProductID: 2, Quantity: 1, UnitPrice: 2500},
			"1:白色": {UserID: 1, ProductID: 1, ColorName: "白色", Quantity: 1, UnitPrice: 1000},
		}},
		selection: &fakeSelection{keys: []cart.LineKey{
			{ProductID: 1, ColorName: "黑色"},
			{ProductID: 2},
		}},
		ledger:      &fakeLedger{balance: 20},
		orderRepo:   &fakeOrderRepo{},
		addressRepo: &fakeAddressRepo{},
		publisher:   &fakePublisher{},
	}

	pricer := pricing.NewEngine(pricing.Config{
		DeliveryFee:           500,
		FreeShippingThreshold: 30000,
		CoinValue:             100,
		DiscountCapPercent:    50,
	})
	validator := NewPurchaseValidator(f.cartRepo, f.productRepo, f.selection, f.ledger, pricer)
	f.uc = NewCreateOrderUseCase(
		validator, f.orderRepo, f.productRepo, f.cartRepo, f.addressRepo,
		f.selection, f.ledger, &fakeTxManager{}, f.publisher,
		5*time.Second,
	)
	return f
}

func testAddress() order.ShippingAddress {
	return order.ShippingAddress{
		FirstName: "小", LastName: "明", Email: "xiaoming@example.com",
		Phone: "13800138000", Address: "中关村大街1号", City: "北京", ZipCode: "100080",
	}
}

// ========================================
// 购物车结算
// ========================================

func TestCreateFromCart(t *testing.T) {
	t.Run("正常下单", func(t *testing.T) {
		f := newFixture()

		resp, err := f.uc.CreateFromCart(context.Background(), CreateFromCartRequest{
			UserID:        1,
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		require.NoError(t, err)

		// 计价以目录实时价为准:1000*2+2500=4500,快照价900不参与
		assert.Equal(t, int64(4500), resp.Subtotal)
		assert.Equal(t, int64(500), resp.DeliveryFee)
		assert.Zero(t, resp.ReferralDiscount)
		assert.Equal(t, int64(5000), resp.FinalAmount)
		assert.Equal(t, "pending", resp.Status)
		assert.NotEmpty(t, resp.OrderNo)

		// 库存扣减
		assert.Equal(t, 8, f.productRepo.products[1].Stock)
		assert.Equal(t, 4, f.productRepo.products[2].Stock)

		// 只清除勾选的条目,未勾选的白色键盘保留
		assert.Len(t, f.cartRepo.deleted, 2)
		_, stillThere := f.cartRepo.lines["1:白色"]
		assert.True(t, stillThere, "未勾选条目不受影响")

		// 勾选集合清理 + 事件发布
		assert.Len(t, f.selection.removed, 2)
		assert.Equal(t, []string{"order.created"}, f.publisher.published)

		// 地址覆盖保存
		require.NotNil(t, f.addressRepo.saved)
		assert.Equal(t, "北京", f.addressRepo.saved.City)
	})

	t.Run("金币抵扣下单", func(t *testing.T) {
		f := newFixture()

		resp, err := f.uc.CreateFromCart(context.Background(), CreateFromCartRequest{
			UserID:        1,
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
			UseCoins:      true,
		})
		require.NoError(t, err)

		// 余额20金币可抵2000,上限5000*50%=2500,全额抵扣
		assert.Equal(t, int64(2000), resp.ReferralDiscount)
		assert.Equal(t, int64(20), resp.CoinsUsed)
		assert.Equal(t, int64(3000), resp.FinalAmount)
		assert.Zero(t, f.ledger.balance, "金币已扣减")
	})

	t.Run("空勾选拒绝下单", func(t *testing.T) {
		f := newFixture()
		f.selection.keys = nil

		_, err := f.uc.CreateFromCart(context.Background(), CreateFromCartRequest{
			UserID:        1,
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		assert.ErrorIs(t, err, cart.ErrEmptySelection)
		assert.Empty(t, f.orderRepo.orders)
	})

	t.Run("库存不足不产生订单", func(t *testing.T) {
		f := newFixture()
		f.productRepo.products[2].Stock = 0

		_, err := f.uc.CreateFromCart(context.Background(), CreateFromCartRequest{
			UserID:        1,
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		assert.ErrorIs(t, err, product.ErrInsufficientStock)
		assert.Empty(t, f.orderRepo.orders)
		assert.Equal(t, 10, f.productRepo.products[1].Stock, "另一个商品的库存不受影响")
		assert.Len(t, f.cartRepo.lines, 3, "购物车条目全部保留")
	})

	t.Run("提交窗口内库存被抢光", func(t *testing.T) {
		f := newFixture()
		// 普通读校验通过,加锁读时库存已被并发请求买空
		f.productRepo.onLock = func(p *product.Product) {
			if p.ID == 2 {
				p.Stock = 0
			}
		}

		_, err := f.uc.CreateFromCart(context.Background(), CreateFromCartRequest{
			UserID:        1,
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		assert.ErrorIs(t, err, product.ErrInsufficientStock)
		assert.Empty(t, f.orderRepo.orders)
	})

	t.Run("提交窗口内价格变动则拒单并退还金币", func(t *testing.T) {
		f := newFixture()
		f.productRepo.onLock = func(p *product.Product) {
			if p.ID == 1 {
				p.Price = 1100
			}
		}

		_, err := f.uc.CreateFromCart(context.Background(), CreateFromCartRequest{
			UserID:        1,
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
			UseCoins:      true,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "重新结算", "价格变动既不按旧价也不静默按新价")

		// 订单落库失败触发Saga补偿:已扣的金币全额退还
		assert.Empty(t, f.orderRepo.orders)
		assert.Equal(t, int64(20), f.ledger.balance)
		assert.Equal(t, f.ledger.debits, f.ledger.credits)
	})

	t.Run("勾选键没有对应条目", func(t *testing.T) {
		f := newFixture()
		f.selection.keys = append(f.selection.keys, cart.LineKey{ProductID: 99})

		_, err := f.uc.CreateFromCart(context.Background(), CreateFromCartRequest{
			UserID:        1,
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		assert.ErrorIs(t, err, cart.ErrLineMissing)
	})
}

// ========================================
// 立即购买
// ========================================

func TestCreateDirect(t *testing.T) {
	t.Run("正常下单不经过购物车", func(t *testing.T) {
		f := newFixture()

		resp, err := f.uc.CreateDirect(context.Background(), CreateDirectRequest{
			UserID:        1,
			ProductID:     2,
			Quantity:      2,
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		require.NoError(t, err)

		assert.Equal(t, int64(5000), resp.Subtotal)
		assert.Equal(t, int64(5500), resp.FinalAmount)
		assert.Equal(t, 3, f.productRepo.products[2].Stock)

		// 购物车与勾选集合完全不受影响
		assert.Len(t, f.cartRepo.lines, 3)
		assert.Empty(t, f.cartRepo.deleted)
		assert.Empty(t, f.selection.removed)
	})

	t.Run("有规格商品必须选颜色", func(t *testing.T) {
		f := newFixture()

		_, err := f.uc.CreateDirect(context.Background(), CreateDirectRequest{
			UserID:        1,
			ProductID:     1,
			Quantity:      1,
			ColorName:     "",
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		assert.ErrorIs(t, err, product.ErrInvalidVariant)
	})

	t.Run("不存在的颜色被拒绝", func(t *testing.T) {
		f := newFixture()

		_, err := f.uc.CreateDirect(context.Background(), CreateDirectRequest{
			UserID:        1,
			ProductID:     1,
			Quantity:      1,
			ColorName:     "金色",
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		assert.ErrorIs(t, err, product.ErrInvalidVariant)
	})

	t.Run("商品不存在", func(t *testing.T) {
		f := newFixture()

		_, err := f.uc.CreateDirect(context.Background(), CreateDirectRequest{
			UserID:        1,
			ProductID:     99,
			Quantity:      1,
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("免邮门槛", func(t *testing.T) {
		f := newFixture()
		f.productRepo.products[2].Stock = 100

		resp, err := f.uc.CreateDirect(context.Background(), CreateDirectRequest{
			UserID:        1,
			ProductID:     2,
			Quantity:      13, // 2500*13=32500 > 30000
			Address:       testAddress(),
			PaymentMethod: order.PaymentMethodCOD,
		})
		require.NoError(t, err)
		assert.Zero(t, resp.DeliveryFee)
	})
}

// ========================================
// 结算校验(不落单)
// ========================================

func TestPurchaseValidator(t *testing.T) {
	t.Run("立即购买报价含金币抵扣", func(t *testing.T) {
		f := newFixture()
		validator := f.uc.validator

		draft, err := validator.ValidateDirectPurchase(context.Background(), 1, 2, 1, "", true)
		require.NoError(t, err)

		assert.False(t, draft.FromCart)
		assert.Equal(t, int64(2500), draft.Subtotal)
		// 总额3000,上限50%=1500,余额20金币抵2000超限,取15金币=1500
		assert.Equal(t, int64(1500), draft.ReferralDiscount)
		assert.Equal(t, int64(15), draft.CoinsUsed)
		assert.Equal(t, int64(1500), draft.Total)
		assert.Equal(t, int64(20), f.ledger.balance, "校验只报价,不扣金币")
	})

	t.Run("购物车草稿带回条目键", func(t *testing.T) {
		f := newFixture()
		validator := f.uc.validator

		draft, err := validator.ValidateCartPurchase(context.Background(), 1, false)
		require.NoError(t, err)
		assert.True(t, draft.FromCart)
		assert.Len(t, draft.Keys, 2)
	})
}
