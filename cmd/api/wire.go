//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入（如Spring的@Autowired）不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewUserRepository）
// - Injector: 声明最终要构造的目标类型（如*gin.Engine）
// - wire.Bind: 把接口绑定到具体实现（如checkout.TxManager → *mysql.TxManager）

package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appcart "github.com/xiebiao/shopmall/internal/application/cart"
	appcheckout "github.com/xiebiao/shopmall/internal/application/checkout"
	apporder "github.com/xiebiao/shopmall/internal/application/order"
	appproduct "github.com/xiebiao/shopmall/internal/application/product"
	appuser "github.com/xiebiao/shopmall/internal/application/user"
	"github.com/xiebiao/shopmall/internal/domain/cart"
	"github.com/xiebiao/shopmall/internal/domain/order"
	"github.com/xiebiao/shopmall/internal/domain/pricing"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/referral"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/internal/infrastructure/config"
	"github.com/xiebiao/shopmall/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/shopmall/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/shopmall/internal/interface/http/handler"
	"github.com/xiebiao/shopmall/internal/interface/http/middleware"
	"github.com/xiebiao/shopmall/pkg/jwt"
	"github.com/xiebiao/shopmall/pkg/mq"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
// 包含：配置加载、数据库连接、Redis连接
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
// 包含：所有Repository的构造函数与事务管理器
//
// 教学要点：
// NewTxManager返回具体类型*mysql.TxManager，而下单用例和取消订单用例
// 各自声明了自己的TxManager小接口（依赖倒置），需要wire.Bind把两个
// 接口都绑到同一个实现上
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,    // 用户仓储
	mysql.NewProductRepository, // 商品仓储
	mysql.NewCartRepository,    // 购物车仓储
	mysql.NewOrderRepository,   // 订单仓储
	mysql.NewAddressRepository, // 收货地址仓储
	mysql.NewTxManager,         // 事务管理器
	wire.Bind(new(appcheckout.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apporder.TxManager), new(*mysql.TxManager)),
)

// storeSet Redis存储依赖
// 包含：Session存储、勾选集合、金币账本
var storeSet = wire.NewSet(
	provideSessionStore,     // Session存储
	redis.NewSelectionStore, // 购物车勾选集合
	redis.NewCoinLedger,     // 金币账本（返回referral.Ledger接口）
	wire.Bind(new(cart.SelectionStore), new(*redis.SelectionStore)),
)

// domainSet 领域层依赖
// 包含：领域服务与计价引擎
var domainSet = wire.NewSet(
	user.NewService,      // 用户领域服务
	product.NewService,   // 商品领域服务
	providePricingEngine, // 计价引擎（参数来自配置）
)

// applicationSet 应用层依赖
// 包含：所有Use Case的构造函数
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appproduct.NewPublishProductUseCase,
	appproduct.NewListProductsUseCase,
	appproduct.NewGetProductUseCase,
	appcart.NewAddItemUseCase,
	appcart.NewUpdateItemUseCase,
	appcart.NewRemoveItemUseCase,
	appcart.NewToggleSelectionUseCase,
	appcart.NewListCartUseCase,
	appcheckout.NewPurchaseValidator,
	provideCreateOrderUseCase, // Saga超时来自配置，需要手动Provider
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewAdvanceStatusUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,            // JWT管理器（需要从config提取参数）
	middleware.NewAuthMiddleware, // 认证中间件
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewProductHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

// provideJWTManager 从配置创建JWT管理器
// 教学要点：config.Config 包含多个字段，但jwt.NewManager只需要JWT相关的配置
// Wire无法自动知道如何从Config提取参数，所以需要手动编写Provider
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// providePricingEngine 从配置创建计价引擎
// 配送费、免邮门槛、金币面值、折抵上限都来自配置文件，
// 计价引擎本身不感知配置来源
func providePricingEngine(cfg *config.Config) *pricing.Engine {
	return pricing.NewEngine(pricing.Config{
		DeliveryFee:           cfg.Checkout.DeliveryFee,
		FreeShippingThreshold: cfg.Checkout.FreeShippingThreshold,
		CoinValue:             cfg.Checkout.CoinValue,
		DiscountCapPercent:    cfg.Checkout.DiscountCapPercent,
	})
}

// provideCreateOrderUseCase 创建下单用例
// Wire无法注入裸time.Duration，Saga超时从配置提取后手动传入
func provideCreateOrderUseCase(
	validator *appcheckout.PurchaseValidator,
	orderRepo order.Repository,
	productRepo product.Repository,
	cartRepo cart.Repository,
	addressRepo order.AddressRepository,
	selection cart.SelectionStore,
	ledger referral.Ledger,
	txManager appcheckout.TxManager,
	publisher appcheckout.EventPublisher,
	cfg *config.Config,
) *appcheckout.CreateOrderUseCase {
	return appcheckout.NewCreateOrderUseCase(
		validator, orderRepo, productRepo, cartRepo, addressRepo,
		selection, ledger, txManager, publisher,
		cfg.Checkout.Timeout,
	)
}

// provideEventPublisher 创建带熔断保护的事件发布器
// MQ不可用时返回nil（下单用例对nil发布器跳过事件发布），
// 启动不因消息中间件故障而失败
func provideEventPublisher(cfg *config.Config) appcheckout.EventPublisher {
	if cfg.MQ.URL == "" {
		return nil
	}
	mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		log.Printf("初始化MQ发布器失败(事件发布降级关闭): %v", err)
		return nil
	}
	return newGuardedPublisher(mqPublisher)
}

// provideGinEngine 创建并配置Gin引擎
// 教学要点：
// 1. Gin引擎需要注册所有路由
// 2. 路由注册需要所有的Handler和Middleware
// 3. Wire会自动注入这些依赖，路由表复用main.go的registerRoutes
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	registerRoutes(r, userHandler, productHandler, cartHandler, orderHandler, authMiddleware)
	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
// 返回：配置好的Gin引擎
// 错误：如果任何依赖创建失败
//
// 依赖链示例：
// *gin.Engine 需要 → *handler.OrderHandler
// *handler.OrderHandler 需要 → *appcheckout.CreateOrderUseCase
// *appcheckout.CreateOrderUseCase 需要 → order.Repository + appcheckout.TxManager
// order.Repository 需要 → *gorm.DB
// *gorm.DB 需要 → *config.Config
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		// 基础设施层
		infrastructureSet,

		// 仓储层
		repositorySet,

		// Redis存储
		storeSet,

		// 领域层
		domainSet,

		// 应用层
		applicationSet,

		// 事件发布
		provideEventPublisher,

		// 中间件层
		middlewareSet,

		// 接口层
		handlerSet,

		// Gin引擎
		provideGinEngine,
	)

	// 这里的返回值是占位符，实际由wire gen生成的wire_gen.go替代
	return nil, nil
}
