package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/shopmall/docs" // swagger文档注册
	appcart "github.com/xiebiao/shopmall/internal/application/cart"
	appcheckout "github.com/xiebiao/shopmall/internal/application/checkout"
	apporder "github.com/xiebiao/shopmall/internal/application/order"
	appproduct "github.com/xiebiao/shopmall/internal/application/product"
	appuser "github.com/xiebiao/shopmall/internal/application/user"
	"github.com/xiebiao/shopmall/internal/domain/pricing"
	"github.com/xiebiao/shopmall/internal/domain/product"
	"github.com/xiebiao/shopmall/internal/domain/user"
	"github.com/xiebiao/shopmall/internal/infrastructure/config"
	"github.com/xiebiao/shopmall/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/shopmall/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/shopmall/internal/interface/http/handler"
	"github.com/xiebiao/shopmall/internal/interface/http/middleware"
	"github.com/xiebiao/shopmall/pkg/jwt"
	"github.com/xiebiao/shopmall/pkg/metrics"
	"github.com/xiebiao/shopmall/pkg/mq"
	"github.com/xiebiao/shopmall/pkg/response"
	"github.com/xiebiao/shopmall/pkg/tracing"
)

// @title           ShopMall API
// @version         1.0
// @description     商城下单链路API:购物车、结算、订单生命周期
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

// main 主程序入口
// 说明：手动依赖注入(与wire.go的注入器声明保持一致,wire gen生成的代码可替换这里的组装)
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化可观测性
	metrics.InitMetrics()
	if endpoint := os.Getenv("SHOPMALL_OTLP_ENDPOINT"); endpoint != "" {
		shutdown, err := tracing.InitTracer("shopmall-api", endpoint)
		if err != nil {
			log.Printf("初始化Tracer失败(继续启动): %v", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化MQ发布器(MQ不可用时降级为不发事件,不阻塞启动)
	var publisher appcheckout.EventPublisher
	if cfg.MQ.URL != "" {
		mqPublisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Printf("初始化MQ发布器失败(事件发布降级关闭): %v", err)
		} else {
			defer mqPublisher.Close()
			publisher = newGuardedPublisher(mqPublisher)
		}
	}

	// 6. 依赖注入（手动组装）
	// 依赖注入链:Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	addressRepo := mysql.NewAddressRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	selectionStore := redis.NewSelectionStore(redisClient)
	coinLedger := redis.NewCoinLedger(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	productService := product.NewService(productRepo)
	pricer := pricing.NewEngine(pricing.Config{
		DeliveryFee:           cfg.Checkout.DeliveryFee,
		FreeShippingThreshold: cfg.Checkout.FreeShippingThreshold,
		CoinValue:             cfg.Checkout.CoinValue,
		DiscountCapPercent:    cfg.Checkout.DiscountCapPercent,
	})

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, coinLedger)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)

	publishProductUseCase := appproduct.NewPublishProductUseCase(productService)
	listProductsUseCase := appproduct.NewListProductsUseCase(productService)
	getProductUseCase := appproduct.NewGetProductUseCase(productService)

	addItemUseCase := appcart.NewAddItemUseCase(cartRepo, productRepo)
	updateItemUseCase := appcart.NewUpdateItemUseCase(cartRepo)
	removeItemUseCase := appcart.NewRemoveItemUseCase(cartRepo, selectionStore)
	toggleSelectionUseCase := appcart.NewToggleSelectionUseCase(cartRepo, selectionStore)
	listCartUseCase := appcart.NewListCartUseCase(cartRepo, selectionStore, pricer)

	validator := appcheckout.NewPurchaseValidator(cartRepo, productRepo, selectionStore, coinLedger, pricer)
	createOrderUseCase := appcheckout.NewCreateOrderUseCase(
		validator, orderRepo, productRepo, cartRepo, addressRepo,
		selectionStore, coinLedger, txManager, publisher,
		cfg.Checkout.Timeout,
	)

	getOrderUseCase := apporder.NewGetOrderUseCase(orderRepo)
	listOrdersUseCase := apporder.NewListOrdersUseCase(orderRepo)
	cancelOrderUseCase := apporder.NewCancelOrderUseCase(orderRepo, productRepo, coinLedger, txManager)
	advanceStatusUseCase := apporder.NewAdvanceStatusUseCase(orderRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	productHandler := handler.NewProductHandler(publishProductUseCase, listProductsUseCase, getProductUseCase)
	cartHandler := handler.NewCartHandler(
		addItemUseCase, updateItemUseCase, removeItemUseCase,
		toggleSelectionUseCase, listCartUseCase, validator,
	)
	orderHandler := handler.NewOrderHandler(
		createOrderUseCase, getOrderUseCase, listOrdersUseCase,
		cancelOrderUseCase, advanceStatusUseCase,
	)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// 8. 注册路由
	registerRoutes(r, userHandler, productHandler, cartHandler, orderHandler, authMiddleware)

	// 9. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   指标端点: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 商品模块
		products := v1.Group("/products")
		{
			// 公开接口,不需要登录
			products.GET("", productHandler.ListProducts)
			products.GET("/:id", productHandler.GetProduct)

			// 上架商品(商家/管理员)
			products.POST("",
				authMiddleware.RequireAuth(),
				authMiddleware.RequireRoles(user.RoleSeller, user.RoleAdmin),
				productHandler.PublishProduct)
		}

		// 购物车模块(全部需要登录)
		cart := v1.Group("/cart")
		cart.Use(authMiddleware.RequireAuth())
		{
			cart.GET("", cartHandler.ListCart)
			cart.POST("/add", cartHandler.AddItem)
			cart.PUT("/update", cartHandler.UpdateItem)
			cart.DELETE("/remove/:productId", cartHandler.RemoveItem)
			cart.PUT("/toggle-selection", cartHandler.ToggleSelection)
			cart.POST("/validate-direct-purchase", cartHandler.ValidateDirectPurchase)
		}

		// 订单模块(全部需要登录)
		orders := v1.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.POST("/direct", orderHandler.CreateDirectOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)

			// 推进状态(商家/管理员)
			orders.PUT("/:id/status",
				authMiddleware.RequireRoles(user.RoleSeller, user.RoleAdmin),
				orderHandler.AdvanceStatus)
		}
	}
}
