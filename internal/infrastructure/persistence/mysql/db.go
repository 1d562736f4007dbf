package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/shopmall/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			// 使用UTC+8时间（配合MySQL的TZ=Asia/Shanghai）
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	// 学习要点：合理的连接池配置对性能至关重要
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	// 定义需要迁移的模型
	// 注意：这里需要使用GORM的模型定义（带tag），不是domain层的实体
	return db.AutoMigrate(
		&UserModel{},
		&ProductModel{},
		&ProductColorModel{},
		&CartItemModel{},
		&AddressModel{},
		&OrderModel{},
		&OrderItemModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:buyer;comment:角色(buyer/seller/admin)"`
	Coins     int64          `gorm:"default:0;comment:推荐奖励金币余额"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// ProductModel GORM商品模型
// 设计说明:
// 1. 价格使用int64存储最小货币单位(避免浮点数精度问题)
// 2. SKU有唯一索引,防止重复上架
// 3. SellerID关联用户表,支持查询某卖家发布的所有商品
// 4. 添加复合索引优化列表查询性能
type ProductModel struct {
	ID            uint                `gorm:"primaryKey"`
	SKU           string              `gorm:"uniqueIndex;size:64;not null;comment:商品编码"`
	Name          string              `gorm:"index:idx_search;size:200;not null;comment:商品名称"` // 搜索索引
	Description   string              `gorm:"type:text;comment:商品描述"`
	CoverURL      string              `gorm:"size:500;comment:主图URL"`
	Price         int64               `gorm:"index:idx_list;not null;comment:售价(最小货币单位)"` // 排序索引
	Stock         int                 `gorm:"default:0;comment:库存数量"`
	DeliveryPrice int64               `gorm:"default:0;comment:展示用运费参考价"`
	SellerID      uint                `gorm:"index;not null;comment:卖家用户ID"`
	Colors        []ProductColorModel `gorm:"foreignKey:ProductID"`        // 一对多关联
	CreatedAt     time.Time           `gorm:"index:idx_list;comment:创建时间"` // 排序索引
	UpdatedAt     time.Time           `gorm:"comment:更新时间"`
	DeletedAt     gorm.DeletedAt      `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "products"
}

// ProductColorModel GORM商品颜色规格模型
// 设计说明:
// 1. 颜色是商品的值对象,随商品一起创建,没有独立的修改入口
// 2. (product_id, name)有唯一索引,同一商品颜色不重复
type ProductColorModel struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"uniqueIndex:uk_product_color;not null;comment:商品ID"`
	Name      string `gorm:"uniqueIndex:uk_product_color;size:50;not null;comment:颜色名称"`
	HexCode   string `gorm:"size:16;comment:颜色展示值"`
}

// TableName 指定表名
func (ProductColorModel) TableName() string {
	return "product_colors"
}

// CartItemModel GORM购物车条目模型
// 设计说明:
//  1. (user_id, product_id, color_name)唯一索引:同商品同颜色合并数量
//  2. UnitPrice是加入购物车时的价格快照,仅用于购物车页展示
//     结算时以商品表的当前价格为准
type CartItemModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex:uk_cart_line;not null;comment:用户ID"`
	ProductID uint      `gorm:"uniqueIndex:uk_cart_line;not null;comment:商品ID"`
	ColorName string    `gorm:"uniqueIndex:uk_cart_line;size:50;not null;default:'';comment:颜色名称(无规格为空串)"`
	Quantity  int       `gorm:"not null;comment:数量"`
	UnitPrice int64     `gorm:"not null;comment:加购时单价快照"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CartItemModel) TableName() string {
	return "cart_items"
}

// AddressModel GORM收货地址模型
// 设计说明:
// 1. 每个用户一条记录(user_id唯一索引),下单时覆盖更新
// 2. 订单内嵌的地址是下单时的快照,改地址不影响历史订单
type AddressModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null;comment:用户ID"`
	FirstName string    `gorm:"size:50;not null;comment:名"`
	LastName  string    `gorm:"size:50;not null;comment:姓"`
	Email     string    `gorm:"size:100;not null;comment:邮箱"`
	Phone     string    `gorm:"size:30;not null;comment:电话"`
	Address   string    `gorm:"size:255;not null;comment:街道地址"`
	City      string    `gorm:"size:100;not null;comment:城市"`
	ZipCode   string    `gorm:"size:20;not null;comment:邮编"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (AddressModel) TableName() string {
	return "addresses"
}

// OrderModel GORM订单模型
// 设计要点:
// 1. 与OrderItemModel是一对多关系
// 2. OrderNo有唯一索引(业务主键)
// 3. Status使用int存储(节省空间,便于索引)
// 4. 金额字段和地址字段都是下单时刻的快照,创建后不可变
type OrderModel struct {
	ID               uint             `gorm:"primaryKey"`
	OrderNo          string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID           uint             `gorm:"index;not null;comment:买家用户ID"`
	TotalAmount      int64            `gorm:"not null;comment:商品小计+运费"`
	DeliveryFee      int64            `gorm:"not null;comment:运费"`
	ReferralDiscount int64            `gorm:"default:0;comment:金币抵扣金额"`
	CoinsUsed        int64            `gorm:"default:0;comment:抵扣用掉的金币数"`
	FinalAmount      int64            `gorm:"not null;comment:实付金额"`
	PaymentMethod    string           `gorm:"size:20;not null;comment:支付方式"`
	Status           int              `gorm:"index;type:tinyint;default:1;comment:订单状态(1待处理2处理中3已发货4已送达5已取消)"`
	CancelReason     string           `gorm:"size:255;comment:取消原因"`
	AddrFirstName    string           `gorm:"size:50;not null;comment:收货人名"`
	AddrLastName     string           `gorm:"size:50;not null;comment:收货人姓"`
	AddrEmail        string           `gorm:"size:100;not null;comment:收货邮箱"`
	AddrPhone        string           `gorm:"size:30;not null;comment:收货电话"`
	AddrAddress      string           `gorm:"size:255;not null;comment:收货街道地址"`
	AddrCity         string           `gorm:"size:100;not null;comment:收货城市"`
	AddrZipCode      string           `gorm:"size:20;not null;comment:收货邮编"`
	Items            []OrderItemModel `gorm:"foreignKey:OrderID"` // 一对多关联
	CreatedAt        time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt        time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 设计要点:
// 1. 记录下单时的商品名、颜色、单价快照
// 2. OrderID外键关联orders表
type OrderItemModel struct {
	ID          uint   `gorm:"primaryKey"`
	OrderID     uint   `gorm:"index;not null;comment:订单ID"`
	ProductID   uint   `gorm:"index;not null;comment:商品ID"`
	ProductName string `gorm:"size:200;not null;comment:下单时商品名快照"`
	ColorName   string `gorm:"size:50;not null;default:'';comment:颜色名称(无规格为空串)"`
	Quantity    int    `gorm:"not null;comment:购买数量"`
	UnitPrice   int64  `gorm:"not null;comment:下单时单价快照"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}
