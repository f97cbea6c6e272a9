// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"eplatform/internal/pkg/config"
	"eplatform/internal/service/order/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderModel 对应数据库中的 orders 表。
type OrderModel struct {
	ID               uint               `gorm:"primaryKey"`
	OrderID          string             `gorm:"uniqueIndex:ux_order_id;size:64;not null"`
	Items            []domain.OrderItem `gorm:"serializer:json"`
	TotalAmountCents int64              `gorm:"not null"`
	Currency         string             `gorm:"size:8"`
	State            string             `gorm:"size:16;not null"`
	FailureReason    string             `gorm:"size:255"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName 指定 GORM 应该使用的表名
func (OrderModel) TableName() string {
	return "orders"
}

// OpenDB 建立订单服务自己的 MySQL 连接并迁移表结构。
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	dsnCfg := mysql.NewConfig()
	dsnCfg.User = cfg.Infra.Mysql.User
	dsnCfg.Passwd = cfg.Infra.Mysql.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", cfg.Infra.Mysql.Host, cfg.Infra.Mysql.Port)
	dsnCfg.DBName = cfg.Infra.Mysql.Database
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.Local

	db, err := gorm.Open(gormmysql.Open(dsnCfg.FormatDSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	if err := db.AutoMigrate(&OrderModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate order schema: %w", err)
	}
	return db, nil
}

// GormOrderRepository 是 OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save 以 order_id 为冲突键做 upsert: 创建与状态更新共用一个入口。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := &OrderModel{
		OrderID:          order.ID,
		Items:            order.Items,
		TotalAmountCents: order.TotalAmountCents,
		Currency:         order.Currency,
		State:            string(order.State),
		FailureReason:    order.FailureReason,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "failure_reason", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return errors.Wrapf(err, "save order %s", order.ID)
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("order_id = ?", id).First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrapf(err, "find order %s", id)
	}
	return &domain.Order{
		ID:               model.OrderID,
		Items:            model.Items,
		TotalAmountCents: model.TotalAmountCents,
		Currency:         model.Currency,
		State:            domain.State(model.State),
		FailureReason:    model.FailureReason,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}, nil
}
