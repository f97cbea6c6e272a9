// internal/service/inventory/infrastructure/db.go
package infrastructure

import (
	"fmt"
	"time"

	"eplatform/internal/pkg/config"
	"eplatform/internal/pkg/logger"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// OpenDB 建立 MySQL 连接并迁移库存服务的表结构。
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	dsnCfg := mysql.NewConfig()
	dsnCfg.User = cfg.Infra.Mysql.User
	dsnCfg.Passwd = cfg.Infra.Mysql.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", cfg.Infra.Mysql.Host, cfg.Infra.Mysql.Port)
	dsnCfg.DBName = cfg.Infra.Mysql.Database
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.Local

	// TranslateError 让唯一键冲突统一映射为 gorm.ErrDuplicatedKey，
	// 仓储层再翻译成领域错误。
	db, err := gorm.Open(gormmysql.Open(dsnCfg.FormatDSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	if err := db.AutoMigrate(&ProductStockModel{}, &ReservationModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate inventory schema: %w", err)
	}

	return db, nil
}

// SeedStock 在台账为空时灌入演示数据，方便本地把整条链路跑起来。
func SeedStock(db *gorm.DB) error {
	var count int64
	if err := db.Model(&ProductStockModel{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	seed := []ProductStockModel{
		{Sku: "SKU-001", Available: 100},
		{Sku: "SKU-002", Available: 50},
		{Sku: "SKU-003", Available: 200},
	}
	if err := db.Create(&seed).Error; err != nil {
		return err
	}
	logger.Logger().Info().Int("skus", len(seed)).Msg("Seeded empty stock ledger.")
	return nil
}
