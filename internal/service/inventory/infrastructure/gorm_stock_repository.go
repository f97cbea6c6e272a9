// internal/service/inventory/infrastructure/gorm_stock_repository.go
package infrastructure

import (
	"context"
	goerrors "errors"

	"eplatform/internal/service/inventory/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository 是 StockRepository 的 GORM 实现。
// 每个变更都是一条带守卫条件的单语句 UPDATE: 并发调用由数据库的
// 行级原子性串行化，进程内不持有任何锁，因此天然支持多实例部署。
// RowsAffected == 0 即守卫不满足，按普通控制流返回 false。
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository 创建一个新的 GORM 仓储实例
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) EnsureExists(ctx context.Context, sku string) error {
	// INSERT IGNORE 语义: 行已存在时什么都不做，首次引用时建 available=0 的行。
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ProductStockModel{Sku: sku}).Error
	if err != nil {
		return errors.Wrapf(err, "ensure stock row for sku %s", sku)
	}
	return nil
}

func (r *GormStockRepository) FindBySku(ctx context.Context, sku string) (*domain.ProductStock, error) {
	var model ProductStockModel
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStockNotFound
		}
		return nil, errors.Wrapf(err, "find stock for sku %s", sku)
	}
	return ToDomainStock(&model), nil
}

func (r *GormStockRepository) LockStock(ctx context.Context, sku string, qty int) (bool, error) {
	// 零数量锁定没有意义，直接拒绝，不触达数据库。
	if qty <= 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&ProductStockModel{}).
		Where("sku = ? AND available >= ?", sku, qty).
		Updates(map[string]interface{}{
			"available": gorm.Expr("available - ?", qty),
			"reserved":  gorm.Expr("reserved + ?", qty),
			"version":   gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "lock stock sku=%s qty=%d", sku, qty)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormStockRepository) ConfirmStock(ctx context.Context, sku string, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&ProductStockModel{}).
		Where("sku = ? AND reserved >= ?", sku, qty).
		Updates(map[string]interface{}{
			"reserved": gorm.Expr("reserved - ?", qty),
			"version":  gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "confirm stock sku=%s qty=%d", sku, qty)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormStockRepository) ReleaseStock(ctx context.Context, sku string, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&ProductStockModel{}).
		Where("sku = ? AND reserved >= ?", sku, qty).
		Updates(map[string]interface{}{
			"available": gorm.Expr("available + ?", qty),
			"reserved":  gorm.Expr("reserved - ?", qty),
			"version":   gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "release stock sku=%s qty=%d", sku, qty)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormStockRepository) CreditStock(ctx context.Context, sku string, qty int) error {
	if qty <= 0 {
		return nil
	}
	if err := r.EnsureExists(ctx, sku); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&ProductStockModel{}).
		Where("sku = ?", sku).
		Updates(map[string]interface{}{
			"available": gorm.Expr("available + ?", qty),
			"version":   gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "credit stock sku=%s qty=%d", sku, qty)
	}
	return nil
}

func (r *GormStockRepository) TryReserve(ctx context.Context, sku string, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}
	res := r.db.WithContext(ctx).Model(&ProductStockModel{}).
		Where("sku = ? AND available >= ?", sku, qty).
		Updates(map[string]interface{}{
			"available": gorm.Expr("available - ?", qty),
			"version":   gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, errors.Wrapf(res.Error, "try reserve sku=%s qty=%d", sku, qty)
	}
	return res.RowsAffected > 0, nil
}
