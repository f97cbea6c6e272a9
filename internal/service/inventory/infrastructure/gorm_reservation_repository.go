// internal/service/inventory/infrastructure/gorm_reservation_repository.go
package infrastructure

import (
	"context"
	goerrors "errors"
	"time"

	"eplatform/internal/service/inventory/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormReservationRepository 是 ReservationRepository 的 GORM 实现。
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository 创建一个新的 GORM 仓储实例
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// Create 插入一条新预占。order_id 的唯一约束把并发的重复投递
// 压成 ErrDuplicateReservation，这是幂等边界的最终兜底。
func (r *GormReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	model := ToReservationModel(reservation)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateReservation
		}
		return errors.Wrapf(err, "create reservation for order %s", reservation.OrderID)
	}
	return nil
}

// Save 持久化状态流转。行项目创建后不可变，只更新 status/updated_at。
func (r *GormReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) error {
	err := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Where("order_id = ?", reservation.OrderID).
		Updates(map[string]interface{}{
			"status":     string(reservation.Status),
			"updated_at": reservation.UpdatedAt,
		}).Error
	if err != nil {
		return errors.Wrapf(err, "save reservation for order %s", reservation.OrderID)
	}
	return nil
}

func (r *GormReservationRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Reservation, error) {
	var model ReservationModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, errors.Wrapf(err, "find reservation for order %s", orderID)
	}
	return ToDomainReservation(&model), nil
}

func (r *GormReservationRepository) FindPendingBefore(ctx context.Context, threshold time.Time) ([]*domain.Reservation, error) {
	var models []ReservationModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(domain.StatusPending), threshold).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "find pending reservations")
	}
	reservations := make([]*domain.Reservation, 0, len(models))
	for i := range models {
		reservations = append(reservations, ToDomainReservation(&models[i]))
	}
	return reservations, nil
}
