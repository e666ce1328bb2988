package repository

import (
	"context"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error)
	// Transition applies fields only while the order is still in status from.
	// It reports false when another writer moved the order first.
	Transition(ctx context.Context, id uuid.UUID, from models.OrderStatus, fields map[string]interface{}) (bool, error)
	MarkPaid(ctx context.Context, id uuid.UUID, reference string) (bool, error)
	SumDeliveryFees(ctx context.Context, filter models.OrderFilter) (count int64, sum int64, err error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order together with its item and topping snapshots.
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Toppings").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Toppings").
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List retrieves a filtered page of orders, newest first.
func (r *GormOrderRepository) List(ctx context.Context, filter models.OrderFilter, page, limit int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := applyOrderFilter(r.db.WithContext(ctx).Model(&models.Order{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Preload("Items.Toppings").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormOrderRepository) Transition(ctx context.Context, id uuid.UUID, from models.OrderStatus, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, reference string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentStatusUnpaid).
		Updates(map[string]interface{}{
			"payment_status":    models.PaymentStatusPaid,
			"payment_reference": reference,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormOrderRepository) SumDeliveryFees(ctx context.Context, filter models.OrderFilter) (int64, int64, error) {
	var row struct {
		Count int64
		Sum   int64
	}
	err := applyOrderFilter(r.db.WithContext(ctx).Model(&models.Order{}), filter).
		Select("COUNT(*) AS count, COALESCE(SUM(delivery_fee), 0) AS sum").
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Count, row.Sum, nil
}

func applyOrderFilter(query *gorm.DB, filter models.OrderFilter) *gorm.DB {
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.ShipperID != "" {
		query = query.Where("shipper_assigned = ?", filter.ShipperID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}
