package repository

import (
	"context"
	"strings"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DiscountRepository defines the interface for discount data access.
type DiscountRepository interface {
	Create(ctx context.Context, discount *models.Discount) error
	Update(ctx context.Context, discount *models.Discount) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error)
	FindByCode(ctx context.Context, code string) (*models.Discount, error)
	FindAll(ctx context.Context, page, limit int) ([]models.Discount, int64, error)
	FindAvailable(ctx context.Context, now time.Time) ([]models.Discount, error)
	SetLock(ctx context.Context, id uuid.UUID, locked bool) error
}

// GormDiscountRepository implements DiscountRepository using GORM.
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewGormDiscountRepository creates a new GormDiscountRepository.
func NewGormDiscountRepository(db *gorm.DB) DiscountRepository {
	return &GormDiscountRepository{db: db}
}

func (r *GormDiscountRepository) Create(ctx context.Context, discount *models.Discount) error {
	return r.db.WithContext(ctx).Create(discount).Error
}

// Update writes every mutable column, zero values included.
func (r *GormDiscountRepository) Update(ctx context.Context, discount *models.Discount) error {
	return r.db.WithContext(ctx).
		Model(discount).
		Select("title", "description", "discount_percent", "expiry_date", "min_order", "required_points", "updated_at").
		Updates(discount).Error
}

func (r *GormDiscountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Discount{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormDiscountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.WithContext(ctx).First(&discount, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

// FindByCode retrieves a discount by promotion code (case-insensitive).
func (r *GormDiscountRepository) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Where("UPPER(promotion_code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// FindAll retrieves paginated discounts, newest first.
func (r *GormDiscountRepository) FindAll(ctx context.Context, page, limit int) ([]models.Discount, int64, error) {
	var discounts []models.Discount
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Discount{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&discounts).Error; err != nil {
		return nil, 0, err
	}
	return discounts, total, nil
}

// FindAvailable returns unlocked discounts that have not expired at now.
func (r *GormDiscountRepository) FindAvailable(ctx context.Context, now time.Time) ([]models.Discount, error) {
	var discounts []models.Discount
	err := r.db.WithContext(ctx).
		Where("expiry_date > ? AND is_lock = ?", now, false).
		Order("expiry_date ASC").
		Find(&discounts).Error
	return discounts, err
}

func (r *GormDiscountRepository) SetLock(ctx context.Context, id uuid.UUID, locked bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id = ?", id).
		Update("is_lock", locked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
