package repository

import (
	"context"
	"time"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserDiscountRepository is the per-(user, discount) usage ledger.
type UserDiscountRepository interface {
	Find(ctx context.Context, userID string, discountID uuid.UUID) (*models.UserDiscount, error)
	// MarkUsed flips the entry to used, creating it when absent. It reports
	// false when the entry was already used.
	MarkUsed(ctx context.Context, userID string, discountID uuid.UUID) (bool, error)
	// Release flips a used entry back to unused. It reports false when there
	// was nothing to release.
	Release(ctx context.Context, userID string, discountID uuid.UUID) (bool, error)
	// Settle forces the entry to used regardless of its current state.
	Settle(ctx context.Context, userID string, discountID uuid.UUID) error
	Create(ctx context.Context, entry *models.UserDiscount) error
	ListByUser(ctx context.Context, userID string, isUsed *bool) ([]models.UserDiscount, error)
	UsedDiscountIDs(ctx context.Context, userID string) ([]uuid.UUID, error)
}

// GormUserDiscountRepository implements UserDiscountRepository using GORM.
type GormUserDiscountRepository struct {
	db *gorm.DB
}

// NewGormUserDiscountRepository creates a new GormUserDiscountRepository.
func NewGormUserDiscountRepository(db *gorm.DB) UserDiscountRepository {
	return &GormUserDiscountRepository{db: db}
}

func (r *GormUserDiscountRepository) Find(ctx context.Context, userID string, discountID uuid.UUID) (*models.UserDiscount, error) {
	var entry models.UserDiscount
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND discount_id = ?", userID, discountID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarkUsed relies on the (user_id, discount_id) unique index: concurrent
// callers race on the same row and only one sees a row affected.
func (r *GormUserDiscountRepository) MarkUsed(ctx context.Context, userID string, discountID uuid.UUID) (bool, error) {
	entry := models.UserDiscount{UserID: userID, DiscountID: discountID, IsUsed: true}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "discount_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"is_used": true, "updated_at": time.Now()}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Eq{Column: clause.Column{Table: "user_discounts", Name: "is_used"}, Value: false},
			}},
		}).
		Create(&entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormUserDiscountRepository) Release(ctx context.Context, userID string, discountID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserDiscount{}).
		Where("user_id = ? AND discount_id = ? AND is_used = ?", userID, discountID, true).
		Update("is_used", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormUserDiscountRepository) Settle(ctx context.Context, userID string, discountID uuid.UUID) error {
	entry := models.UserDiscount{UserID: userID, DiscountID: discountID, IsUsed: true}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "discount_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"is_used": true, "updated_at": time.Now()}),
		}).
		Create(&entry).Error
}

func (r *GormUserDiscountRepository) Create(ctx context.Context, entry *models.UserDiscount) error {
	return r.db.WithContext(ctx).Omit("Discount").Create(entry).Error
}

// ListByUser returns the user's ledger entries with their discounts.
func (r *GormUserDiscountRepository) ListByUser(ctx context.Context, userID string, isUsed *bool) ([]models.UserDiscount, error) {
	var entries []models.UserDiscount
	query := r.db.WithContext(ctx).
		Preload("Discount").
		Where("user_id = ?", userID)
	if isUsed != nil {
		query = query.Where("is_used = ?", *isUsed)
	}
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *GormUserDiscountRepository) UsedDiscountIDs(ctx context.Context, userID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.UserDiscount{}).
		Where("user_id = ? AND is_used = ?", userID, true).
		Pluck("discount_id", &ids).Error
	return ids, err
}
