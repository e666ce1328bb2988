package repository

import (
	"context"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository reads products and toppings. The catalog is owned
// elsewhere; nothing here writes.
type CatalogRepository interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindToppingsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Topping, error)
}

// GormCatalogRepository implements CatalogRepository using GORM.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository.
func NewGormCatalogRepository(db *gorm.DB) CatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindProductByID loads a non-banned product with its size and topping options.
func (r *GormCatalogRepository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Sizes").
		Preload("Toppings").
		Where("id = ? AND is_banned = ?", id, false).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindToppingsByIDs returns the toppings that exist among ids. Missing ids
// are simply absent from the result.
func (r *GormCatalogRepository) FindToppingsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Topping, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var toppings []models.Topping
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&toppings).Error; err != nil {
		return nil, err
	}
	return toppings, nil
}
