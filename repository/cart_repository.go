package repository

import (
	"context"

	"github.com/CodeForFun2004/The-Chill-Cup-API/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	SaveTotals(ctx context.Context, cart *models.Cart) error
	Delete(ctx context.Context, cart *models.Cart) error

	AddItem(ctx context.Context, item *models.CartItem) error
	FindItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.CartItem, error)
	UpdateItemPricing(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, item *models.CartItem) error
}

// GormCartRepository implements CartRepository using GORM.
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository.
func NewGormCartRepository(db *gorm.DB) CartRepository {
	return &GormCartRepository{db: db}
}

// FindByUserID loads the user's cart with line items, their products and toppings.
func (r *GormCartRepository) FindByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Sizes").
		Preload("Items.Toppings").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).Omit("Items").Create(cart).Error
}

// SaveTotals persists the derived totals, including zero values.
func (r *GormCartRepository) SaveTotals(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).
		Model(cart).
		Select("subtotal", "delivery_fee", "discount", "promo_code", "total", "updated_at").
		Updates(cart).Error
}

// Delete removes the cart, its line items and their topping links.
func (r *GormCartRepository) Delete(ctx context.Context, cart *models.Cart) error {
	db := r.db.WithContext(ctx)
	if err := db.Exec(
		`DELETE FROM cart_item_toppings WHERE cart_item_id IN (SELECT id FROM cart_items WHERE cart_id = ?)`,
		cart.ID,
	).Error; err != nil {
		return err
	}
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Cart{}, "id = ?", cart.ID).Error
}

// AddItem inserts a line item and links its existing toppings without
// touching the topping rows themselves.
func (r *GormCartRepository) AddItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Omit("Product", "Toppings.*").Create(item).Error
}

// FindItem loads a line item owned by userID along with the data needed to re-price it.
func (r *GormCartRepository) FindItem(ctx context.Context, userID string, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Sizes").
		Preload("Toppings").
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormCartRepository) UpdateItemPricing(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Model(item).
		Select("quantity", "price", "updated_at").
		Updates(item).Error
}

func (r *GormCartRepository) DeleteItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Select("Toppings").Delete(item).Error
}
