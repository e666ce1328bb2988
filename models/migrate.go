package models

import "gorm.io/gorm"

// Migrate creates or updates every table owned by this service.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Size{},
		&Topping{},
		&Product{},
		&Store{},
		&User{},
		&Cart{},
		&CartItem{},
		&Discount{},
		&UserDiscount{},
		&Order{},
		&OrderItem{},
		&OrderItemTopping{},
		&LoyaltyPoint{},
		&LoyaltyHistory{},
	)
}
