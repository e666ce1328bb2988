package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles repositories bound to the same database handle so
// that a service can use them together inside one transaction.
type Repositories struct {
	Catalog       CatalogRepository
	Stores        StoreRepository
	Users         UserRepository
	Carts         CartRepository
	Discounts     DiscountRepository
	UserDiscounts UserDiscountRepository
	Orders        OrderRepository
	Loyalty       LoyaltyRepository

	// Nested runs work in a savepoint when the bundle belongs to a
	// transaction. A failed savepoint rolls back only its own writes.
	Nested TxManager
}

// NewRepositories binds every repository to db.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Catalog:       NewGormCatalogRepository(db),
		Stores:        NewGormStoreRepository(db),
		Users:         NewGormUserRepository(db),
		Carts:         NewGormCartRepository(db),
		Discounts:     NewGormDiscountRepository(db),
		UserDiscounts: NewGormUserDiscountRepository(db),
		Orders:        NewGormOrderRepository(db),
		Loyalty:       NewGormLoyaltyRepository(db),
		Nested:        NewGormTxManager(db),
	}
}

// TxManager runs fn against repositories sharing one transaction. A non-nil
// error from fn rolls everything back.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(repos Repositories) error) error
}

// GormTxManager implements TxManager with gorm transactions. Calling it on a
// handle that is already inside a transaction opens a savepoint.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new GormTxManager.
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

func (m *GormTxManager) WithTransaction(ctx context.Context, fn func(repos Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
