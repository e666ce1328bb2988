package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Size is a cup size option. The multiplier scales a product's base price.
type Size struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code       string    `gorm:"type:varchar(4);uniqueIndex;not null" json:"size"`
	Name       string    `gorm:"type:varchar(64);not null" json:"name"`
	Multiplier float64   `gorm:"type:numeric(6,3);not null;default:1" json:"multiplier"`
	Volume     string    `gorm:"type:varchar(32)" json:"volume"`
}

// Topping is an add-on with a fixed per-unit price.
type Topping struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name  string    `gorm:"type:varchar(128);not null" json:"name"`
	Price int64     `gorm:"not null;default:0" json:"price"`
}

// Product is owned by the catalog and read-only to cart and checkout.
type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	BasePrice   int64          `gorm:"not null" json:"basePrice"`
	IsBanned    bool           `gorm:"not null;default:false" json:"isBanned"`
	Sizes       []Size         `gorm:"many2many:product_sizes;" json:"sizeOptions"`
	Toppings    []Topping      `gorm:"many2many:product_toppings;" json:"toppingOptions"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Store is a physical shop that fulfils orders.
type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Role is the closed set of caller capabilities.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleShipper  Role = "shipper"
	RoleAdmin    Role = "admin"
)

// User is a read model of accounts managed by the auth service. Only the
// fields needed for store scoping and shipper availability live here.
type User struct {
	ID          string     `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255)" json:"name"`
	Role        Role       `gorm:"type:varchar(16);not null;default:customer" json:"role"`
	StoreID     *uuid.UUID `gorm:"type:uuid;index" json:"storeId,omitempty"`
	IsBanned    bool       `gorm:"not null;default:false" json:"isBanned"`
	IsAvailable bool       `gorm:"not null;default:true" json:"isAvailable"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}
