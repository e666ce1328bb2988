package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the per-user mutable aggregate. Totals are derived from Items and
// recomputed at every mutation boundary.
type Cart struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"userId"`
	Items       []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal    int64      `gorm:"not null;default:0" json:"subtotal"`
	DeliveryFee int64      `gorm:"not null;default:0" json:"deliveryFee"`
	Discount    int64      `gorm:"not null;default:0" json:"discount"`
	PromoCode   string     `gorm:"type:varchar(64);not null;default:''" json:"promoCode"`
	Total       int64      `gorm:"not null;default:0" json:"total"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// CartItem is one product+size+toppings line with a price frozen at the last write.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;index;not null" json:"cartId"`
	UserID    string    `gorm:"type:varchar(64);index;not null" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"productId"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Size      string    `gorm:"type:varchar(4);not null" json:"size"`
	Toppings  []Topping `gorm:"many2many:cart_item_toppings;constraint:OnDelete:CASCADE" json:"toppings"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// AddCartItemRequest is the payload for POST /cart.
type AddCartItemRequest struct {
	ProductID string   `json:"productId" binding:"required,uuid"`
	Size      string   `json:"size" binding:"required,oneof=S M L"`
	Toppings  []string `json:"toppings" binding:"omitempty,dive,uuid"`
	Quantity  int      `json:"quantity" binding:"required,gte=1,lte=99"`
}

// UpdateCartItemRequest is the payload for PUT /cart/item/:itemId. Quantity
// is range-checked by the service so that zero and negatives surface as a
// validation error rather than a binding error.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ApplyDiscountRequest is the payload for POST /cart/apply-discount.
type ApplyDiscountRequest struct {
	PromotionCode string `json:"promotionCode" binding:"required,min=3,max=64"`
}

// CartItemTopping is the response shape of a topping on a line item.
type CartItemTopping struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Price int64     `json:"price"`
}

// CartItemResponse is the response shape of one line item.
type CartItemResponse struct {
	ID          uuid.UUID         `json:"id"`
	ProductID   uuid.UUID         `json:"productId"`
	ProductName string            `json:"name"`
	Size        string            `json:"size"`
	Toppings    []CartItemTopping `json:"toppings"`
	Quantity    int               `json:"quantity"`
	Price       int64             `json:"price"`
}

// CartResponse is the snapshot returned by every cart endpoint.
type CartResponse struct {
	Items          []CartItemResponse `json:"items"`
	Subtotal       int64              `json:"subtotal"`
	DeliveryFee    int64              `json:"deliveryFee"`
	Discount       int64              `json:"discount"`
	DiscountAmount *int64             `json:"discountAmount,omitempty"`
	Total          int64              `json:"total"`
	PromoCode      string             `json:"promoCode"`
}
