package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Discount is a percent-off promotion addressed by a unique code.
type Discount struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title           string         `gorm:"type:varchar(255);not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	PromotionCode   string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_discounts_live_code,where:deleted_at IS NULL" json:"promotionCode"`
	DiscountPercent float64        `gorm:"type:numeric(5,2);not null" json:"discountPercent"`
	ExpiryDate      time.Time      `gorm:"not null" json:"expiryDate"`
	MinOrder        int64          `gorm:"not null;default:0" json:"minOrder"`
	IsLock          bool           `gorm:"not null;default:false" json:"isLock"`
	RequiredPoints  int64          `gorm:"not null;default:0" json:"requiredPoints"` // 0 = not redeemable with points
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserDiscount is the ledger entry gating re-application of a code by one user.
type UserDiscount struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_discount" json:"userId"`
	DiscountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_discount" json:"discountId"`
	Discount   *Discount `gorm:"foreignKey:DiscountID" json:"discount,omitempty"`
	IsUsed     bool      `gorm:"not null;default:false" json:"isUsed"`
	IsSwap     bool      `gorm:"not null;default:false" json:"isSwap"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// CreateDiscountRequest is the admin payload for POST /discounts.
type CreateDiscountRequest struct {
	Title           string    `json:"title" binding:"required,max=255"`
	Description     string    `json:"description"`
	PromotionCode   string    `json:"promotionCode" binding:"omitempty,min=3,max=64"`
	DiscountPercent float64   `json:"discountPercent" binding:"required,gt=0,lte=100"`
	ExpiryDate      time.Time `json:"expiryDate" binding:"required"`
	MinOrder        int64     `json:"minOrder" binding:"gte=0"`
	RequiredPoints  int64     `json:"requiredPoints" binding:"gte=0"`
}

// UpdateDiscountRequest is the admin payload for PUT /discounts/:id.
type UpdateDiscountRequest struct {
	Title           *string    `json:"title" binding:"omitempty,max=255"`
	Description     *string    `json:"description"`
	DiscountPercent *float64   `json:"discountPercent" binding:"omitempty,gt=0,lte=100"`
	ExpiryDate      *time.Time `json:"expiryDate"`
	MinOrder        *int64     `json:"minOrder" binding:"omitempty,gte=0"`
	RequiredPoints  *int64     `json:"requiredPoints" binding:"omitempty,gte=0"`
}

// UserCouponResponse is one entry of GET /loyalty/coupons.
type UserCouponResponse struct {
	ID       uuid.UUID `json:"id"`
	Discount *Discount `json:"discount"`
	IsUsed   bool      `json:"isUsed"`
	IsSwap   bool      `json:"isSwap"`
}

// RedeemResponse is returned after trading loyalty points for a code.
type RedeemResponse struct {
	Discount        *Discount `json:"discount"`
	PointsSpent     int64     `json:"pointsSpent"`
	RemainingPoints int64     `json:"remainingPoints"`
}

// DiscountAppliedEvent is published to SNS when a code is applied to a cart.
type DiscountAppliedEvent struct {
	EventType      string    `json:"event_type"`
	UserID         string    `json:"user_id"`
	DiscountID     string    `json:"discount_id"`
	PromotionCode  string    `json:"promotion_code"`
	DiscountAmount int64     `json:"discount_amount"`
	Subtotal       int64     `json:"subtotal"`
	Timestamp      time.Time `json:"timestamp"`
}
