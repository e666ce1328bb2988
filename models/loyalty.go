package models

import (
	"time"

	"github.com/google/uuid"
)

// Loyalty history entry types.
const (
	LoyaltyEarn   = "earn"
	LoyaltyRedeem = "redeem"
)

// LoyaltyPoint is a user's point balance.
type LoyaltyPoint struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"userId"`
	TotalPoints int64            `gorm:"not null;default:0" json:"totalPoints"`
	History     []LoyaltyHistory `gorm:"foreignKey:LoyaltyPointID;constraint:OnDelete:CASCADE" json:"history"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

// LoyaltyHistory is an append-only balance change.
type LoyaltyHistory struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LoyaltyPointID uuid.UUID  `gorm:"type:uuid;index;not null" json:"-"`
	UserID         string     `gorm:"type:varchar(64);index;not null" json:"userId"`
	OrderID        *uuid.UUID `gorm:"type:uuid" json:"orderId"`
	Points         int64      `gorm:"not null" json:"points"` // signed
	Type           string     `gorm:"type:varchar(10);not null" json:"type"`
	Description    string     `gorm:"type:text" json:"description"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

// LoyaltyResponse is returned by GET /loyalty/points.
type LoyaltyResponse struct {
	Points  int64            `json:"points"`
	History []LoyaltyHistory `json:"history"`
}

// ShipperEarnings summarises completed deliveries.
type ShipperEarnings struct {
	CompletedOrders int64 `json:"completedOrders"`
	TotalEarnings   int64 `json:"totalEarnings"`
}
