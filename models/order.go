package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is a state of the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusDelivering OrderStatus = "delivering"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Payment methods with dedicated handling at checkout. Any other value is accepted.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodVietQR = "vietqr"
	PaymentMethodCard   = "card"
)

// Payment statuses.
const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

// DefaultDeliveryTime is the estimate shown to customers.
const DefaultDeliveryTime = "25-35 phút"

// Order is an immutable snapshot of a checked-out cart. Only status,
// shipper and payment fields change after creation.
type Order struct {
	ID               uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           string      `gorm:"type:varchar(64);index;not null" json:"userId"`
	StoreID          uuid.UUID   `gorm:"type:uuid;index;not null" json:"storeId"`
	OrderNumber      string      `gorm:"type:varchar(32);uniqueIndex;not null" json:"orderNumber"`
	Items            []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal         int64       `gorm:"not null" json:"subtotal"`
	Discount         int64       `gorm:"not null;default:0" json:"discount"`
	Tax              int64       `gorm:"not null" json:"tax"`
	DeliveryFee      int64       `gorm:"not null" json:"deliveryFee"`
	Total            int64       `gorm:"not null" json:"total"`
	DeliveryAddress  string      `gorm:"type:text;not null" json:"deliveryAddress"`
	Phone            string      `gorm:"type:varchar(20);not null" json:"phone"`
	PaymentMethod    string      `gorm:"type:varchar(20);not null;default:cod" json:"paymentMethod"`
	PaymentStatus    string      `gorm:"type:varchar(20);not null;default:unpaid" json:"paymentStatus"`
	PaymentReference string      `gorm:"type:varchar(128)" json:"paymentReference,omitempty"`
	DeliveryTime     string      `gorm:"type:varchar(32)" json:"deliveryTime"`
	Status           OrderStatus `gorm:"type:varchar(20);index;not null;default:pending" json:"status"`
	CancelReason     *string     `gorm:"type:text" json:"cancelReason"`
	ShipperAssigned  *string     `gorm:"type:varchar(64);index" json:"shipperAssigned"`
	AppliedPromoCode string      `gorm:"type:varchar(64)" json:"appliedPromoCode,omitempty"`
	CreatedAt        time.Time   `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`
}

// OrderItem is a copied line item; it is never re-derived from the catalog.
type OrderItem struct {
	ID        uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID          `gorm:"type:uuid;index;not null" json:"orderId"`
	ProductID uuid.UUID          `gorm:"type:uuid;not null" json:"productId"`
	Name      string             `gorm:"type:varchar(255);not null" json:"name"`
	Size      string             `gorm:"type:varchar(4);not null" json:"size"`
	Toppings  []OrderItemTopping `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"toppings"`
	Quantity  int                `gorm:"not null" json:"quantity"`
	Price     int64              `gorm:"not null" json:"price"`
}

// OrderItemTopping records a topping id/name pair at checkout time.
type OrderItemTopping struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"-"`
	OrderItemID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	ToppingID   uuid.UUID `gorm:"type:uuid;not null" json:"id"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Price       int64     `gorm:"not null" json:"price"`
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	DeliveryAddress string `json:"deliveryAddress" binding:"required,max=500"`
	Phone           string `json:"phone" binding:"required,vnphone"`
	PaymentMethod   string `json:"paymentMethod" binding:"required,max=20"`
	StoreID         string `json:"storeId" binding:"required,uuid"`
}

// CreateOrderResponse is returned by POST /orders.
type CreateOrderResponse struct {
	Order        *Order `json:"order"`
	QRCodeURL    string `json:"qrCodeUrl,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Message      string `json:"message"`
}

// UpdateOrderStatusRequest is the payload for admin and shipper status updates.
type UpdateOrderStatusRequest struct {
	Status       OrderStatus `json:"status" binding:"required,oneof=pending processing confirmed preparing ready delivering completed cancelled"`
	CancelReason string      `json:"cancelReason" binding:"max=500"`
}

// StaffUpdateOrderRequest is the payload for PUT /orders/staff/:orderId.
type StaffUpdateOrderRequest struct {
	Status          OrderStatus `json:"status" binding:"omitempty,oneof=processing confirmed preparing ready cancelled"`
	CancelReason    string      `json:"cancelReason" binding:"max=500"`
	AssignShipperID string      `json:"assignShipperId" binding:"max=64"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID    string
	StoreID   *uuid.UUID
	ShipperID string
	Statuses  []OrderStatus
	From      *time.Time
	To        *time.Time
}

// MetaData is the pagination envelope shared by list endpoints.
type MetaData struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// OrderListResponse is a page of orders.
type OrderListResponse struct {
	Orders []Order  `json:"orders"`
	Meta   MetaData `json:"meta"`
}

// OrderCreatedEvent is written to Kafka after a checkout commits.
type OrderCreatedEvent struct {
	EventType     string    `json:"event_type"`
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        string    `json:"user_id"`
	StoreID       string    `json:"store_id"`
	Total         int64     `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	ItemCount     int       `json:"item_count"`
	EarnedPoints  int64     `json:"earned_points"`
	Timestamp     time.Time `json:"timestamp"`
}

// OrderStatusChangedEvent is published to SNS on every status transition.
type OrderStatusChangedEvent struct {
	EventType   string      `json:"event_type"`
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      string      `json:"user_id"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
	ChangedBy   string      `json:"changed_by"`
	Role        Role        `json:"role"`
	Timestamp   time.Time   `json:"timestamp"`
}

// PaymentConfirmation arrives from the bank-transfer queue.
type PaymentConfirmation struct {
	OrderNumber string `json:"order_number"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
}
