package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusOutForDelivery OrderStatus = "outfordelivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	StatusPending:        true,
	StatusConfirmed:      true,
	StatusPreparing:      true,
	StatusOutForDelivery: true,
	StatusDelivered:      true,
	StatusCancelled:      true,
}

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	return orderStatuses[s]
}

type DeliveryDetails struct {
	Name    string `json:"name" binding:"required" bson:"name"`
	Email   string `json:"email" binding:"required,email" bson:"email"`
	Address string `json:"address" binding:"required" bson:"address"`
	City    string `json:"city" binding:"required" bson:"city"`
}

// CartItem is a snapshot of a menu at checkout time, not a live reference.
type CartItem struct {
	MenuID   string  `json:"menuId" binding:"required" bson:"menuId"`
	Name     string  `json:"name" bson:"name"`
	Image    string  `json:"image" bson:"image"`
	Price    float64 `json:"price" bson:"price"`
	Quantity int     `json:"quantity" binding:"required,min=1" bson:"quantity"`
}

type Order struct {
	ID              string          `json:"_id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	RestaurantID    string          `json:"restaurantId" gorm:"index;not null" bson:"restaurant"`
	Restaurant      *Restaurant     `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID" bson:"-"`
	UserID          string          `json:"userId" gorm:"index;not null" bson:"user"`
	User            *User           `json:"user,omitempty" gorm:"foreignKey:UserID" bson:"-"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails" gorm:"embedded;embeddedPrefix:delivery_" bson:"deliveryDetails"`
	CartItems       []CartItem      `json:"cartItems" gorm:"serializer:json" bson:"cartItems"`
	TotalAmount     int64           `json:"totalAmount" bson:"totalAmount"` // minor units, set on payment confirmation
	Status          OrderStatus     `json:"status" gorm:"not null;default:'pending'" bson:"status"`
	SessionID       string          `json:"-" gorm:"index" bson:"sessionId"`
	CreatedAt       time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderStatusHistory tracks every status change.
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey" bson:"-"`
	OrderID    string      `json:"orderId" gorm:"index;not null" bson:"orderId"`
	FromStatus OrderStatus `json:"fromStatus" bson:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null" bson:"toStatus"`
	ChangedBy  string      `json:"changedBy" bson:"changedBy"` // user ID, or "stripe" for webhook transitions
	Note       string      `json:"note" bson:"note"`
	CreatedAt  time.Time   `json:"createdAt" bson:"createdAt"`
}
