package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID             string    `json:"_id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID         string    `json:"user" gorm:"uniqueIndex;not null" bson:"user"`
	RestaurantName string    `json:"restaurantName" gorm:"not null" bson:"restaurantName"`
	City           string    `json:"city" bson:"city"`
	Country        string    `json:"country" bson:"country"`
	DeliveryTime   int       `json:"deliveryTime" bson:"deliveryTime"`
	Cuisines       []string  `json:"cuisines" gorm:"serializer:json" bson:"cuisines"`
	ImageURL       string    `json:"imageUrl" bson:"imageUrl"`
	Menus          []Menu    `json:"menus" gorm:"foreignKey:RestaurantID" bson:"-"`
	MenuIDs        []string  `json:"-" gorm:"-" bson:"menus"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (r *Restaurant) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// HasMenu reports whether id is one of the restaurant's loaded menus.
func (r *Restaurant) HasMenu(id string) bool {
	for _, m := range r.Menus {
		if m.ID == id {
			return true
		}
	}
	return false
}

type Menu struct {
	ID           string    `json:"_id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	RestaurantID string    `json:"restaurant,omitempty" gorm:"index" bson:"restaurant"`
	Name         string    `json:"name" gorm:"not null" bson:"name"`
	Description  string    `json:"description" bson:"description"`
	Price        float64   `json:"price" gorm:"not null" bson:"price"`
	Image        string    `json:"image" bson:"image"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (m *Menu) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
