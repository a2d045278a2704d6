package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                        string     `json:"_id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Fullname                  string     `json:"fullname" gorm:"not null" bson:"fullname"`
	Email                     string     `json:"email" gorm:"uniqueIndex;not null" bson:"email"`
	PasswordHash              string     `json:"-" gorm:"not null" bson:"password"`
	Contact                   string     `json:"contact" bson:"contact"`
	Address                   string     `json:"address" bson:"address"`
	City                      string     `json:"city" bson:"city"`
	Country                   string     `json:"country" bson:"country"`
	ProfilePicture            string     `json:"profilePicture" bson:"profilePicture"`
	Admin                     bool       `json:"admin" gorm:"default:false" bson:"admin"`
	LastLogin                 *time.Time `json:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	ResetPasswordToken        string     `json:"-" gorm:"index" bson:"resetPasswordToken,omitempty"`
	ResetPasswordTokenExpires *time.Time `json:"-" bson:"resetPasswordTokenExpiresAt,omitempty"`
	CreatedAt                 time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt                 time.Time  `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
