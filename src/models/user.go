package models

import "hbs/src/types"

type User struct {
	ID               uint              `gorm:"primarykey" json:"id"`
	Name             string            `json:"name,omitempty"`
	Email            string            `gorm:"uniqueIndex" json:"email,omitempty"`
	Password         string            `json:"-"`
	Role             string            `gorm:"default:'guest'" json:"role,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Address          string            `json:"address,omitempty"`
	State            string            `json:"state,omitempty"`
	Country          string            `json:"country,omitempty"`
	PostalCode       string            `json:"postal_code,omitempty"`
	Preferences      types.Preferences `gorm:"type:jsonb" json:"preferences,omitempty"`
	StripeCustomerId *string           `json:"-"`

	Bookings []Booking `gorm:"foreignKey:guest_id" json:"bookings,omitempty"`

	types.Timestamps
}
