package models

import (
	"hbs/src/types"
	"time"
)

type Payment struct {
	ID              uint                `gorm:"primarykey" json:"id"`
	BookingID       uint                `json:"booking_id,omitempty"`
	Amount          float64             `json:"amount,omitempty"`
	PaymentMethod   types.PaymentMethod `json:"payment_method,omitempty"`
	PaymentIntentId string              `json:"payment_intent_id,omitempty"`
	Status          types.PaymentStatus `gorm:"default:'pending'" json:"status,omitempty"`
	PaymentDate     time.Time           `gorm:"autoCreateTime" json:"payment_date,omitempty"`

	types.Timestamps
}
