package models

import (
	"hbs/src/types"
	"time"
)

type Booking struct {
	ID                uint                `gorm:"primarykey" json:"id"`
	GuestID           uint                `json:"guest_id,omitempty"`
	RoomID            uint                `json:"room_id,omitempty"`
	CheckInDate       time.Time           `json:"check_in_date,omitempty"`
	CheckOutDate      time.Time           `json:"check_out_date,omitempty"`
	Status            types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`
	TotalPrice        float64             `json:"total_price,omitempty"`
	SpecialRequests   string              `json:"special_requests,omitempty"`
	CheckoutSessionId *string             `json:"-"`
	PaymentID         *uint               `json:"payment_id,omitempty"`
	FeedbackID        *uint               `json:"feedback_id,omitempty"`

	Guest    *User     `gorm:"foreignKey:guest_id" json:"guest,omitempty"`
	Room     *Room     `gorm:"foreignKey:room_id" json:"room,omitempty"`
	Payment  *Payment  `gorm:"foreignKey:payment_id" json:"payment,omitempty"`
	Feedback *Feedback `gorm:"foreignKey:feedback_id" json:"feedback,omitempty"`

	types.Timestamps
}
