package models

import "hbs/src/types"

type Feedback struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	BookingID uint   `json:"booking_id,omitempty"`
	Rating    uint8  `json:"rating,omitempty"`
	Comment   string `json:"comment,omitempty"`

	types.Timestamps
}
