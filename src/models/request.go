package models

import "hbs/src/types"

// Request is a guest-raised service request against a room, handled by admins.
type Request struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	GuestID     uint                `json:"guest_id,omitempty"`
	RoomID      uint                `json:"room_id,omitempty"`
	Status      types.RequestStatus `gorm:"default:'pending'" json:"status,omitempty"`
	Description string              `json:"description,omitempty"`

	Guest *User `gorm:"foreignKey:guest_id" json:"guest,omitempty"`
	Room  *Room `gorm:"foreignKey:room_id" json:"room,omitempty"`

	types.Timestamps
}
