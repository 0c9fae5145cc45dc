package models

import "hbs/src/types"

type Room struct {
	ID                 uint    `gorm:"primarykey" json:"id"`
	Name               string  `json:"name,omitempty"`
	Description        string  `json:"description,omitempty"`
	RoomNumber         string  `gorm:"uniqueIndex" json:"room_number,omitempty"`
	Image              string  `json:"image,omitempty"`
	Type               string  `json:"type,omitempty"`
	Price              float64 `json:"price,omitempty"`
	Availability       bool    `gorm:"default:true" json:"availability"`
	HousekeepingStatus string  `gorm:"default:'clean'" json:"housekeeping_status,omitempty"`

	types.Timestamps
}
