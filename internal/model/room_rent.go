package model

import "time"

// RoomRent binds one room to one rent.
type RoomRent struct {
	ID        int64     `gorm:"primaryKey"`
	RoomID    int64     `gorm:"not null;index;uniqueIndex:idx_room_rent_pair"`
	RentID    int64     `gorm:"not null;index;uniqueIndex:idx_room_rent_pair"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Room        Room         `gorm:"constraint:OnDelete:CASCADE"`
	Rent        Rent         `gorm:"-:migration"`
	UserInvites []UserInvite `gorm:"foreignKey:RoomRentID;constraint:OnDelete:CASCADE"`
}
