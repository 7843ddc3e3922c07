package model

import "time"

// Rent is a reservation of one or more rooms for the interval [StartTime, EndTime).
type Rent struct {
	ID          int64     `gorm:"primaryKey"`
	StartTime   time.Time `gorm:"not null;index"`
	EndTime     time.Time `gorm:"not null;index"`
	Purpose     string    `gorm:"size:200"`
	Description string    `gorm:"size:1000"`
	CreatorID   int64     `gorm:"column:user_id;index;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	// Associations
	Creator   User       `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	RoomRents []RoomRent `gorm:"foreignKey:RentID;constraint:OnDelete:CASCADE"`
}
