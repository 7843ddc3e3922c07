package model

import "time"

// Room is a bookable meeting room.
type Room struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Location    string    `gorm:"size:200;index" json:"location"`
	Capacity    int       `gorm:"not null;check:capacity >= 1" json:"capacity"`
	Description string    `gorm:"size:1000" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}
