package model

import (
	"fmt"
	"strings"
	"time"
)

// InviteStatus is the response state of an invitation.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "PENDING"
	InviteStatusAccepted InviteStatus = "ACCEPTED"
	InviteStatusDeclined InviteStatus = "DECLINED"
)

// ParseInviteStatus accepts a status name in any letter case.
func ParseInviteStatus(s string) (InviteStatus, error) {
	status := InviteStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case InviteStatusPending, InviteStatusAccepted, InviteStatusDeclined:
		return status, nil
	}
	return "", fmt.Errorf("unknown invite status %q", s)
}

// UserInvite invites one user to one room within one rent.
type UserInvite struct {
	ID          int64        `gorm:"primaryKey"`
	UserID      int64        `gorm:"not null;index"`
	RoomRentID  int64        `gorm:"not null;index"`
	Status      InviteStatus `gorm:"size:16;not null;index"`
	InvitedAt   time.Time    `gorm:"not null"`
	RespondedAt *time.Time
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	// Associations
	User     User     `gorm:"constraint:OnDelete:CASCADE"`
	RoomRent RoomRent `gorm:"-:migration"`
}
