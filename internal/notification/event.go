package notification

import (
	"fmt"
	"time"
)

// Kind names a reservation event.
type Kind string

const (
	KindConfirmed Kind = "reservation.confirmed"
	KindCancelled Kind = "reservation.cancelled"
	KindReminder  Kind = "reservation.reminder"
)

// Event is one notification for one user about one room.
type Event struct {
	Kind     Kind      `json:"kind"`
	UserID   int64     `json:"userId"`
	RoomName string    `json:"roomName"`
	Start    time.Time `json:"startTime"`
	End      time.Time `json:"endTime,omitzero"`
}

const displayLayout = "2006-01-02 15:04"

// Message renders the human-readable text of e with times shown in loc.
func (e Event) Message(loc *time.Location) string {
	start := e.Start.In(loc).Format(displayLayout)
	switch e.Kind {
	case KindConfirmed, KindCancelled:
		verb := "confirmed"
		if e.Kind == KindCancelled {
			verb = "cancelled"
		}
		end := e.End.In(loc).Format(displayLayout)
		return fmt.Sprintf("Reservation %s: %s, %s ~ %s", verb, e.RoomName, start, end)
	case KindReminder:
		return fmt.Sprintf("Reminder: %s starts at %s", e.RoomName, start)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.RoomName)
}

// Notifier accepts reservation events without blocking the caller.
type Notifier interface {
	NotifyConfirmed(userID int64, roomName string, start, end time.Time)
	NotifyCancelled(userID int64, roomName string, start, end time.Time)
	NotifyReminder(userID int64, roomName string, start time.Time)
}

// Multi fans every event out to each of its notifiers.
type Multi []Notifier

func (m Multi) NotifyConfirmed(userID int64, roomName string, start, end time.Time) {
	for _, n := range m {
		n.NotifyConfirmed(userID, roomName, start, end)
	}
}

func (m Multi) NotifyCancelled(userID int64, roomName string, start, end time.Time) {
	for _, n := range m {
		n.NotifyCancelled(userID, roomName, start, end)
	}
}

func (m Multi) NotifyReminder(userID int64, roomName string, start time.Time) {
	for _, n := range m {
		n.NotifyReminder(userID, roomName, start)
	}
}
