package booking

import (
	"context"
	"time"

	"conferent-backend/internal/model"
	"conferent-backend/internal/store"
)

// View is a rent with its rooms and invitations resolved. It is a detached
// copy; changing it does not touch storage.
type View struct {
	ID          int64
	Start       time.Time
	End         time.Time
	Purpose     string
	Description string
	CreatorID   int64
	CreatorName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Rooms       []RoomView
	Invitees    []InviteeView
}

// RoomView is one room of a rent.
type RoomView struct {
	RoomRentID int64
	RoomID     int64
	Name       string
	Location   string
	Capacity   int
}

// InviteeView is one invitation of a rent.
type InviteeView struct {
	InviteID    int64
	UserID      int64
	Name        string
	Email       string
	RoomRentID  int64
	RoomID      int64
	Status      model.InviteStatus
	InvitedAt   time.Time
	RespondedAt *time.Time
}

func assemble(ctx context.Context, st store.Store, rent *model.Rent) (*View, error) {
	creator, err := st.GetUser(ctx, rent.CreatorID)
	if err != nil {
		return nil, err
	}
	links, err := st.ListRoomRentsByRent(ctx, rent.ID)
	if err != nil {
		return nil, err
	}
	invites, err := st.ListInvitesForRent(ctx, rent.ID)
	if err != nil {
		return nil, err
	}

	v := &View{
		ID:          rent.ID,
		Start:       rent.StartTime,
		End:         rent.EndTime,
		Purpose:     rent.Purpose,
		Description: rent.Description,
		CreatorID:   rent.CreatorID,
		CreatorName: creator.Name,
		CreatedAt:   rent.CreatedAt,
		UpdatedAt:   rent.UpdatedAt,
		Rooms:       make([]RoomView, 0, len(links)),
		Invitees:    make([]InviteeView, 0, len(invites)),
	}
	for _, link := range links {
		v.Rooms = append(v.Rooms, RoomView{
			RoomRentID: link.ID,
			RoomID:     link.RoomID,
			Name:       link.Room.Name,
			Location:   link.Room.Location,
			Capacity:   link.Room.Capacity,
		})
	}
	for _, inv := range invites {
		v.Invitees = append(v.Invitees, InviteeView{
			InviteID:    inv.ID,
			UserID:      inv.UserID,
			Name:        inv.User.Name,
			Email:       inv.User.Email,
			RoomRentID:  inv.RoomRentID,
			RoomID:      inv.RoomRent.RoomID,
			Status:      inv.Status,
			InvitedAt:   inv.InvitedAt,
			RespondedAt: inv.RespondedAt,
		})
	}
	return v, nil
}

// roomName returns the name of the room bound by roomRentID, or "".
func (v *View) roomName(roomRentID int64) string {
	for _, r := range v.Rooms {
		if r.RoomRentID == roomRentID {
			return r.Name
		}
	}
	return ""
}
