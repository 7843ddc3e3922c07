package api

import (
	"time"

	"conferent-backend/internal/booking"
	"conferent-backend/internal/model"
	"conferent-backend/internal/parse"
)

type userResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt string     `json:"createdAt,omitempty"`
	UpdatedAt string     `json:"updatedAt,omitempty"`
}

type roomResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type rentRoomResponse struct {
	RoomRentID int64  `json:"roomRentId"`
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Capacity   int    `json:"capacity"`
}

type inviteeResponse struct {
	InviteID    int64              `json:"inviteId"`
	User        userResponse       `json:"user"`
	RoomRentID  int64              `json:"roomRentId"`
	RoomID      int64              `json:"roomId"`
	Status      model.InviteStatus `json:"status"`
	InvitedAt   string             `json:"invitedAt"`
	RespondedAt *string            `json:"respondedAt"`
}

type rentResponse struct {
	ID          int64              `json:"id"`
	StartTime   string             `json:"startTime"`
	EndTime     string             `json:"endTime"`
	Purpose     string             `json:"purpose"`
	Description string             `json:"description"`
	Creator     userResponse       `json:"creator"`
	CreatedAt   string             `json:"createdAt"`
	UpdatedAt   string             `json:"updatedAt"`
	Rooms       []rentRoomResponse `json:"rooms"`
	Invitees    []inviteeResponse  `json:"invitees"`
}

type roomRentResponse struct {
	ID        int64         `json:"id"`
	RoomID    int64         `json:"roomId"`
	RentID    int64         `json:"rentId"`
	Room      *roomResponse `json:"room,omitempty"`
	CreatedAt string        `json:"createdAt"`
}

type inviteResponse struct {
	ID          int64              `json:"id"`
	UserID      int64              `json:"userId"`
	User        *userResponse      `json:"user,omitempty"`
	RoomRentID  int64              `json:"roomRentId"`
	RoomRent    *roomRentResponse  `json:"roomRent,omitempty"`
	Status      model.InviteStatus `json:"status"`
	InvitedAt   string             `json:"invitedAt"`
	RespondedAt *string            `json:"respondedAt"`
	CreatedAt   string             `json:"createdAt"`
	UpdatedAt   string             `json:"updatedAt"`
}

func (h *Handler) format(t time.Time) string {
	return parse.FormatDateTime(t, h.loc)
}

func (h *Handler) formatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := h.format(*t)
	return &s
}

func (h *Handler) toUser(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: h.format(u.CreatedAt),
		UpdatedAt: h.format(u.UpdatedAt),
	}
}

func (h *Handler) toUsers(users []model.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, h.toUser(&users[i]))
	}
	return out
}

func (h *Handler) toRoom(r *model.Room) roomResponse {
	return roomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Location:    r.Location,
		Capacity:    r.Capacity,
		Description: r.Description,
		CreatedAt:   h.format(r.CreatedAt),
		UpdatedAt:   h.format(r.UpdatedAt),
	}
}

func (h *Handler) toRooms(rooms []model.Room) []roomResponse {
	out := make([]roomResponse, 0, len(rooms))
	for i := range rooms {
		out = append(out, h.toRoom(&rooms[i]))
	}
	return out
}

func (h *Handler) toRent(v *booking.View) rentResponse {
	resp := rentResponse{
		ID:          v.ID,
		StartTime:   h.format(v.Start),
		EndTime:     h.format(v.End),
		Purpose:     v.Purpose,
		Description: v.Description,
		Creator:     userResponse{ID: v.CreatorID, Name: v.CreatorName},
		CreatedAt:   h.format(v.CreatedAt),
		UpdatedAt:   h.format(v.UpdatedAt),
		Rooms:       make([]rentRoomResponse, 0, len(v.Rooms)),
		Invitees:    make([]inviteeResponse, 0, len(v.Invitees)),
	}
	for _, r := range v.Rooms {
		resp.Rooms = append(resp.Rooms, rentRoomResponse{
			RoomRentID: r.RoomRentID,
			ID:         r.RoomID,
			Name:       r.Name,
			Location:   r.Location,
			Capacity:   r.Capacity,
		})
	}
	for _, inv := range v.Invitees {
		resp.Invitees = append(resp.Invitees, inviteeResponse{
			InviteID:    inv.InviteID,
			User:        userResponse{ID: inv.UserID, Name: inv.Name, Email: inv.Email},
			RoomRentID:  inv.RoomRentID,
			RoomID:      inv.RoomID,
			Status:      inv.Status,
			InvitedAt:   h.format(inv.InvitedAt),
			RespondedAt: h.formatPtr(inv.RespondedAt),
		})
	}
	return resp
}

func (h *Handler) toRents(views []booking.View) []rentResponse {
	out := make([]rentResponse, 0, len(views))
	for i := range views {
		out = append(out, h.toRent(&views[i]))
	}
	return out
}

func (h *Handler) toRoomRent(rr *model.RoomRent) roomRentResponse {
	resp := roomRentResponse{
		ID:        rr.ID,
		RoomID:    rr.RoomID,
		RentID:    rr.RentID,
		CreatedAt: h.format(rr.CreatedAt),
	}
	if rr.Room.ID != 0 {
		room := h.toRoom(&rr.Room)
		resp.Room = &room
	}
	return resp
}

func (h *Handler) toRoomRents(links []model.RoomRent) []roomRentResponse {
	out := make([]roomRentResponse, 0, len(links))
	for i := range links {
		out = append(out, h.toRoomRent(&links[i]))
	}
	return out
}

func (h *Handler) toInvite(inv *model.UserInvite) inviteResponse {
	resp := inviteResponse{
		ID:          inv.ID,
		UserID:      inv.UserID,
		RoomRentID:  inv.RoomRentID,
		Status:      inv.Status,
		InvitedAt:   h.format(inv.InvitedAt),
		RespondedAt: h.formatPtr(inv.RespondedAt),
		CreatedAt:   h.format(inv.CreatedAt),
		UpdatedAt:   h.format(inv.UpdatedAt),
	}
	if inv.User.ID != 0 {
		u := h.toUser(&inv.User)
		resp.User = &u
	}
	if inv.RoomRent.ID != 0 {
		rr := h.toRoomRent(&inv.RoomRent)
		resp.RoomRent = &rr
	}
	return resp
}

func (h *Handler) toInvites(invites []model.UserInvite) []inviteResponse {
	out := make([]inviteResponse, 0, len(invites))
	for i := range invites {
		out = append(out, h.toInvite(&invites[i]))
	}
	return out
}
