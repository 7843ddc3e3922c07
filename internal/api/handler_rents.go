package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"conferent-backend/internal/booking"
	"conferent-backend/internal/mw"
	"conferent-backend/internal/parse"
)

type rentRequest struct {
	StartTime   string  `json:"startTime" binding:"required"`
	EndTime     string  `json:"endTime" binding:"required"`
	Purpose     string  `json:"purpose" binding:"max=200"`
	Description string  `json:"description" binding:"max=1000"`
	CreatorID   int64   `json:"creatorId"`
	RoomIDs     []int64 `json:"roomIds" binding:"required,min=1"`
	InviteeIDs  []int64 `json:"inviteeIds"`
}

func (h *Handler) bindRent(c *gin.Context) (*rentRequest, time.Time, time.Time, bool) {
	var req rentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return nil, time.Time{}, time.Time{}, false
	}
	start, err := parse.DateTime(req.StartTime, h.loc)
	if err != nil {
		badRequest(c, "startTime: "+err.Error())
		return nil, time.Time{}, time.Time{}, false
	}
	end, err := parse.DateTime(req.EndTime, h.loc)
	if err != nil {
		badRequest(c, "endTime: "+err.Error())
		return nil, time.Time{}, time.Time{}, false
	}
	return &req, start, end, true
}

// ListRents handles GET /api/rents.
func (h *Handler) ListRents(c *gin.Context) {
	views, err := h.bookings.List(c.Request.Context())
	h.writeRents(c, views, err)
}

// GetRent handles GET /api/rents/:id.
func (h *Handler) GetRent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	v, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRent(v))
}

// ListRentsByCreator handles GET /api/rents/creator/:creatorId.
func (h *Handler) ListRentsByCreator(c *gin.Context) {
	id, ok := idParam(c, "creatorId")
	if !ok {
		return
	}
	views, err := h.bookings.ListByCreator(c.Request.Context(), id)
	h.writeRents(c, views, err)
}

// ListRentsByDateRange handles GET /api/rents/date-range?startDate=&endDate=.
func (h *Handler) ListRentsByDateRange(c *gin.Context) {
	from, ok := h.timeQuery(c, "startDate")
	if !ok {
		return
	}
	to, ok := h.timeQuery(c, "endDate")
	if !ok {
		return
	}
	views, err := h.bookings.ListByDateRange(c.Request.Context(), from, to)
	h.writeRents(c, views, err)
}

// ListUpcomingRents handles GET /api/rents/upcoming.
func (h *Handler) ListUpcomingRents(c *gin.Context) {
	views, err := h.bookings.ListUpcoming(c.Request.Context())
	h.writeRents(c, views, err)
}

// SearchRents handles GET /api/rents/search?purpose=.
func (h *Handler) SearchRents(c *gin.Context) {
	purpose, ok := requiredQuery(c, "purpose")
	if !ok {
		return
	}
	views, err := h.bookings.SearchByPurpose(c.Request.Context(), purpose)
	h.writeRents(c, views, err)
}

// ListRentsByRoom handles GET /api/rents/room/:roomId.
func (h *Handler) ListRentsByRoom(c *gin.Context) {
	id, ok := idParam(c, "roomId")
	if !ok {
		return
	}
	views, err := h.bookings.ListByRoom(c.Request.Context(), id)
	h.writeRents(c, views, err)
}

// CheckConflict handles GET /api/rents/conflicts?roomIds=&startTime=&endTime=&excludeRentId=.
func (h *Handler) CheckConflict(c *gin.Context) {
	raw, ok := requiredQuery(c, "roomIds")
	if !ok {
		return
	}
	roomIDs, err := parse.IDList(raw)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	start, ok := h.timeQuery(c, "startTime")
	if !ok {
		return
	}
	end, ok := h.timeQuery(c, "endTime")
	if !ok {
		return
	}
	var exclude *int64
	if v := c.Query("excludeRentId"); v != "" {
		ids, err := parse.IDList(v)
		if err != nil || len(ids) != 1 {
			badRequest(c, "invalid excludeRentId")
			return
		}
		exclude = &ids[0]
	}

	conflict, err := h.bookings.HasTimeConflict(c.Request.Context(), roomIDs, start, end, exclude)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflict": conflict})
}

// CreateRent handles POST /api/rents. Without creatorId the caller is the
// creator.
func (h *Handler) CreateRent(c *gin.Context) {
	req, start, end, ok := h.bindRent(c)
	if !ok {
		return
	}
	creatorID := req.CreatorID
	if creatorID == 0 {
		if u, ok := mw.CurrentUser(c); ok {
			creatorID = u.ID
		}
	}
	if creatorID <= 0 {
		badRequest(c, "creatorId is required")
		return
	}

	v, err := h.bookings.Create(c.Request.Context(), booking.Request{
		Start:       start,
		End:         end,
		Purpose:     req.Purpose,
		Description: req.Description,
		CreatorID:   creatorID,
		RoomIDs:     req.RoomIDs,
		InviteeIDs:  req.InviteeIDs,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toRent(v))
}

// UpdateRent handles PUT /api/rents/:id. creatorId and inviteeIds in the
// body are ignored.
func (h *Handler) UpdateRent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	req, start, end, ok := h.bindRent(c)
	if !ok {
		return
	}
	v, err := h.bookings.Update(c.Request.Context(), id, booking.UpdateRequest{
		Start:       start,
		End:         end,
		Purpose:     req.Purpose,
		Description: req.Description,
		RoomIDs:     req.RoomIDs,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRent(v))
}

// DeleteRent handles DELETE /api/rents/:id.
func (h *Handler) DeleteRent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.bookings.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) writeRents(c *gin.Context, views []booking.View, err error) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRents(views))
}
