package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"conferent-backend/internal/model"
)

type roomRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Location    string `json:"location" binding:"max=200"`
	Capacity    int    `json:"capacity" binding:"required,min=1"`
	Description string `json:"description" binding:"max=500"`
}

// ListRooms handles GET /api/rooms. The optional minCapacity and location
// query parameters narrow the listing.
func (h *Handler) ListRooms(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		rooms []model.Room
		err   error
	)
	switch {
	case c.Query("minCapacity") != "":
		n, convErr := strconv.Atoi(c.Query("minCapacity"))
		if convErr != nil || n < 1 {
			badRequest(c, "invalid minCapacity")
			return
		}
		rooms, err = h.store.ListRoomsByMinCapacity(ctx, n)
	case c.Query("location") != "":
		rooms, err = h.store.ListRoomsByLocation(ctx, c.Query("location"))
	default:
		rooms, err = h.store.ListRooms(ctx)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRooms(rooms))
}

// GetRoom handles GET /api/rooms/:id.
func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	r, err := h.store.GetRoom(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRoom(r))
}

// SearchRooms handles GET /api/rooms/search?name=.
func (h *Handler) SearchRooms(c *gin.Context) {
	name, ok := requiredQuery(c, "name")
	if !ok {
		return
	}
	rooms, err := h.store.SearchRoomsByName(c.Request.Context(), name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRooms(rooms))
}

// AvailableRooms handles GET /api/rooms/available?startTime=&endTime=.
func (h *Handler) AvailableRooms(c *gin.Context) {
	start, ok := h.timeQuery(c, "startTime")
	if !ok {
		return
	}
	end, ok := h.timeQuery(c, "endTime")
	if !ok {
		return
	}
	rooms, err := h.bookings.AvailableRooms(c.Request.Context(), start, end)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRooms(rooms))
}

// CreateRoom handles POST /api/rooms.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	r := &model.Room{
		Name:        strings.TrimSpace(req.Name),
		Location:    strings.TrimSpace(req.Location),
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	if err := h.store.CreateRoom(c.Request.Context(), r); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toRoom(r))
}

// UpdateRoom handles PUT /api/rooms/:id.
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	r, err := h.store.GetRoom(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	r.Name = strings.TrimSpace(req.Name)
	r.Location = strings.TrimSpace(req.Location)
	r.Capacity = req.Capacity
	r.Description = req.Description
	if err := h.store.UpdateRoom(ctx, r); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRoom(r))
}

// DeleteRoom handles DELETE /api/rooms/:id.
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteRoom(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
