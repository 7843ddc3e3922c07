package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetRoomRent handles GET /api/room-rents/:id.
func (h *Handler) GetRoomRent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rr, err := h.store.GetRoomRent(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRoomRent(rr))
}

// ListRoomRentsByRent handles GET /api/room-rents/rent/:rentId.
func (h *Handler) ListRoomRentsByRent(c *gin.Context) {
	id, ok := idParam(c, "rentId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.GetRent(ctx, id); err != nil {
		abortWithError(c, err)
		return
	}
	links, err := h.store.ListRoomRentsByRent(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRoomRents(links))
}

// ListRoomRentsByRoom handles GET /api/room-rents/room/:roomId.
func (h *Handler) ListRoomRentsByRoom(c *gin.Context) {
	id, ok := idParam(c, "roomId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.GetRoom(ctx, id); err != nil {
		abortWithError(c, err)
		return
	}
	links, err := h.store.ListRoomRentsByRoom(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toRoomRents(links))
}
