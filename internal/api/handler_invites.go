package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conferent-backend/internal/model"
)

type inviteRequest struct {
	UserID     int64 `json:"userId" binding:"required,gt=0"`
	RoomRentID int64 `json:"roomRentId" binding:"required,gt=0"`
}

type inviteStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListInvites handles GET /api/user-invites.
func (h *Handler) ListInvites(c *gin.Context) {
	invites, err := h.invites.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toInvites(invites))
}

// GetInvite handles GET /api/user-invites/:id.
func (h *Handler) GetInvite(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.invites.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toInvite(inv))
}

// ListInvitesByUser handles GET /api/user-invites/user/:userId[?status=].
func (h *Handler) ListInvitesByUser(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	var (
		invites []model.UserInvite
		err     error
	)
	if raw := c.Query("status"); raw != "" {
		status, parseErr := model.ParseInviteStatus(raw)
		if parseErr != nil {
			badRequest(c, parseErr.Error())
			return
		}
		invites, err = h.invites.ListByUserAndStatus(ctx, userID, status)
	} else {
		invites, err = h.invites.ListByUser(ctx, userID)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toInvites(invites))
}

// ListInvitesForRent handles GET /api/user-invites/rent/:rentId.
func (h *Handler) ListInvitesForRent(c *gin.Context) {
	rentID, ok := idParam(c, "rentId")
	if !ok {
		return
	}
	invites, err := h.invites.ListForRent(c.Request.Context(), rentID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toInvites(invites))
}

// CreateInvite handles POST /api/user-invites. A second invite for the same
// user and room-rent is refused with 409.
func (h *Handler) CreateInvite(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	exists, err := h.invites.Exists(ctx, req.UserID, req.RoomRentID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if exists {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "user is already invited to this room-rent"})
		return
	}
	inv, err := h.invites.Create(ctx, req.UserID, req.RoomRentID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toInvite(inv))
}

// UpdateInviteStatus handles PATCH /api/user-invites/:id/status.
func (h *Handler) UpdateInviteStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req inviteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := model.ParseInviteStatus(req.Status)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	inv, err := h.invites.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toInvite(inv))
}

// DeleteInvite handles DELETE /api/user-invites/:id.
func (h *Handler) DeleteInvite(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.invites.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CountPendingInvites handles GET /api/user-invites/user/:userId/pending-count.
func (h *Handler) CountPendingInvites(c *gin.Context) {
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}
	n, err := h.invites.CountPendingByUser(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

// CountAcceptedInvites handles GET /api/user-invites/rent/:rentId/accepted-count.
func (h *Handler) CountAcceptedInvites(c *gin.Context) {
	rentID, ok := idParam(c, "rentId")
	if !ok {
		return
	}
	n, err := h.invites.CountAcceptedForRent(c.Request.Context(), rentID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
