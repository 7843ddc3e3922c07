package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"conferent-backend/internal/auth"
	"conferent-backend/internal/model"
)

type userRequest struct {
	Name     string     `json:"name" binding:"required,max=100"`
	Email    string     `json:"email" binding:"required,email,max=100"`
	Password string     `json:"password" binding:"omitempty,min=6"`
	Role     model.Role `json:"role"`
}

func (r *userRequest) role() (model.Role, bool) {
	if r.Role == "" {
		return model.RoleUser, true
	}
	role := model.Role(strings.ToUpper(string(r.Role)))
	return role, role.Valid()
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toUsers(users))
}

// GetUser handles GET /api/users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	u, err := h.store.GetUser(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toUser(u))
}

// SearchUsers handles GET /api/users/search?name=.
func (h *Handler) SearchUsers(c *gin.Context) {
	name, ok := requiredQuery(c, "name")
	if !ok {
		return
	}
	users, err := h.store.SearchUsersByName(c.Request.Context(), name)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toUsers(users))
}

// ListUsersByRole handles GET /api/users/role/:role.
func (h *Handler) ListUsersByRole(c *gin.Context) {
	role := model.Role(strings.ToUpper(c.Param("role")))
	if !role.Valid() {
		badRequest(c, "unknown role")
		return
	}
	users, err := h.store.ListUsersByRole(c.Request.Context(), role)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toUsers(users))
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Password == "" {
		badRequest(c, "password is required")
		return
	}
	role, ok := req.role()
	if !ok {
		badRequest(c, "unknown role")
		return
	}
	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		abortWithError(c, err)
		return
	}

	u := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
	}
	if err := h.store.CreateUser(c.Request.Context(), u); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toUser(u))
}

// UpdateUser handles PUT /api/users/:id. An empty password keeps the
// current one.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	role, ok := req.role()
	if !ok {
		badRequest(c, "unknown role")
		return
	}

	ctx := c.Request.Context()
	u, err := h.store.GetUser(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	u.Name = strings.TrimSpace(req.Name)
	u.Email = strings.ToLower(strings.TrimSpace(req.Email))
	u.Role = role
	if req.Password != "" {
		if u.PasswordHash, err = auth.HashPassword(req.Password, h.bcryptCost); err != nil {
			abortWithError(c, err)
			return
		}
	}
	if err := h.store.UpdateUser(ctx, u); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toUser(u))
}

// DeleteUser handles DELETE /api/users/:id.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
