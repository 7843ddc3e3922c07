package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conferent-backend/internal/auth"
	"conferent-backend/internal/mw"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresAt   string       `json:"expiresAt"`
	User        userResponse `json:"user"`
}

func (h *Handler) sessionResponse(s *auth.Session) loginResponse {
	return loginResponse{
		AccessToken: s.Token,
		TokenType:   "Bearer",
		ExpiresAt:   h.format(s.ExpiresAt),
		User:        h.toUser(s.User),
	}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	sess, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.sessionResponse(sess))
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	sess, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.sessionResponse(sess))
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(c *gin.Context) {
	u, ok := mw.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, h.toUser(u))
}

// ValidateToken handles POST /api/auth/validate. It never fails; the body
// says whether the bearer token is usable.
func (h *Handler) ValidateToken(c *gin.Context) {
	token, ok := mw.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	u, err := h.auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": h.toUser(u)})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the client
// just drops its copy.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
