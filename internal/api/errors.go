package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"conferent-backend/internal/auth"
	"conferent-backend/internal/booking"
	"conferent-backend/internal/invite"
	"conferent-backend/internal/parse"
	"conferent-backend/internal/store"
)

// abortWithError maps domain errors onto HTTP statuses. Anything unknown is
// logged and answered with a generic 500.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, booking.ErrInvalidInterval):
		status = http.StatusBadRequest
	case errors.Is(err, booking.ErrConflict),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, invite.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// idParam reads a positive int64 path parameter, answering 400 otherwise.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// timeQuery reads a required date-time query parameter in the handler's zone.
func (h *Handler) timeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		badRequest(c, name+" is required")
		return time.Time{}, false
	}
	t, err := parse.DateTime(raw, h.loc)
	if err != nil {
		badRequest(c, err.Error())
		return time.Time{}, false
	}
	return t, true
}

// requiredQuery reads a non-empty query parameter.
func requiredQuery(c *gin.Context, name string) (string, bool) {
	v := c.Query(name)
	if v == "" {
		badRequest(c, name+" is required")
		return "", false
	}
	return v, true
}
