package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"conferent-backend/internal/model"
	"conferent-backend/internal/mw"
	"conferent-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// PutSubscription registers the caller's browser for push notifications.
// Re-registering an endpoint moves it to the caller and replaces its keys.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	u, ok := mw.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	sub := &model.PushSubscription{
		Endpoint: req.Endpoint,
		UserID:   u.ID,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.SaveSubscription(c.Request.Context(), sub); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// DeleteSubscription removes one of the caller's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if _, ok := h.ownSubscription(c, req.Endpoint); !ok {
		return
	}
	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true // endpoints are matched without URL decoding
		}
	}
	return "", false
}

// GetSubscription reports whether the endpoint is registered to the caller.
func (h *Handler) GetSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		badRequest(c, "endpoint is required")
		return
	}
	sub, ok := h.ownSubscription(c, raw)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"endpoint":  sub.Endpoint,
		"userId":    sub.UserID,
		"createdAt": h.format(sub.CreatedAt),
	})
}

// ownSubscription loads endpoint and checks it belongs to the caller.
// Someone else's subscription is reported as missing.
func (h *Handler) ownSubscription(c *gin.Context, endpoint string) (*model.PushSubscription, bool) {
	u, ok := mw.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return nil, false
	}
	sub, err := h.store.GetSubscription(c.Request.Context(), endpoint)
	if err == nil && sub.UserID != u.ID {
		err = store.NotFound("subscription", endpoint)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		} else {
			abortWithError(c, err)
		}
		return nil, false
	}
	return sub, true
}
