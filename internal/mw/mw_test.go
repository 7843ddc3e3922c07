package mw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"conferent-backend/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCache_ServesRepeatedGets(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	var calls atomic.Int32
	r := gin.New()
	r.Use(FlushOnWrite(store))
	r.GET("/rooms", Cache(store, time.Minute), func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"n": calls.Load()})
	})
	r.POST("/rooms", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/broken", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	first := serve(r, http.MethodGet, "/rooms", nil)
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))
	second := serve(r, http.MethodGet, "/rooms", nil)
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, int32(1), calls.Load())

	serve(r, http.MethodPost, "/broken", nil)
	assert.Equal(t, "HIT", serve(r, http.MethodGet, "/rooms", nil).Header().Get(CacheHeader))

	serve(r, http.MethodPost, "/rooms", nil)
	third := serve(r, http.MethodGet, "/rooms", nil)
	assert.Equal(t, "MISS", third.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"n":2}`, third.Body.String())
}

func TestCache_HitKeepsPerRequestHeaders(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	r := gin.New()
	r.Use(RequestID())
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", c.GetHeader("Origin"))
		c.Header("Vary", "Origin")
		c.Next()
	})
	r.GET("/rooms", Cache(store, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	first := serve(r, http.MethodGet, "/rooms", http.Header{"Origin": {"https://a.example"}})
	second := serve(r, http.MethodGet, "/rooms", http.Header{"Origin": {"https://b.example"}})

	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.NotEmpty(t, second.Header().Get(RequestIDHeader))
	assert.NotEqual(t, first.Header().Get(RequestIDHeader), second.Header().Get(RequestIDHeader))
	assert.Equal(t, "https://b.example", second.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, []string{"Origin"}, second.Header().Values("Vary"))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
}

func TestCache_SkipsErrors(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	r := gin.New()
	r.GET("/missing", Cache(store, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "nope"})
	})

	serve(r, http.MethodGet, "/missing", nil)
	assert.Equal(t, 0, store.ItemCount())
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(0.001), 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/", nil).Code)
	w := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestIPRateLimiter_PerIP(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1, time.Minute)
	assert.Same(t, l.GetLimiter("10.0.0.1"), l.GetLimiter("10.0.0.1"))
	assert.True(t, l.GetLimiter("10.0.0.1").Allow())
	assert.False(t, l.GetLimiter("10.0.0.1").Allow())
	assert.True(t, l.GetLimiter("10.0.0.2").Allow())
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, http.MethodGet, "/", nil)
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	w = serve(r, http.MethodGet, "/", http.Header{RequestIDHeader: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

type stubAuth map[string]*model.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func TestRequireAuth(t *testing.T) {
	alice := &model.User{ID: 7, Name: "Alice", Role: model.RoleUser}
	r := gin.New()
	r.Use(RequireAuth(stubAuth{"good": alice}))
	r.GET("/me", func(c *gin.Context) {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, u.Name)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized,
		serve(r, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer bad"}}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		serve(r, http.MethodGet, "/me", http.Header{"Authorization": {"Basic good"}}).Code)

	w := serve(r, http.MethodGet, "/me", http.Header{"Authorization": {"bearer good"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", w.Body.String())
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = BearerToken("Bearer")
	assert.False(t, ok)
	_, ok = BearerToken("")
	assert.False(t, ok)
}
