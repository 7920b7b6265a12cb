package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitedRouter(perSecond float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	limiter := NewRateLimiter(perSecond, burst)
	router.POST("/login", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	router := setupRateLimitedRouter(1, 3)

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	router := setupRateLimitedRouter(0.1, 2)

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req, _ := http.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimiter_PerClientBuckets(t *testing.T) {
	router := setupRateLimitedRouter(0.1, 1)

	// first client exhausts its bucket
	req, _ := http.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// a different client is unaffected
	req, _ = http.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
