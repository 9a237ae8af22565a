package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/venue-booking/store"
	"github.com/yeremiapane/venue-booking/utils"
)

func init() {
	utils.InitLogger("panic")
	gin.SetMode(gin.TestMode)
}

func withIdentity(identity *store.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity != nil {
			c.Set(ContextIdentity, *identity)
		}
		c.Next()
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		identity *store.Identity
		wantCode int
	}{
		{"no identity", nil, http.StatusUnauthorized},
		{"guest", &store.Identity{UserID: 7}, http.StatusForbidden},
		{"admin", &store.Identity{UserID: 1, IsAdmin: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", withIdentity(tt.identity), RequireAdmin(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestStrictRateLimiterIsPerClient(t *testing.T) {
	r := gin.New()
	r.POST("/login", NewStrictRateLimiter(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(2, 60).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddlewares("http://localhost:3000, http://127.0.0.1:5500"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := preflight("http://127.0.0.1:5500")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://127.0.0.1:5500", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = preflight("http://evil.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddlewares("*"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/tables", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Cache-Control"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tables", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, 60)
	start := time.Now()

	ok, _ := rl.allow("10.0.0.1", start)
	assert.True(t, ok)
	ok, _ = rl.allow("10.0.0.1", start.Add(10*time.Second))
	assert.True(t, ok)

	ok, wait := rl.allow("10.0.0.1", start.Add(20*time.Second))
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, wait)

	// the first request has left the window
	ok, _ = rl.allow("10.0.0.1", start.Add(61*time.Second))
	assert.True(t, ok)

	rl.prune(start.Add(200 * time.Second))
	assert.Empty(t, rl.ips)
}

func TestRateLimiterRetryAfter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiter(1, 60).RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"status":false`)
}
