package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type limitedRouter struct {
	engine *gin.Engine
	served int
}

func newLimitedRouter(handler gin.HandlerFunc) *limitedRouter {
	gin.SetMode(gin.TestMode)
	r := &limitedRouter{engine: gin.New()}
	r.engine.POST("/chat", handler, func(c *gin.Context) {
		r.served++
		c.Status(http.StatusOK)
	})
	return r
}

// post reports whether the request made it past the limiter.
func (r *limitedRouter) post(addr string) bool {
	before := r.served
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.RemoteAddr = addr
	r.engine.ServeHTTP(httptest.NewRecorder(), req)
	return r.served > before
}

func TestRateLimitBlocksWithinWindow(t *testing.T) {
	now := time.Now()
	limiter := &rateLimiter{
		window:        10 * time.Second,
		last:          make(map[string]time.Time),
		sweepInterval: 10 * time.Second,
		now:           func() time.Time { return now },
	}
	router := newLimitedRouter(limiter.handle)

	require.True(t, router.post("10.0.0.1:1234"))

	now = now.Add(5 * time.Second)
	require.False(t, router.post("10.0.0.1:1234"))

	// A different client is unaffected.
	require.True(t, router.post("10.0.0.2:1234"))

	now = now.Add(6 * time.Second)
	require.True(t, router.post("10.0.0.1:1234"))
}

func TestRateLimitZeroWindowDisables(t *testing.T) {
	router := newLimitedRouter(RateLimit(0))
	require.True(t, router.post("10.0.0.1:1234"))
	require.True(t, router.post("10.0.0.1:1234"))
}

func TestRateLimitSweepDropsStaleClients(t *testing.T) {
	now := time.Now()
	limiter := &rateLimiter{
		window:        10 * time.Second,
		last:          make(map[string]time.Time),
		sweepInterval: 10 * time.Second,
		now:           func() time.Time { return now },
	}
	router := newLimitedRouter(limiter.handle)

	router.post("10.0.0.1:1234")
	router.post("10.0.0.2:1234")
	require.Len(t, limiter.last, 2)

	now = now.Add(time.Minute)
	router.post("10.0.0.3:1234")
	require.Len(t, limiter.last, 1)
}
