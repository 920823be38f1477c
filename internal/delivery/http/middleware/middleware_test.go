package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go-portfolio-site/pkg/apperror"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	req.RemoteAddr = "198.51.100.7:4000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMemoryStoreWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	count, resetAt := store.Increment("k", time.Minute)
	assert.Equal(t, 1, count)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	count, _ = store.Increment("k", time.Minute)
	assert.Equal(t, 2, count)

	now = now.Add(61 * time.Second)
	count, resetAt = store.Increment("k", time.Minute)
	assert.Equal(t, 1, count)
	assert.Equal(t, now.Add(time.Minute), resetAt)
}

func TestMemoryStorePrune(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	store.Increment("old", time.Minute)
	now = now.Add(2 * time.Minute)
	store.Increment("fresh", time.Minute)
	store.Prune()

	_, oldExists := store.entries.Load("old")
	_, freshExists := store.entries.Load("fresh")
	assert.False(t, oldExists)
	assert.True(t, freshExists)
}

func TestMemoryStoreConcurrentIncrements(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Increment("shared", time.Minute)
		}()
	}
	wg.Wait()

	count, _ := store.Increment("shared", time.Minute)
	assert.Equal(t, 51, count)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(nil, nil)
	r := gin.New()
	r.GET("/limited", limiter.Middleware(RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "rl:test:",
		Message:   "slow down",
	}), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	first := serve(r, http.MethodGet, "/limited", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/limited", nil).Code)

	blocked := serve(r, http.MethodGet, "/limited", map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Contains(t, blocked.Body.String(), `"message":"slow down"`)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
	assert.Equal(t, "memory", limiter.Backend())
}

func TestRateLimitFallsBackWhenRedisIsDown(t *testing.T) {
	// Nothing listens on port 1
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	limiter := NewRateLimiter(client, nil)
	r := gin.New()
	r.GET("/limited", limiter.Middleware(RateLimitConfig{
		Limit:     1,
		Window:    time.Minute,
		KeyPrefix: "rl:test:",
	}), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	assert.Equal(t, "redis", limiter.Backend())
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/limited", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/limited", nil).Code)
}

func TestRateLimitFailClosed(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := gin.New()
	r.GET("/limited", NewRateLimiter(client, nil).Middleware(RateLimitConfig{
		Limit:      1,
		Window:     time.Minute,
		FailClosed: true,
	}), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	assert.Equal(t, http.StatusServiceUnavailable, serve(r, http.MethodGet, "/limited", nil).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, http.MethodGet, "/", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = serve(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = serve(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "bad id\nwith newline"})
	assert.NotEqual(t, "bad id\nwith newline", w.Header().Get(RequestIDHeader))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestErrorHandler(t *testing.T) {
	var rendered []int
	renderPage := func(c *gin.Context, code int, message string) {
		rendered = append(rendered, code)
		c.String(code, "page: "+message)
	}

	r := gin.New()
	r.Use(ErrorHandler(renderPage))
	r.GET("/app", func(c *gin.Context) { c.Error(apperror.BadRequest("Invalid request body")) })
	r.GET("/internal", func(c *gin.Context) { c.Error(errors.New("pq: password authentication failed")) })
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusServiceUnavailable, "already handled")
		c.Error(apperror.Unavailable("unavailable", errors.New("relay down")))
	})

	w := serve(r, http.MethodGet, "/app", map[string]string{"Accept": "application/json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")

	w = serve(r, http.MethodGet, "/internal", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "page: "+genericErrorMessage, w.Body.String())
	assert.NotContains(t, w.Body.String(), "pq:")

	w = serve(r, http.MethodGet, "/written", nil)
	assert.Equal(t, "already handled", w.Body.String())

	assert.Equal(t, []int{http.StatusInternalServerError}, rendered)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/", nil)

	csp := w.Header().Get("Content-Security-Policy")
	for _, directive := range []string{"default-src 'self'", "img-src 'self' data: https:", "font-src 'self' data:"} {
		assert.True(t, strings.Contains(csp, directive), "missing %q in %q", directive, csp)
	}
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	r = gin.New()
	r.Use(SecurityHeadersMiddleware(false))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Empty(t, serve(r, http.MethodGet, "/", nil).Header().Get("Strict-Transport-Security"))
}

func TestCORSMiddlewareWithoutOrigins(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	r.GET("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/api/x", map[string]string{"Origin": "https://anywhere.example"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery(nil))
	r.GET("/boom", func(c *gin.Context) { panic("secret") })

	w := serve(r, http.MethodGet, "/boom", nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), genericErrorMessage)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(nil))
	r.POST("/upload", BodyLimit(8), func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.Error(apperror.PayloadTooLarge(MessageBodyTooLarge, err))
				return
			}
			c.Error(err)
			return
		}
		c.String(http.StatusOK, string(body))
	})

	post := func(body string, knownLength bool) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body))
		if !knownLength {
			req.ContentLength = -1
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("12345678", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345678", w.Body.String())

	w = post("123456789", true)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), MessageBodyTooLarge)

	w = post("123456789", false)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), MessageBodyTooLarge)
}
