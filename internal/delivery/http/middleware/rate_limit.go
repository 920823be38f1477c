package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-portfolio-site/config"
	"go-portfolio-site/internal/delivery/http/response"
	"go-portfolio-site/pkg/logger"
	"go-portfolio-site/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

const (
	apiRateLimitMessage     = "Too many requests from this IP, please try again later."
	contactRateLimitMessage = "You have sent too many messages. Please try again later."
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: IP-based)
	KeyFunc func(*gin.Context) string
	// Key prefix shared by both stores
	KeyPrefix string
	// Body sent with the 429
	Message string
	// Whether to fail closed (reject) when Redis is unavailable
	FailClosed bool
}

// APIRateLimitConfig covers every /api route.
func APIRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		Limit:     cfg.RateLimitAPIMax,
		Window:    cfg.RateLimitAPIWindow,
		KeyPrefix: "rl:api:",
		Message:   apiRateLimitMessage,
		KeyFunc:   clientIPKey,
	}
}

// ContactRateLimitConfig covers POST /contact.
func ContactRateLimitConfig(cfg *config.Config) RateLimitConfig {
	return RateLimitConfig{
		Limit:     cfg.RateLimitContactMax,
		Window:    cfg.RateLimitContactWindow,
		KeyPrefix: "rl:contact:",
		Message:   contactRateLimitMessage,
		KeyFunc:   clientIPKey,
	}
}

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	count   int
	resetAt time.Time
	mu      sync.Mutex
}

// MemoryStore is a fixed-window counter kept in process memory.
type MemoryStore struct {
	entries sync.Map
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Increment counts one hit for key and returns the count in the current window.
func (s *MemoryStore) Increment(key string, window time.Duration) (int, time.Time) {
	now := s.now()
	entryI, _ := s.entries.LoadOrStore(key, &rateLimitEntry{
		resetAt: now.Add(window),
	})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(window)
	}
	entry.count++

	return entry.count, entry.resetAt
}

// Prune drops expired windows.
func (s *MemoryStore) Prune() {
	now := s.now()
	s.entries.Range(func(key, value interface{}) bool {
		entry := value.(*rateLimitEntry)
		entry.mu.Lock()
		if now.After(entry.resetAt) {
			s.entries.Delete(key)
		}
		entry.mu.Unlock()
		return true
	})
}

// RunCleanup prunes every interval until ctx is done.
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Prune()
		}
	}
}

// RateLimiter counts requests in Redis when a client is given and falls
// back to process memory otherwise or when Redis errors.
type RateLimiter struct {
	redis  *goredis.Client
	memory *MemoryStore
}

func NewRateLimiter(client *goredis.Client, memory *MemoryStore) *RateLimiter {
	if memory == nil {
		memory = NewMemoryStore()
	}
	return &RateLimiter{redis: client, memory: memory}
}

// Backend names the primary store, for health output.
func (rl *RateLimiter) Backend() string {
	if rl.redis != nil {
		return "redis"
	}
	return "memory"
}

// Memory exposes the fallback store so the caller can run its cleanup loop.
func (rl *RateLimiter) Memory() *MemoryStore {
	return rl.memory
}

// Middleware creates a rate limiting handler with the given config
func (rl *RateLimiter) Middleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}
	if config.Message == "" {
		config.Message = apiRateLimitMessage
	}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)

		var count int
		var resetAt time.Time
		var err error

		if rl.redis != nil {
			count, resetAt, err = checkRateLimitRedis(c.Request.Context(), rl.redis, fullKey, config)
			if err != nil {
				logRateLimitError(c, err)
				if config.FailClosed {
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = rl.memory.Increment(fullKey, config.Window)
			}
		} else {
			count, resetAt = rl.memory.Increment(fullKey, config.Window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logRateLimitTriggered(c)

			if response.WantsJSON(c) {
				response.Error(c, http.StatusTooManyRequests, config.Message, nil)
			} else {
				c.String(http.StatusTooManyRequests, config.Message)
			}
			c.Abort()
			return
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

// checkRateLimitRedis checks rate limit using Redis with atomic Lua script
func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())

	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

func logRateLimitTriggered(c *gin.Context) {
	security.DefaultLogger().LogRateLimitTriggered(
		c.Request.Context(),
		c.ClientIP(),
		c.GetHeader("User-Agent"),
		GetRequestID(c),
		c.FullPath(),
	)
}

func logRateLimitError(c *gin.Context, err error) {
	logger.Log.Warn("rate limit store unavailable, using memory", "error", err, "request_id", GetRequestID(c))
	security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
		Event:       security.EventRateLimitDegraded,
		SubjectType: "ip",
		IP:          c.ClientIP(),
		RequestID:   GetRequestID(c),
		Details:     map[string]interface{}{"error": err.Error()},
	})
}
