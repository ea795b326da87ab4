package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	visitors map[string]*visitor
	mu       sync.Mutex
}

func newLimiterStore() *limiterStore {
	s := &limiterStore{visitors: make(map[string]*visitor)}
	go s.cleanup()
	return s
}

func (s *limiterStore) get(key string, r rate.Limit, b int) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(r, b)
		s.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// cleanup removes stale entries so the map does not grow unbounded.
func (s *limiterStore) cleanup() {
	for {
		time.Sleep(time.Minute)

		s.mu.Lock()
		for key, v := range s.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(s.visitors, key)
			}
		}
		s.mu.Unlock()
	}
}

// RateLimit returns a Fiber middleware enforcing the given per-caller rate.
// The bucket key prefers the authenticated customer and falls back to the
// client IP for anonymous calls (the gateway callback arrives unauthenticated).
func RateLimit(r rate.Limit, burst int) fiber.Handler {
	store := newLimiterStore()
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if customerID, ok := c.Locals("customer_id").(string); ok && customerID != "" {
			key = "customer:" + customerID
		}
		if !store.get(key, r, burst).Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, slow down",
			})
		}
		return c.Next()
	}
}
