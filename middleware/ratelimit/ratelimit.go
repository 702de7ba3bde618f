// Package ratelimit provides a per-client request limiter for fiber.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const defaultMessage = "Too many requests from this IP, please try again later."

type Config struct {
	// Max requests allowed per Window. Defaults to 100.
	Max int
	// Window is the averaging window. Defaults to 15 minutes.
	Window time.Duration
	// KeyFunc derives the client key. Defaults to the request IP.
	KeyFunc func(*fiber.Ctx) string
	// Message is the 429 body message.
	Message string
	// Done stops the idle-client cleanup goroutine when closed. When
	// nil the goroutine runs for the life of the process.
	Done <-chan struct{}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type store struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	window  time.Duration
}

func (s *store) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

// cleanup drops clients idle for longer than the window so the map
// stays bounded. It exits when done closes.
func (s *store) cleanup(done <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-s.window)
			s.mu.Lock()
			for key, c := range s.clients {
				if c.lastSeen.Before(cutoff) {
					delete(s.clients, key)
				}
			}
			s.mu.Unlock()
		case <-done:
			return
		}
	}
}

// New builds the middleware. Each client gets a token bucket sized to
// the full window allowance, so short bursts up to Max are allowed.
func New(config ...Config) fiber.Handler {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Max <= 0 {
		cfg.Max = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *fiber.Ctx) string { return c.IP() }
	}
	if cfg.Message == "" {
		cfg.Message = defaultMessage
	}

	s := &store{
		clients: make(map[string]*client),
		limit:   rate.Every(cfg.Window / time.Duration(cfg.Max)),
		burst:   cfg.Max,
		window:  cfg.Window,
	}
	go s.cleanup(cfg.Done)

	return func(c *fiber.Ctx) error {
		if !s.get(cfg.KeyFunc(c)).Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": cfg.Message,
			})
		}
		return c.Next()
	}
}
