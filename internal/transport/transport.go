// Package transport provides the HTTP clients used to call the TikTok
// web API. Clients carry the fixed per-run headers and timeout and are
// shared across jobs for connection reuse only.
package transport

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Response is the status and body of one GET request. Non-2xx statuses
// are returned here, not as errors; callers decide what is fatal.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client performs GET requests with the fixed headers applied.
type Client interface {
	Get(ctx context.Context, url string) (Response, error)
}

// Config controls client construction.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// New builds the client selected by kind ("resty" by default).
func New(kind string, cfg Config, logger *zap.Logger) (Client, error) {
	switch kind {
	case "", "resty":
		return NewResty(cfg), nil
	case "colly":
		return NewColly(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown http client %q", kind)
	}
}

func defaultHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
	}
}
